package akron

import (
	"context"
	"slices"

	dberrors "github.com/Akash-nath29/akron/internal/errors"
	"github.com/Akash-nath29/akron/internal/statement"
)

// Query is an immutable read intent bound to a Session or Tx. Every builder
// method returns a new Query, so a shared base can be extended concurrently.
// Invalid arguments are recorded and reported by the terminal call.
type Query struct {
	ops    ops
	table  string
	where  []Predicate
	order  *statement.Order
	limit  int
	offset int
	err    error
}

// Where appends predicates, AND-combined with the existing ones.
func (q Query) Where(preds ...Predicate) Query {
	q.where = append(slices.Clip(q.where), preds...)
	return q
}

// Filter appends a filter mapping; keys are "field" or "field__op".
func (q Query) Filter(filters map[string]any) Query {
	return q.Where(statement.FromMap(filters)...)
}

// OrderBy sets the ordering; "-field" sorts descending. A later call replaces
// an earlier one.
func (q Query) OrderBy(field string) Query {
	order := statement.ParseOrder(field)
	q.order = &order
	return q
}

// Limit caps the number of rows.
func (q Query) Limit(n int) Query {
	if n < 0 {
		return q.fail(dberrors.Queryf("limit", "must be non-negative, got %d", n))
	}
	q.limit = n
	return q
}

// Offset skips the first n rows.
func (q Query) Offset(n int) Query {
	if n < 0 {
		return q.fail(dberrors.Queryf("offset", "must be non-negative, got %d", n))
	}
	q.offset = n
	return q
}

// Paginate selects a 1-based page, replacing any limit and offset.
func (q Query) Paginate(page, perPage int) Query {
	if page < 1 {
		return q.fail(dberrors.Queryf("page", "must be at least 1, got %d", page))
	}
	if perPage < 1 {
		return q.fail(dberrors.Queryf("per_page", "must be at least 1, got %d", perPage))
	}
	q.limit = perPage
	q.offset = (page - 1) * perPage
	return q
}

func (q Query) fail(err error) Query {
	if q.err == nil {
		q.err = err
	}
	return q
}

func (q Query) intent() statement.Query {
	return statement.Query{Where: q.where, Order: q.order, Limit: q.limit, Offset: q.offset}
}

func (q Query) prepare() (*TableSchema, error) {
	if err := q.ops.db.checkOpen(); err != nil {
		return nil, err
	}
	if q.err != nil {
		return nil, q.err
	}
	return q.ops.db.catalog.Get(q.table)
}

// All returns every matching row in query order.
func (q Query) All(ctx context.Context) ([]Row, error) {
	t, err := q.prepare()
	if err != nil {
		return nil, err
	}
	stmt, err := q.ops.db.builder.Select(t, q.intent())
	if err != nil {
		return nil, err
	}
	return q.ops.run.Query(ctx, stmt)
}

// First returns the first matching row, or nil when there is none.
func (q Query) First(ctx context.Context) (Row, error) {
	rows, err := q.Limit(1).All(ctx)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Count returns the number of matching rows without fetching them.
func (q Query) Count(ctx context.Context) (int64, error) {
	t, err := q.prepare()
	if err != nil {
		return 0, err
	}
	stmt, err := q.ops.db.builder.Count(t, q.intent())
	if err != nil {
		return 0, err
	}
	rows, err := q.ops.run.Query(ctx, stmt)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, _ := rows[0][stmt.Columns[0].Name].(int64)
	return n, nil
}

// Exists reports whether any row matches, fetching at most one.
func (q Query) Exists(ctx context.Context) (bool, error) {
	t, err := q.prepare()
	if err != nil {
		return false, err
	}
	stmt, err := q.ops.db.builder.Exists(t, q.intent())
	if err != nil {
		return false, err
	}
	rows, err := q.ops.run.Query(ctx, stmt)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Aggregate groups the matching rows by groupBy and computes specs. The
// query's ordering must name a group-by column or an output.
func (q Query) Aggregate(ctx context.Context, specs map[string]Agg, groupBy ...string) ([]Row, error) {
	t, err := q.prepare()
	if err != nil {
		return nil, err
	}
	stmt, err := q.ops.db.builder.Aggregate(t, q.intent(), specs, groupBy)
	if err != nil {
		return nil, err
	}
	return q.ops.run.Query(ctx, stmt)
}
