package akron

import (
	"context"
	"errors"

	"github.com/Akash-nath29/akron/internal/database"
	dberrors "github.com/Akash-nath29/akron/internal/errors"
	"github.com/Akash-nath29/akron/internal/statement"
)

// runner is satisfied by *database.Session and *database.Tx.
type runner interface {
	Query(ctx context.Context, stmt statement.Statement) ([]database.Row, error)
	Exec(ctx context.Context, stmt statement.Statement) (database.Result, error)
	ExecBatch(ctx context.Context, stmts []statement.Statement) ([]database.Result, error)
	Raw(ctx context.Context, text string, args ...any) ([]database.Row, error)
}

// ops is the data operation surface shared by Session and Tx.
type ops struct {
	db  *DB
	run runner
}

// Table returns the definition of name.
func (o ops) Table(name string) (*TableSchema, error) {
	if err := o.db.checkOpen(); err != nil {
		return nil, err
	}
	return o.db.catalog.Get(name)
}

// Tables returns the names of all tables, sorted.
func (o ops) Tables() []string {
	return o.db.catalog.Names()
}

// Insert adds one row and returns its generated id. For tables without an
// auto-increment key the engine's last insert id is returned.
func (o ops) Insert(ctx context.Context, table string, values map[string]any) (int64, error) {
	t, err := o.table(table)
	if err != nil {
		return 0, err
	}
	stmt, err := o.db.builder.Insert(t, values)
	if err != nil {
		return 0, err
	}
	res, err := o.run.Exec(ctx, stmt)
	if err != nil {
		return 0, mutationFailed(table, -1, err)
	}
	return res.LastInsertID, nil
}

// Update sets values on every row matching filters and returns the number of
// affected rows. At least one filter is required.
func (o ops) Update(ctx context.Context, table string, filters map[string]any, values map[string]any) (int64, error) {
	t, err := o.table(table)
	if err != nil {
		return 0, err
	}
	stmt, err := o.db.builder.Update(t, statement.FromMap(filters), values)
	if err != nil {
		return 0, err
	}
	res, err := o.run.Exec(ctx, stmt)
	if err != nil {
		return 0, mutationFailed(table, -1, err)
	}
	return res.RowsAffected, nil
}

// Delete removes every row matching filters and returns the number of
// deleted rows. At least one filter is required.
func (o ops) Delete(ctx context.Context, table string, filters map[string]any) (int64, error) {
	t, err := o.table(table)
	if err != nil {
		return 0, err
	}
	stmt, err := o.db.builder.Delete(t, statement.FromMap(filters))
	if err != nil {
		return 0, err
	}
	res, err := o.run.Exec(ctx, stmt)
	if err != nil {
		return 0, mutationFailed(table, -1, err)
	}
	return res.RowsAffected, nil
}

// Find returns the rows matching filters. An empty filter set returns every row.
func (o ops) Find(ctx context.Context, table string, filters map[string]any) ([]Row, error) {
	return o.Query(table).Filter(filters).All(ctx)
}

// Exists reports whether any row matches filters, fetching at most one row.
func (o ops) Exists(ctx context.Context, table string, filters map[string]any) (bool, error) {
	return o.Query(table).Filter(filters).Exists(ctx)
}

// Count returns the number of rows in table.
func (o ops) Count(ctx context.Context, table string) (int64, error) {
	return o.Query(table).Count(ctx)
}

// CountWhere returns the number of rows matching filters.
func (o ops) CountWhere(ctx context.Context, table string, filters map[string]any) (int64, error) {
	return o.Query(table).Filter(filters).Count(ctx)
}

// Aggregate runs a grouped aggregation over the whole table.
func (o ops) Aggregate(ctx context.Context, table string, specs map[string]Agg, groupBy ...string) ([]Row, error) {
	return o.Query(table).Aggregate(ctx, specs, groupBy...)
}

// Raw runs text unvalidated. Rows are returned for statements producing them
// and an empty slice otherwise; engine errors keep the engine's message.
func (o ops) Raw(ctx context.Context, text string, args ...any) ([]Row, error) {
	if err := o.db.checkOpen(); err != nil {
		return nil, err
	}
	return o.run.Raw(ctx, text, args...)
}

// Query starts an empty query on table.
func (o ops) Query(table string) Query {
	return Query{ops: o, table: table, limit: statement.NoLimit}
}

func (o ops) table(name string) (*TableSchema, error) {
	if err := o.db.checkOpen(); err != nil {
		return nil, err
	}
	return o.db.catalog.Get(name)
}

// mutationFailed wraps an engine failure of a write. Misuse of a finished
// transaction or a closed database is returned as is.
func mutationFailed(table string, index int, err error) error {
	if errors.Is(err, dberrors.ErrTransaction) || errors.Is(err, dberrors.ErrClosed) {
		return err
	}
	return &dberrors.MutationError{Table: table, Index: index, Err: err}
}
