// Package statement compiles structured query and mutation intents into
// parameterized SQL. Compilation is pure: values only ever travel as bind
// arguments and identifiers are checked against the table schema first.
package statement

import (
	"sort"
	"strings"

	"github.com/Akash-nath29/akron/internal/dialect"
	dberrors "github.com/Akash-nath29/akron/internal/errors"
	"github.com/Akash-nath29/akron/internal/schema"
)

// NoLimit marks a query without LIMIT.
const NoLimit = -1

// ResultColumn describes how to decode one result column.
type ResultColumn struct {
	Name string
	Type dialect.ScalarType
}

// Statement is compiled SQL text with its ordered bind values.
type Statement struct {
	Text    string
	Args    []any
	Columns []ResultColumn
}

// Order is a single ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// ParseOrder reads "field" (ascending) or "-field" (descending).
func ParseOrder(field string) Order {
	if rest, ok := strings.CutPrefix(field, "-"); ok {
		return Order{Column: rest, Desc: true}
	}
	return Order{Column: field}
}

// Query is the read intent shared by select, count, exists and aggregate.
type Query struct {
	Where  []Predicate
	Order  *Order
	Limit  int
	Offset int
}

// Builder compiles statements for one dialect.
type Builder struct {
	Dialect dialect.Dialect
}

// New creates a Builder.
func New(d dialect.Dialect) Builder {
	return Builder{Dialect: d}
}

func (b Builder) columnList(t *schema.Table) (string, []ResultColumn) {
	quoted := make([]string, len(t.Columns))
	cols := make([]ResultColumn, len(t.Columns))
	for i, c := range t.Columns {
		quoted[i] = b.Dialect.Quote(c.Name)
		cols[i] = ResultColumn{Name: c.Name, Type: c.Type}
	}
	return strings.Join(quoted, ", "), cols
}

func (b Builder) compileOrder(t *schema.Table, order *Order, aliases map[string]bool) (string, error) {
	if order == nil {
		return "", nil
	}
	if order.Column == "" {
		return "", dberrors.Queryf("order_by", "empty ordering field")
	}
	if !t.HasColumn(order.Column) && !aliases[order.Column] {
		return "", dberrors.Queryf(order.Column, "unknown ordering column in table %s", t.Name)
	}
	clause := " ORDER BY " + b.Dialect.Quote(order.Column)
	if order.Desc {
		clause += " DESC"
	} else {
		clause += " ASC"
	}
	return clause, nil
}

func (b Builder) compileLimit(q Query, args []any) (string, []any, error) {
	if q.Limit < NoLimit {
		return "", nil, dberrors.Queryf("limit", "must be non-negative, got %d", q.Limit)
	}
	if q.Offset < 0 {
		return "", nil, dberrors.Queryf("offset", "must be non-negative, got %d", q.Offset)
	}

	var clause string
	switch {
	case q.Limit != NoLimit:
		args = append(args, q.Limit)
		clause = " LIMIT " + b.Dialect.Placeholder(len(args))
	case q.Offset > 0:
		clause = " LIMIT " + b.Dialect.Unlimited()
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		clause += " OFFSET " + b.Dialect.Placeholder(len(args))
	}
	return clause, args, nil
}

// Select compiles a row fetch returning every column of t.
func (b Builder) Select(t *schema.Table, q Query) (Statement, error) {
	where, args, err := b.compileWhere(t, q.Where, nil)
	if err != nil {
		return Statement{}, err
	}
	order, err := b.compileOrder(t, q.Order, nil)
	if err != nil {
		return Statement{}, err
	}
	limit, args, err := b.compileLimit(q, args)
	if err != nil {
		return Statement{}, err
	}

	list, cols := b.columnList(t)
	text := "SELECT " + list + " FROM " + b.Dialect.Quote(t.Name) + where + order + limit
	return Statement{Text: text, Args: args, Columns: cols}, nil
}

// Count compiles a row count. Limit and offset are honored through a
// subquery; ordering is irrelevant and dropped.
func (b Builder) Count(t *schema.Table, q Query) (Statement, error) {
	where, args, err := b.compileWhere(t, q.Where, nil)
	if err != nil {
		return Statement{}, err
	}
	limit, args, err := b.compileLimit(q, args)
	if err != nil {
		return Statement{}, err
	}

	from := b.Dialect.Quote(t.Name) + where
	if limit != "" {
		from = "(SELECT 1 AS " + b.Dialect.Quote("one") + " FROM " + from + limit + ") AS " + b.Dialect.Quote("counted")
	}
	return Statement{
		Text:    "SELECT COUNT(*) AS " + b.Dialect.Quote("count") + " FROM " + from,
		Args:    args,
		Columns: []ResultColumn{{Name: "count", Type: dialect.Int}},
	}, nil
}

// Exists compiles a query that fetches at most one row.
func (b Builder) Exists(t *schema.Table, q Query) (Statement, error) {
	where, args, err := b.compileWhere(t, q.Where, nil)
	if err != nil {
		return Statement{}, err
	}
	limit, args, err := b.compileLimit(q, args)
	if err != nil {
		return Statement{}, err
	}

	from := b.Dialect.Quote(t.Name) + where
	if limit != "" {
		from = "(SELECT 1 AS " + b.Dialect.Quote("one") + " FROM " + from + limit + ") AS " + b.Dialect.Quote("sub")
	}
	return Statement{
		Text:    "SELECT 1 FROM " + from + " LIMIT 1",
		Args:    args,
		Columns: []ResultColumn{{Name: "exists", Type: dialect.Int}},
	}, nil
}

// Insert compiles a single-row insert. Columns are bound in schema order.
func (b Builder) Insert(t *schema.Table, values map[string]any) (Statement, error) {
	if err := checkColumns(t, values); err != nil {
		return Statement{}, err
	}

	var names, marks []string
	var args []any
	for _, col := range t.Columns {
		raw, present := values[col.Name]
		if !present {
			if !col.Nullable && !col.PrimaryKey {
				return Statement{}, dberrors.Queryf(col.Name, "column cannot be NULL")
			}
			continue
		}
		v, err := coerce(col, raw)
		if err != nil {
			return Statement{}, err
		}
		if v == nil && !col.Nullable && !col.PrimaryKey {
			return Statement{}, dberrors.Queryf(col.Name, "column cannot be NULL")
		}
		if v == nil && col.PrimaryKey {
			continue
		}
		args = append(args, v)
		names = append(names, b.Dialect.Quote(col.Name))
		marks = append(marks, b.Dialect.Placeholder(len(args)))
	}

	text := "INSERT INTO " + b.Dialect.Quote(t.Name)
	if len(names) == 0 {
		text += b.Dialect.DefaultValues()
	} else {
		text += " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	}
	return Statement{Text: text, Args: args}, nil
}

// Update compiles an update of the rows matching where. At least one
// predicate is required and the primary key cannot be changed.
func (b Builder) Update(t *schema.Table, where []Predicate, values map[string]any) (Statement, error) {
	if len(where) == 0 {
		return Statement{}, dberrors.Queryf("", "update requires at least one filter")
	}
	if len(values) == 0 {
		return Statement{}, dberrors.Queryf("", "update requires at least one value")
	}
	if err := checkColumns(t, values); err != nil {
		return Statement{}, err
	}

	var sets []string
	var args []any
	for _, col := range t.Columns {
		raw, present := values[col.Name]
		if !present {
			continue
		}
		if col.PrimaryKey {
			return Statement{}, dberrors.Queryf(col.Name, "primary key cannot be updated")
		}
		v, err := coerce(col, raw)
		if err != nil {
			return Statement{}, err
		}
		if v == nil && !col.Nullable {
			return Statement{}, dberrors.Queryf(col.Name, "column cannot be NULL")
		}
		args = append(args, v)
		sets = append(sets, b.Dialect.Quote(col.Name)+" = "+b.Dialect.Placeholder(len(args)))
	}

	clause, args, err := b.compileWhere(t, where, args)
	if err != nil {
		return Statement{}, err
	}
	text := "UPDATE " + b.Dialect.Quote(t.Name) + " SET " + strings.Join(sets, ", ") + clause
	return Statement{Text: text, Args: args}, nil
}

// Delete compiles a delete of the rows matching where. At least one
// predicate is required.
func (b Builder) Delete(t *schema.Table, where []Predicate) (Statement, error) {
	if len(where) == 0 {
		return Statement{}, dberrors.Queryf("", "delete requires at least one filter")
	}
	clause, args, err := b.compileWhere(t, where, nil)
	if err != nil {
		return Statement{}, err
	}
	return Statement{Text: "DELETE FROM " + b.Dialect.Quote(t.Name) + clause, Args: args}, nil
}

func checkColumns(t *schema.Table, values map[string]any) error {
	unknown := make([]string, 0)
	for name := range values {
		if !t.HasColumn(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return dberrors.Queryf(unknown[0], "unknown column in table %s", t.Name)
}
