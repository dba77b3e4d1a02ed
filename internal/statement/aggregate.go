package statement

import (
	"sort"
	"strings"

	"github.com/Akash-nath29/akron/internal/dialect"
	dberrors "github.com/Akash-nath29/akron/internal/errors"
	"github.com/Akash-nath29/akron/internal/schema"
)

// AggFunc names an aggregate function.
type AggFunc string

const (
	AggCount AggFunc = "count"
	AggSum   AggFunc = "sum"
	AggAvg   AggFunc = "avg"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

func (f AggFunc) valid() bool {
	switch f {
	case AggCount, AggSum, AggAvg, AggMin, AggMax:
		return true
	}
	return false
}

// Agg is one aggregate output. An empty Column means COUNT(*) for count and
// the output name for every other function.
type Agg struct {
	Func   AggFunc
	Column string
}

// Aggregate compiles a grouped aggregation. Output columns come back in
// group-by order followed by the aggregate outputs sorted by name.
func (b Builder) Aggregate(t *schema.Table, q Query, specs map[string]Agg, groupBy []string) (Statement, error) {
	if len(specs) == 0 {
		return Statement{}, dberrors.Queryf("", "aggregate requires at least one output")
	}

	var (
		selects []string
		groups  []string
		cols    []ResultColumn
	)
	grouped := make(map[string]bool, len(groupBy))
	for _, name := range groupBy {
		col, ok := t.Column(name)
		if !ok {
			return Statement{}, dberrors.Queryf(name, "unknown group by column in table %s", t.Name)
		}
		if grouped[name] {
			return Statement{}, dberrors.Queryf(name, "duplicate group by column")
		}
		grouped[name] = true
		ident := b.Dialect.Quote(name)
		selects = append(selects, ident)
		groups = append(groups, ident)
		cols = append(cols, ResultColumn{Name: name, Type: col.Type})
	}

	outputs := make([]string, 0, len(specs))
	for name := range specs {
		outputs = append(outputs, name)
	}
	sort.Strings(outputs)

	aliases := make(map[string]bool, len(outputs))
	for _, out := range outputs {
		spec := specs[out]
		if !schema.ValidIdentifier(out) {
			return Statement{}, dberrors.Queryf(out, "invalid output name")
		}
		if grouped[out] {
			return Statement{}, dberrors.Queryf(out, "output name collides with a group by column")
		}
		fn := spec.Func
		if !fn.valid() {
			return Statement{}, dberrors.Queryf(out, "unknown aggregate function %q", spec.Func)
		}

		expr, typ, err := b.aggExpr(t, out, fn, spec.Column)
		if err != nil {
			return Statement{}, err
		}
		aliases[out] = true
		selects = append(selects, expr+" AS "+b.Dialect.Quote(out))
		cols = append(cols, ResultColumn{Name: out, Type: typ})
	}

	where, args, err := b.compileWhere(t, q.Where, nil)
	if err != nil {
		return Statement{}, err
	}

	var order string
	if q.Order != nil {
		if !grouped[q.Order.Column] && !aliases[q.Order.Column] {
			return Statement{}, dberrors.Queryf(q.Order.Column, "aggregate ordering must name a group by column or an output")
		}
		order, err = b.compileOrder(t, q.Order, aliases)
		if err != nil {
			return Statement{}, err
		}
	}

	limit, args, err := b.compileLimit(q, args)
	if err != nil {
		return Statement{}, err
	}

	text := "SELECT " + strings.Join(selects, ", ") + " FROM " + b.Dialect.Quote(t.Name) + where
	if len(groups) > 0 {
		text += " GROUP BY " + strings.Join(groups, ", ")
	}
	text += order + limit
	return Statement{Text: text, Args: args, Columns: cols}, nil
}

func (b Builder) aggExpr(t *schema.Table, out string, fn AggFunc, source string) (string, dialect.ScalarType, error) {
	if source == "" {
		if fn == AggCount {
			return "COUNT(*)", dialect.Int, nil
		}
		if !t.HasColumn(out) {
			return "", "", dberrors.Queryf(out, "%s requires a source column", fn)
		}
		source = out
	}

	col, ok := t.Column(source)
	if !ok {
		return "", "", dberrors.Queryf(source, "unknown aggregate column in table %s", t.Name)
	}
	expr := strings.ToUpper(string(fn)) + "(" + b.Dialect.Quote(col.Name) + ")"

	switch fn {
	case AggCount:
		return expr, dialect.Int, nil
	case AggAvg:
		return expr, dialect.Float, nil
	case AggSum:
		if col.Type == dialect.Int || col.Type == dialect.Bool {
			return expr, dialect.Int, nil
		}
		return expr, dialect.Float, nil
	default:
		return expr, col.Type, nil
	}
}
