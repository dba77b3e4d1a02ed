package statement

import (
	"sort"
	"strings"

	"github.com/Akash-nath29/akron/internal/dialect"
	dberrors "github.com/Akash-nath29/akron/internal/errors"
	"github.com/Akash-nath29/akron/internal/schema"
)

// OperatorSeparator splits a filter key into field and operator tag.
const OperatorSeparator = "__"

// Predicate is a raw filter: a key of the form "field" or "field__op" and the
// operand. It is validated when compiled against a table.
type Predicate struct {
	Key   string
	Value any
}

// FromMap converts a filter mapping into predicates ordered by key.
func FromMap(filters map[string]any) []Predicate {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	preds := make([]Predicate, len(keys))
	for i, k := range keys {
		preds[i] = Predicate{Key: k, Value: filters[k]}
	}
	return preds
}

// ParseKey splits a filter key into its column and operator. A key without a
// suffix means equality. A key whose suffix is not an operator is accepted
// only when the whole key names a column of t.
func ParseKey(t *schema.Table, key string) (schema.Column, dialect.Operator, error) {
	field, op := key, dialect.OpEq
	if i := strings.LastIndex(key, OperatorSeparator); i >= 0 {
		tag := key[i+len(OperatorSeparator):]
		parsed, err := dialect.LookupOperator(tag)
		switch {
		case err == nil:
			field, op = key[:i], parsed
		case t.HasColumn(key):
			// column name that happens to contain the separator
		default:
			return schema.Column{}, "", dberrors.Queryf(key, "unsupported operator %q", tag)
		}
	}

	col, ok := t.Column(field)
	if !ok {
		return schema.Column{}, "", dberrors.Queryf(field, "unknown column in table %s", t.Name)
	}
	return col, op, nil
}

// compileWhere renders the AND-combined predicates, appending bind values to args.
func (b Builder) compileWhere(t *schema.Table, preds []Predicate, args []any) (string, []any, error) {
	if len(preds) == 0 {
		return "", args, nil
	}

	clauses := make([]string, 0, len(preds))
	for _, p := range preds {
		col, op, err := ParseKey(t, p.Key)
		if err != nil {
			return "", nil, err
		}
		ident := b.Dialect.Quote(col.Name)

		if op == dialect.OpIn {
			values, err := coerceList(col, p.Value)
			if err != nil {
				return "", nil, err
			}
			marks := make([]string, len(values))
			for i, v := range values {
				args = append(args, v)
				marks[i] = b.Dialect.Placeholder(len(args))
			}
			clauses = append(clauses, ident+" IN ("+strings.Join(marks, ", ")+")")
			continue
		}

		value, err := coerce(col, p.Value)
		if err != nil {
			return "", nil, err
		}

		if value == nil {
			switch op {
			case dialect.OpEq:
				clauses = append(clauses, ident+" IS NULL")
			case dialect.OpNe:
				clauses = append(clauses, ident+" IS NOT NULL")
			default:
				return "", nil, dberrors.Queryf(p.Key, "operator %s does not accept null", op)
			}
			continue
		}

		if op == dialect.OpLike && col.Type != dialect.Str {
			return "", nil, dberrors.Queryf(p.Key, "like requires a str column")
		}
		if op.Ordered() && col.Type == dialect.Bool {
			return "", nil, dberrors.Queryf(p.Key, "operator %s is not defined for bool columns", op)
		}

		args = append(args, value)
		clauses = append(clauses, ident+" "+op.Symbol()+" "+b.Dialect.Placeholder(len(args)))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}
