package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Akash-nath29/akron/internal/dialect"
	"github.com/Akash-nath29/akron/internal/statement"
)

// Row is one result row keyed by column name.
type Row map[string]any

// scanRows reads every row. When cols is non-empty values are decoded to the
// column's semantic type; otherwise driver values are normalized only.
func scanRows(rows *sql.Rows, cols []statement.ResultColumn) ([]Row, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	types := make([]dialect.ScalarType, len(names))
	if len(cols) == len(names) {
		for i, c := range cols {
			types[i] = c.Type
		}
	}

	out := make([]Row, 0)
	for rows.Next() {
		raw := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(names))
		for i, name := range names {
			v, err := decodeValue(raw[i], types[i])
			if err != nil {
				return nil, fmt.Errorf("failed to decode column %s: %w", name, err)
			}
			row[name] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeValue converts a driver value to the Go type of t: int64, float64,
// string or bool. SQL NULL stays nil. An empty t only turns []byte into string.
func decodeValue(v any, t dialect.ScalarType) (any, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil {
		return nil, nil
	}

	switch t {
	case dialect.Int:
		switch x := v.(type) {
		case int64:
			return x, nil
		case float64:
			return int64(x), nil
		case bool:
			if x {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			return strconv.ParseInt(x, 10, 64)
		}
	case dialect.Float:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		case string:
			return strconv.ParseFloat(x, 64)
		}
	case dialect.Bool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case int64:
			return x != 0, nil
		case float64:
			return x != 0, nil
		case string:
			return parseBool(x)
		}
	case dialect.Str:
		switch x := v.(type) {
		case string:
			return x, nil
		case int64:
			return strconv.FormatInt(x, 10), nil
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(x), nil
		case time.Time:
			return x.Format(time.RFC3339Nano), nil
		}
	default:
		return v, nil
	}
	return nil, fmt.Errorf("cannot decode %T as %s", v, t)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "t", "true":
		return true, nil
	case "0", "f", "false":
		return false, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n != 0, nil
	}
	return false, fmt.Errorf("invalid bool %q", s)
}
