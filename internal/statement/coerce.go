package statement

import (
	"math"
	"reflect"

	"github.com/Akash-nath29/akron/internal/dialect"
	dberrors "github.com/Akash-nath29/akron/internal/errors"
	"github.com/Akash-nath29/akron/internal/schema"
)

// coerce converts v to the bind value for col, rejecting values whose runtime
// shape does not match the column's semantic type. nil is returned unchanged.
func coerce(col schema.Column, v any) (any, error) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, nil
	}

	switch col.Type {
	case dialect.Int:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if rv.Uint() > math.MaxInt64 {
				return nil, dberrors.Queryf(col.Name, "value %d overflows int", rv.Uint())
			}
			return int64(rv.Uint()), nil
		}
	case dialect.Float:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), nil
		}
	case dialect.Str:
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	case dialect.Bool:
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	}

	return nil, dberrors.Queryf(col.Name, "expected %s value, got %T", col.Type, v)
}

// coerceList expands the operand of an "in" filter.
func coerceList(col schema.Column, v any) ([]any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, dberrors.Queryf(col.Name, "in requires a list, got %T", v)
	}
	if rv.Len() == 0 {
		return nil, dberrors.Queryf(col.Name, "in requires at least one value")
	}

	out := make([]any, rv.Len())
	for i := range rv.Len() {
		item := rv.Index(i).Interface()
		if item == nil {
			return nil, dberrors.Queryf(col.Name, "in list cannot contain null")
		}
		c, err := coerce(col, item)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
