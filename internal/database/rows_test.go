package database

import (
	"testing"

	"github.com/Akash-nath29/akron/internal/dialect"
)

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		typ  dialect.ScalarType
		want any
	}{
		{"null", nil, dialect.Int, nil},
		{"int", int64(7), dialect.Int, int64(7)},
		{"int from text protocol", []byte("42"), dialect.Int, int64(42)},
		{"float from int", int64(3), dialect.Float, float64(3)},
		{"float from bytes", []byte("2.5"), dialect.Float, 2.5},
		{"bool from int", int64(1), dialect.Bool, true},
		{"bool from zero", int64(0), dialect.Bool, false},
		{"bool from bytes", []byte("0"), dialect.Bool, false},
		{"bool native", true, dialect.Bool, true},
		{"str from bytes", []byte("alice"), dialect.Str, "alice"},
		{"untyped bytes", []byte("raw"), "", "raw"},
		{"untyped int", int64(9), "", int64(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeValue(tt.in, tt.typ)
			if err != nil {
				t.Fatalf("decodeValue returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestDecodeValue_Invalid(t *testing.T) {
	if _, err := decodeValue([]byte("yes please"), dialect.Bool); err == nil {
		t.Fatal("expected error for unparseable bool")
	}
	if _, err := decodeValue([]byte("x"), dialect.Int); err == nil {
		t.Fatal("expected error for unparseable int")
	}
}
