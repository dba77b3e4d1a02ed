package dialect

import "testing"

func TestLookupOperator(t *testing.T) {
	tests := []struct {
		tag     string
		want    Operator
		symbol  string
		wantErr bool
	}{
		{tag: "eq", want: OpEq, symbol: "="},
		{tag: "ne", want: OpNe, symbol: "<>"},
		{tag: "lt", want: OpLt, symbol: "<"},
		{tag: "lte", want: OpLte, symbol: "<="},
		{tag: "gt", want: OpGt, symbol: ">"},
		{tag: "gte", want: OpGte, symbol: ">="},
		{tag: "in", want: OpIn, symbol: "IN"},
		{tag: "like", want: OpLike, symbol: "LIKE"},
		{tag: "between", wantErr: true},
		{tag: "LT", wantErr: true},
		{tag: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := LookupOperator(tt.tag)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.tag)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if got.Symbol() != tt.symbol {
				t.Fatalf("expected symbol %q, got %q", tt.symbol, got.Symbol())
			}
		})
	}
}

func TestParseScalar(t *testing.T) {
	for _, name := range []string{"int", "str", "float", "bool"} {
		if _, err := ParseScalar(name); err != nil {
			t.Fatalf("expected %q to parse, got %v", name, err)
		}
	}
	if _, err := ParseScalar("datetime"); err == nil {
		t.Fatal("expected datetime to be rejected")
	}
}

func TestLookupDialect(t *testing.T) {
	d, err := Lookup("sqlite")
	if err != nil {
		t.Fatalf("lookup sqlite: %v", err)
	}
	if got := d.Quote(`we"ird`); got != `"we""ird"` {
		t.Fatalf("expected escaped identifier, got %s", got)
	}

	m, err := Lookup("mysql")
	if err != nil {
		t.Fatalf("lookup mysql: %v", err)
	}
	if got := m.PrimaryKey("id"); got != "`id` BIGINT AUTO_INCREMENT PRIMARY KEY" {
		t.Fatalf("unexpected mysql primary key clause %q", got)
	}

	if _, err := Lookup("mongodb"); err == nil {
		t.Fatal("expected unknown dialect to fail")
	}
}
