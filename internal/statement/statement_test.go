package statement

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Akash-nath29/akron/internal/dialect"
	dberrors "github.com/Akash-nath29/akron/internal/errors"
	"github.com/Akash-nath29/akron/internal/schema"
)

func usersTable(t *testing.T) *schema.Table {
	t.Helper()
	cat := schema.NewCatalog()
	users, err := cat.Define("users", []schema.ColumnDef{
		{Name: "id", Descriptor: "int"},
		{Name: "name", Descriptor: "str", NotNull: true},
		{Name: "age", Descriptor: "int"},
		{Name: "score", Descriptor: "float"},
		{Name: "active", Descriptor: "bool"},
	})
	if err != nil {
		t.Fatalf("failed to define users: %v", err)
	}
	return users
}

func sqliteBuilder() Builder {
	return New(dialect.SQLite{})
}

func TestSelect_FiltersAndPagination(t *testing.T) {
	users := usersTable(t)
	order := ParseOrder("-age")

	stmt, err := sqliteBuilder().Select(users, Query{
		Where:  FromMap(map[string]any{"age__gte": 28, "name__like": "A%"}),
		Order:  &order,
		Limit:  10,
		Offset: 20,
	})
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}

	want := `SELECT "id", "name", "age", "score", "active" FROM "users" WHERE "age" >= ? AND "name" LIKE ? ORDER BY "age" DESC LIMIT ? OFFSET ?`
	if stmt.Text != want {
		t.Fatalf("expected %q, got %q", want, stmt.Text)
	}
	wantArgs := []any{int64(28), "A%", 10, 20}
	if !reflect.DeepEqual(stmt.Args, wantArgs) {
		t.Fatalf("expected args %v, got %v", wantArgs, stmt.Args)
	}
	if len(stmt.Columns) != 5 || stmt.Columns[3].Type != dialect.Float {
		t.Fatalf("expected typed result columns, got %+v", stmt.Columns)
	}
}

func TestSelect_OffsetWithoutLimit(t *testing.T) {
	users := usersTable(t)

	stmt, err := sqliteBuilder().Select(users, Query{Limit: NoLimit, Offset: 5})
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	want := `SELECT "id", "name", "age", "score", "active" FROM "users" LIMIT -1 OFFSET ?`
	if stmt.Text != want {
		t.Fatalf("expected %q, got %q", want, stmt.Text)
	}

	mysql, err := New(dialect.MySQL{}).Select(users, Query{Limit: NoLimit, Offset: 5})
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	wantMySQL := "SELECT `id`, `name`, `age`, `score`, `active` FROM `users` LIMIT 18446744073709551615 OFFSET ?"
	if mysql.Text != wantMySQL {
		t.Fatalf("expected %q, got %q", wantMySQL, mysql.Text)
	}
}

func TestCompileWhere_Operators(t *testing.T) {
	users := usersTable(t)

	tests := []struct {
		name     string
		key      string
		value    any
		wantSQL  string
		wantArgs []any
	}{
		{"implicit eq", "age", 30, ` WHERE "age" = ?`, []any{int64(30)}},
		{"ne", "age__ne", 30, ` WHERE "age" <> ?`, []any{int64(30)}},
		{"lt", "age__lt", 30, ` WHERE "age" < ?`, []any{int64(30)}},
		{"lte", "age__lte", 30, ` WHERE "age" <= ?`, []any{int64(30)}},
		{"gt", "age__gt", 30, ` WHERE "age" > ?`, []any{int64(30)}},
		{"gte", "score__gte", 1, ` WHERE "score" >= ?`, []any{float64(1)}},
		{"in", "age__in", []int{25, 28}, ` WHERE "age" IN (?, ?)`, []any{int64(25), int64(28)}},
		{"like", "name__like", "%li%", ` WHERE "name" LIKE ?`, []any{"%li%"}},
		{"is null", "age", nil, ` WHERE "age" IS NULL`, nil},
		{"is not null", "age__ne", nil, ` WHERE "age" IS NOT NULL`, nil},
		{"bool eq", "active", true, ` WHERE "active" = ?`, []any{true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := sqliteBuilder().compileWhere(users, []Predicate{{Key: tt.key, Value: tt.value}}, nil)
			if err != nil {
				t.Fatalf("compileWhere returned error: %v", err)
			}
			if sql != tt.wantSQL {
				t.Fatalf("expected %q, got %q", tt.wantSQL, sql)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Fatalf("expected args %v, got %v", tt.wantArgs, args)
			}
		})
	}
}

func TestCompileWhere_Rejections(t *testing.T) {
	users := usersTable(t)

	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"unknown operator", "age__between", 1},
		{"empty operator", "age__", 1},
		{"unknown column", "email", "x"},
		{"float into int", "age", 1.5},
		{"string into int", "age", "30"},
		{"bool into int", "age", true},
		{"int into bool", "active", 1},
		{"in without list", "age__in", 3},
		{"in empty list", "age__in", []int{}},
		{"in with null", "age__in", []any{1, nil}},
		{"like on int", "age__like", "3%"},
		{"ordered on bool", "active__gt", true},
		{"null with lt", "age__lt", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := sqliteBuilder().compileWhere(users, []Predicate{{Key: tt.key, Value: tt.value}}, nil)
			if !errors.Is(err, dberrors.ErrQuery) {
				t.Fatalf("expected query error, got %v", err)
			}
		})
	}
}

func TestCompileWhere_UnsupportedOperatorMessage(t *testing.T) {
	users := usersTable(t)

	_, _, err := sqliteBuilder().compileWhere(users, []Predicate{{Key: "age__between", Value: 1}}, nil)
	var qe *dberrors.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected *QueryError, got %T", err)
	}
	if qe.Message != `unsupported operator "between"` {
		t.Fatalf("expected unsupported operator message, got %q", qe.Message)
	}
}

func TestParseKey_ColumnWithSeparator(t *testing.T) {
	cat := schema.NewCatalog()
	tbl, err := cat.Define("events", []schema.ColumnDef{
		{Name: "created__by", Descriptor: "str"},
	})
	if err != nil {
		t.Fatalf("failed to define events: %v", err)
	}

	col, op, err := ParseKey(tbl, "created__by")
	if err != nil {
		t.Fatalf("ParseKey returned error: %v", err)
	}
	if col.Name != "created__by" || op != dialect.OpEq {
		t.Fatalf("expected created__by eq, got %s %s", col.Name, op)
	}
}

func TestInsert(t *testing.T) {
	users := usersTable(t)

	stmt, err := sqliteBuilder().Insert(users, map[string]any{"age": 30, "name": "Alice"})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	want := `INSERT INTO "users" ("name", "age") VALUES (?, ?)`
	if stmt.Text != want {
		t.Fatalf("expected %q, got %q", want, stmt.Text)
	}
	if !reflect.DeepEqual(stmt.Args, []any{"Alice", int64(30)}) {
		t.Fatalf("unexpected args %v", stmt.Args)
	}
}

func TestInsert_Rejections(t *testing.T) {
	users := usersTable(t)

	tests := []struct {
		name   string
		values map[string]any
	}{
		{"unknown column", map[string]any{"name": "A", "email": "a@x"}},
		{"missing not null", map[string]any{"age": 3}},
		{"null into not null", map[string]any{"name": nil}},
		{"wrong type", map[string]any{"name": 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sqliteBuilder().Insert(users, tt.values); !errors.Is(err, dberrors.ErrQuery) {
				t.Fatalf("expected query error, got %v", err)
			}
		})
	}
}

func TestInsert_DefaultValues(t *testing.T) {
	cat := schema.NewCatalog()
	tbl, err := cat.Define("ticks", []schema.ColumnDef{{Name: "id", Descriptor: "int"}, {Name: "note", Descriptor: "str"}})
	if err != nil {
		t.Fatalf("failed to define ticks: %v", err)
	}

	stmt, err := sqliteBuilder().Insert(tbl, map[string]any{})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if stmt.Text != `INSERT INTO "ticks" DEFAULT VALUES` {
		t.Fatalf("unexpected text %q", stmt.Text)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	users := usersTable(t)
	b := sqliteBuilder()

	stmt, err := b.Update(users, FromMap(map[string]any{"id": 1}), map[string]any{"age": 31, "active": false})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	want := `UPDATE "users" SET "age" = ?, "active" = ? WHERE "id" = ?`
	if stmt.Text != want {
		t.Fatalf("expected %q, got %q", want, stmt.Text)
	}
	if !reflect.DeepEqual(stmt.Args, []any{int64(31), false, int64(1)}) {
		t.Fatalf("unexpected args %v", stmt.Args)
	}

	if _, err := b.Update(users, nil, map[string]any{"age": 1}); !errors.Is(err, dberrors.ErrQuery) {
		t.Fatalf("expected query error for unfiltered update, got %v", err)
	}
	if _, err := b.Update(users, FromMap(map[string]any{"id": 1}), nil); !errors.Is(err, dberrors.ErrQuery) {
		t.Fatalf("expected query error for empty update, got %v", err)
	}
	if _, err := b.Update(users, FromMap(map[string]any{"id": 1}), map[string]any{"id": 2}); !errors.Is(err, dberrors.ErrQuery) {
		t.Fatalf("expected query error for primary key update, got %v", err)
	}

	del, err := b.Delete(users, FromMap(map[string]any{"age__lt": 18}))
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if del.Text != `DELETE FROM "users" WHERE "age" < ?` {
		t.Fatalf("unexpected text %q", del.Text)
	}
	if _, err := b.Delete(users, nil); !errors.Is(err, dberrors.ErrQuery) {
		t.Fatalf("expected query error for unfiltered delete, got %v", err)
	}
}

func TestCountAndExists_SingleRow(t *testing.T) {
	users := usersTable(t)
	b := sqliteBuilder()

	count, err := b.Count(users, Query{Where: FromMap(map[string]any{"age__gt": 20}), Limit: NoLimit})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count.Text != `SELECT COUNT(*) AS "count" FROM "users" WHERE "age" > ?` {
		t.Fatalf("unexpected count text %q", count.Text)
	}

	limited, err := b.Count(users, Query{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	want := `SELECT COUNT(*) AS "count" FROM (SELECT 1 AS "one" FROM "users" LIMIT ? OFFSET ?) AS "counted"`
	if limited.Text != want {
		t.Fatalf("expected %q, got %q", want, limited.Text)
	}

	exists, err := b.Exists(users, Query{Where: FromMap(map[string]any{"name": "Bob"}), Limit: NoLimit})
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if exists.Text != `SELECT 1 FROM "users" WHERE "name" = ? LIMIT 1` {
		t.Fatalf("unexpected exists text %q", exists.Text)
	}
}

func TestLimitValidation(t *testing.T) {
	users := usersTable(t)

	if _, err := sqliteBuilder().Select(users, Query{Limit: -2}); !errors.Is(err, dberrors.ErrQuery) {
		t.Fatalf("expected query error for negative limit, got %v", err)
	}
	if _, err := sqliteBuilder().Select(users, Query{Limit: NoLimit, Offset: -1}); !errors.Is(err, dberrors.ErrQuery) {
		t.Fatalf("expected query error for negative offset, got %v", err)
	}
}

func TestAggregate(t *testing.T) {
	cat := schema.NewCatalog()
	users := usersTable(t)
	cat.Register(users)
	posts, err := cat.Define("posts", []schema.ColumnDef{
		{Name: "id", Descriptor: "int"},
		{Name: "user_id", Descriptor: "int->users.id"},
		{Name: "views", Descriptor: "int"},
	})
	if err != nil {
		t.Fatalf("failed to define posts: %v", err)
	}

	order := ParseOrder("-post_count")
	stmt, err := sqliteBuilder().Aggregate(posts, Query{Order: &order, Limit: NoLimit}, map[string]Agg{
		"post_count": {Func: AggCount},
		"avg_views":  {Func: AggAvg, Column: "views"},
		"views":      {Func: AggSum},
	}, []string{"user_id"})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	want := `SELECT "user_id", AVG("views") AS "avg_views", COUNT(*) AS "post_count", SUM("views") AS "views" FROM "posts" GROUP BY "user_id" ORDER BY "post_count" DESC`
	if stmt.Text != want {
		t.Fatalf("expected %q, got %q", want, stmt.Text)
	}
	wantCols := []ResultColumn{
		{Name: "user_id", Type: dialect.Int},
		{Name: "avg_views", Type: dialect.Float},
		{Name: "post_count", Type: dialect.Int},
		{Name: "views", Type: dialect.Int},
	}
	if !reflect.DeepEqual(stmt.Columns, wantCols) {
		t.Fatalf("expected columns %+v, got %+v", wantCols, stmt.Columns)
	}
}

func TestAggregate_Rejections(t *testing.T) {
	users := usersTable(t)
	byAge := ParseOrder("score")

	tests := []struct {
		name    string
		specs   map[string]Agg
		groupBy []string
		order   *Order
	}{
		{"no outputs", nil, nil, nil},
		{"unknown function", map[string]Agg{"n": {Func: "median", Column: "age"}}, nil, nil},
		{"uppercase function", map[string]Agg{"n": {Func: "COUNT"}}, nil, nil},
		{"mixed case function", map[string]Agg{"total": {Func: "Sum", Column: "age"}}, nil, nil},
		{"unknown source", map[string]Agg{"n": {Func: AggSum, Column: "height"}}, nil, nil},
		{"implicit source missing", map[string]Agg{"total": {Func: AggSum}}, nil, nil},
		{"unknown group by", map[string]Agg{"n": {Func: AggCount}}, []string{"city"}, nil},
		{"collision", map[string]Agg{"age": {Func: AggCount}}, []string{"age"}, nil},
		{"order outside group", map[string]Agg{"n": {Func: AggCount}}, []string{"age"}, &byAge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sqliteBuilder().Aggregate(users, Query{Order: tt.order, Limit: NoLimit}, tt.specs, tt.groupBy)
			if !errors.Is(err, dberrors.ErrQuery) {
				t.Fatalf("expected query error, got %v", err)
			}
		})
	}
}
