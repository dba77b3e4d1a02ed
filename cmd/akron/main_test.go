package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/Akash-nath29/akron/pkg/akron"
)

func runCLI(t *testing.T, dbPath string, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", "sqlite:///" + dbPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_CreateSeedQuery(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	out, err := runCLI(t, dbPath, "", "create-table", "users", "id=int", "name=str", "age=int", "--not-null", "name")
	if err != nil {
		t.Fatalf("create-table failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Created table 'users' with 3 columns") {
		t.Fatalf("unexpected create-table output %q", out)
	}

	out, err = runCLI(t, dbPath, "", "seed", "users", "--data", `[{"name": "Alice", "age": 30}, {"name": "Bob", "age": 25}]`)
	if err != nil {
		t.Fatalf("seed failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Seeded 2 records into 'users'") {
		t.Fatalf("unexpected seed output %q", out)
	}

	out, err = runCLI(t, dbPath, "", "raw-sql", "--query", `SELECT name, age FROM users ORDER BY age`, "--format", "json")
	if err != nil {
		t.Fatalf("raw-sql failed: %v\n%s", err, out)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("failed to decode raw-sql output %q: %v", out, err)
	}
	if len(rows) != 2 || rows[0]["name"] != "Bob" {
		t.Fatalf("expected Bob first, got %v", rows)
	}

	out, err = runCLI(t, dbPath, "", "raw-sql", "--query", `SELECT name FROM users WHERE age > 26`)
	if err != nil {
		t.Fatalf("raw-sql failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Alice") || !strings.Contains(out, "(1 rows)") {
		t.Fatalf("unexpected table output %q", out)
	}
}

func TestCLI_SeedIsAtomic(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	if _, err := runCLI(t, dbPath, "", "create-table", "users", "id=int", "name=str", "--not-null", "name"); err != nil {
		t.Fatalf("create-table failed: %v", err)
	}

	seedFile := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(seedFile, []byte(`[{"name": "Alice"}, {"age": 3}]`), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	if _, err := runCLI(t, dbPath, "", "seed", "users", "--file", seedFile); err == nil {
		t.Fatal("expected seed with an invalid row to fail")
	}

	out, err := runCLI(t, dbPath, "", "raw-sql", "--query", `SELECT COUNT(*) AS n FROM users`, "--format", "json")
	if err != nil {
		t.Fatalf("raw-sql failed: %v", err)
	}
	if !strings.Contains(out, `"n": 0`) {
		t.Fatalf("expected no rows kept, got %q", out)
	}
}

func TestCLI_InspectAndDrop(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	if _, err := runCLI(t, dbPath, "", "create-table", "users", "id=int", "email=str", "--unique", "email"); err != nil {
		t.Fatalf("create-table failed: %v", err)
	}
	if _, err := runCLI(t, dbPath, "", "create-table", "posts", "id=int", "user_id=int->users.id"); err != nil {
		t.Fatalf("create-table failed: %v", err)
	}

	out, err := runCLI(t, dbPath, "", "inspect-schema")
	if err != nil {
		t.Fatalf("inspect-schema failed: %v", err)
	}
	if !strings.Contains(out, "Table: posts") || !strings.Contains(out, "users.id") || !strings.Contains(out, "UNI") {
		t.Fatalf("unexpected inspect-schema output %q", out)
	}

	out, err = runCLI(t, dbPath, "", "inspect-schema", "--table", "users", "--format", "yaml")
	if err != nil {
		t.Fatalf("inspect-schema failed: %v", err)
	}
	if !strings.Contains(out, "name: users") || strings.Contains(out, "name: posts") {
		t.Fatalf("unexpected yaml output %q", out)
	}

	out, err = runCLI(t, dbPath, "n\n", "drop-table", "users")
	if err != nil || !strings.Contains(out, "Aborted") {
		t.Fatalf("expected drop to be aborted, got %q (%v)", out, err)
	}

	if _, err := runCLI(t, dbPath, "", "drop-table", "users", "--force"); err == nil {
		t.Fatal("expected drop of a referenced table to fail without --cascade")
	}

	out, err = runCLI(t, dbPath, "yes\n", "drop-table", "users", "--cascade")
	if err != nil {
		t.Fatalf("drop-table failed: %v", err)
	}
	if !strings.Contains(out, "Dropped table 'posts'") || !strings.Contains(out, "Dropped table 'users'") {
		t.Fatalf("unexpected drop-table output %q", out)
	}

	out, err = runCLI(t, dbPath, "", "inspect-schema")
	if err != nil || !strings.Contains(out, "No tables defined") {
		t.Fatalf("expected empty schema, got %q (%v)", out, err)
	}
}

func TestCLI_Migrate(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cli.db")
	schemaPath := filepath.Join(dir, "akron.yaml")
	doc := `
tables:
  users:
    columns:
      id: int
      name: str
    indexes:
      - columns: [name]
        unique: true
`
	if err := os.WriteFile(schemaPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}

	out, err := runCLI(t, dbPath, "", "migrate", "--schema", schemaPath, "--dry-run")
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !strings.Contains(out, "Dry run: 2 changes not applied") || !strings.Contains(out, "CREATE TABLE") {
		t.Fatalf("unexpected dry run output %q", out)
	}

	out, err = runCLI(t, dbPath, "", "migrate", "--schema", schemaPath)
	if err != nil || !strings.Contains(out, "Applied 2 changes") {
		t.Fatalf("unexpected migrate output %q (%v)", out, err)
	}

	out, err = runCLI(t, dbPath, "", "migrate", "--schema", schemaPath)
	if err != nil || !strings.Contains(out, "Schema is up to date") {
		t.Fatalf("expected no changes, got %q (%v)", out, err)
	}
}

func TestCLI_InitStatus(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cli.db")
	schemaPath := filepath.Join(dir, "akron.json")

	out, err := runCLI(t, dbPath, "", "init", "--file", schemaPath)
	if err != nil || !strings.Contains(out, "Created "+schemaPath+" for sqlite") {
		t.Fatalf("unexpected init output %q (%v)", out, err)
	}
	if _, err := runCLI(t, dbPath, "", "init", "--file", schemaPath); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
	if _, err := runCLI(t, dbPath, "", "init", "--file", schemaPath, "--force", "--provider", "mysql", "--url", "sqlite:///x.db"); err == nil {
		t.Fatal("expected a sqlite url to be rejected for mysql")
	}

	out, err = runCLI(t, dbPath, "", "status", "--schema", schemaPath)
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	for _, want := range []string{"+ table users", "+ table posts", "+ index idx_posts_author_id on posts", "Applied migrations: 0", "out of sync: 3 pending"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in status output %q", want, out)
		}
	}
	if _, err := runCLI(t, dbPath, "", "status", "--schema", schemaPath, "--check"); err == nil {
		t.Fatal("expected --check to fail while out of sync")
	}

	out, err = runCLI(t, dbPath, "", "migrate", "--schema", schemaPath)
	if err != nil || !strings.Contains(out, "Applied 3 changes") {
		t.Fatalf("unexpected migrate output %q (%v)", out, err)
	}

	out, err = runCLI(t, dbPath, "", "create-table", "audit", "id=int")
	if err != nil {
		t.Fatalf("create-table failed: %v\n%s", err, out)
	}
	out, err = runCLI(t, dbPath, "", "status", "--schema", schemaPath)
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Applied migrations: 1", "Last applied:", "? audit (not in schema file)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in status output %q", want, out)
		}
	}
	if strings.Contains(out, "+ table") {
		t.Fatalf("expected nothing pending after migrate, got %q", out)
	}

	if _, err := runCLI(t, dbPath, "", "drop-table", "audit", "--force"); err != nil {
		t.Fatalf("drop-table failed: %v", err)
	}
	out, err = runCLI(t, dbPath, "", "status", "--schema", schemaPath, "--check")
	if err != nil || !strings.Contains(out, "Database is in sync") {
		t.Fatalf("expected in sync status, got %q (%v)", out, err)
	}
}

func TestScaffoldSchema(t *testing.T) {
	data, err := scaffoldSchema("mysql", `mysql://app:s3cret@db:3306/shop`)
	if err != nil {
		t.Fatalf("scaffoldSchema returned error: %v", err)
	}
	f, err := akron.LoadSchemaFile(writeTemp(t, data))
	if err != nil {
		t.Fatalf("failed to parse scaffold: %v", err)
	}
	if f.Database.Provider != "mysql" || f.Database.URL != `mysql://app:s3cret@db:3306/shop` {
		t.Fatalf("unexpected database section %+v", f.Database)
	}
	if len(f.Tables) != 2 || f.Tables[0].Name != "users" || f.Tables[1].Name != "posts" {
		t.Fatalf("expected users then posts, got %+v", f.Tables)
	}

	if _, err := scaffoldSchema("postgres", "postgres://db/app"); err == nil {
		t.Fatal("expected unknown provider to be rejected")
	}
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "akron.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestParseColumnArgs(t *testing.T) {
	cols, err := parseColumnArgs([]string{"id=int", "owner=int -> users.id"}, []string{"owner"}, nil)
	if err != nil {
		t.Fatalf("parseColumnArgs returned error: %v", err)
	}
	if len(cols) != 2 || cols[1].Descriptor != "int -> users.id" || !cols[1].NotNull {
		t.Fatalf("unexpected columns %+v", cols)
	}

	for _, args := range [][]string{{"id"}, {"=int"}, {"id="}} {
		if _, err := parseColumnArgs(args, nil, nil); err == nil {
			t.Fatalf("expected %v to be rejected", args)
		}
	}
	if _, err := parseColumnArgs([]string{"id=int"}, nil, []string{"email"}); err == nil {
		t.Fatal("expected constraint on unknown column to be rejected")
	}
}

func TestDecodeRows(t *testing.T) {
	rows, err := decodeRows(`{"age": 30, "score": 9.5, "name": "Alice", "active": true}`)
	if err != nil {
		t.Fatalf("decodeRows returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row["age"] != int64(30) || row["score"] != 9.5 || row["name"] != "Alice" || row["active"] != true {
		t.Fatalf("unexpected row %v", row)
	}

	for _, bad := range []string{`42`, `[1, 2]`, `{"a":`} {
		if _, err := decodeRows(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
