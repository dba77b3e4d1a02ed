package dialect

import "strings"

// SQLite renders SQL for SQLite engines (modernc.org/sqlite or mattn/go-sqlite3).
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (SQLite) Placeholder(int) string { return "?" }

func (SQLite) ColumnType(t ScalarType) string {
	switch t {
	case Int:
		return "INTEGER"
	case Float:
		return "REAL"
	case Bool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func (d SQLite) PrimaryKey(column string) string {
	return d.Quote(column) + " INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (SQLite) TableSuffix() string { return "" }

func (SQLite) Unlimited() string { return "-1" }

func (SQLite) DefaultValues() string { return " DEFAULT VALUES" }
