package dialect

import "strings"

// MySQL renders SQL for MySQL through github.com/go-sql-driver/mysql.
type MySQL struct{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (MySQL) Placeholder(int) string { return "?" }

func (MySQL) ColumnType(t ScalarType) string {
	switch t {
	case Int:
		return "BIGINT"
	case Float:
		return "DOUBLE"
	case Bool:
		return "BOOLEAN"
	default:
		return "VARCHAR(255)"
	}
}

func (d MySQL) PrimaryKey(column string) string {
	return d.Quote(column) + " BIGINT AUTO_INCREMENT PRIMARY KEY"
}

// InnoDB is required for foreign keys and transactions.
func (MySQL) TableSuffix() string { return " ENGINE=InnoDB" }

func (MySQL) Unlimited() string { return "18446744073709551615" }

func (MySQL) DefaultValues() string { return " () VALUES ()" }
