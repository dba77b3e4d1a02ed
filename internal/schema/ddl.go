package schema

import (
	"strings"

	"github.com/Akash-nath29/akron/internal/dialect"
)

// CreateTableSQL renders the CREATE TABLE statement for t.
func CreateTableSQL(d dialect.Dialect, t *Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(d.Quote(t.Name))
	b.WriteString(" (\n")

	lines := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		if col.PrimaryKey {
			lines = append(lines, "\t"+d.PrimaryKey(col.Name))
			continue
		}
		line := "\t" + d.Quote(col.Name) + " " + d.ColumnType(col.Type)
		if !col.Nullable {
			line += " NOT NULL"
		}
		if col.Unique {
			line += " UNIQUE"
		}
		lines = append(lines, line)
	}
	for _, col := range t.Columns {
		if col.References == nil {
			continue
		}
		lines = append(lines, "\tFOREIGN KEY ("+d.Quote(col.Name)+") REFERENCES "+
			d.Quote(col.References.Table)+" ("+d.Quote(col.References.Column)+")")
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")
	b.WriteString(d.TableSuffix())
	return b.String()
}

// CreateIndexSQL renders the CREATE INDEX statement for idx.
func CreateIndexSQL(d dialect.Dialect, idx Index) string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if idx.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	b.WriteString(d.Quote(idx.Name))
	b.WriteString(" ON ")
	b.WriteString(d.Quote(idx.Table))
	b.WriteString(" (")
	quoted := make([]string, len(idx.Columns))
	for i, col := range idx.Columns {
		quoted[i] = d.Quote(col)
	}
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(")")
	return b.String()
}

// DropTableSQL renders the DROP TABLE statement for name.
func DropTableSQL(d dialect.Dialect, name string) string {
	return "DROP TABLE " + d.Quote(name)
}
