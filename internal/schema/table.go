// Package schema holds table definitions: the descriptor grammar, the
// in-memory catalog with foreign-key validation, DDL rendering and
// declarative schema files.
package schema

import (
	"slices"

	"github.com/Akash-nath29/akron/internal/dialect"
)

// PrimaryKeyName is the column name that becomes the auto-increment key when
// declared as a plain int.
const PrimaryKeyName = "id"

// Reference is the target of a foreign key.
type Reference struct {
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
}

// Column is a column definition within a table.
type Column struct {
	Name       string             `json:"name" yaml:"name"`
	Type       dialect.ScalarType `json:"type" yaml:"type"`
	Nullable   bool               `json:"nullable" yaml:"nullable"`
	Unique     bool               `json:"unique,omitempty" yaml:"unique,omitempty"`
	PrimaryKey bool               `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	References *Reference         `json:"references,omitempty" yaml:"references,omitempty"`
}

// Descriptor returns the type descriptor the column was created from.
func (c Column) Descriptor() string {
	return Descriptor{Type: c.Type, Reference: c.References}.String()
}

func (c Column) equal(o Column) bool {
	if c.Name != o.Name || c.Type != o.Type || c.Nullable != o.Nullable ||
		c.Unique != o.Unique || c.PrimaryKey != o.PrimaryKey {
		return false
	}
	if (c.References == nil) != (o.References == nil) {
		return false
	}
	return c.References == nil || *c.References == *o.References
}

// Index is a secondary index on a table.
type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Table   string   `json:"table" yaml:"table"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
}

func (i Index) same(o Index) bool {
	return i.Table == o.Table && i.Unique == o.Unique && slices.Equal(i.Columns, o.Columns)
}

// Table is an immutable table definition. Callers receive copies from the
// Catalog; changes produce a new Table.
type Table struct {
	Name       string   `json:"name" yaml:"name"`
	Columns    []Column `json:"columns" yaml:"columns"`
	PrimaryKey string   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Indexes    []Index  `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// isKey reports whether rows can be identified by column alone: it is the
// primary key, declared unique, or covered by a single-column unique index.
func (t *Table) isKey(column string) bool {
	if c, ok := t.Column(column); ok && (c.PrimaryKey || c.Unique) {
		return true
	}
	for _, idx := range t.Indexes {
		if idx.Unique && len(idx.Columns) == 1 && idx.Columns[0] == column {
			return true
		}
	}
	return false
}

// HasColumn reports whether the table defines name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// ColumnNames returns column names in definition order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Name:       t.Name,
		PrimaryKey: t.PrimaryKey,
		Columns:    make([]Column, len(t.Columns)),
		Indexes:    make([]Index, len(t.Indexes)),
	}
	for i, c := range t.Columns {
		if c.References != nil {
			ref := *c.References
			c.References = &ref
		}
		out.Columns[i] = c
	}
	for i, idx := range t.Indexes {
		idx.Columns = slices.Clone(idx.Columns)
		out.Indexes[i] = idx
	}
	return out
}

// withIndex returns a new version of the table carrying idx.
func (t *Table) withIndex(idx Index) *Table {
	out := t.Clone()
	out.Indexes = append(out.Indexes, idx)
	return out
}

// SameColumns reports whether both tables define identical columns in the same order.
func (t *Table) SameColumns(o *Table) bool {
	return slices.EqualFunc(t.Columns, o.Columns, Column.equal)
}

// ColumnDef is the input form of a column: a name and a type descriptor plus
// optional constraints that the descriptor grammar cannot express.
type ColumnDef struct {
	Name       string
	Descriptor string
	NotNull    bool
	Unique     bool
	PrimaryKey bool
}
