package schema

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/Akash-nath29/akron/internal/dialect"
	dberrors "github.com/Akash-nath29/akron/internal/errors"
)

// Catalog is the in-memory registry of table definitions.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

// Get returns a copy of the named table.
func (c *Catalog) Get(name string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	if !ok {
		return nil, dberrors.Schemaf(name, "table does not exist")
	}
	return t.Clone(), nil
}

// Exists reports whether a table is registered.
func (c *Catalog) Exists(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tables[name]
	return ok
}

// Names returns registered table names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register stores t, replacing any previous version of the same table.
func (c *Catalog) Register(t *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[t.Name] = t.Clone()
}

// Remove drops a table from the registry.
func (c *Catalog) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tables, name)
}

// Define validates column definitions against the registered tables and
// returns the resulting Table without registering it.
func (c *Catalog) Define(name string, defs []ColumnDef) (*Table, error) {
	if !ValidIdentifier(name) {
		return nil, dberrors.Schemaf(name, "invalid table name")
	}
	if len(defs) == 0 {
		return nil, dberrors.Schemaf(name, "table must define at least one column")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, exists := c.tables[name]; exists {
		return nil, dberrors.Schemaf(name, "table already exists")
	}
	if owner, taken := c.nameTakenLocked(name); taken {
		return nil, dberrors.Schemaf(name, "name is already used by %s", owner)
	}
	return c.buildLocked(name, defs)
}

// Compare checks defs against the registered table of the same name. It
// returns a SchemaError when the definitions differ.
func (c *Catalog) Compare(name string, defs []ColumnDef) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	existing, ok := c.tables[name]
	if !ok {
		return dberrors.Schemaf(name, "table does not exist")
	}
	built, err := c.buildLocked(name, defs)
	if err != nil {
		return err
	}
	if !existing.SameColumns(built) {
		return dberrors.Schemaf(name, "definition differs from the existing table")
	}
	return nil
}

// Clone returns an independent copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := NewCatalog()
	for name, t := range c.tables {
		out.tables[name] = t.Clone()
	}
	return out
}

func (c *Catalog) buildLocked(name string, defs []ColumnDef) (*Table, error) {
	table := &Table{Name: name, Columns: make([]Column, 0, len(defs))}
	seen := make(map[string]bool, len(defs))
	explicitKey := slices.ContainsFunc(defs, func(d ColumnDef) bool { return d.PrimaryKey })

	for _, def := range defs {
		if !ValidIdentifier(def.Name) {
			return nil, &dberrors.SchemaError{Table: name, Column: def.Name, Message: "invalid column name"}
		}
		if seen[def.Name] {
			return nil, &dberrors.SchemaError{Table: name, Column: def.Name, Message: "duplicate column"}
		}
		seen[def.Name] = true

		desc, err := ParseDescriptor(def.Descriptor)
		if err != nil {
			return nil, &dberrors.SchemaError{Table: name, Column: def.Name, Message: err.Error()}
		}

		col := Column{
			Name:       def.Name,
			Type:       desc.Type,
			Nullable:   !def.NotNull,
			Unique:     def.Unique,
			References: desc.Reference,
		}

		if desc.Reference != nil {
			if err := c.checkReferenceLocked(name, col); err != nil {
				return nil, err
			}
		}

		autoKey := !explicitKey && def.Name == PrimaryKeyName && desc.Type == dialect.Int && desc.Reference == nil
		if def.PrimaryKey || autoKey {
			if desc.Type != dialect.Int || desc.Reference != nil {
				return nil, &dberrors.SchemaError{Table: name, Column: def.Name, Message: "primary key must be a plain int column"}
			}
			if table.PrimaryKey != "" {
				return nil, &dberrors.SchemaError{Table: name, Column: def.Name, Message: "table already has primary key " + table.PrimaryKey}
			}
			col.PrimaryKey = true
			col.Nullable = false
			table.PrimaryKey = def.Name
		}

		table.Columns = append(table.Columns, col)
	}

	return table, nil
}

func (c *Catalog) checkReferenceLocked(table string, col Column) error {
	ref := col.References
	target, ok := c.tables[ref.Table]
	if !ok {
		return &dberrors.SchemaError{Table: table, Column: col.Name, Message: fmt.Sprintf("referenced table %q does not exist", ref.Table)}
	}
	targetCol, ok := target.Column(ref.Column)
	if !ok {
		return &dberrors.SchemaError{Table: table, Column: col.Name, Message: fmt.Sprintf("referenced column %q does not exist", ref.String())}
	}
	if targetCol.Type != col.Type {
		return &dberrors.SchemaError{Table: table, Column: col.Name, Message: fmt.Sprintf("type %s does not match referenced column %s (%s)", col.Type, ref.String(), targetCol.Type)}
	}
	if !target.isKey(ref.Column) {
		return &dberrors.SchemaError{Table: table, Column: col.Name, Message: fmt.Sprintf("referenced column %s is not a primary key or unique column", ref.String())}
	}
	return nil
}

func (r Reference) String() string {
	return r.Table + "." + r.Column
}

// PlanIndex validates an index request. It returns the new table version and
// the index, or exists=true when an identical index is already defined.
func (c *Catalog) PlanIndex(table string, columns []string, unique bool) (next *Table, idx Index, exists bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[table]
	if !ok {
		return nil, Index{}, false, dberrors.Schemaf(table, "table does not exist")
	}
	if len(columns) == 0 {
		return nil, Index{}, false, dberrors.Schemaf(table, "index requires at least one column")
	}
	for _, col := range columns {
		if !t.HasColumn(col) {
			return nil, Index{}, false, &dberrors.SchemaError{Table: table, Column: col, Message: "column does not exist"}
		}
	}

	idx = Index{
		Name:    IndexName(table, columns, unique),
		Table:   table,
		Columns: append([]string(nil), columns...),
		Unique:  unique,
	}
	for _, existing := range t.Indexes {
		if existing.same(idx) {
			return nil, existing, true, nil
		}
	}
	if owner, taken := c.nameTakenLocked(idx.Name); taken {
		return nil, Index{}, false, dberrors.Schemaf(table, "index name %s is already used by %s", idx.Name, owner)
	}
	return t.withIndex(idx), idx, false, nil
}

// nameTakenLocked reports whether name is used by a table or an index.
// Tables and indexes share one namespace in SQLite.
func (c *Catalog) nameTakenLocked(name string) (owner string, taken bool) {
	names := make([]string, 0, len(c.tables))
	for tname := range c.tables {
		names = append(names, tname)
	}
	sort.Strings(names)

	for _, tname := range names {
		if tname == name {
			return "table " + tname, true
		}
		for _, idx := range c.tables[tname].Indexes {
			if idx.Name == name {
				return "index on " + tname + " (" + strings.Join(idx.Columns, ", ") + ")", true
			}
		}
	}
	return "", false
}

// IndexName derives the engine name of an index.
func IndexName(table string, columns []string, unique bool) string {
	prefix := "idx"
	if unique {
		prefix = "uq"
	}
	return prefix + "_" + table + "_" + strings.Join(columns, "_")
}

// Dependents returns the tables holding a foreign key into name, sorted.
func (c *Catalog) Dependents(name string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dependentsLocked(name)
}

func (c *Catalog) dependentsLocked(name string) []string {
	var out []string
	for tname, t := range c.tables {
		if tname == name {
			continue
		}
		for _, col := range t.Columns {
			if col.References != nil && col.References.Table == name {
				out = append(out, tname)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// DropOrder returns the tables to drop, dependents first. Without cascade it
// fails when any other table references name.
func (c *Catalog) DropOrder(name string, cascade bool) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.tables[name]; !ok {
		return nil, dberrors.Schemaf(name, "table does not exist")
	}

	deps := c.dependentsLocked(name)
	if len(deps) > 0 && !cascade {
		return nil, dberrors.Schemaf(name, "table is referenced by %s; use cascade to drop dependents", strings.Join(deps, ", "))
	}

	var order []string
	visited := make(map[string]bool)
	var visit func(string)
	visit = func(t string) {
		if visited[t] {
			return
		}
		visited[t] = true
		for _, dep := range c.dependentsLocked(t) {
			visit(dep)
		}
		order = append(order, t)
	}
	visit(name)
	return order, nil
}
