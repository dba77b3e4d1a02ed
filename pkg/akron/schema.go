package akron

import (
	"context"
	"errors"
	"fmt"

	"github.com/Akash-nath29/akron/internal/database"
	"github.com/Akash-nath29/akron/internal/schema"
)

// CreateTable creates a table from ordered column definitions and records it
// in the catalog. A plain int column named "id" becomes the auto-increment
// primary key; other columns are nullable unless NotNull is set.
func (s *Session) CreateTable(ctx context.Context, name string, columns []ColumnDef) (*TableSchema, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	s.db.ddlMu.Lock()
	defer s.db.ddlMu.Unlock()

	t, err := s.db.catalog.Define(name, columns)
	if err != nil {
		return nil, err
	}

	change := database.SchemaChange{
		Statements: []string{schema.CreateTableSQL(s.db.engine.Dialect(), t)},
		Save:       []*schema.Table{t},
	}
	if err := s.sess.ApplySchema(ctx, change); err != nil {
		return nil, err
	}
	s.db.catalog.Register(t)

	s.db.log.Debug().Str("table", name).Int("columns", len(t.Columns)).Msg("Table created")
	return t.Clone(), nil
}

// CreateIndex creates an index on table. Requesting an index identical to
// an existing one is a no-op.
func (s *Session) CreateIndex(ctx context.Context, table string, columns []string, unique bool) (Index, error) {
	if err := s.db.checkOpen(); err != nil {
		return Index{}, err
	}
	s.db.ddlMu.Lock()
	defer s.db.ddlMu.Unlock()

	next, idx, exists, err := s.db.catalog.PlanIndex(table, columns, unique)
	if err != nil || exists {
		return idx, err
	}

	change := database.SchemaChange{
		Statements: []string{schema.CreateIndexSQL(s.db.engine.Dialect(), idx)},
		Save:       []*schema.Table{next},
	}
	if err := s.sess.ApplySchema(ctx, change); err != nil {
		return Index{}, err
	}
	s.db.catalog.Register(next)

	s.db.log.Debug().Str("table", table).Str("index", idx.Name).Bool("unique", unique).Msg("Index created")
	return idx, nil
}

// DropTable drops name. A table referenced by another table's foreign key is
// only dropped with cascade, which drops the dependents first. It returns the
// dropped tables in drop order.
func (s *Session) DropTable(ctx context.Context, name string, cascade bool) ([]string, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	s.db.ddlMu.Lock()
	defer s.db.ddlMu.Unlock()

	order, err := s.db.catalog.DropOrder(name, cascade)
	if err != nil {
		return nil, err
	}

	change := database.SchemaChange{Remove: order}
	for _, t := range order {
		change.Statements = append(change.Statements, schema.DropTableSQL(s.db.engine.Dialect(), t))
	}
	if err := s.sess.ApplySchema(ctx, change); err != nil {
		return nil, err
	}
	for _, t := range order {
		s.db.catalog.Remove(t)
	}

	s.db.log.Info().Strs("tables", order).Msg("Tables dropped")
	return order, nil
}

// SchemaStep is one change planned from a schema file.
type SchemaStep struct {
	Action string // "create_table", "create_index", "unchanged" or "drifted"
	Table  string
	Index  string
	SQL    string
}

// ApplySchemaFile reads a YAML or JSON schema file and applies it; see ApplySchema.
func (s *Session) ApplySchemaFile(ctx context.Context, path string, dryRun bool) ([]SchemaStep, error) {
	f, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return s.ApplySchema(ctx, f, dryRun)
}

// ApplySchema creates the missing tables and indexes of f in one atomic
// change and records it in the schema history. Tables that already exist
// must match their declaration exactly. With dryRun the plan is returned
// without touching the engine.
func (s *Session) ApplySchema(ctx context.Context, f *schema.File, dryRun bool) ([]SchemaStep, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	s.db.ddlMu.Lock()
	defer s.db.ddlMu.Unlock()

	plan, err := s.db.planSchema(f, true)
	if err != nil {
		return nil, err
	}
	if dryRun || len(plan.change.Statements) == 0 {
		return plan.steps, nil
	}

	plan.change.History = &SchemaRecord{
		Source:     f.Source,
		Checksum:   f.Checksum,
		Statements: plan.change.Statements,
	}
	if err := s.sess.ApplySchema(ctx, plan.change); err != nil {
		return nil, err
	}
	for _, t := range plan.change.Save {
		s.db.catalog.Register(t)
	}

	s.db.log.Info().
		Int("statements", len(plan.change.Statements)).
		Int64("history_id", plan.change.History.ID).
		Msg("Schema applied")
	return plan.steps, nil
}

// SchemaStatus reports how a schema file compares with the database.
type SchemaStatus struct {
	// Pending holds the create steps an ApplySchema would run.
	Pending []SchemaStep
	// Drifted lists declared tables whose columns differ from the database.
	Drifted []string
	// Untracked lists catalog tables the file does not declare.
	Untracked []string
	// Applied counts the recorded schema applications.
	Applied int
	// Last is the most recent application, nil when there is none.
	Last *SchemaRecord
	// Checksum is the digest of the compared file.
	Checksum string
}

// InSync reports whether the file declares exactly what the database holds.
func (st *SchemaStatus) InSync() bool {
	return len(st.Pending) == 0 && len(st.Drifted) == 0 && len(st.Untracked) == 0
}

// SchemaStatus compares f with the catalog without changing anything.
// Drifted tables are reported instead of failing.
func (s *Session) SchemaStatus(ctx context.Context, f *schema.File) (*SchemaStatus, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	s.db.ddlMu.Lock()
	defer s.db.ddlMu.Unlock()

	plan, err := s.db.planSchema(f, false)
	if err != nil {
		return nil, err
	}
	history, err := s.db.engine.SchemaHistory(ctx)
	if err != nil {
		return nil, err
	}

	st := &SchemaStatus{
		Drifted:  plan.drifted,
		Applied:  len(history),
		Checksum: f.Checksum,
	}
	for _, step := range plan.steps {
		if step.SQL != "" {
			st.Pending = append(st.Pending, step)
		}
	}
	declared := make(map[string]bool, len(f.Tables))
	for _, t := range f.Tables {
		declared[t.Name] = true
	}
	for _, name := range s.db.catalog.Names() {
		if !declared[name] {
			st.Untracked = append(st.Untracked, name)
		}
	}
	if n := len(history); n > 0 {
		st.Last = &history[n-1]
	}
	return st, nil
}

// SchemaHistory returns every recorded schema application, oldest first.
func (s *Session) SchemaHistory(ctx context.Context) ([]SchemaRecord, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	return s.db.engine.SchemaHistory(ctx)
}

type schemaPlan struct {
	steps   []SchemaStep
	change  database.SchemaChange
	drifted []string
}

// planSchema plans f against a copy of the catalog. When strict is false a
// table that differs from its declaration is recorded as drifted and its
// indexes are skipped.
func (db *DB) planSchema(f *schema.File, strict bool) (*schemaPlan, error) {
	defs, err := f.Definitions()
	if err != nil {
		return nil, err
	}

	d := db.engine.Dialect()
	scratch := db.catalog.Clone()
	touched := map[string]bool{}
	plan := &schemaPlan{}

	for _, def := range defs {
		if scratch.Exists(def.Name) {
			if err := scratch.Compare(def.Name, def.Columns); err != nil {
				if strict || !errors.Is(err, ErrSchema) {
					return nil, err
				}
				plan.drifted = append(plan.drifted, def.Name)
				plan.steps = append(plan.steps, SchemaStep{Action: "drifted", Table: def.Name})
				continue
			}
			plan.steps = append(plan.steps, SchemaStep{Action: "unchanged", Table: def.Name})
		} else {
			t, err := scratch.Define(def.Name, def.Columns)
			if err != nil {
				return nil, err
			}
			scratch.Register(t)
			touched[def.Name] = true
			sql := schema.CreateTableSQL(d, t)
			plan.change.Statements = append(plan.change.Statements, sql)
			plan.steps = append(plan.steps, SchemaStep{Action: "create_table", Table: def.Name, SQL: sql})
		}

		for _, fi := range def.Indexes {
			next, idx, exists, err := scratch.PlanIndex(def.Name, fi.Columns, fi.Unique)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}
			scratch.Register(next)
			touched[def.Name] = true
			sql := schema.CreateIndexSQL(d, idx)
			plan.change.Statements = append(plan.change.Statements, sql)
			plan.steps = append(plan.steps, SchemaStep{Action: "create_index", Table: def.Name, Index: idx.Name, SQL: sql})
		}
	}

	for _, def := range defs {
		if !touched[def.Name] {
			continue
		}
		t, err := scratch.Get(def.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve planned table %s: %w", def.Name, err)
		}
		plan.change.Save = append(plan.change.Save, t)
	}
	return plan, nil
}

// LoadSchemaFile reads and parses a YAML or JSON schema file.
func LoadSchemaFile(path string) (*SchemaFile, error) {
	return schema.LoadFile(path)
}
