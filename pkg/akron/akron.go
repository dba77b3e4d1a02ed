// Package akron is a relational abstraction layer over SQLite and MySQL.
//
// It offers declarative tables with typed columns and foreign keys, an
// immutable query builder with operator-suffixed filters ("age__lt"), scoped
// transactions that always end in exactly one commit or rollback, atomic
// bulk inserts and grouped aggregation. Every value reaches the engine as a
// bind argument; identifiers are validated against the catalog first.
//
//	db, err := akron.Open(ctx, "sqlite:///app.db")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	_, err = db.CreateTable(ctx, "users", []akron.ColumnDef{
//		{Name: "id", Descriptor: "int"},
//		{Name: "name", Descriptor: "str"},
//		{Name: "age", Descriptor: "int"},
//	})
//	id, err := db.Insert(ctx, "users", map[string]any{"name": "Alice", "age": 30})
//	rows, err := db.Query("users").Filter(map[string]any{"age__gte": 18}).OrderBy("-age").All(ctx)
package akron

import (
	"github.com/Akash-nath29/akron/internal/database"
	"github.com/Akash-nath29/akron/internal/schema"
	"github.com/Akash-nath29/akron/internal/statement"
)

type (
	// Row is one result row keyed by column name. Values are int64, float64,
	// string, bool or nil.
	Row = database.Row
	// ColumnDef declares a column: a name and a descriptor such as "int" or
	// "int->users.id".
	ColumnDef = schema.ColumnDef
	// TableSchema is a table definition as recorded in the catalog.
	TableSchema = schema.Table
	// Column is one column of a TableSchema.
	Column = schema.Column
	// Index is a secondary index of a TableSchema.
	Index = schema.Index
	// Predicate is a filter: a key "field" or "field__op" and its operand.
	Predicate = statement.Predicate
	// Agg is one aggregate output.
	Agg = statement.Agg
	// AggFunc names an aggregate function.
	AggFunc = statement.AggFunc
	// TxState is the lifecycle state of a transaction.
	TxState = database.TxState
	// Event describes one finished engine call, as seen by a Hook.
	Event = database.Event
	// Hook observes engine calls.
	Hook = database.Hook
	// SchemaRecord is one applied schema file from the schema history.
	SchemaRecord = database.SchemaRecord
	// SchemaFile is a parsed declarative schema document.
	SchemaFile = schema.File
)

// Aggregate functions
const (
	AggCount = statement.AggCount
	AggSum   = statement.AggSum
	AggAvg   = statement.AggAvg
	AggMin   = statement.AggMin
	AggMax   = statement.AggMax
)

// Transaction states
const (
	TxActive     = database.TxActive
	TxCommitted  = database.TxCommitted
	TxRolledBack = database.TxRolledBack
)

// Event kinds
const (
	EventQuery    = database.EventQuery
	EventExec     = database.EventExec
	EventBatch    = database.EventBatch
	EventSchema   = database.EventSchema
	EventBegin    = database.EventBegin
	EventCommit   = database.EventCommit
	EventRollback = database.EventRollback
)

// Version is reported by the CLI.
var Version = "dev"

// DriverType reports the compiled-in SQLite driver: "purego" or "cgo".
func DriverType() string {
	return database.DriverType()
}
