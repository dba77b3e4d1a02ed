package database

import (
	"context"
	"time"
)

// Event kinds reported to a Hook.
const (
	EventQuery    = "query"
	EventExec     = "exec"
	EventBatch    = "batch"
	EventSchema   = "schema"
	EventBegin    = "begin"
	EventCommit   = "commit"
	EventRollback = "rollback"
)

// Event describes one finished engine call.
type Event struct {
	Kind     string
	TxID     string // empty outside a transaction
	Text     string
	Args     []any
	Rows     int64 // rows fetched for queries, rows affected for writes
	Duration time.Duration
	Err      error
}

// Hook observes engine calls after they finish. It runs synchronously on the
// calling goroutine and must not issue statements on the same session.
type Hook func(ctx context.Context, ev Event)
