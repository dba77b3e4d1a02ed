// Package errors defines the error kinds surfaced by the akron layer.
//
// Every kind unwraps to a sentinel so callers can branch with errors.Is, or
// extract details with errors.As.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for each kind
var (
	// ErrSchema indicates an unknown table/column, duplicate table or dangling reference
	ErrSchema = errors.New("schema error")
	// ErrQuery indicates an invalid filter, operator, pagination or value shape
	ErrQuery = errors.New("query error")
	// ErrTransaction indicates a nesting conflict or use of a finished transaction
	ErrTransaction = errors.New("transaction error")
	// ErrMutation indicates a failed insert, update, delete or bulk insert
	ErrMutation = errors.New("mutation error")
	// ErrTimeout indicates the engine call timed out or hit a lock timeout
	ErrTimeout = errors.New("timeout")
	// ErrEngine wraps unexpected failures from the underlying engine
	ErrEngine = errors.New("engine error")
	// ErrClosed is returned by every operation after Close
	ErrClosed = errors.New("database is closed")
)

// Transaction failure messages
const (
	MsgTxInProgress = "transaction already in progress"
	MsgTxClosed     = "transaction already closed"
)

// SchemaError reports a schema definition or lookup failure.
type SchemaError struct {
	Table   string
	Column  string
	Message string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Table != "" && e.Column != "":
		return fmt.Sprintf("schema error: %s.%s: %s", e.Table, e.Column, e.Message)
	case e.Table != "":
		return fmt.Sprintf("schema error: %s: %s", e.Table, e.Message)
	default:
		return "schema error: " + e.Message
	}
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// QueryError reports a statement that failed validation before reaching the engine.
type QueryError struct {
	Field   string
	Message string
}

func (e *QueryError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("query error: %s: %s", e.Field, e.Message)
	}
	return "query error: " + e.Message
}

func (e *QueryError) Unwrap() error { return ErrQuery }

// TransactionError reports misuse of the transaction slot or a finished transaction.
type TransactionError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *TransactionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transaction error: %s: %v", e.Message, e.Err)
	}
	return "transaction error: " + e.Message
}

func (e *TransactionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransaction, e.Err}
	}
	return []error{ErrTransaction}
}

// MutationError reports a failed write. Index is the position of the first
// failing row for bulk operations and -1 for single-row mutations.
type MutationError struct {
	Table string
	Index int
	Err   error
}

func (e *MutationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("mutation error: %s: row %d: %v", e.Table, e.Index, e.Err)
	}
	return fmt.Sprintf("mutation error: %s: %v", e.Table, e.Err)
}

func (e *MutationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMutation, e.Err}
	}
	return []error{ErrMutation}
}

// TimeoutError reports an engine-level timeout. It is never retried.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %s: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() []error {
	return []error{ErrTimeout, e.Err}
}

// EngineError wraps an unexpected engine failure. The message of the engine
// error is preserved verbatim.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() []error {
	return []error{ErrEngine, e.Err}
}

// Schemaf builds a SchemaError for a table.
func Schemaf(table, format string, args ...any) error {
	return &SchemaError{Table: table, Message: fmt.Sprintf(format, args...)}
}

// Queryf builds a QueryError for a field.
func Queryf(field, format string, args ...any) error {
	return &QueryError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TxInProgress is returned when a second transaction is started on a session.
func TxInProgress() error {
	return &TransactionError{Message: MsgTxInProgress}
}

// TxClosed is returned for any operation on a committed or rolled back transaction.
func TxClosed() error {
	return &TransactionError{Message: MsgTxClosed}
}
