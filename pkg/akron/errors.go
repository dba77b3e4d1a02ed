package akron

import dberrors "github.com/Akash-nath29/akron/internal/errors"

type (
	SchemaError      = dberrors.SchemaError
	QueryError       = dberrors.QueryError
	TransactionError = dberrors.TransactionError
	MutationError    = dberrors.MutationError
	TimeoutError     = dberrors.TimeoutError
	EngineError      = dberrors.EngineError
)

// Sentinels matched with errors.Is.
var (
	ErrSchema      = dberrors.ErrSchema
	ErrQuery       = dberrors.ErrQuery
	ErrTransaction = dberrors.ErrTransaction
	ErrMutation    = dberrors.ErrMutation
	ErrTimeout     = dberrors.ErrTimeout
	ErrEngine      = dberrors.ErrEngine
	ErrClosed      = dberrors.ErrClosed
)
