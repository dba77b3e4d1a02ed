package database

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"

	dberrors "github.com/Akash-nath29/akron/internal/errors"
)

// MySQL lock wait timeout and max_execution_time exceeded.
const (
	mysqlLockWaitTimeout   = 1205
	mysqlExecutionTimedOut = 3024
)

// classify maps an engine failure onto an error kind. Errors that already
// carry a kind are returned unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		timeout *dberrors.TimeoutError
		engine  *dberrors.EngineError
	)
	if errors.As(err, &timeout) || errors.As(err, &engine) ||
		errors.Is(err, dberrors.ErrTransaction) || errors.Is(err, dberrors.ErrClosed) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || isBusy(err) || isMySQLTimeout(err) {
		return &dberrors.TimeoutError{Op: op, Err: err}
	}
	return &dberrors.EngineError{Op: op, Err: err}
}

func isMySQLTimeout(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlLockWaitTimeout || me.Number == mysqlExecutionTimedOut
}
