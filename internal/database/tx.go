package database

import (
	"context"
	"database/sql"
	"sync"
	"time"


	dberrors "github.com/Akash-nath29/akron/internal/errors"
	"github.com/Akash-nath29/akron/internal/statement"
)

// TxState is the lifecycle state of a transaction.
type TxState int

const (
	TxActive TxState = iota
	TxCommitted
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxActive:
		return "active"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Tx is a transaction owned by a Session. Statements on it are serialized.
type Tx struct {
	ID string

	session *Session
	tx      *sql.Tx
	scoped  bool

	mu        sync.Mutex
	state     TxState
	requested bool // rolled back through Rollback
}

// State returns the current lifecycle state.
func (t *Tx) State() TxState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Commit makes the transaction's changes durable.
func (t *Tx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TxActive {
		return dberrors.TxClosed()
	}

	start := time.Now()
	err := t.tx.Commit()
	if err != nil {
		err = &dberrors.TransactionError{Message: "commit failed", Err: classify("commit", err)}
		t.finishLocked(TxRolledBack)
	} else {
		t.finishLocked(TxCommitted)
	}
	t.session.db.emit(context.Background(), Event{Kind: EventCommit, TxID: t.ID, Duration: time.Since(start), Err: err})
	if err == nil {
		t.session.db.log.Debug().Str("tx", t.ID).Msg("Transaction committed")
	}
	return err
}

// Rollback discards the transaction's changes.
func (t *Tx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TxActive {
		return dberrors.TxClosed()
	}
	t.requested = true
	return t.rollbackLocked("requested")
}

// abort rolls back if still active. Failures are logged only.
func (t *Tx) abort(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TxActive {
		return
	}
	if err := t.rollbackLocked(reason); err != nil {
		t.session.db.log.Error().Err(err).Str("tx", t.ID).Msg("Failed to rollback transaction")
	}
}

// settled reports whether the transaction was already finished by the
// caller, through Commit or Rollback, rather than by a failed write.
func (t *Tx) settled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == TxCommitted || (t.state == TxRolledBack && t.requested)
}

func (t *Tx) rollbackLocked(reason string) error {
	start := time.Now()
	err := t.tx.Rollback()
	t.finishLocked(TxRolledBack)
	if err != nil {
		err = &dberrors.TransactionError{Message: "rollback failed", Err: classify("rollback", err)}
	}
	t.session.db.emit(context.Background(), Event{Kind: EventRollback, TxID: t.ID, Duration: time.Since(start), Err: err})
	t.session.db.log.Debug().Str("tx", t.ID).Str("reason", reason).Msg("Transaction rolled back")
	return err
}

// finishLocked records the final state. A manually started transaction
// frees the session slot here; a scoped one keeps it until the scope exits.
func (t *Tx) finishLocked(state TxState) {
	t.state = state
	if !t.scoped {
		t.session.release(t)
	}
}

func (t *Tx) lockActive() error {
	t.mu.Lock()
	if t.state != TxActive {
		t.mu.Unlock()
		return dberrors.TxClosed()
	}
	if t.session.db.Closed() {
		t.mu.Unlock()
		return dberrors.ErrClosed
	}
	return nil
}

// Query runs a read on the transaction.
func (t *Tx) Query(ctx context.Context, stmt statement.Statement) ([]Row, error) {
	if err := t.lockActive(); err != nil {
		return nil, err
	}
	defer t.mu.Unlock()
	return t.session.db.query(ctx, t.tx, t.ID, stmt)
}

// Exec runs a write on the transaction. An engine failure rolls the
// transaction back before the error is returned.
func (t *Tx) Exec(ctx context.Context, stmt statement.Statement) (Result, error) {
	if err := t.lockActive(); err != nil {
		return Result{}, err
	}
	defer t.mu.Unlock()

	res, err := t.session.db.exec(ctx, t.tx, t.ID, stmt)
	if err != nil {
		if rbErr := t.rollbackLocked("write failed"); rbErr != nil {
			t.session.db.log.Error().Err(rbErr).Str("tx", t.ID).Msg("Failed to rollback transaction")
		}
		return Result{}, err
	}
	return res, nil
}

// ExecBatch runs stmts on the transaction. Any failure rolls it back.
func (t *Tx) ExecBatch(ctx context.Context, stmts []statement.Statement) ([]Result, error) {
	if err := t.lockActive(); err != nil {
		return nil, err
	}
	defer t.mu.Unlock()

	results, err := t.session.db.execBatch(ctx, t.tx, t.ID, stmts)
	if err != nil {
		if rbErr := t.rollbackLocked("batch failed"); rbErr != nil {
			t.session.db.log.Error().Err(rbErr).Str("tx", t.ID).Msg("Failed to rollback transaction")
		}
		return nil, err
	}
	return results, nil
}

// Raw runs unvalidated SQL on the transaction.
func (t *Tx) Raw(ctx context.Context, text string, args ...any) ([]Row, error) {
	if err := t.lockActive(); err != nil {
		return nil, err
	}
	defer t.mu.Unlock()
	return t.session.db.raw(ctx, t.tx, t.ID, text, args)
}

// Session returns the session owning the transaction.
func (t *Tx) Session() *Session {
	return t.session
}
