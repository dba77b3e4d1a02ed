package akron

import (
	"context"

	"github.com/Akash-nath29/akron/internal/database"
)

// Session is an execution context with one transaction slot. While a
// transaction is active every statement issued through the session runs
// inside it.
type Session struct {
	ops
	sess *database.Session
}

// Begin starts a transaction. It fails with a TransactionError when one is
// already active on the session.
func (s *Session) Begin(ctx context.Context) (*Tx, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	dtx, err := s.sess.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return s.wrap(dtx), nil
}

// Transaction runs fn inside a transaction: it commits when fn returns nil
// and rolls back when fn returns an error or panics. The error from fn is
// returned unchanged and a panic is re-raised after the rollback. fn may
// end the transaction itself with Commit or Rollback and return nil.
func (s *Session) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	if err := s.db.checkOpen(); err != nil {
		return err
	}
	return s.sess.Transaction(ctx, func(dtx *database.Tx) error {
		return fn(s.wrap(dtx))
	})
}

// InTransaction reports whether a transaction is active on the session.
func (s *Session) InTransaction() bool {
	return s.sess.Active() != nil
}

func (s *Session) wrap(dtx *database.Tx) *Tx {
	return &Tx{ops: ops{db: s.db, run: dtx}, tx: dtx}
}

// Tx is an active transaction. It offers the same data operations as a
// Session; schema changes are not available inside a transaction.
type Tx struct {
	ops
	tx *database.Tx
}

// ID returns the transaction id used in logs and hook events.
func (t *Tx) ID() string {
	return t.tx.ID
}

// State returns the lifecycle state.
func (t *Tx) State() TxState {
	return t.tx.State()
}

// Commit makes the changes durable. Any call on a finished transaction fails
// with "transaction already closed".
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback discards the changes.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
