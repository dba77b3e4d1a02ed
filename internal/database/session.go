package database

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	dberrors "github.com/Akash-nath29/akron/internal/errors"
	"github.com/Akash-nath29/akron/internal/statement"
)

// Session routes statements to the pool, or to its transaction while one is
// active. A session holds at most one active transaction.
type Session struct {
	db *DB

	mu     sync.Mutex
	active *Tx
}

// DB returns the database the session belongs to.
func (s *Session) DB() *DB {
	return s.db
}

// Active returns the session's active transaction, or nil.
func (s *Session) Active() *Tx {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Begin starts a transaction that stays in the session's slot until it is
// committed or rolled back.
func (s *Session) Begin(ctx context.Context) (*Tx, error) {
	return s.begin(ctx, false)
}

func (s *Session) begin(ctx context.Context, scoped bool) (*Tx, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return nil, dberrors.TxInProgress()
	}

	start := time.Now()
	sqlTx, err := s.db.conn.BeginTx(ctx, &sql.TxOptions{Isolation: s.db.isolation})
	id := uuid.NewString()
	if err != nil {
		err = classify("begin", err)
		s.db.emit(ctx, Event{Kind: EventBegin, TxID: id, Duration: time.Since(start), Err: err})
		return nil, err
	}

	tx := &Tx{ID: id, session: s, tx: sqlTx, scoped: scoped}
	s.active = tx
	s.db.emit(ctx, Event{Kind: EventBegin, TxID: id, Duration: time.Since(start)})
	s.db.log.Debug().Str("tx", id).Bool("scoped", scoped).Msg("Transaction started")
	return tx, nil
}

func (s *Session) release(tx *Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == tx {
		s.active = nil
	}
}

// Transaction runs fn inside a transaction. It commits when fn returns nil
// and rolls back when fn returns an error or panics; the error from fn is
// returned unchanged and a panic is re-raised after the rollback. A
// transaction that fn already committed or rolled back itself is left as is.
func (s *Session) Transaction(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.begin(ctx, true)
	if err != nil {
		return err
	}
	defer s.release(tx)

	defer func() {
		if p := recover(); p != nil {
			tx.abort("panic")
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.abort("error")
		return err
	}
	if tx.settled() {
		return nil
	}
	return tx.Commit()
}

// Query runs a read.
func (s *Session) Query(ctx context.Context, stmt statement.Statement) ([]Row, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	if tx := s.Active(); tx != nil {
		return tx.Query(ctx, stmt)
	}
	return s.db.query(ctx, s.db.conn, "", stmt)
}

// Exec runs a write. Inside a transaction an engine failure rolls the
// transaction back.
func (s *Session) Exec(ctx context.Context, stmt statement.Statement) (Result, error) {
	if err := s.db.checkOpen(); err != nil {
		return Result{}, err
	}
	if tx := s.Active(); tx != nil {
		return tx.Exec(ctx, stmt)
	}
	return s.db.exec(ctx, s.db.conn, "", stmt)
}

// ExecBatch runs stmts atomically: inside the active transaction when there
// is one, otherwise in a transaction of its own. A failure is reported as a
// *BatchError and nothing is kept.
func (s *Session) ExecBatch(ctx context.Context, stmts []statement.Statement) ([]Result, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	if tx := s.Active(); tx != nil {
		return tx.ExecBatch(ctx, stmts)
	}

	var results []Result
	err := s.db.runInTx(ctx, func(sqlTx *sql.Tx) error {
		var err error
		results, err = s.db.execBatch(ctx, sqlTx, "", stmts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Raw runs unvalidated SQL and returns its rows, if any.
func (s *Session) Raw(ctx context.Context, text string, args ...any) ([]Row, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	if tx := s.Active(); tx != nil {
		return tx.Raw(ctx, text, args...)
	}
	return s.db.raw(ctx, s.db.conn, "", text, args)
}

// ApplySchema runs DDL and the matching catalog updates. Schema changes
// auto-commit and are refused while a transaction is active.
func (s *Session) ApplySchema(ctx context.Context, change SchemaChange) error {
	if err := s.db.checkOpen(); err != nil {
		return err
	}
	if tx := s.Active(); tx != nil {
		return &dberrors.TransactionError{Message: "schema changes are not allowed inside a transaction (tx " + tx.ID + ")"}
	}
	return s.db.applySchema(ctx, "", change)
}
