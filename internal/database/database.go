// Package database is the engine plumbing under akron: connection setup,
// metadata migrations, the persisted catalog, sessions with their single
// transaction slot and typed row decoding.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Akash-nath29/akron/internal/config"
	"github.com/Akash-nath29/akron/internal/dialect"
	dberrors "github.com/Akash-nath29/akron/internal/errors"
	"github.com/Akash-nath29/akron/internal/statement"
)

// DB wraps the engine connection pool
type DB struct {
	conn      *sql.DB
	target    Target
	dialect   dialect.Dialect
	timeouts  config.TimeoutConfig
	isolation sql.IsolationLevel
	hook      Hook
	log       zerolog.Logger

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Result is the outcome of a write.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// executor is satisfied by *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// DriverType reports which SQLite driver was compiled in: "purego" for
// modernc.org/sqlite or "cgo" for mattn/go-sqlite3.
func DriverType() string {
	return sqliteDriverType
}

// Open connects to the database named by rawURL and runs the metadata
// migrations. Engine activity is logged to logger.
func Open(ctx context.Context, rawURL string, opts config.Options, hook Hook, logger zerolog.Logger) (*DB, error) {
	target, err := ParseURL(rawURL, opts.Timeouts)
	if err != nil {
		return nil, err
	}
	d, err := dialect.Lookup(target.Dialect)
	if err != nil {
		return nil, err
	}
	isolation, err := config.ParseIsolation(opts.Isolation)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(target.Driver, target.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx := ctx
	if opts.Timeouts.Connect > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, opts.Timeouts.Connect)
		defer cancel()
	}
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", classify("ping", err))
	}

	if target.Memory {
		// every pooled connection would otherwise get its own empty database
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
		conn.SetMaxIdleConns(opts.MaxIdleConns)
		conn.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	db := &DB{
		conn:      conn,
		target:    target,
		dialect:   d,
		timeouts:  opts.Timeouts,
		isolation: isolation,
		hook:      hook,
		log:       logger,
	}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	db.log.Debug().
		Str("dialect", target.Dialect).
		Str("driver", target.Driver).
		Str("path", target.Path).
		Msg("Database connection established")

	return db, nil
}

// Dialect returns the SQL dialect of the engine.
func (db *DB) Dialect() dialect.Dialect {
	return db.dialect
}

// Target returns the parsed connection URL.
func (db *DB) Target() Target {
	return db.target
}

// Closed reports whether Close has been called.
func (db *DB) Closed() bool {
	return db.closed.Load()
}

// Close releases the pool. Calling it again is a no-op.
func (db *DB) Close() error {
	db.closeOnce.Do(func() {
		db.closed.Store(true)
		db.closeErr = db.conn.Close()
		db.log.Debug().Str("dialect", db.target.Dialect).Msg("Database connection closed")
	})
	return db.closeErr
}

// NewSession creates a session with its own transaction slot.
func (db *DB) NewSession() *Session {
	return &Session{db: db}
}

func (db *DB) checkOpen() error {
	if db.closed.Load() {
		return dberrors.ErrClosed
	}
	return nil
}

func (db *DB) statementContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.timeouts.Statement > 0 {
		return context.WithTimeout(ctx, db.timeouts.Statement)
	}
	return ctx, func() {}
}

func (db *DB) emit(ctx context.Context, ev Event) {
	l := db.log.Trace().
		Str("kind", ev.Kind).
		Str("sql", ev.Text).
		Int64("rows", ev.Rows).
		Dur("duration", ev.Duration)
	if ev.TxID != "" {
		l = l.Str("tx", ev.TxID)
	}
	if ev.Err != nil {
		l = l.AnErr("error", ev.Err)
	}
	l.Msg("Statement finished")

	if db.hook != nil {
		db.hook(ctx, ev)
	}
}

func (db *DB) query(ctx context.Context, ex executor, txID string, stmt statement.Statement) ([]Row, error) {
	ctx, cancel := db.statementContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := ex.QueryContext(ctx, stmt.Text, stmt.Args...)
	if err != nil {
		err = classify("query", err)
		db.emit(ctx, Event{Kind: EventQuery, TxID: txID, Text: stmt.Text, Args: stmt.Args, Duration: time.Since(start), Err: err})
		return nil, err
	}
	defer rows.Close()

	out, err := scanRows(rows, stmt.Columns)
	err = classify("query", err)
	db.emit(ctx, Event{Kind: EventQuery, TxID: txID, Text: stmt.Text, Args: stmt.Args, Rows: int64(len(out)), Duration: time.Since(start), Err: err})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) exec(ctx context.Context, ex executor, txID string, stmt statement.Statement) (Result, error) {
	ctx, cancel := db.statementContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := ex.ExecContext(ctx, stmt.Text, stmt.Args...)
	var out Result
	if err == nil {
		out, err = readResult(res)
	}
	err = classify("exec", err)
	db.emit(ctx, Event{Kind: EventExec, TxID: txID, Text: stmt.Text, Args: stmt.Args, Rows: out.RowsAffected, Duration: time.Since(start), Err: err})
	return out, err
}

// BatchError reports the position of the first failing statement of a batch.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("statement %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// execBatch runs stmts in order on ex, preparing each distinct text once.
func (db *DB) execBatch(ctx context.Context, ex executor, txID string, stmts []statement.Statement) ([]Result, error) {
	ctx, cancel := db.statementContext(ctx)
	defer cancel()

	prepared := make(map[string]*sql.Stmt)
	defer func() {
		for _, ps := range prepared {
			ps.Close()
		}
	}()

	start := time.Now()
	results := make([]Result, 0, len(stmts))
	var affected int64
	for i, stmt := range stmts {
		ps, ok := prepared[stmt.Text]
		if !ok {
			var err error
			ps, err = ex.PrepareContext(ctx, stmt.Text)
			if err != nil {
				return nil, db.batchFailed(ctx, txID, stmt, start, i, fmt.Errorf("failed to prepare statement: %w", err))
			}
			prepared[stmt.Text] = ps
		}

		res, err := ps.ExecContext(ctx, stmt.Args...)
		var out Result
		if err == nil {
			out, err = readResult(res)
		}
		if err != nil {
			return nil, db.batchFailed(ctx, txID, stmt, start, i, err)
		}
		affected += out.RowsAffected
		results = append(results, out)
	}

	text := ""
	if len(stmts) > 0 {
		text = stmts[0].Text
	}
	db.emit(ctx, Event{Kind: EventBatch, TxID: txID, Text: text, Rows: affected, Duration: time.Since(start)})
	return results, nil
}

func (db *DB) batchFailed(ctx context.Context, txID string, stmt statement.Statement, start time.Time, index int, err error) error {
	err = classify("exec", err)
	db.emit(ctx, Event{Kind: EventBatch, TxID: txID, Text: stmt.Text, Args: stmt.Args, Duration: time.Since(start), Err: err})
	return &BatchError{Index: index, Err: err}
}

func readResult(res sql.Result) (Result, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		id = 0
	}
	return Result{LastInsertID: id, RowsAffected: affected}, nil
}

// runInTx wraps fn in an engine transaction on the pool.
func (db *DB) runInTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, &sql.TxOptions{Isolation: db.isolation})
	if err != nil {
		return classify("begin", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify("commit", err))
	}

	return nil
}

func (db *DB) raw(ctx context.Context, ex executor, txID, text string, args []any) ([]Row, error) {
	ctx, cancel := db.statementContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := ex.QueryContext(ctx, text, args...)
	if err != nil {
		err = classify("", err)
		db.emit(ctx, Event{Kind: EventQuery, TxID: txID, Text: text, Args: args, Duration: time.Since(start), Err: err})
		return nil, err
	}
	defer rows.Close()

	out, err := scanRows(rows, nil)
	err = classify("", err)
	db.emit(ctx, Event{Kind: EventQuery, TxID: txID, Text: text, Args: args, Rows: int64(len(out)), Duration: time.Since(start), Err: err})
	if err != nil {
		return nil, err
	}
	return out, nil
}
