package config

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Settings keys
const (
	KeyStatementTimeout = "db.statement_timeout"
	KeyConnectTimeout   = "db.connect_timeout"
	KeyLockTimeout      = "db.lock_timeout"
	KeyIsolation        = "db.isolation"
	KeyMaxOpenConns     = "db.max_open_conns"
	KeyMaxIdleConns     = "db.max_idle_conns"
	KeyConnMaxLifetime  = "db.conn_max_lifetime"
	KeyLogLevel         = "log.level"
	KeyLogFile          = "log.file"
)

// Options configures a database handle.
type Options struct {
	Timeouts        TimeoutConfig
	Isolation       string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
	LogFile         string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Timeouts:     DefaultTimeoutConfig(),
		Isolation:    "default",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		LogLevel:     "info",
	}
}

// LoadOptions reads options from l, falling back to DefaultOptions.
func LoadOptions(l *Loader) Options {
	opts := DefaultOptions()
	if l == nil {
		return opts
	}

	opts.Timeouts.Statement = l.Duration(KeyStatementTimeout, opts.Timeouts.Statement)
	opts.Timeouts.Connect = l.Duration(KeyConnectTimeout, opts.Timeouts.Connect)
	opts.Timeouts.Lock = l.Duration(KeyLockTimeout, opts.Timeouts.Lock)
	opts.Isolation = l.String(KeyIsolation, opts.Isolation)
	if val := l.Int(KeyMaxOpenConns, opts.MaxOpenConns); val >= 0 {
		opts.MaxOpenConns = val
	}
	if val := l.Int(KeyMaxIdleConns, opts.MaxIdleConns); val >= 0 {
		opts.MaxIdleConns = val
	}
	opts.ConnMaxLifetime = l.Duration(KeyConnMaxLifetime, opts.ConnMaxLifetime)
	opts.LogLevel = l.String(KeyLogLevel, opts.LogLevel)
	opts.LogFile = l.String(KeyLogFile, opts.LogFile)
	return opts
}

// ParseIsolation maps an isolation name onto a database/sql level.
func ParseIsolation(name string) (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.ReplaceAll(name, " ", "_")) {
	case "", "default":
		return sql.LevelDefault, nil
	case "read_uncommitted":
		return sql.LevelReadUncommitted, nil
	case "read_committed":
		return sql.LevelReadCommitted, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "serializable":
		return sql.LevelSerializable, nil
	default:
		return sql.LevelDefault, fmt.Errorf("unknown isolation level %q", name)
	}
}
