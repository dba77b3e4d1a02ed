//go:build !cgo_sqlite

package database

import (
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	sqliteDriverName = "sqlite"
	sqliteDriverType = "purego"
)

func sqliteDSN(path string, memory bool, lock time.Duration) string {
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", path, lock.Milliseconds())
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	return dsn
}

// isBusy reports whether err is SQLite giving up on a locked database.
func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
