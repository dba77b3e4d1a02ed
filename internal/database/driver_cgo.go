//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
//
// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1
package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

const (
	sqliteDriverName = "sqlite3"
	sqliteDriverType = "cgo"
)

func sqliteDSN(path string, memory bool, lock time.Duration) string {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d", path, lock.Milliseconds())
	if !memory {
		dsn += "&_journal_mode=WAL"
	}
	return dsn
}

// isBusy reports whether err is SQLite giving up on a locked database.
func isBusy(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
}
