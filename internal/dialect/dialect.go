// Package dialect is the registry of column types, filter operators and the
// per-engine SQL rendering used by the statement builder and schema manager.
package dialect

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Dialect renders engine-specific fragments of SQL text.
type Dialect interface {
	// Name is the registry key and connection URL scheme ("sqlite", "mysql").
	Name() string
	// Quote quotes an identifier that has already been validated.
	Quote(ident string) string
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string
	// ColumnType returns the engine column type for a scalar.
	ColumnType(t ScalarType) string
	// PrimaryKey returns the full column definition of an auto-increment key.
	PrimaryKey(column string) string
	// TableSuffix is appended after the closing parenthesis of CREATE TABLE.
	TableSuffix() string
	// Unlimited is the LIMIT literal used when only an OFFSET is requested.
	Unlimited() string
	// DefaultValues completes "INSERT INTO t" when no column is given.
	DefaultValues() string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Dialect{}
)

// Register adds a dialect under its name, replacing any previous entry.
func Register(d Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name()] = d
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %q (available: %s)", name, strings.Join(namesLocked(), ", "))
	}
	return d, nil
}

// Names returns the registered dialect names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(SQLite{})
	Register(MySQL{})
}
