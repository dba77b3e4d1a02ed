package config

import "time"

// TimeoutConfig holds timeout settings for engine calls.
type TimeoutConfig struct {
	// Statement bounds every statement call. Zero leaves only the caller's
	// context in charge. Default: 0
	Statement time.Duration

	// Connect bounds the initial ping and, for MySQL, the dial.
	// Default: 10s
	Connect time.Duration

	// Lock is how long SQLite waits on a locked database before reporting
	// SQLITE_BUSY. Default: 5s
	Lock time.Duration
}

// DefaultTimeoutConfig returns the default timeout configuration
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Connect: 10 * time.Second,
		Lock:    5 * time.Second,
	}
}
