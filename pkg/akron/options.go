package akron

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Akash-nath29/akron/internal/config"
)

// Option configures Open.
type Option func(*openConfig)

type openConfig struct {
	settings config.SettingsGetter
	apply    []func(*config.Options)
	hook     Hook
	logger   zerolog.Logger
}

// WithSettings loads defaults from a settings source before the other
// options apply. Open reads AKRON_* environment variables when not given.
func WithSettings(s config.SettingsGetter) Option {
	return func(c *openConfig) { c.settings = s }
}

// WithSettingsMap is WithSettings over a plain map of dotted keys such as
// "db.statement_timeout".
func WithSettingsMap(m map[string]string) Option {
	return WithSettings(config.MapSettings(m))
}

// WithStatementTimeout bounds every statement call.
func WithStatementTimeout(d time.Duration) Option {
	return func(c *openConfig) {
		c.apply = append(c.apply, func(o *config.Options) { o.Timeouts.Statement = d })
	}
}

// WithConnectTimeout bounds the initial connection.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *openConfig) {
		c.apply = append(c.apply, func(o *config.Options) { o.Timeouts.Connect = d })
	}
}

// WithLockTimeout sets how long SQLite waits on a locked database.
func WithLockTimeout(d time.Duration) Option {
	return func(c *openConfig) {
		c.apply = append(c.apply, func(o *config.Options) { o.Timeouts.Lock = d })
	}
}

// WithIsolation sets the transaction isolation level: "default",
// "read_uncommitted", "read_committed", "repeatable_read" or "serializable".
func WithIsolation(level string) Option {
	return func(c *openConfig) {
		c.apply = append(c.apply, func(o *config.Options) { o.Isolation = level })
	}
}

// WithMaxOpenConns sets the pool size. Ignored for in-memory SQLite.
func WithMaxOpenConns(n int) Option {
	return func(c *openConfig) {
		c.apply = append(c.apply, func(o *config.Options) { o.MaxOpenConns = n })
	}
}

// WithMaxIdleConns sets the number of idle pooled connections.
func WithMaxIdleConns(n int) Option {
	return func(c *openConfig) {
		c.apply = append(c.apply, func(o *config.Options) { o.MaxIdleConns = n })
	}
}

// WithHook installs a Hook called after every engine call.
func WithHook(h Hook) Option {
	return func(c *openConfig) { c.hook = h }
}

// WithLogger sends library logs to l. Open logs nothing without it.
func WithLogger(l zerolog.Logger) Option {
	return func(c *openConfig) { c.logger = l }
}

func resolveOptions(opts []Option) (config.Options, *openConfig) {
	cfg := &openConfig{
		settings: config.EnvSettings{Prefix: config.DefaultEnvPrefix},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	options := config.LoadOptions(config.NewLoader(cfg.settings))
	for _, fn := range cfg.apply {
		fn(&options)
	}
	return options, cfg
}
