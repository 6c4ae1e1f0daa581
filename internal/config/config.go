// Package config defines service configuration and its layered loading.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Environments the service recognises.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config contains process configuration.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Env is development or production. Production requires a CSRF key.
	Env string `koanf:"env"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// CSRFKey authenticates CSRF tokens; 32 bytes.
	CSRFKey string `koanf:"csrf_key"`

	// SlowQueryMS and SlowRequestMS are the slow-log thresholds.
	SlowQueryMS   int `koanf:"slow_query_ms"`
	SlowRequestMS int `koanf:"slow_request_ms"`

	// RateLimitPerSecond caps requests per client address; 0 disables limiting.
	RateLimitPerSecond int `koanf:"rate_limit_per_second"`

	// ResendKey enables email delivery through Resend. Empty logs emails instead.
	ResendKey string `koanf:"resend_key"`
	EmailFrom string `koanf:"email_from"`
	ReplyTo   string `koanf:"reply_to"`

	// ReminderWindowDays is how far ahead expiring credentials are flagged and reminded.
	ReminderWindowDays int `koanf:"reminder_window_days"`

	// ReminderInterval and OutboxInterval pace the background workers.
	ReminderInterval time.Duration `koanf:"reminder_interval"`
	OutboxInterval   time.Duration `koanf:"outbox_interval"`

	// PassMark is the minimum grade (0-100) for a pass.
	PassMark float64 `koanf:"pass_mark"`

	// MinAttendancePct is the minimum attendance (0-100) for a pass.
	MinAttendancePct float64 `koanf:"min_attendance_pct"`

	// ReportCacheSize bounds the number of memoised report results.
	ReportCacheSize int `koanf:"report_cache_size"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:               ":8080",
		Env:                EnvDevelopment,
		DBPath:             "arff.db",
		LogLevel:           "info",
		LogFormat:          "text",
		SlowQueryMS:        50,
		SlowRequestMS:      500,
		RateLimitPerSecond: 20,
		EmailFrom:          "ARFF Training <training@example.org>",
		ReminderWindowDays: 60,
		ReminderInterval:   time.Hour,
		OutboxInterval:     30 * time.Second,
		PassMark:           70,
		MinAttendancePct:   75,
		ReportCacheSize:    64,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.DBPath == "":
		return invalid("db_path must not be empty")
	case c.Env != EnvDevelopment && c.Env != EnvProduction:
		return invalid("env must be %q or %q", EnvDevelopment, EnvProduction)
	case c.Env == EnvProduction && len(c.CSRFKey) != 32:
		return invalid("csrf_key must be 32 bytes in production")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return invalid("log_format must be text or json")
	case c.PassMark < 0 || c.PassMark > 100:
		return invalid("pass_mark must be within 0..100")
	case c.MinAttendancePct < 0 || c.MinAttendancePct > 100:
		return invalid("min_attendance_pct must be within 0..100")
	case c.ReminderWindowDays < 0:
		return invalid("reminder_window_days must not be negative")
	case c.ReminderInterval <= 0 || c.OutboxInterval <= 0:
		return invalid("worker intervals must be positive")
	case c.ReportCacheSize < 0:
		return invalid("report_cache_size must not be negative")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// SlowQuery returns the slow query threshold.
func (c *Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

// SlowRequest returns the slow request threshold.
func (c *Config) SlowRequest() time.Duration {
	return time.Duration(c.SlowRequestMS) * time.Millisecond
}

// ReminderWindow returns ReminderWindowDays as a duration.
func (c *Config) ReminderWindow() time.Duration {
	return time.Duration(c.ReminderWindowDays) * 24 * time.Hour
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}
