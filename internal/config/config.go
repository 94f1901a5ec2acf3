// Package config loads taskdesk settings from environment variables, applies
// defaults and validates the result on startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	History  HistoryConfig
	Seed     SeedConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including the wait for
	// in-flight imports to drain.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the chi Timeout middleware deadline for non-import routes.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig selects and tunes the store.
type DatabaseConfig struct {
	// URL picks the backend: postgres:// or postgresql:// for PostgreSQL,
	// sqlite://path or file:path for SQLite, memory:// for an in-process store.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" default:"sqlite://data/taskdesk.db"`

	// Pool settings apply to PostgreSQL only.
	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds upload and import execution limits.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the number of imports allowed to run at once (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long an import waits for a free slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single import from parse to bulk write (default: 2m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`
}

// ImportConfig holds per-flow header matching and enrichment settings.
type ImportConfig struct {
	// TaskHeaderPolicy is "exact" or "substring".
	TaskHeaderPolicy string `env:"IMPORT_TASK_HEADER_POLICY" default:"exact"`

	// AssigneeHeaderPolicy is "exact" or "substring".
	AssigneeHeaderPolicy string `env:"IMPORT_ASSIGNEE_HEADER_POLICY" default:"exact"`

	// FillCaptainFromDirectory fills blank task captains from the assignee
	// directory before the bulk write.
	FillCaptainFromDirectory bool `env:"IMPORT_FILL_CAPTAIN_FROM_DIRECTORY" default:"false"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every API route (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit applies to preview and import routes (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds admin gate and header settings.
type SecurityConfig struct {
	// APIKeys is a comma-separated list of accepted admin keys.
	APIKeys []string `env:"API_KEYS"`

	// RequireAPIKey gates every mutation route behind X-API-Key.
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// forwarding headers are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// HistoryConfig holds import history retention settings.
type HistoryConfig struct {
	RetentionDays int           `env:"HISTORY_RETENTION_DAYS" default:"90"`
	CheckInterval time.Duration `env:"HISTORY_CHECK_INTERVAL" default:"24h"`
}

// SeedConfig points at optional YAML reference data applied on startup.
type SeedConfig struct {
	File string `env:"SEED_FILE"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
