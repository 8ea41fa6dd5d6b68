// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Item source drivers.
const (
	DriverYAML     = "yaml"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Views    ViewConfig
	Display  DisplayConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// SourceConfig selects and configures where items are loaded from.
type SourceConfig struct {
	// Driver is one of yaml, sqlite, postgres (default: yaml)
	Driver string `env:"ITEMS_SOURCE" default:"yaml"`

	// FixturePath is the YAML file read by the yaml driver (default: items.yaml)
	FixturePath string `env:"ITEMS_FIXTURE" default:"items.yaml"`

	// SQLitePath is the database file used by the sqlite driver (default: items.db)
	SQLitePath string `env:"SQLITE_PATH" default:"items.db"`

	// DatabaseURL is the PostgreSQL connection string (required for postgres)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// LoadTimeout bounds a single item load (default: 10s)
	LoadTimeout time.Duration `env:"ITEMS_LOAD_TIMEOUT" default:"10s"`

	// MaxConcurrentLoads caps parallel item loads served by the web server (default: 8)
	MaxConcurrentLoads int `env:"ITEMS_MAX_CONCURRENT_LOADS" default:"8"`

	// LoadWait is how long a load waits for a free slot before failing (default: 5s)
	LoadWait time.Duration `env:"ITEMS_LOAD_WAIT" default:"5s"`
}

// ViewConfig controls the in-memory table views held for open pages.
type ViewConfig struct {
	// TTL is how long an idle view is kept (default: 30m)
	TTL time.Duration `env:"VIEW_TTL" default:"30m"`

	// MaxViews caps the number of live views; the least recently used is evicted (default: 1000)
	MaxViews int `env:"VIEW_MAX" default:"1000"`

	// CleanupInterval is how often expired views are swept (default: 1m)
	CleanupInterval time.Duration `env:"VIEW_CLEANUP_INTERVAL" default:"1m"`
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	// TimeZone is the IANA zone used to format dates, or "Local" (default: Local)
	TimeZone string `env:"DISPLAY_TIMEZONE" default:"Local"`

	// CellWidth converts terminal cells to the width units used by column
	// thresholds in the terminal UI (default: 8)
	CellWidth float64 `env:"TUI_CELL_WIDTH" default:"8"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File receives logs instead of stdout when set. The terminal UI always
	// needs a file because it owns the screen (default: itemlist.log for the TUI)
	File string `env:"LOG_FILE"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Location resolves the display time zone. Unknown zones fall back to UTC,
// but Validate rejects them first.
func (c *DisplayConfig) Location() *time.Location {
	loc, err := loadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func loadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local", "local":
		return time.Local, nil
	default:
		return time.LoadLocation(name)
	}
}
