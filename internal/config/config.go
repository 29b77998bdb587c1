// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Upload     UploadConfig
	Validation ValidationConfig
	Security   SecurityConfig
	Logging    LoggingConfig
	Metrics    MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout is the maximum duration for writing response (default: 90s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"90s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings. The database only
// stores allow-lists; leaving URL empty disables allow-list lookups.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// QueryTimeout bounds a single allow-list lookup (default: 5s)
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" default:"5s"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// UploadConfig holds request-level limits for uploaded tables.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of batches checked at once (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for a batch slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// ValidationConfig holds the sending policy and processing limits.
type ValidationConfig struct {
	AllowInternationalSMS     bool `env:"ALLOW_INTERNATIONAL_SMS" default:"false"`
	AllowSMSToUKLandline      bool `env:"ALLOW_SMS_TO_UK_LANDLINE" default:"false"`
	AllowPremiumRate          bool `env:"ALLOW_PREMIUM_RATE" default:"false"`
	AllowTVNumbers            bool `env:"ALLOW_TV_NUMBERS" default:"true"`
	AllowInternationalLetters bool `env:"ALLOW_INTERNATIONAL_LETTERS" default:"false"`

	// Budget is the wall-clock time allowed for reading one table; 0 disables it (default: 30s)
	Budget time.Duration `env:"VALIDATION_BUDGET" default:"30s"`

	// MaxRows is the largest table validated row by row (default: 100000)
	MaxRows int `env:"VALIDATION_MAX_ROWS" default:"100000"`

	// MaxErrorSamples is how many erroring rows a report shows (default: 20)
	MaxErrorSamples int `env:"VALIDATION_MAX_ERRORS_SHOWN" default:"20"`

	// MaxInitialRows is how many leading rows a report shows (default: 10)
	MaxInitialRows int `env:"VALIDATION_MAX_INITIAL_ROWS" default:"10"`

	// Workers validates rows in parallel when above 1 (default: 1)
	Workers int `env:"VALIDATION_WORKERS" default:"1"`

	// ChunkSize is how many rows a parallel batch reads per round (default: 256)
	ChunkSize int `env:"VALIDATION_CHUNK_SIZE" default:"256"`

	// QRCodeMaxBytes is the largest QR code payload in a letter (default: 504)
	QRCodeMaxBytes int `env:"VALIDATION_QR_CODE_MAX_BYTES" default:"504"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey rejects API requests without a valid X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled serves metrics at Path (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Path is the scrape endpoint (default: /metrics)
	Path string `env:"METRICS_PATH" default:"/metrics"`

	// Namespace prefixes every metric name (default: recipientcsv)
	Namespace string `env:"METRICS_NAMESPACE" default:"recipientcsv"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
