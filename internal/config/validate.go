package config

import (
	"fmt"
	"strings"
)

// problems collects validation failures for one section.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate checks every section and reports all failures together.
func (c *Config) Validate() error {
	var p problems
	c.Server.validate(&p)
	c.Database.validate(&p)
	c.Upload.validate(&p)
	c.Validation.validate(&p)
	c.Security.validate(&p)
	c.Logging.validate(&p)
	c.Metrics.validate(&p)

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

func (c *ServerConfig) validate(p *problems) {
	p.check(c.Port > 0 && c.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", c.Port)
	p.check(c.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(c.WriteTimeout >= 0, "SERVER_WRITE_TIMEOUT must be non-negative")
	p.check(c.RequestTimeout >= 0, "SERVER_REQUEST_TIMEOUT must be non-negative")
	p.check(c.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")
}

// validate only checks pool settings when a database is configured.
func (c *DatabaseConfig) validate(p *problems) {
	if !c.Enabled() {
		return
	}
	p.check(c.MaxConns > 0, "DB_MAX_CONNS must be positive")
	p.check(c.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
	p.check(c.MaxConns >= c.MinConns, "DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.MaxConns, c.MinConns)
	p.check(c.QueryTimeout > 0, "DB_QUERY_TIMEOUT must be positive")
}

func (c *UploadConfig) validate(p *problems) {
	p.check(c.MaxFileSize > 0, "UPLOAD_MAX_FILE_SIZE must be positive")
	p.check(c.MaxConcurrent > 0, "UPLOAD_MAX_CONCURRENT must be positive")
	p.check(c.MaxWaitTime > 0, "UPLOAD_MAX_WAIT_TIME must be positive")
}

func (c *ValidationConfig) validate(p *problems) {
	p.check(c.Budget >= 0, "VALIDATION_BUDGET must be non-negative, 0 disables it")
	p.check(c.MaxRows > 0, "VALIDATION_MAX_ROWS must be positive")
	p.check(c.MaxErrorSamples >= 0, "VALIDATION_MAX_ERRORS_SHOWN must be non-negative")
	p.check(c.MaxInitialRows >= 0, "VALIDATION_MAX_INITIAL_ROWS must be non-negative")
	p.check(c.Workers > 0, "VALIDATION_WORKERS must be positive")
	p.check(c.ChunkSize > 0, "VALIDATION_CHUNK_SIZE must be positive")
	p.check(c.QRCodeMaxBytes > 0, "VALIDATION_QR_CODE_MAX_BYTES must be positive")
}

func (c *SecurityConfig) validate(p *problems) {
	p.check(!c.RequireAPIKey || len(c.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one key or disable auth")
}

func (c *LoggingConfig) validate(p *problems) {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.check(false, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "text", "json":
	default:
		p.check(false, "LOG_FORMAT (%q) must be one of: text, json", c.Format)
	}
}

func (c *MetricsConfig) validate(p *problems) {
	if c.Enabled {
		p.check(strings.HasPrefix(c.Path, "/"), "METRICS_PATH (%q) must start with /", c.Path)
	}
}

// String returns the configuration for logging with the database URL
// masked.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config{Server: {Addr: %s}, ", c.Server.Addr())
	if c.Database.Enabled() {
		fmt.Fprintf(&b, "Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ", c.Database.MaxConns, c.Database.MinConns)
	} else {
		b.WriteString("Database: {disabled}, ")
	}
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxConcurrent: %d}, ", c.Upload.MaxFileSize, c.Upload.MaxConcurrent)
	fmt.Fprintf(&b, "Validation: {Budget: %s, MaxRows: %d, Workers: %d}, ", c.Validation.Budget, c.Validation.MaxRows, c.Validation.Workers)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}}", c.Logging.Level, c.Logging.Format)
	return b.String()
}
