// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendGCS      = "gcs"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Write modes accepted by WRITE_MODE.
const (
	// WriteModeConditional writes with a version precondition and retries on conflict.
	WriteModeConditional = "conditional"
	// WriteModeOverwrite replaces the object unconditionally (last writer wins).
	WriteModeOverwrite = "overwrite"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Write    WriteConfig
	Person   PersonConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envDefault:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 25s).
	// It must stay below WriteTimeout or the connection deadline fires first.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"25s"`

	// MaxBodyBytes caps JSON request bodies (default: 64KB)
	MaxBodyBytes int64 `env:"SERVER_MAX_BODY_BYTES" envDefault:"65536"`
}

// StorageConfig selects where the dataset blob lives.
type StorageConfig struct {
	// Backend is one of gcs, postgres, sqlite, memory (default: gcs)
	Backend string `env:"STORAGE_BACKEND" envDefault:"gcs"`

	// Bucket is the GCS bucket holding the dataset object.
	Bucket string `env:"STORAGE_BUCKET"`

	// LegacyBucket is read from S3_BUCKET when STORAGE_BUCKET is unset.
	LegacyBucket string `env:"S3_BUCKET"`

	// Key is the object key of the dataset (default: datos.csv)
	Key string `env:"STORAGE_KEY" envDefault:"datos.csv"`

	// DatabaseURL is the PostgreSQL connection string for the postgres backend.
	DatabaseURL string `env:"DATABASE_URL"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/persons.db"`

	// Timeout bounds every individual storage call (default: 30s)
	Timeout time.Duration `env:"STORAGE_TIMEOUT" envDefault:"30s"`
}

// WriteConfig controls how appends reach the store.
type WriteConfig struct {
	// Mode is conditional or overwrite (default: conditional)
	Mode string `env:"WRITE_MODE" envDefault:"conditional"`

	// MaxAttempts is how many read-modify-write cycles an append may run
	// before giving up on version conflicts (default: 5)
	MaxAttempts int `env:"WRITE_MAX_ATTEMPTS" envDefault:"5"`

	// MaxConcurrent is the maximum number of append cycles in flight (default: 16)
	MaxConcurrent int `env:"APPEND_MAX_CONCURRENT" envDefault:"16"`

	// MaxWait is how long an append waits for a free slot (default: 10s)
	MaxWait time.Duration `env:"APPEND_MAX_WAIT" envDefault:"10s"`
}

// PersonConfig holds the inclusive bounds applied to incoming records.
type PersonConfig struct {
	NameMinLen int     `env:"PERSON_NAME_MIN_LEN" envDefault:"1"`
	NameMaxLen int     `env:"PERSON_NAME_MAX_LEN" envDefault:"100"`
	AgeMin     int     `env:"PERSON_AGE_MIN" envDefault:"0"`
	AgeMax     int     `env:"PERSON_AGE_MAX" envDefault:"150"`
	HeightMin  float64 `env:"PERSON_HEIGHT_MIN" envDefault:"0"`
	HeightMax  float64 `env:"PERSON_HEIGHT_MAX" envDefault:"3.0"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" envDefault:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" envDefault:"true"`

	// RequireAPIKey guards the API routes with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" envDefault:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS" envSeparator:","`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// BucketName returns STORAGE_BUCKET, falling back to S3_BUCKET.
func (c *StorageConfig) BucketName() string {
	if c.Bucket != "" {
		return c.Bucket
	}
	return c.LegacyBucket
}

// Conditional reports whether writes carry a version precondition.
func (c *WriteConfig) Conditional() bool {
	return c.Mode == WriteModeConditional
}
