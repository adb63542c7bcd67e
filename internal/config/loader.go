package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if values cannot be parsed or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// normalize lower-cases enum-like settings and drops blank list entries.
func (c *Config) normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Write.Mode = strings.ToLower(strings.TrimSpace(c.Write.Mode))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Security.TrustedProxies = compact(c.Security.TrustedProxies)
	c.Security.APIKeys = compact(c.Security.APIKeys)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout > 0 && c.Server.WriteTimeout > 0 && c.Server.RequestTimeout >= c.Server.WriteTimeout {
		errs = append(errs, fmt.Sprintf("SERVER_REQUEST_TIMEOUT (%s) must be less than SERVER_WRITE_TIMEOUT (%s)",
			c.Server.RequestTimeout, c.Server.WriteTimeout))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, "SERVER_MAX_BODY_BYTES must be positive")
	}

	// Storage validation
	switch c.Storage.Backend {
	case BackendGCS:
		if c.Storage.BucketName() == "" {
			errs = append(errs, "STORAGE_BUCKET (or S3_BUCKET) is required for the gcs backend")
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres backend")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_BACKEND (%q) must be one of: gcs, postgres, sqlite, memory", c.Storage.Backend))
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, "STORAGE_KEY must not be empty")
	}
	if c.Storage.Timeout <= 0 {
		errs = append(errs, "STORAGE_TIMEOUT must be positive")
	}

	// Write validation
	if c.Write.Mode != WriteModeConditional && c.Write.Mode != WriteModeOverwrite {
		errs = append(errs, fmt.Sprintf("WRITE_MODE (%q) must be one of: conditional, overwrite", c.Write.Mode))
	}
	if c.Write.MaxAttempts <= 0 {
		errs = append(errs, "WRITE_MAX_ATTEMPTS must be positive")
	}
	if c.Write.MaxConcurrent <= 0 {
		errs = append(errs, "APPEND_MAX_CONCURRENT must be positive")
	}
	if c.Write.MaxWait <= 0 {
		errs = append(errs, "APPEND_MAX_WAIT must be positive")
	}

	// Person bounds validation
	if c.Person.NameMinLen < 1 {
		errs = append(errs, "PERSON_NAME_MIN_LEN must be at least 1")
	}
	if c.Person.NameMaxLen < c.Person.NameMinLen {
		errs = append(errs, fmt.Sprintf("PERSON_NAME_MAX_LEN (%d) must be >= PERSON_NAME_MIN_LEN (%d)",
			c.Person.NameMaxLen, c.Person.NameMinLen))
	}
	if c.Person.AgeMax < c.Person.AgeMin {
		errs = append(errs, fmt.Sprintf("PERSON_AGE_MAX (%d) must be >= PERSON_AGE_MIN (%d)",
			c.Person.AgeMax, c.Person.AgeMin))
	}
	if c.Person.HeightMax < c.Person.HeightMin {
		errs = append(errs, fmt.Sprintf("PERSON_HEIGHT_MAX (%g) must be >= PERSON_HEIGHT_MIN (%g)",
			c.Person.HeightMax, c.Person.HeightMin))
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs and API keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Storage: {Backend: %q, Bucket: %q, Key: %q, DatabaseURL: %s}, ",
		c.Storage.Backend, c.Storage.BucketName(), c.Storage.Key, maskURL(c.Storage.DatabaseURL)))
	b.WriteString(fmt.Sprintf("Write: {Mode: %q, MaxAttempts: %d, MaxConcurrent: %d}, ",
		c.Write.Mode, c.Write.MaxAttempts, c.Write.MaxConcurrent))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: %d configured}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys)))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

// maskURL keeps the host and database name of a connection string and hides credentials.
func maskURL(raw string) string {
	if raw == "" {
		return `""`
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "[MASKED]"
	}
	return fmt.Sprintf("%s://[MASKED]@%s%s", u.Scheme, u.Host, u.Path)
}
