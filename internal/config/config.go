package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN). Postgres or SQLite.
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Secret used to sign and verify session tokens
	JWTSecret string

	// How long issued tokens stay valid
	TokenTTL time.Duration

	// Quiet window for upload notification coalescing
	NotifyWindow time.Duration

	// Maximum database connection pool size
	MaxDBConnections int

	// Enable debug logging
	Debug bool

	// SMTP outbound mail configuration
	SMTP SMTPConfig

	// Object storage configuration
	Storage StorageConfig
}

// SMTPConfig holds outbound mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether an SMTP host is configured. When false the server
// falls back to a log-only mailer so development does not require a relay.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// StorageConfig holds the S3 object storage settings.
type StorageConfig struct {
	Bucket string
	Region string
	// Prefix is prepended to every object key (e.g. "uploads/")
	Prefix string
}

// Enabled reports whether a bucket is configured.
func (c StorageConfig) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", "file:ratings.db"),
		ServerAddr:       getEnv("SERVER_ADDR", "localhost:8080"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         getEnvDuration("TOKEN_TTL", 24*time.Hour),
		NotifyWindow:     getEnvDuration("NOTIFY_WINDOW", 120*time.Second),
		MaxDBConnections: getEnvInt("MAX_DB_CONNECTIONS", 25),
		Debug:            getEnvBool("DEBUG", false),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		},
		Storage: StorageConfig{
			Bucket: getEnv("S3_BUCKET", ""),
			Region: getEnv("S3_REGION", "us-east-1"),
			Prefix: getEnv("S3_PREFIX", "uploads/"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.NotifyWindow <= 0 {
		return nil, fmt.Errorf("NOTIFY_WINDOW must be positive")
	}

	return cfg, nil
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as a bool or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default.
// Accepts Go duration strings ("90s", "2m") and bare seconds ("120").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
