package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv  string
	Session  SessionConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Payments PaymentsConfig
	Storage  StorageConfig
}

// SessionConfig describes how session tokens from the identity provider are verified
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
}

// HTTPConfig governs HTTP server behaviour
type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	LogLevel string // silent, error, warn, info
}

// LoggingConfig controls structured logging settings
type LoggingConfig struct {
	Level  string
	Format string // text|json
}

// PaymentsConfig configures the UPI payment link provider
type PaymentsConfig struct {
	BaseURL   string
	PayeeVPA  string
	PayeeName string
}

// StorageConfig configures where KYC documents are uploaded
type StorageConfig struct {
	Provider      string // local|gcs
	AccessBaseURL string
	LocalDir      string
	Bucket        string
	SignerEmail   string
	SignerKey     string
	UploadTTL     time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	cfg := &Config{
		NodeEnv: getEnv("NODE_ENV", "development"),
		Session: SessionConfig{
			Secret:     secret,
			CookieName: getEnv("SESSION_COOKIE", "finflow_session"),
			TTL:        7 * 24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Port:            getEnv("PORT", "3001"),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "finflow"),
			LogLevel: getEnv("DB_LOG_LEVEL", "warn"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Payments: PaymentsConfig{
			BaseURL:   getEnv("PAYMENT_BASE_URL", "https://finflow.app/pay"),
			PayeeVPA:  getEnv("UPI_VPA", "finflow@upi"),
			PayeeName: getEnv("UPI_PAYEE_NAME", "FinFlow"),
		},
		Storage: StorageConfig{
			Provider:      getEnv("STORAGE_PROVIDER", "local"),
			AccessBaseURL: getEnv("STORAGE_ACCESS_BASE_URL", "/uploads"),
			LocalDir:      getEnv("STORAGE_LOCAL_DIR", "./uploads"),
			Bucket:        os.Getenv("GCS_BUCKET"),
			SignerEmail:   os.Getenv("GCS_SIGNER_EMAIL"),
			SignerKey:     os.Getenv("GCS_SIGNER_PRIVATE_KEY"),
			UploadTTL:     15 * time.Minute,
		},
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		cfg.Session.TTL = d
	}
	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.HTTP.ShutdownTimeout = d
	}
	if _, err := strconv.Atoi(cfg.HTTP.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", cfg.HTTP.Port, err)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production semantics
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
