// Package config loads application configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	// Server
	Port         string
	IsProduction bool

	// Database
	DatabaseURL      string
	DBMaxConns       int32
	DBMinConns       int32
	MigrateOnStart   bool
	MigrationsPath   string
	StatementTimeout time.Duration

	// Auth
	JWTSecret         string
	JWTIssuer         string
	JWTExpiryDuration time.Duration

	// Rate limiting, requests per minute per client IP.
	RateLimitPerMinute int64

	// Logging
	LogLevel string
}

// Load reads configuration. Environment variables win over .env values,
// which win over defaults.
func Load() (*Config, error) {
	// Ignore error; .env is optional outside local development.
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_MAX_CONNS", 25)
	viper.SetDefault("DB_MIN_CONNS", 5)
	viper.SetDefault("MIGRATE_ON_START", true)
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("STATEMENT_TIMEOUT", "30s")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_ISSUER", "retailcore")
	viper.SetDefault("JWT_EXPIRY_DURATION", "12h")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 300)
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:               viper.GetString("PORT"),
		IsProduction:       viper.GetBool("IS_PRODUCTION"),
		DatabaseURL:        viper.GetString("DATABASE_URL"),
		DBMaxConns:         viper.GetInt32("DB_MAX_CONNS"),
		DBMinConns:         viper.GetInt32("DB_MIN_CONNS"),
		MigrateOnStart:     viper.GetBool("MIGRATE_ON_START"),
		MigrationsPath:     viper.GetString("MIGRATIONS_PATH"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		JWTIssuer:          viper.GetString("JWT_ISSUER"),
		RateLimitPerMinute: viper.GetInt64("RATE_LIMIT_PER_MINUTE"),
		LogLevel:           viper.GetString("LOG_LEVEL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	stmtTimeout, err := time.ParseDuration(viper.GetString("STATEMENT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATEMENT_TIMEOUT: %w", err)
	}
	cfg.StatementTimeout = stmtTimeout

	jwtExpiry, err := time.ParseDuration(viper.GetString("JWT_EXPIRY_DURATION"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_DURATION: %w", err)
	}
	cfg.JWTExpiryDuration = jwtExpiry

	if cfg.IsProduction && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}
