// Package config reads the server configuration from the environment.
//
// main loads a .env file first (godotenv), so values there behave like real
// environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the server.
type Config struct {
	Port     string `env:"PORT"      envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/games.db"`
	DatabaseURL  string `env:"DATABASE_URL"`

	RedisURL string `env:"REDIS_URL"`

	SESRegion    string `env:"SES_REGION"     envDefault:"us-east-1"`
	SESFromEmail string `env:"SES_FROM_EMAIL"`
	SESFromName  string `env:"SES_FROM_NAME"  envDefault:"Guessing Games"`

	ReminderInterval     time.Duration `env:"REMINDER_INTERVAL"      envDefault:"24h"`
	CacheRefreshInterval time.Duration `env:"CACHE_REFRESH_INTERVAL" envDefault:"0s"`

	WordBankFile string `env:"WORD_BANK_FILE"`
	RandomSeed   uint64 `env:"RANDOM_SEED" envDefault:"0"`

	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.DatabaseType = strings.ToLower(strings.TrimSpace(cfg.DatabaseType))
	switch cfg.DatabaseType {
	case "", "sqlite", "sqlite3":
		cfg.DatabaseType = "sqlite"
	case "postgres", "postgresql":
		cfg.DatabaseType = "postgres"
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for %s", cfg.DatabaseType)
		}
	case "mysql":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for %s", cfg.DatabaseType)
		}
	default:
		return nil, fmt.Errorf("unsupported DATABASE_TYPE %q", cfg.DatabaseType)
	}
	if cfg.ReminderInterval < 0 || cfg.CacheRefreshInterval < 0 {
		return nil, fmt.Errorf("intervals must not be negative")
	}
	return &cfg, nil
}
