// Package config loads runtime settings from APERY_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/talgya/apery/internal/precision"
)

// Config holds process-wide settings. Zero Workers means one per CPU.
type Config struct {
	Digits      int      `env:"APERY_DIGITS"       envDefault:"50"`
	MaxDigits   int      `env:"APERY_MAX_DIGITS"   envDefault:"2000"`
	Workers     int      `env:"APERY_WORKERS"      envDefault:"0"`
	Catalog     string   `env:"APERY_CATALOG"`
	DBPath      string   `env:"APERY_DB_PATH"      envDefault:"data/apery.db"`
	Port        string   `env:"APERY_PORT"         envDefault:"8080"`
	AdminKey    string   `env:"APERY_ADMIN_KEY"`
	LogLevel    string   `env:"APERY_LOG_LEVEL"    envDefault:"info"`
	CORSOrigins []string `env:"APERY_CORS_ORIGINS" envSeparator:","`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks digit bounds and the log level. The digit bound is the
// precision package limit; MaxDigits only caps API requests.
func (c Config) Validate() error {
	if c.MaxDigits <= 0 || c.MaxDigits > precision.MaxDigits {
		return fmt.Errorf("APERY_MAX_DIGITS must be in [1, %d], got %d", precision.MaxDigits, c.MaxDigits)
	}
	if c.Digits <= 0 || c.Digits > precision.MaxDigits {
		return fmt.Errorf("digits must be in [1, %d], got %d", precision.MaxDigits, c.Digits)
	}
	if c.Workers < 0 {
		return fmt.Errorf("APERY_WORKERS must not be negative, got %d", c.Workers)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ValidateServe additionally holds the default digits to the per-request
// ceiling the HTTP server enforces. One-shot commands are not bound by it.
func (c Config) ValidateServe() error {
	if c.Digits > c.MaxDigits {
		return fmt.Errorf("digits %d exceed APERY_MAX_DIGITS %d", c.Digits, c.MaxDigits)
	}
	return nil
}

// Level returns the configured slog level, defaulting to info.
func (c Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel accepts debug, info, warn and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("APERY_LOG_LEVEL: %w", err)
	}
	return l, nil
}
