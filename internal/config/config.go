// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load(ctx) layers file and env on top.
// - Validation failures wrap ErrInvalidConfig, loading failures ErrLoadConfig.
package config

import (
	"fmt"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoder: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the data store backend: memory or postgres.
	Store string `koanf:"store"`

	PostgresDSN          string `koanf:"postgres_dsn"`
	PostgresMaxOpenConns int    `koanf:"postgres_max_open_conns"`
	// PostgresConnMaxLifetime bounds connection reuse, e.g. "30m".
	PostgresConnMaxLifetime time.Duration `koanf:"postgres_conn_max_lifetime"`

	// FixturePath is a YAML fixture loaded into the memory store at startup.
	FixturePath string `koanf:"fixture_path"`

	// SeedCoaches and SeedAthletes size the synthetic dataset generated for
	// an empty memory store. Zero coaches disables seeding.
	SeedCoaches  int   `koanf:"seed_coaches"`
	SeedAthletes int   `koanf:"seed_athletes"`
	Seed         int64 `koanf:"seed"`

	// RateLimitPerMinute and RateLimitBurst shape the per-coach token bucket
	// on analysis routes. Zero disables limiting.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`
	RateLimitBurst     int `koanf:"rate_limit_burst"`

	DefaultLoadWindowDays int `koanf:"default_load_window_days"`
	MaxLoadWindowDays     int `koanf:"max_load_window_days"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		Store:                   StoreMemory,
		PostgresMaxOpenConns:    10,
		PostgresConnMaxLifetime: 30 * time.Minute,
		SeedCoaches:             0,
		SeedAthletes:            8,
		Seed:                    1,
		RateLimitPerMinute:      600,
		RateLimitBurst:          50,
		DefaultLoadWindowDays:   28,
		MaxLoadWindowDays:       90,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Store != StoreMemory && c.Store != StorePostgres:
		return fmt.Errorf("%w: store %q must be %s or %s", ErrInvalidConfig, c.Store, StoreMemory, StorePostgres)
	case c.Store == StorePostgres && c.PostgresDSN == "":
		return fmt.Errorf("%w: postgres_dsn required for the postgres store", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	case c.MaxLoadWindowDays < 1:
		return fmt.Errorf("%w: max_load_window_days must be positive", ErrInvalidConfig)
	case c.DefaultLoadWindowDays < 1 || c.DefaultLoadWindowDays > c.MaxLoadWindowDays:
		return fmt.Errorf("%w: default_load_window_days must be within 1..%d", ErrInvalidConfig, c.MaxLoadWindowDays)
	case c.RateLimitPerMinute < 0 || c.RateLimitBurst < 0:
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	case c.SeedCoaches < 0 || c.SeedAthletes < 0:
		return fmt.Errorf("%w: seed sizes must not be negative", ErrInvalidConfig)
	}
	return nil
}
