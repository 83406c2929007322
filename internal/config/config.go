// Package config loads CLI settings from the environment and lookup tables from files.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "GNSSMASK_"

// ErrInvalidConfig means a setting has an unusable value.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds settings that command-line flags may override.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`
	TablesFile string `env:"TABLES"`
	Strict     bool   `env:"STRICT" envDefault:"false"`
	Workers    int    `env:"WORKERS" envDefault:"4"`
}

// Load reads configuration from the environment, after loading a .env file from the
// working directory if one exists.
func Load() (*Config, error) {
	// Attempt to load .env file for local setups.
	_ = godotenv.Load()

	return parse(env.Options{Prefix: EnvPrefix})
}

// FromEnvironment reads configuration from environ instead of the process environment.
// Keys carry the GNSSMASK_ prefix.
func FromEnvironment(environ map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log format %q, want text or json", ErrInvalidConfig, c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers %d, want at least 1", ErrInvalidConfig, c.Workers)
	}
	return nil
}
