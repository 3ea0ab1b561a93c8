// Package config reads engine settings from the environment. Command-line
// flags override these values.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings of the engine and CLI.
type Config struct {
	// DB is the sqlite file holding snapshots and the audit log. Empty
	// runs with the in-memory persistence stub.
	DB string `env:"VIBE_DB"`

	// RulesDir is a CUE package directory replacing the built-in rules.
	RulesDir string `env:"VIBE_RULES_DIR"`

	MaxIterations int    `env:"VIBE_MAX_ITERATIONS" envDefault:"16"`
	Seed          uint64 `env:"VIBE_SEED"           envDefault:"1"`
	AutoPass      bool   `env:"VIBE_AUTO_PASS"      envDefault:"false"`
	LogLevel      string `env:"VIBE_LOG_LEVEL"      envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that the env tags cannot express.
func (c Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("VIBE_MAX_ITERATIONS must be >= 1, got %d", c.MaxIterations)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("VIBE_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
