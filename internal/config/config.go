// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultDueDays is how many days after a group's date its settlement is
// due when SETTLE_DUE_DAYS is not set.
const DefaultDueDays = 30

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL string
	ListenAddr  string
	LogLevel    string
	// DueDays is the settlement due-date policy: a group is overdue once
	// more than DueDays days have passed since its date, and a payment
	// after that deadline counts as late.
	DueDays int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ListenAddr:  os.Getenv("LISTEN_ADDR"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	cfg.DueDays = DefaultDueDays
	if daysStr := os.Getenv("SETTLE_DUE_DAYS"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			cfg.DueDays = d
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
