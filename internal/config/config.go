// Package config loads tailzero settings from defaults, an optional YAML file
// and TAILZERO_* environment variables, in that order of precedence.
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// DefaultConfigFile is read from the working directory when no --config
// flag is given
const DefaultConfigFile = ".tailzero.yaml"

// Config is the full set of settings
type Config struct {
	Search  SearchConfig
	History HistoryRetentionConfig

	// DatabasePath is the results database (empty = discover)
	DatabasePath string

	// LogLevel is the minimum slog level written to stderr
	// Options: debug, info, warn, error
	// Default: warn
	LogLevel string
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Search:   DefaultSearchConfig(),
		History:  DefaultHistoryRetentionConfig(),
		LogLevel: "warn",
	}
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment. An empty path reads DefaultConfigFile if it exists; an
// explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	filePath := path
	if filePath == "" {
		filePath = DefaultConfigFile
	}
	cf, err := ReadConfigFile(filePath)
	switch {
	case err == nil:
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("applying %s: %w", filePath, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == "":
		// No default file; defaults stand
	default:
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TAILZERO_* environment variables
//
// In addition to the search and history variables:
//   - TAILZERO_DB_PATH: Results database path
//   - TAILZERO_LOG_LEVEL: debug, info, warn or error (default: warn)
func (c *Config) ApplyEnv() error {
	if err := c.Search.ApplyEnv(); err != nil {
		return err
	}
	if err := c.History.ApplyEnv(); err != nil {
		return err
	}
	if err := parseEnvString("TAILZERO_DB_PATH", &c.DatabasePath); err != nil {
		return err
	}
	if err := parseEnvString("TAILZERO_LOG_LEVEL", &c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level name to a slog.Level
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("log_level must be debug, info, warn or error (got %q)", s)
	}
}
