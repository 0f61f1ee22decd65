package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile represents the structure of .tailzero.yaml
//
// Pointer fields distinguish "not set" from an explicit zero or false.
type ConfigFile struct {
	Search   SearchSection  `yaml:"search"`
	History  HistorySection `yaml:"history"`
	Database string         `yaml:"database,omitempty"`
	LogLevel string         `yaml:"log_level,omitempty"`
}

// SearchSection defines engine settings in the config file.
type SearchSection struct {
	StepSize         *uint64 `yaml:"step_size,omitempty"`
	Workers          *int    `yaml:"workers,omitempty"`
	Ordered          *bool   `yaml:"ordered,omitempty"`
	Contiguous       *bool   `yaml:"contiguous,omitempty"`
	Algorithm        string  `yaml:"algorithm,omitempty"`
	DomainMax        *uint64 `yaml:"domain_max,omitempty"`
	ProgressInterval string  `yaml:"progress_interval,omitempty"` // Duration string like "5s", "1m"
}

// HistorySection defines retention of recorded runs in the config file.
type HistorySection struct {
	MaxAge string `yaml:"max_age,omitempty"` // Duration string like "720h", "30d"
	Keep   *int   `yaml:"keep,omitempty"`
}

// ReadConfigFile reads and parses a YAML config file
func ReadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cf ConfigFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cf, nil
}

// Apply overrides cfg with every setting present in the file.
func (cf *ConfigFile) Apply(cfg *Config) error {
	s := cf.Search
	if s.StepSize != nil {
		cfg.Search.StepSize = *s.StepSize
	}
	if s.Workers != nil {
		cfg.Search.Workers = *s.Workers
	}
	if s.Ordered != nil {
		cfg.Search.Ordered = *s.Ordered
	}
	if s.Contiguous != nil {
		cfg.Search.Contiguous = *s.Contiguous
	}
	if s.Algorithm != "" {
		cfg.Search.Algorithm = s.Algorithm
	}
	if s.DomainMax != nil {
		cfg.Search.DomainMax = *s.DomainMax
	}
	if s.ProgressInterval != "" {
		d, err := parseDuration(s.ProgressInterval)
		if err != nil {
			return fmt.Errorf("invalid progress_interval: %w", err)
		}
		cfg.Search.ProgressInterval = d
	}

	if cf.History.MaxAge != "" {
		d, err := parseDuration(cf.History.MaxAge)
		if err != nil {
			return fmt.Errorf("invalid history max_age: %w", err)
		}
		cfg.History.MaxAgeHours = int(d / time.Hour)
	}
	if cf.History.Keep != nil {
		cfg.History.Keep = *cf.History.Keep
	}

	if cf.Database != "" {
		cfg.DatabasePath = cf.Database
	}
	if cf.LogLevel != "" {
		cfg.LogLevel = cf.LogLevel
	}
	return nil
}

// ToConfigFile converts a Config into its file representation
func ToConfigFile(cfg *Config) *ConfigFile {
	s := cfg.Search
	return &ConfigFile{
		Search: SearchSection{
			StepSize:         &s.StepSize,
			Workers:          &s.Workers,
			Ordered:          &s.Ordered,
			Contiguous:       &s.Contiguous,
			Algorithm:        s.Algorithm,
			DomainMax:        &s.DomainMax,
			ProgressInterval: s.ProgressInterval.String(),
		},
		History: HistorySection{
			MaxAge: cfg.History.MaxAge().String(),
			Keep:   &cfg.History.Keep,
		},
		Database: cfg.DatabasePath,
		LogLevel: cfg.LogLevel,
	}
}

// Marshal renders cfg as YAML
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(ToConfigFile(cfg))
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// SaveConfigFile writes cfg to path as YAML
func SaveConfigFile(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ExampleConfigFile returns an example configuration file content.
func ExampleConfigFile() string {
	return `# tailzero configuration
# Environment variables (TAILZERO_*) override this file; flags override both.

search:
  step_size: 1000         # Candidates per scan window
  workers: 1              # Concurrent scans (1 = sequential)
  ordered: true           # Keep parallel results in candidate order
  contiguous: false       # Also scan the candidate between windows
  algorithm: sha256       # sha256 or blake2b
  domain_max: 4294967295  # Exclusive upper bound of candidates
  progress_interval: 5s   # 0s disables progress logs

# Recorded runs (search --record)
history:
  max_age: 30d            # Prune runs older than this
  keep: 50                # Always keep the most recent runs

# database: .tailzero/results.db
log_level: warn
`
}

// parseDuration parses duration strings like "5m", "1h", "7d"
func parseDuration(s string) (time.Duration, error) {
	// Handle day suffix
	if len(s) > 1 && s[len(s)-1] == 'd' {
		days := s[:len(s)-1]
		var d int
		if _, err := fmt.Sscanf(days, "%d", &d); err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(d) * 24 * time.Hour, nil
	}

	// Use standard time.ParseDuration for other formats
	return time.ParseDuration(s)
}
