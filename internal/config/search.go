package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/steveyegge/tailzero/internal/digest"
	"github.com/steveyegge/tailzero/internal/search"
)

// SearchConfig holds the engine settings a search runs with
type SearchConfig struct {
	// StepSize is the number of candidates handed to one scan
	// Default: 1000, Range: 1-4294967295
	StepSize uint64

	// Workers is the number of windows scanned concurrently
	// Default: 1 (sequential), Range: 1-1024
	Workers int

	// Ordered keeps parallel results in candidate order
	// Default: true
	Ordered bool

	// Contiguous scans the candidate between consecutive windows that is
	// skipped by default
	// Default: false
	Contiguous bool

	// Algorithm is the digest function ("sha256" or "blake2b")
	// Default: sha256
	Algorithm string

	// DomainMax is the exclusive upper bound of the candidate domain
	// Default: 4294967295, Range: 2-4294967295
	DomainMax uint64

	// ProgressInterval is how often progress is logged during a search
	// Default: 5s, 0 disables progress logging
	ProgressInterval time.Duration
}

// DefaultSearchConfig returns the default search configuration
//
// These defaults reproduce the historical behavior: sequential scanning of
// 1000-candidate windows with SHA-256 over the full 32-bit domain.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		StepSize:         search.DefaultStepSize,
		Workers:          1,
		Ordered:          true,
		Contiguous:       false,
		Algorithm:        digest.SHA256,
		DomainMax:        search.DefaultDomainMax,
		ProgressInterval: 5 * time.Second,
	}
}

// Validate checks if the configuration has valid values
func (c SearchConfig) Validate() error {
	if c.StepSize < 1 {
		return fmt.Errorf("step_size must be at least 1 (got %d)", c.StepSize)
	}
	if c.Workers < 1 || c.Workers > search.MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (got %d)", search.MaxWorkers, c.Workers)
	}
	if _, err := digest.Lookup(c.Algorithm); err != nil {
		return fmt.Errorf("algorithm: %w", err)
	}
	if c.DomainMax < 2 || c.DomainMax > search.DefaultDomainMax {
		return fmt.Errorf("domain_max must be between 2 and %d (got %d)",
			uint64(search.DefaultDomainMax), c.DomainMax)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("progress_interval cannot be negative (got %s)", c.ProgressInterval)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c SearchConfig) String() string {
	return fmt.Sprintf(
		"SearchConfig{StepSize: %d, Workers: %d, Ordered: %t, Contiguous: %t, "+
			"Algorithm: %s, DomainMax: %d, ProgressInterval: %s}",
		c.StepSize, c.Workers, c.Ordered, c.Contiguous,
		c.Algorithm, c.DomainMax, c.ProgressInterval,
	)
}

// EngineConfig converts the settings into a search.Config
func (c SearchConfig) EngineConfig(logger *slog.Logger) (search.Config, error) {
	if err := c.Validate(); err != nil {
		return search.Config{}, err
	}
	h, err := digest.Lookup(c.Algorithm)
	if err != nil {
		return search.Config{}, err
	}
	return search.Config{
		StepSize:         c.StepSize,
		Workers:          c.Workers,
		Ordered:          c.Ordered,
		Contiguous:       c.Contiguous,
		DomainMax:        c.DomainMax,
		Hasher:           h,
		ProgressInterval: c.ProgressInterval,
		Logger:           logger,
	}, nil
}

// ApplyEnv overrides fields from environment variables
//
// Environment variables:
//   - TAILZERO_STEP_SIZE: Candidates per window (default: 1000)
//   - TAILZERO_WORKERS: Concurrent scans (default: 1)
//   - TAILZERO_ORDERED: Keep parallel results in candidate order (default: true)
//   - TAILZERO_CONTIGUOUS: Scan the candidate between windows (default: false)
//   - TAILZERO_ALGORITHM: Digest algorithm (default: sha256)
//   - TAILZERO_DOMAIN_MAX: Exclusive upper bound of the domain (default: 4294967295)
//   - TAILZERO_PROGRESS_INTERVAL: Progress log interval, e.g. "10s" (default: 5s)
//
// Returns an error if any environment variable has an invalid value.
func (c *SearchConfig) ApplyEnv() error {
	if err := parseEnvUint64("TAILZERO_STEP_SIZE", &c.StepSize); err != nil {
		return err
	}
	if err := parseEnvInt("TAILZERO_WORKERS", &c.Workers); err != nil {
		return err
	}
	if err := parseEnvBool("TAILZERO_ORDERED", &c.Ordered); err != nil {
		return err
	}
	if err := parseEnvBool("TAILZERO_CONTIGUOUS", &c.Contiguous); err != nil {
		return err
	}
	if err := parseEnvString("TAILZERO_ALGORITHM", &c.Algorithm); err != nil {
		return err
	}
	if err := parseEnvUint64("TAILZERO_DOMAIN_MAX", &c.DomainMax); err != nil {
		return err
	}
	if err := parseEnvDuration("TAILZERO_PROGRESS_INTERVAL", &c.ProgressInterval); err != nil {
		return err
	}
	return nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvUint64 parses a uint64 from an environment variable
func parseEnvUint64(key string, dest *uint64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvDuration parses a time.Duration from an environment variable
func parseEnvDuration(key string, dest *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvString parses a string from an environment variable
func parseEnvString(key string, dest *string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	*dest = value
	return nil
}
