package config

import (
	"fmt"
	"time"
)

// HistoryRetentionConfig holds configuration for pruning recorded search runs
type HistoryRetentionConfig struct {
	// MaxAgeHours is how old a recorded run must be before it is pruned (in hours)
	// Default: 720 (30 days), Range: 0-8760
	// 0 = never prune by age
	MaxAgeHours int

	// Keep is the minimum number of recent runs kept regardless of age
	// Default: 50, Range: 0-10000
	Keep int
}

// DefaultHistoryRetentionConfig returns the default history retention configuration
func DefaultHistoryRetentionConfig() HistoryRetentionConfig {
	return HistoryRetentionConfig{
		MaxAgeHours: 720,
		Keep:        50,
	}
}

// Validate checks if the configuration has valid values
func (c HistoryRetentionConfig) Validate() error {
	if c.MaxAgeHours < 0 || c.MaxAgeHours > 8760 {
		return fmt.Errorf("max_age_hours must be between 0 and 8760 (got %d)", c.MaxAgeHours)
	}
	if c.Keep < 0 || c.Keep > 10000 {
		return fmt.Errorf("keep must be between 0 and 10000 (got %d)", c.Keep)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c HistoryRetentionConfig) String() string {
	return fmt.Sprintf(
		"HistoryRetentionConfig{MaxAgeHours: %d, Keep: %d}",
		c.MaxAgeHours, c.Keep,
	)
}

// MaxAge returns the age threshold as a time.Duration
func (c HistoryRetentionConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeHours) * time.Hour
}

// Cutoff returns the start time before which runs are pruned. It reports
// false when MaxAgeHours is 0 and nothing is pruned by age.
func (c HistoryRetentionConfig) Cutoff(now time.Time) (time.Time, bool) {
	if c.MaxAgeHours == 0 {
		return time.Time{}, false
	}
	return now.Add(-c.MaxAge()), true
}

// ApplyEnv overrides fields from environment variables
//
// Environment variables:
//   - TAILZERO_HISTORY_MAX_AGE_HOURS: Prune runs older than this (default: 720)
//   - TAILZERO_HISTORY_KEEP: Minimum recent runs to keep (default: 50)
func (c *HistoryRetentionConfig) ApplyEnv() error {
	if err := parseEnvInt("TAILZERO_HISTORY_MAX_AGE_HOURS", &c.MaxAgeHours); err != nil {
		return err
	}
	if err := parseEnvInt("TAILZERO_HISTORY_KEEP", &c.Keep); err != nil {
		return err
	}
	return nil
}
