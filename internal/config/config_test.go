package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_ExampleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "example.yaml", ExampleConfigFile())

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultSearchConfig(), cfg.Search)
	assert.Equal(t, 720, cfg.History.MaxAgeHours)
	assert.Equal(t, 50, cfg.History.Keep)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, DefaultConfigFile, `
search:
  workers: 4
  ordered: false
  step_size: 500
  progress_interval: 1m
history:
  max_age: 2d
database: runs.db
log_level: info
`)
	t.Setenv("TAILZERO_WORKERS", "2")
	t.Setenv("TAILZERO_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Search.Workers, "environment overrides file")
	assert.False(t, cfg.Search.Ordered)
	assert.Equal(t, uint64(500), cfg.Search.StepSize)
	assert.Equal(t, time.Minute, cfg.Search.ProgressInterval)
	assert.Equal(t, 48, cfg.History.MaxAgeHours)
	assert.Equal(t, 50, cfg.History.Keep, "unset keys keep their defaults")
	assert.Equal(t, "runs.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "search: [unclosed"},
		{"bad duration", "search:\n  progress_interval: soonish\n"},
		{"bad max age", "history:\n  max_age: xd\n"},
		{"invalid workers", "search:\n  workers: 0\n"},
		{"invalid log level", "log_level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.yaml", tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveConfigFile_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Search.Workers = 6
	cfg.Search.Contiguous = true
	cfg.Search.Algorithm = "blake2b"
	cfg.History.Keep = 5
	cfg.DatabasePath = "x.db"

	path := filepath.Join(t.TempDir(), "nested", "tailzero.yaml")
	require.NoError(t, SaveConfigFile(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelWarn, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)

	d, err = parseDuration("90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = parseDuration("d")
	assert.Error(t, err)
}

func TestHistoryRetentionConfig(t *testing.T) {
	cfg := DefaultHistoryRetentionConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*24*time.Hour, cfg.MaxAge())
	assert.Equal(t, "HistoryRetentionConfig{MaxAgeHours: 720, Keep: 50}", cfg.String())

	assert.Error(t, HistoryRetentionConfig{MaxAgeHours: -1}.Validate())
	assert.Error(t, HistoryRetentionConfig{MaxAgeHours: 8761}.Validate())
	assert.Error(t, HistoryRetentionConfig{Keep: 10001}.Validate())

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cutoff, ok := cfg.Cutoff(now)
	assert.True(t, ok)
	assert.Equal(t, now.Add(-720*time.Hour), cutoff)

	_, ok = HistoryRetentionConfig{MaxAgeHours: 0, Keep: 0}.Cutoff(now)
	assert.False(t, ok, "a zero max age disables pruning by age")

	t.Setenv("TAILZERO_HISTORY_KEEP", "3")
	t.Setenv("TAILZERO_HISTORY_MAX_AGE_HOURS", "12")
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, 3, cfg.Keep)
	assert.Equal(t, 12, cfg.MaxAgeHours)

	t.Setenv("TAILZERO_HISTORY_KEEP", "many")
	assert.Error(t, cfg.ApplyEnv())
}
