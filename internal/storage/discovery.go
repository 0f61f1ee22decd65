package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DataDir holds tailzero's files inside a working directory
	DataDir = ".tailzero"

	// DefaultDatabaseName is the results database inside DataDir
	DefaultDatabaseName = "results.db"
)

// DiscoverDatabase returns the results database for the current directory.
// Returns the absolute path to .tailzero/results.db, which need not exist yet.
//
// TAILZERO_DB_PATH is checked first so tests and scripts can point elsewhere
// (including ":memory:") without discovery.
func DiscoverDatabase() (string, error) {
	if dbPath := os.Getenv("TAILZERO_DB_PATH"); dbPath != "" {
		return dbPath, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return databaseInDir(dir)
}

// databaseInDir returns the results database location for dir.
// Does NOT walk up the directory tree: a nested project never writes into
// its parent's history.
func databaseInDir(dir string) (string, error) {
	dbPath := filepath.Join(dir, DataDir, DefaultDatabaseName)

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absPath, nil
}
