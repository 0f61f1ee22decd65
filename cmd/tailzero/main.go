package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/tailzero/internal/config"
	"github.com/steveyegge/tailzero/internal/storage"
)

// Set by the linker for release builds
var version = "dev"

var (
	// cfg is the effective configuration, loaded before any command runs
	cfg = config.Default()

	// store is opened on first use by commands that need the results database
	store storage.Storage
)

var rootCmd = &cobra.Command{
	Use:   "tailzero",
	Short: "Find integers whose hash ends in a run of zeros",
	Long: `tailzero searches the 32-bit unsigned integers for candidates whose
hex digest ends with at least N zero characters.

Candidates are scanned in fixed-size windows starting at 1. Searches can run
sequentially or across several workers, and completed runs can be recorded
in a local results database for later inspection.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("db") {
			loaded.DatabasePath, _ = cmd.Flags().GetString("db")
		}

		level, err := config.ParseLogLevel(loaded.LogLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			if err := store.Close(); err != nil {
				slog.Warn("failed to close results database", "error", err)
			}
			store = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./"+config.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (default: warn)")
	rootCmd.PersistentFlags().String("db", "", "Results database path (default: ./.tailzero/results.db)")
}

// openStore opens the results database if it is not open yet
func openStore(ctx context.Context) (storage.Storage, error) {
	if store != nil {
		return store, nil
	}
	s, err := storage.NewStorage(ctx, &storage.Config{Path: cfg.DatabasePath})
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	store = s
	return store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
