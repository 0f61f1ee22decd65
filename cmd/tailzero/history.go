package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/tailzero/internal/config"
	"github.com/steveyegge/tailzero/internal/storage"
	"github.com/steveyegge/tailzero/internal/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded search runs",
	Long: `List searches recorded with "search --record", most recent first.

Examples:
  tailzero history              # Last 20 runs
  tailzero history --limit 0    # Every recorded run
  tailzero history show RUN_ID  # Matches of one run
  tailzero history prune        # Apply the retention policy`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		ctx := context.Background()

		s, err := openStore(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := runHistoryList(ctx, os.Stdout, s, limit, time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show a recorded run and its matches",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		ctx := context.Background()

		s, err := openStore(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := runHistoryShow(ctx, os.Stdout, s, args[0], output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old recorded runs",
	Long: `Delete recorded runs older than the retention period, always keeping the
most recent runs.

Retention comes from the history section of the config file or
TAILZERO_HISTORY_MAX_AGE_HOURS / TAILZERO_HISTORY_KEEP.
Default: runs older than 30 days are deleted, the latest 50 are always kept.
A max age of 0 disables pruning by age.

Examples:
  tailzero history prune
  tailzero history prune --max-age-hours 24 --keep 5`,
	Run: func(cmd *cobra.Command, args []string) {
		retention := cfg.History
		if cmd.Flags().Changed("max-age-hours") {
			retention.MaxAgeHours, _ = cmd.Flags().GetInt("max-age-hours")
		}
		if cmd.Flags().Changed("keep") {
			retention.Keep, _ = cmd.Flags().GetInt("keep")
		}
		if err := retention.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid retention configuration: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		s, err := openStore(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := runHistoryPrune(ctx, os.Stdout, s, retention, time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: prune failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum runs to list (0 = all)")
	historyShowCmd.Flags().StringP("output", "o", outputText, "Output format: text or yaml")
	historyPruneCmd.Flags().Int("max-age-hours", 0, "Delete runs older than this many hours (0 = never prune by age)")
	historyPruneCmd.Flags().Int("keep", 0, "Always keep this many of the most recent runs")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(ctx context.Context, w io.Writer, s storage.Storage, limit int, now time.Time) error {
	runs, err := s.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs. Use 'tailzero search --record' to record one.")
		return nil
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	for _, r := range runs {
		fmt.Fprintf(w, "%s  n=%d  %d/%d matches  %-10s %-8s %s  %s\n",
			cyan(r.ID), r.ZeroCount, r.MatchCount, r.Quota,
			r.Mode, r.Algorithm, runStatus(r), formatAge(r.StartedAt, now))
	}
	return nil
}

func runHistoryShow(ctx context.Context, w io.Writer, s storage.Storage, id, output string) error {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}

	if output == outputYAML {
		data, err := yaml.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %s\n", bold("Run"), run.ID)
	fmt.Fprintf(w, "  Started:    %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  Duration:   %s\n", formatDuration(run.Duration()))
	fmt.Fprintf(w, "  Request:    %d matches with %d zeros\n", run.Quota, run.ZeroCount)
	fmt.Fprintf(w, "  Engine:     %s, %d worker(s), step %d, contiguous=%t\n",
		run.Mode, run.Workers, run.StepSize, run.Contiguous)
	fmt.Fprintf(w, "  Algorithm:  %s\n", run.Algorithm)
	fmt.Fprintf(w, "  Scanned:    %s candidates in %s windows\n",
		formatNumber(run.Candidates), formatNumber(run.Windows))
	fmt.Fprintf(w, "  Status:     %s\n", runStatus(run))
	fmt.Fprintln(w)
	for _, m := range run.Matches {
		fmt.Fprintln(w, m.String())
	}
	return nil
}

// runHistoryPrune applies retention as of now. A max age of 0 disables age
// pruning, so nothing is deleted.
func runHistoryPrune(ctx context.Context, w io.Writer, s storage.Storage, retention config.HistoryRetentionConfig, now time.Time) error {
	cutoff, ok := retention.Cutoff(now)
	if !ok {
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Fprintf(w, "%s Age pruning disabled (max age: 0 hours); nothing deleted\n", cyan("ℹ"))
		return nil
	}

	deleted, err := s.PruneRuns(ctx, cutoff, retention.Keep)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(w, "%s Deleted %d run(s) (max age: %d hours, kept latest: %d)\n",
		green("✓"), deleted, retention.MaxAgeHours, retention.Keep)
	return nil
}

func runStatus(r *types.SearchRun) string {
	switch {
	case r.Cancelled:
		return color.YellowString("cancelled")
	case r.Exhausted:
		return color.YellowString("exhausted")
	default:
		return color.GreenString("complete")
	}
}
