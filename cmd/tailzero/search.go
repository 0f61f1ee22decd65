package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/tailzero/internal/config"
	"github.com/steveyegge/tailzero/internal/metrics"
	"github.com/steveyegge/tailzero/internal/search"
	"github.com/steveyegge/tailzero/internal/storage"
	"github.com/steveyegge/tailzero/internal/types"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for candidates whose digest ends in N zeros",
	Long: `Search the 32-bit integers, starting at 1, for candidates whose hex digest
ends with at least N zeros, stopping after COUNT matches or when the domain
runs out.

Results are printed one per line as "candidate, digest". If the domain runs
out first, whatever was found is printed and a warning goes to stderr.
Ctrl-C stops the search and prints the matches found so far.

Examples:
  tailzero search -n 3                   # First candidate with 3 trailing zeros
  tailzero search -n 5 -c 6 --workers 8  # Six matches, scanned by 8 workers
  tailzero search -n 2 -c 10 --record    # Store the run in the results database
  tailzero search -n 4 --output yaml     # Machine-readable result with stats
  tailzero search -n 7 --metrics-addr :2112  # Expose progress to Prometheus`,
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := searchOptionsFromFlags(cmd, cfg.Search)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if opts.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.timeout)
			defer cancel()
		}

		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			reg := prometheus.NewRegistry()
			obs, err := metrics.NewPrometheusObserver(reg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			bound, _, err := metrics.Start(ctx, addr, reg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			cyan := color.New(color.FgCyan).SprintFunc()
			fmt.Fprintf(os.Stderr, "%s Metrics available at http://%s/metrics\n", cyan("ℹ"), bound)
			opts.metrics = obs
		}

		if err := runSearch(ctx, os.Stdout, os.Stderr, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	addSearchFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("number", "n", 0, "Required number of trailing zeros")
	cmd.Flags().IntP("count", "c", 1, "Number of matches to find")
	cmd.Flags().Int("workers", 0, "Concurrent scans (default from config: 1)")
	cmd.Flags().Uint64("step", 0, "Candidates per scan window (default from config: 1000)")
	cmd.Flags().Bool("contiguous", false, "Also scan the candidate between consecutive windows")
	cmd.Flags().Bool("unordered", false, "Commit matches as scans finish instead of in candidate order, for higher throughput (no effect with --workers 1)")
	cmd.Flags().String("algorithm", "", "Digest algorithm: sha256 or blake2b (default from config: sha256)")
	cmd.Flags().Duration("timeout", 0, "Stop the search after this long (0 = no limit)")
	cmd.Flags().StringP("output", "o", outputText, "Output format: text or yaml")
	cmd.Flags().Bool("record", false, "Record the run in the results database")
	cmd.Flags().Bool("stats", false, "Print scan statistics to stderr")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while searching (e.g. :2112)")
	_ = cmd.MarkFlagRequired("number")
}

// searchOptions is everything a search run needs, resolved from config and flags
type searchOptions struct {
	request types.SearchRequest
	search  config.SearchConfig
	timeout time.Duration
	output  string
	record  bool
	stats   bool
	metrics search.MetricsObserver // nil = none
}

// searchOptionsFromFlags layers the flags the user set over base
func searchOptionsFromFlags(cmd *cobra.Command, base config.SearchConfig) (searchOptions, error) {
	flags := cmd.Flags()
	opts := searchOptions{search: base}

	opts.request.ZeroCount, _ = flags.GetInt("number")
	opts.request.Quota, _ = flags.GetInt("count")
	opts.timeout, _ = flags.GetDuration("timeout")
	opts.output, _ = flags.GetString("output")
	opts.record, _ = flags.GetBool("record")
	opts.stats, _ = flags.GetBool("stats")

	if flags.Changed("workers") {
		opts.search.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("step") {
		opts.search.StepSize, _ = flags.GetUint64("step")
	}
	if flags.Changed("contiguous") {
		opts.search.Contiguous, _ = flags.GetBool("contiguous")
	}
	if flags.Changed("unordered") {
		unordered, _ := flags.GetBool("unordered")
		opts.search.Ordered = !unordered
	}
	if flags.Changed("algorithm") {
		opts.search.Algorithm, _ = flags.GetString("algorithm")
	}

	if err := opts.request.Validate(); err != nil {
		return opts, err
	}
	if err := opts.search.Validate(); err != nil {
		return opts, err
	}
	if opts.timeout < 0 {
		return opts, fmt.Errorf("timeout cannot be negative (got %s)", opts.timeout)
	}
	if opts.output != outputText && opts.output != outputYAML {
		return opts, fmt.Errorf("output must be %q or %q (got %q)", outputText, outputYAML, opts.output)
	}
	return opts, nil
}

// searchReport is the yaml form of a finished search
type searchReport struct {
	search.Result `yaml:",inline"`
	Cancelled     bool `yaml:"cancelled"`
}

// runSearch runs one search and writes its results. An interrupted search is
// not an error: the partial results are printed with a warning.
func runSearch(ctx context.Context, stdout, stderr io.Writer, opts searchOptions) error {
	engineCfg, err := opts.search.EngineConfig(slog.Default())
	if err != nil {
		return err
	}
	engineCfg.Metrics = opts.metrics
	coord, err := search.New(engineCfg)
	if err != nil {
		return err
	}

	if opts.output == outputText {
		fmt.Fprintf(stdout, "Starting search %d hashes with %d zeroes ...\n", opts.request.Quota, opts.request.ZeroCount)
	}

	res, err := coord.Search(ctx, opts.request)
	cancelled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	if err != nil && !cancelled {
		return err
	}

	switch opts.output {
	case outputYAML:
		data, err := yaml.Marshal(searchReport{Result: *res, Cancelled: cancelled})
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		if _, err := stdout.Write(data); err != nil {
			return err
		}
	default:
		for _, m := range res.Matches {
			fmt.Fprintln(stdout, m.String())
		}
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	switch {
	case cancelled:
		fmt.Fprintf(stderr, "%s Search stopped (%v): found %d of %d requested matches\n",
			yellow("⚠"), err, len(res.Matches), opts.request.Quota)
	case res.Exhausted:
		fmt.Fprintf(stderr, "%s Candidate domain exhausted: found %d of %d requested matches\n",
			yellow("⚠"), len(res.Matches), opts.request.Quota)
	}

	if opts.stats {
		printStats(stderr, res.Stats)
	}

	if opts.record {
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		// The search context may already be cancelled; recording must still happen
		run := storage.NewRun(res, coord.Config(), cancelled)
		if err := s.RecordRun(context.WithoutCancel(ctx), run); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(stderr, "%s Recorded run %s\n", green("✓"), res.ID)
	}

	return nil
}

func printStats(w io.Writer, st search.Stats) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(w, "%s Scanned %s candidates in %s windows in %s (%s/s)\n",
		cyan("ℹ"),
		formatNumber(st.Candidates),
		formatNumber(st.Windows),
		formatDuration(st.Elapsed),
		formatNumber(uint64(st.HashRate())),
	)
}
