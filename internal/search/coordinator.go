package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/steveyegge/tailzero/internal/digest"
	"github.com/steveyegge/tailzero/internal/scanner"
	"github.com/steveyegge/tailzero/internal/types"
)

const (
	// DefaultStepSize is the number of candidates in one scan window
	DefaultStepSize = 1000

	// DefaultDomainMax is the exclusive upper bound of the candidate domain
	DefaultDomainMax = math.MaxUint32

	// MaxWorkers caps the number of concurrent scans
	MaxWorkers = 1024
)

// Config holds the engine-wide settings of a Coordinator
type Config struct {
	// StepSize is the number of candidates per window (>= 1)
	StepSize uint64

	// Workers is the number of windows scanned concurrently.
	// 1 scans sequentially.
	Workers int

	// Ordered keeps results in candidate order when Workers > 1 by
	// dispatching windows in waves and committing each wave in window order.
	// Without it, matches are committed as scans complete.
	Ordered bool

	// Contiguous closes the one-candidate gap left between windows
	Contiguous bool

	// DomainMax is the exclusive upper bound of the candidate domain
	DomainMax uint64

	// Hasher computes candidate digests (default: sha256)
	Hasher digest.Hasher

	// ProgressInterval throttles progress logging; 0 disables it
	ProgressInterval time.Duration

	// Logger receives structured search logs (default: slog.Default())
	Logger *slog.Logger

	// Metrics observes scans and searches (default: no-op)
	Metrics MetricsObserver
}

// DefaultConfig returns the settings the search has historically used:
// sequential scanning of 1000-candidate windows over the 32-bit domain.
func DefaultConfig() Config {
	return Config{
		StepSize:         DefaultStepSize,
		Workers:          1,
		Ordered:          true,
		Contiguous:       false,
		DomainMax:        DefaultDomainMax,
		Hasher:           digest.Default(),
		ProgressInterval: 5 * time.Second,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.StepSize < 1 {
		return fmt.Errorf("step size must be at least 1 (got %d)", c.StepSize)
	}
	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (got %d)", MaxWorkers, c.Workers)
	}
	if c.DomainMax < 2 || c.DomainMax > DefaultDomainMax {
		return fmt.Errorf("domain max must be between 2 and %d (got %d)", uint64(DefaultDomainMax), c.DomainMax)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("progress interval cannot be negative (got %s)", c.ProgressInterval)
	}
	return nil
}

// Mode names the dispatch strategy the configuration selects
func (c Config) Mode() string {
	switch {
	case c.Workers <= 1:
		return "sequential"
	case c.Ordered:
		return "ordered"
	default:
		return "unordered"
	}
}

// Result is what a search hands back to its caller
type Result struct {
	ID         string              `json:"id" yaml:"id"`
	Request    types.SearchRequest `json:"request" yaml:"request"`
	Algorithm  string              `json:"algorithm" yaml:"algorithm"`
	Matches    []types.Match       `json:"matches" yaml:"matches"`
	Exhausted  bool                `json:"exhausted" yaml:"exhausted"`
	Stats      Stats               `json:"stats" yaml:"stats"`
	StartedAt  time.Time           `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time           `json:"finished_at" yaml:"finished_at"`
}

// Satisfied reports whether the quota was met
func (r *Result) Satisfied() bool {
	return len(r.Matches) >= r.Request.Quota
}

// Shortfall returns how many requested matches were not found
func (r *Result) Shortfall() int {
	if r.Satisfied() {
		return 0
	}
	return r.Request.Quota - len(r.Matches)
}

// Coordinator dispatches scans over successive windows until the quota is
// met or the domain runs out. A Coordinator may run several searches; each
// gets its own result set.
type Coordinator struct {
	cfg    Config
	logger *slog.Logger
	active atomic.Pointer[counters]
}

// New creates a coordinator. Zero-valued Hasher and Logger fall back to
// their defaults.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Hasher == nil {
		cfg.Hasher = digest.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &NoopMetricsObserver{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{cfg: cfg, logger: logger}, nil
}

// Config returns the coordinator's settings
func (c *Coordinator) Config() Config {
	return c.cfg
}

// Stats returns the progress of the most recent search. It is safe to call
// while that search is running.
func (c *Coordinator) Stats() Stats {
	st := c.active.Load()
	if st == nil {
		return Stats{}
	}
	return st.snapshot()
}

// Search collects up to req.Quota matches. Running out of domain is not an
// error: the result is marked Exhausted and holds whatever was found.
//
// The only error besides an invalid request is ctx being cancelled, in which
// case the matches collected so far are returned alongside ctx.Err().
// Windows already being scanned finish; matches they produce after the quota
// is reached are discarded, so len(Matches) never exceeds the quota.
func (c *Coordinator) Search(ctx context.Context, req types.SearchRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	st := newCounters()
	c.active.Store(st)

	res := &Result{
		ID:        uuid.NewString(),
		Request:   req,
		Algorithm: c.cfg.Hasher.Name(),
		StartedAt: st.startedAt,
	}
	log := c.logger.With("search_id", res.ID)
	log.Info("search started",
		"zero_count", req.ZeroCount,
		"quota", req.Quota,
		"algorithm", res.Algorithm,
		"mode", c.cfg.Mode(),
		"workers", c.cfg.Workers,
		"step_size", c.cfg.StepSize,
		"contiguous", c.cfg.Contiguous)

	run := &searchRun{
		cfg:       c.cfg,
		zeroCount: req.ZeroCount,
		results:   NewResultSet(req.Quota),
		planner:   NewPlanner(c.cfg.StepSize, c.cfg.Contiguous, c.cfg.DomainMax),
		stats:     st,
		log:       log,
	}
	if c.cfg.ProgressInterval > 0 {
		run.progress = &rate.Sometimes{Interval: c.cfg.ProgressInterval}
	}

	var err error
	switch {
	case req.Quota == 0:
	case req.ZeroCount > c.cfg.Hasher.HexLen():
		// No digest is long enough; nothing to scan
		log.Info("zero count exceeds digest length, skipping scan",
			"zero_count", req.ZeroCount, "digest_length", c.cfg.Hasher.HexLen())
	case c.cfg.Workers <= 1:
		err = run.sequential(ctx)
	case c.cfg.Ordered:
		err = run.waves(ctx)
	default:
		err = run.streaming(ctx)
	}

	st.finish()
	res.FinishedAt = time.Now()
	res.Matches = run.results.Snapshot()
	res.Stats = st.snapshot()
	res.Exhausted = err == nil && !res.Satisfied()
	c.cfg.Metrics.OnSearch(res.Stats.Elapsed, len(res.Matches), res.Exhausted, err)

	if err != nil {
		log.Warn("search cancelled",
			"error", err,
			"matches", len(res.Matches),
			"windows", res.Stats.Windows)
		return res, err
	}

	log.Info("search finished",
		"matches", len(res.Matches),
		"exhausted", res.Exhausted,
		"windows", res.Stats.Windows,
		"candidates", res.Stats.Candidates,
		"elapsed", res.Stats.Elapsed)
	return res, nil
}

// searchRun is the state of one Search call
type searchRun struct {
	cfg       Config
	zeroCount int
	results   *ResultSet
	planner   *Planner
	stats     *counters
	progress  *rate.Sometimes
	log       *slog.Logger
}

// sequential scans one window at a time, so matches arrive in candidate order
func (r *searchRun) sequential(ctx context.Context) error {
	for !r.results.Full() {
		if err := ctx.Err(); err != nil {
			return err
		}
		w, ok := r.planner.Next()
		if !ok {
			return nil
		}
		m, found := r.scan(w)
		if found {
			r.commit(m)
		}
	}
	return nil
}

// waves scans up to Workers windows at once, then commits the wave's matches
// in window order. The outcome is identical to a sequential search.
func (r *searchRun) waves(ctx context.Context) error {
	type outcome struct {
		match types.Match
		found bool
	}

	windows := make([]types.ScanWindow, 0, r.cfg.Workers)
	outcomes := make([]outcome, r.cfg.Workers)

	for !r.results.Full() {
		if err := ctx.Err(); err != nil {
			return err
		}

		windows = windows[:0]
		for len(windows) < r.cfg.Workers {
			w, ok := r.planner.Next()
			if !ok {
				break
			}
			windows = append(windows, w)
		}
		if len(windows) == 0 {
			return nil
		}

		var g errgroup.Group
		for i, w := range windows {
			g.Go(func() error {
				m, found := r.scan(w)
				outcomes[i] = outcome{match: m, found: found}
				return nil
			})
		}
		_ = g.Wait() // scans never fail

		for i := range windows {
			if outcomes[i].found {
				r.commit(outcomes[i].match)
			}
		}
	}
	return nil
}

// streaming keeps Workers scans in flight and commits matches as they
// complete. Dispatch stops as soon as the quota is observed.
func (r *searchRun) streaming(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)

	var err error
	for !r.results.Full() {
		if err = ctx.Err(); err != nil {
			break
		}
		w, ok := r.planner.Next()
		if !ok {
			break
		}
		g.Go(func() error {
			if m, found := r.scan(w); found {
				r.commit(m)
			}
			return nil
		})
	}
	_ = g.Wait()
	return err
}

// scan runs the range scanner over w and updates the counters
func (r *searchRun) scan(w types.ScanWindow) (types.Match, bool) {
	start := time.Now()
	m, found := scanner.Scan(w, r.zeroCount, r.cfg.Hasher)
	hashed := w.Len()
	if found {
		hashed = uint64(m.Candidate) - w.Start + 1
	}
	r.stats.windows.Add(1)
	r.stats.candidates.Add(hashed)
	r.cfg.Metrics.OnScan(time.Since(start), hashed, found)

	if r.progress != nil {
		r.progress.Do(func() {
			s := r.stats.snapshot()
			r.log.Info("search progress",
				"window", w.String(),
				"windows", s.Windows,
				"candidates", s.Candidates,
				"matches", s.Matches,
				"hash_rate", fmt.Sprintf("%.0f/s", s.HashRate()))
		})
	}
	return m, found
}

// commit appends m unless the quota has already been reached
func (r *searchRun) commit(m types.Match) {
	if !r.results.Append(m) {
		r.log.Debug("discarding late match", "candidate", m.Candidate)
		return
	}
	r.stats.matches.Add(1)
	r.cfg.Metrics.OnMatch()
	r.log.Debug("match found", "candidate", m.Candidate, "digest", m.Digest)
}
