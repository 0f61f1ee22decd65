package storage

import (
	"context"
	"time"

	"github.com/steveyegge/tailzero/internal/search"
	"github.com/steveyegge/tailzero/internal/storage/sqlite"
	"github.com/steveyegge/tailzero/internal/types"
)

// Storage defines the interface for results storage backends
type Storage interface {
	// Runs
	RecordRun(ctx context.Context, run *types.SearchRun) error
	GetRun(ctx context.Context, id string) (*types.SearchRun, error)
	ListRuns(ctx context.Context, limit int) ([]*types.SearchRun, error)

	// Retention
	PruneRuns(ctx context.Context, cutoff time.Time, keep int) (int, error)

	// Lifecycle
	Close() error
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path
	// Default: discovered (see DiscoverDatabase)
	// Special value ":memory:" creates an in-memory database (useful for tests)
	Path string
}

// NewStorage creates a new SQLite storage backend
// The ctx parameter is currently unused but kept for API consistency
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	path := ""
	if cfg != nil {
		path = cfg.Path
	}

	if path == "" {
		discovered, err := DiscoverDatabase()
		if err != nil {
			return nil, err
		}
		path = discovered
	}

	return sqlite.New(path)
}

// NewRun converts a finished search into the record stored for it.
// cancelled marks a search that was interrupted before it could finish.
func NewRun(res *search.Result, cfg search.Config, cancelled bool) *types.SearchRun {
	return &types.SearchRun{
		ID:         res.ID,
		ZeroCount:  res.Request.ZeroCount,
		Quota:      res.Request.Quota,
		Algorithm:  res.Algorithm,
		StepSize:   cfg.StepSize,
		Workers:    cfg.Workers,
		Mode:       cfg.Mode(),
		Contiguous: cfg.Contiguous,
		Exhausted:  res.Exhausted,
		Cancelled:  cancelled,
		Windows:    res.Stats.Windows,
		Candidates: res.Stats.Candidates,
		MatchCount: len(res.Matches),
		Matches:    res.Matches,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
}
