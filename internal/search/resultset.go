package search

import (
	"sync"

	"github.com/steveyegge/tailzero/internal/types"
)

// ResultSet collects matches from concurrent scans. Appends are serialized and
// the set never grows past its limit; matches offered after that are dropped.
// Workers only see Append, Len and Full. The backing slice is never exposed.
type ResultSet struct {
	mu      sync.Mutex
	matches []types.Match
	limit   int
}

// NewResultSet creates an empty set that holds at most limit matches
func NewResultSet(limit int) *ResultSet {
	if limit < 0 {
		limit = 0
	}
	return &ResultSet{
		matches: make([]types.Match, 0, min(limit, 1024)),
		limit:   limit,
	}
}

// Append adds m in discovery order. It returns false when the set is already
// full and m was discarded.
func (r *ResultSet) Append(m types.Match) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.matches) >= r.limit {
		return false
	}
	r.matches = append(r.matches, m)
	return true
}

// Len returns the number of completed appends
func (r *ResultSet) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matches)
}

// Full reports whether the set has reached its limit
func (r *ResultSet) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matches) >= r.limit
}

// Snapshot returns a copy of the matches in discovery order
func (r *ResultSet) Snapshot() []types.Match {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.Match, len(r.matches))
	copy(out, r.matches)
	return out
}
