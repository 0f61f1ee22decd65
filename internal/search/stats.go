package search

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time view of a search's progress
type Stats struct {
	Windows    uint64        `json:"windows" yaml:"windows"`       // windows scanned
	Candidates uint64        `json:"candidates" yaml:"candidates"` // candidates hashed, up to and including each window's match
	Matches    uint64        `json:"matches" yaml:"matches"`       // matches accepted into the result set
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
}

// HashRate returns candidates hashed per second
func (s Stats) HashRate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Candidates) / s.Elapsed.Seconds()
}

// counters are written by workers and read by Stats without locks
type counters struct {
	windows    atomic.Uint64
	candidates atomic.Uint64
	matches    atomic.Uint64
	startedAt  time.Time
	finishedAt atomic.Int64 // unix nanos, 0 while running
}

func newCounters() *counters {
	return &counters{startedAt: time.Now()}
}

func (c *counters) finish() {
	c.finishedAt.Store(time.Now().UnixNano())
}

func (c *counters) snapshot() Stats {
	elapsed := time.Since(c.startedAt)
	if done := c.finishedAt.Load(); done != 0 {
		elapsed = time.Unix(0, done).Sub(c.startedAt)
	}
	return Stats{
		Windows:    c.windows.Load(),
		Candidates: c.candidates.Load(),
		Matches:    c.matches.Load(),
		Elapsed:    elapsed,
	}
}
