package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest is returned when a search request fails validation
var ErrInvalidRequest = errors.New("invalid search request")

// Match is a candidate whose digest ends with the requested run of zeros.
// Matches are immutable once produced.
type Match struct {
	Candidate uint32 `json:"candidate" yaml:"candidate"`
	Digest    string `json:"digest" yaml:"digest"`
}

// String formats the match the way the CLI prints it
func (m Match) String() string {
	return fmt.Sprintf("%d, %s", m.Candidate, m.Digest)
}

// SearchRequest describes a single search invocation
type SearchRequest struct {
	// ZeroCount is the required trailing-zero run length of the hex digest
	ZeroCount int `json:"zero_count" yaml:"zero_count"`

	// Quota is the number of matches to collect before stopping.
	// A quota of 0 returns an empty result without scanning anything.
	Quota int `json:"quota" yaml:"quota"`
}

// Validate checks if the request has valid field values
func (r SearchRequest) Validate() error {
	if r.ZeroCount < 0 {
		return fmt.Errorf("%w: zero count cannot be negative (got %d)", ErrInvalidRequest, r.ZeroCount)
	}
	if r.Quota < 0 {
		return fmt.Errorf("%w: quota cannot be negative (got %d)", ErrInvalidRequest, r.Quota)
	}
	return nil
}

// ScanWindow is a half-open interval [Start, End) of candidates handed to
// exactly one scan.
type ScanWindow struct {
	Start uint64
	End   uint64
}

// Len returns the number of candidates in the window
func (w ScanWindow) Len() uint64 {
	if w.End <= w.Start {
		return 0
	}
	return w.End - w.Start
}

// Contains reports whether c falls inside the window
func (w ScanWindow) Contains(c uint64) bool {
	return c >= w.Start && c < w.End
}

func (w ScanWindow) String() string {
	return fmt.Sprintf("[%d, %d)", w.Start, w.End)
}

// ErrRunNotFound is returned when a recorded run does not exist
var ErrRunNotFound = errors.New("run not found")

// SearchRun is a completed search as recorded in the results database
type SearchRun struct {
	ID         string    `json:"id" yaml:"id"`
	ZeroCount  int       `json:"zero_count" yaml:"zero_count"`
	Quota      int       `json:"quota" yaml:"quota"`
	Algorithm  string    `json:"algorithm" yaml:"algorithm"`
	StepSize   uint64    `json:"step_size" yaml:"step_size"`
	Workers    int       `json:"workers" yaml:"workers"`
	Mode       string    `json:"mode" yaml:"mode"`
	Contiguous bool      `json:"contiguous" yaml:"contiguous"`
	Exhausted  bool      `json:"exhausted" yaml:"exhausted"`
	Cancelled  bool      `json:"cancelled" yaml:"cancelled"`
	Windows    uint64    `json:"windows" yaml:"windows"`
	Candidates uint64    `json:"candidates" yaml:"candidates"`
	MatchCount int       `json:"match_count" yaml:"match_count"`
	Matches    []Match   `json:"matches,omitempty" yaml:"matches,omitempty"` // only populated by GetRun
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Duration returns how long the run took
func (r *SearchRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks if the run has valid field values
func (r *SearchRun) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.ZeroCount < 0 {
		return fmt.Errorf("zero_count cannot be negative (got %d)", r.ZeroCount)
	}
	if r.Quota < 0 {
		return fmt.Errorf("quota cannot be negative (got %d)", r.Quota)
	}
	if r.Algorithm == "" {
		return fmt.Errorf("algorithm is required")
	}
	if len(r.Matches) > r.Quota {
		return fmt.Errorf("run holds %d matches, more than its quota of %d", len(r.Matches), r.Quota)
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return fmt.Errorf("finished_at is before started_at")
	}
	return nil
}
