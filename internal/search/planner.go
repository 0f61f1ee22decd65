package search

import "github.com/steveyegge/tailzero/internal/types"

// firstCandidate is where every search starts. Zero is never scanned.
const firstCandidate = 1

// Planner hands out the successive scan windows of a search. Windows never
// overlap and their starts strictly increase. Planner is not safe for
// concurrent use; only the dispatch loop calls it.
type Planner struct {
	step      uint64
	gap       uint64
	domainMax uint64
	next      uint64
}

// NewPlanner creates a planner over [1, domainMax) with windows of step
// candidates. Unless contiguous is set, one candidate is left unscanned
// between consecutive windows, matching the historical advance of step+1.
func NewPlanner(step uint64, contiguous bool, domainMax uint64) *Planner {
	gap := uint64(1)
	if contiguous {
		gap = 0
	}
	return &Planner{
		step:      step,
		gap:       gap,
		domainMax: domainMax,
		next:      firstCandidate,
	}
}

// Next returns the next window, or false once the domain is exhausted
func (p *Planner) Next() (types.ScanWindow, bool) {
	if p.next >= p.domainMax {
		return types.ScanWindow{}, false
	}
	end := p.saturatingAdd(p.next, p.step)
	w := types.ScanWindow{Start: p.next, End: end}
	p.next = p.saturatingAdd(end, p.gap)
	return w, true
}

// Exhausted reports whether every window has been handed out
func (p *Planner) Exhausted() bool {
	return p.next >= p.domainMax
}

// saturatingAdd adds without passing domainMax
func (p *Planner) saturatingAdd(a, b uint64) uint64 {
	if a >= p.domainMax || b >= p.domainMax-a {
		return p.domainMax
	}
	return a + b
}
