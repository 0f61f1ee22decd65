package search

import "time"

// MetricsObserver receives engine events. OnScan is called from worker
// goroutines, so implementations must be safe for concurrent use.
type MetricsObserver interface {
	// OnScan is called after each window scan. candidates is the number
	// hashed, which stops short of the window's end when a match is found.
	OnScan(duration time.Duration, candidates uint64, found bool)

	// OnMatch is called for each match accepted into a result set
	OnMatch()

	// OnSearch is called when a search returns
	OnSearch(duration time.Duration, matches int, exhausted bool, err error)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (o *NoopMetricsObserver) OnScan(duration time.Duration, candidates uint64, found bool) {}
func (o *NoopMetricsObserver) OnMatch()                                                    {}
func (o *NoopMetricsObserver) OnSearch(duration time.Duration, matches int, exhausted bool, err error) {
}
