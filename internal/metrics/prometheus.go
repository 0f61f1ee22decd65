// Package metrics exports search engine metrics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/steveyegge/tailzero/internal/search"
)

const namespace = "tailzero"

// PrometheusObserver implements search.MetricsObserver
type PrometheusObserver struct {
	windows        *prometheus.CounterVec
	candidates     prometheus.Counter
	scanLatency    prometheus.Histogram
	matches        prometheus.Counter
	searches       *prometheus.CounterVec
	searchDuration prometheus.Histogram
}

var _ search.MetricsObserver = (*PrometheusObserver)(nil)

// NewPrometheusObserver creates the search collectors and registers them with reg
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		windows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_scanned_total",
			Help:      "Scan windows completed, by whether a match was found",
		}, []string{"result"}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_hashed_total",
			Help:      "Candidates whose digest was computed",
		}),
		scanLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Time to scan one window",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs .. ~1.6s
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Matches accepted into result sets",
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches finished, by outcome",
		}, []string{"outcome"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall time of a search",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{
		o.windows, o.candidates, o.scanLatency, o.matches, o.searches, o.searchDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return o, nil
}

func (o *PrometheusObserver) OnScan(d time.Duration, candidates uint64, found bool) {
	result := "miss"
	if found {
		result = "match"
	}
	o.windows.WithLabelValues(result).Inc()
	o.candidates.Add(float64(candidates))
	o.scanLatency.Observe(d.Seconds())
}

func (o *PrometheusObserver) OnMatch() {
	o.matches.Inc()
}

func (o *PrometheusObserver) OnSearch(d time.Duration, matches int, exhausted bool, err error) {
	o.searches.WithLabelValues(outcome(exhausted, err)).Inc()
	o.searchDuration.Observe(d.Seconds())
}

func outcome(exhausted bool, err error) string {
	switch {
	case err != nil:
		return "cancelled"
	case exhausted:
		return "exhausted"
	default:
		return "satisfied"
	}
}

// Serve exposes g on /metrics over ln until ctx is done
func Serve(ctx context.Context, ln net.Listener, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Start listens on addr and serves metrics in the background until ctx is
// done. The returned channel yields the server's exit error.
func Start(ctx context.Context, addr string, g prometheus.Gatherer) (net.Addr, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	done := make(chan error, 1)
	go func() {
		err := Serve(ctx, ln, g)
		if err != nil {
			slog.Warn("metrics server stopped", "error", err)
		}
		done <- err
	}()
	return ln.Addr(), done, nil
}
