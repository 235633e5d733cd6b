package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace         = "nucleus"
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	// ToolCalls counts MCP tool invocations by tool and status (ok, rejected, error).
	ToolCalls *prometheus.CounterVec

	// SegmentEdits counts ring edits by operation and outcome reason.
	SegmentEdits *prometheus.CounterVec

	// Rescales counts ring rescales by outcome.
	Rescales *prometheus.CounterVec

	// NucleiAnalyzed counts images taken through the full pipeline by outcome.
	NucleiAnalyzed *prometheus.CounterVec

	// AnalysisDuration observes per-image pipeline latency.
	AnalysisDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mcp",
			Name:      "tool_calls_total",
			Help:      "MCP tool calls by tool and status.",
		}, []string{"tool", "status"}),
		SegmentEdits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "segment",
			Name:      "edits_total",
			Help:      "Segment ring edits by operation and outcome reason.",
		}, []string{"op", "reason"}),
		Rescales: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "segment",
			Name:      "rescales_total",
			Help:      "Segment ring rescales by outcome.",
		}, []string{"outcome"}),
		NucleiAnalyzed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "nuclei_total",
			Help:      "Images analysed by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Time to take one image from file to segmented ring.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
}

// Outcome maps an error to a metric label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}

	return "error"
}

// Handler returns an http.Handler serving the gatherer's metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen for metrics on %s: %w", addr, err)
	}

	return ServeListener(ctx, ln, g)
}

// ServeListener is Serve on an existing listener.
func ServeListener(ctx context.Context, ln net.Listener, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: readHeaderTimeout}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}

		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}

		return nil
	}
}
