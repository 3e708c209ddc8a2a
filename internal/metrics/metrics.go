// Package metrics exposes Prometheus metrics for verification passes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/fitch/internal/verify"
)

var (
	// passes counts finished verification passes.
	// Labels: source (index, api, mcp, cli), system, result (valid, invalid)
	passes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitch",
		Subsystem: "verify",
		Name:      "passes_total",
		Help:      "Total verification passes",
	}, []string{"source", "system", "result"})

	// passDuration measures the time spent in one pass.
	passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitch",
		Subsystem: "verify",
		Name:      "pass_duration_seconds",
		Help:      "Verification pass latency in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"source"})

	// invalidLines counts invalid lines by reason.
	invalidLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitch",
		Subsystem: "verify",
		Name:      "invalid_lines_total",
		Help:      "Invalid lines reported, by reason",
	}, []string{"reason"})

	// proofLines tracks the size of verified proofs.
	proofLines = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fitch",
		Subsystem: "verify",
		Name:      "proof_lines",
		Help:      "Number of lines per verified proof",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})
)

// Pass sources.
const (
	SourceIndex = "index"
	SourceAPI   = "api"
	SourceMCP   = "mcp"
	SourceCLI   = "cli"
)

// ObservePass records a finished pass.
func ObservePass(source string, p verify.Pass) {
	r := p.Report
	if r == nil {
		return
	}
	result := "valid"
	if !r.Valid() {
		result = "invalid"
	}
	passes.WithLabelValues(source, string(r.System), result).Inc()
	passDuration.WithLabelValues(source).Observe(p.Duration.Seconds())
	proofLines.Observe(float64(len(r.Diagnostics)))
	for _, d := range r.Invalid() {
		invalidLines.WithLabelValues(string(d.Reason)).Inc()
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
