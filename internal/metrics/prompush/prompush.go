// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the run labels (status, kind) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead of
//     exposing an HTTP scrape endpoint. A short-lived CLI has nothing for a
//     scraper to poll, so push is the only model that fits.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog, StatsD) without changes to the core
// counting pipeline.
package prompush

import (
	"fmt"

	"wordfreq/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	// Run-level metrics
	runCounter  *prometheus.CounterVec // "wordfreq_runs_total"
	runDuration *prometheus.SummaryVec // "wordfreq_run_duration_seconds" (summary)

	// Per-kind counters
	fileCounter *prometheus.CounterVec // "wordfreq_files_total"
	wordCounter *prometheus.CounterVec // "wordfreq_words_total"
	byteCounter prometheus.Counter     // "wordfreq_bytes_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (usually "wordfreq").
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "wordfreq"
	}

	reg := prometheus.NewRegistry()

	runCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordfreq_runs_total",
			Help: "Total number of counting runs, partitioned by status.",
		},
		[]string{"status"},
	)
	runDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "wordfreq_run_duration_seconds",
			Help:       "Wall-clock duration of counting runs in seconds, partitioned by status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"status"},
	)

	// FILE metrics: kind (processed, open_errors, read_errors).
	fileCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordfreq_files_total",
			Help: "File-level counts per kind (processed, open_errors, read_errors).",
		},
		[]string{"kind"},
	)

	// WORD metrics: kind (unique, dropped).
	wordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordfreq_words_total",
			Help: "Word-level counts per kind (unique, dropped).",
		},
		[]string{"kind"},
	)

	// BYTE metrics: simple counter (job is a grouping label via Pushgateway).
	byteCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wordfreq_bytes_total",
			Help: "Total number of input bytes scanned by this run.",
		},
	)

	if err := reg.Register(runCounter); err != nil {
		return nil, fmt.Errorf("prompush: register run counter: %w", err)
	}
	if err := reg.Register(runDuration); err != nil {
		return nil, fmt.Errorf("prompush: register run summary: %w", err)
	}
	if err := reg.Register(fileCounter); err != nil {
		return nil, fmt.Errorf("prompush: register file counter: %w", err)
	}
	if err := reg.Register(wordCounter); err != nil {
		return nil, fmt.Errorf("prompush: register word counter: %w", err)
	}
	if err := reg.Register(byteCounter); err != nil {
		return nil, fmt.Errorf("prompush: register byte counter: %w", err)
	}

	return &Backend{
		gatewayURL:  gatewayURL,
		jobName:     jobName,
		reg:         reg,
		runCounter:  runCounter,
		runDuration: runDuration,
		fileCounter: fileCounter,
		wordCounter: wordCounter,
		byteCounter: byteCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "wordfreq_runs_total":
		if b.runCounter == nil {
			return
		}
		status := labels["status"]
		b.runCounter.WithLabelValues(status).Add(delta)

	case "wordfreq_files_total":
		if b.fileCounter == nil {
			return
		}
		kind := labels["kind"]
		b.fileCounter.WithLabelValues(kind).Add(delta)

	case "wordfreq_words_total":
		if b.wordCounter == nil {
			return
		}
		kind := labels["kind"]
		b.wordCounter.WithLabelValues(kind).Add(delta)

	case "wordfreq_bytes_total":
		if b.byteCounter == nil {
			return
		}
		b.byteCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "wordfreq_run_duration_seconds" || b.runDuration == nil {
		return
	}
	status := labels["status"]
	b.runDuration.WithLabelValues(status).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
