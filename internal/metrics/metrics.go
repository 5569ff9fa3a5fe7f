// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from word-count runs.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - It is designed to mirror the storage abstraction pattern used elsewhere
//     in the project (e.g. storage.Store), allowing the rest of the codebase
//     to depend only on this interface while keeping concrete metric systems
//     isolated in subpackages.
//
// The primary use case is instrumentation of the counting pipeline (file
// discovery, workers, merge) without coupling the core logic to a specific
// metrics system such as Prometheus or Datadog.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordRun is a convenience for the common pattern:
// measure wall-clock duration + success/failure per counting run.
func RecordRun(err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"status": status,
	}

	backend.IncCounter("wordfreq_runs_total", 1, lbls)
	backend.ObserveHistogram("wordfreq_run_duration_seconds", d.Seconds(), lbls)
}

// RecordFiles increments a file-level counter for the given kind.
//
// Typical kinds mirror the run summary fields, e.g.:
//   - "processed"
//   - "open_errors"
//   - "read_errors"
func RecordFiles(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("wordfreq_files_total", float64(delta), Labels{
		"kind": kind,
	})
}

// RecordWords increments a word-level counter for the given kind.
//
// Typical kinds:
//   - "unique"  (distinct words in the final table)
//   - "dropped" (oversized split words skipped by the tokenizer)
func RecordWords(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("wordfreq_words_total", float64(delta), Labels{
		"kind": kind,
	})
}

// RecordBytes adds to the total number of input bytes scanned.
func RecordBytes(delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("wordfreq_bytes_total", float64(delta), nil)
}
