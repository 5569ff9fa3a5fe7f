// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a loaded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Config. Field names the
// flag or positional the finding refers to; Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Field    string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Field, i.Message)
}

// Validate performs static validation of the Config. It does not mutate the
// Config; callers decide whether warnings are fatal.
func (c *Config) Validate() []Issue {
	var issues []Issue

	if c.Root == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    "directory",
			Message:  "a directory to scan is required",
		})
	}
	if c.Threads < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    "threads",
			Message:  fmt.Sprintf("threads=%d; at least one counting worker is required", c.Threads),
		})
	}
	if c.QueueDepth < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    "queue",
			Message:  fmt.Sprintf("queue=%d; the file queue needs at least one slot", c.QueueDepth),
		})
	} else if c.Threads >= 1 && c.QueueDepth < c.Threads {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Field:    "queue",
			Message:  fmt.Sprintf("queue=%d is smaller than threads=%d; workers may sit idle waiting for files", c.QueueDepth, c.Threads),
		})
	}
	if c.ChunkSize < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    "chunk",
			Message:  fmt.Sprintf("chunk=%d; the read size must be positive", c.ChunkSize),
		})
	} else if c.ChunkSize < 4096 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Field:    "chunk",
			Message:  fmt.Sprintf("chunk=%d; reads under 4 KiB hurt throughput", c.ChunkSize),
		})
	}
	if c.Top < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    "top",
			Message:  fmt.Sprintf("top=%d must not be negative", c.Top),
		})
	}
	if len(c.Extensions) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Field:    "ext",
			Message:  "no file extensions configured; no files will match",
		})
	}

	switch c.MetricsBackend {
	case "", "prometheus", "datadog":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    "metrics",
			Message:  fmt.Sprintf("unknown metrics backend %q; expected 'prometheus' or 'datadog'", c.MetricsBackend),
		})
	}

	return issues
}
