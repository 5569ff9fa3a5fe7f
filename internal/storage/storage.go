// Package storage persists finished word-count runs to external databases.
//
// The package exposes a narrow Store interface plus a scheme-keyed factory
// registry. Concrete backends (postgres, sqlite, mysql, mssql) live in
// subpackages and register themselves at init time; callers open a Store from
// a DSN alone and stay backend-agnostic. Importing storage/all (even blank)
// wires in every built-in backend.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"wordfreq/internal/report"
)

// Run is one finished counting run: the summary numbers plus the sorted
// frequency table.
type Run struct {
	// Root is the directory that was scanned.
	Root string

	// StartedAt is the wall-clock start of the run.
	StartedAt time.Time

	// Duration is the elapsed wall-clock time of the run.
	Duration time.Duration

	// Files is the number of files fully or partially counted.
	Files int64

	// Bytes is the number of input bytes scanned.
	Bytes int64

	// DroppedWords is the number of oversized split words the tokenizer skipped.
	DroppedWords int64

	// Digest is the xxh3 digest of the sorted frequency table.
	Digest uint64

	// Entries is the frequency table, sorted by count descending then word
	// ascending.
	Entries []report.Entry
}

// Store is the minimal interface for run sinks. SaveRun must be atomic: either
// the whole run (header row plus every word count) lands, or none of it does.
type Store interface {
	SaveRun(ctx context.Context, run Run) error
	Close()
}

// Factory opens a Store from a DSN. The full DSN is passed through, scheme
// included; backends strip or keep it as their driver requires.
type Factory func(ctx context.Context, dsn string) (Store, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) a Factory for the given DSN scheme. It is
// typically called from backend packages' init() functions.
func Register(scheme string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[scheme] = fn
}

// ListSchemes returns a snapshot of the registered DSN schemes.
func ListSchemes() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	return out
}

// Open dispatches on the DSN's scheme ("postgres://...", "sqlite://...") and
// opens the matching backend. Callers do not need to know which backend they
// are using; they simply pass the DSN from configuration.
func Open(ctx context.Context, dsn string) (Store, error) {
	scheme, ok := splitScheme(dsn)
	if !ok {
		return nil, fmt.Errorf("storage DSN %q has no scheme (expected scheme://...)", dsn)
	}

	regMu.RLock()
	fn, found := factories[scheme]
	regMu.RUnlock()
	if !found {
		return nil, fmt.Errorf("unsupported storage scheme=%s", scheme)
	}
	return fn(ctx, dsn)
}

// splitScheme extracts the scheme from a DSN of the form "scheme://rest".
func splitScheme(dsn string) (string, bool) {
	i := strings.Index(dsn, "://")
	if i <= 0 {
		return "", false
	}
	return dsn[:i], true
}
