// Package config centralizes wordfreq configuration. All tunables are
// sourced from command-line flags with environment-variable fallbacks
// (12-factor friendly); the scan root is the positional argument.
//
// Typical usage:
//
//	cfg, err := config.Load(os.Args[1:]) // reads flags and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"-threads=4", "dir"})
package config

import (
	"flag"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Config holds all process configuration derived from flags and environment
// variables. All fields are plain values so the struct can be safely copied
// and used across goroutines after construction.
type Config struct {
	// Root is the directory to scan, given as the positional argument.
	Root string

	// Extensions are the file extensions eligible for counting, with or
	// without the leading dot ("c" and ".c" both work).
	Extensions []string

	// Threads is the number of counting workers.
	Threads int

	// QueueDepth bounds how many opened files can wait between the producer
	// and the workers.
	QueueDepth int

	// ChunkSize is the read size in bytes for the buffered I/O strategy.
	ChunkSize int

	// TreeMerge selects the pairwise parallel merge; false merges
	// sequentially on one goroutine.
	TreeMerge bool

	// Mmap selects memory-mapped reads where the platform supports them;
	// unsupported platforms silently fall back to buffered reads.
	Mmap bool

	// Silent suppresses all diagnostics and progress output. Results are
	// still printed.
	Silent bool

	// Top truncates the output to the first N entries after sorting.
	// Zero means no truncation.
	Top int

	// StoreDSN, when non-empty, selects a database sink for the results: a
	// scheme-prefixed DSN (postgres://, mysql://, mssql://, sqlite://) or a
	// bare filesystem path, which means sqlite.
	StoreDSN string

	// MetricsBackend selects the metrics destination: "prometheus",
	// "datadog", or empty for none.
	MetricsBackend string

	// MetricsAddr is the backend address: a Pushgateway base URL for
	// prometheus, a DogStatsD host:port for datadog. Empty picks the
	// backend's conventional local default.
	MetricsAddr string
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag to
// an environment-variable fallback via getenv, and then parsing args. The
// first positional argument is the scan root.
//
// Precedence:
//  1. Environment values (WORDFREQ_*) seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := &Config{}

	// Inline helpers use the provided getenv to avoid touching process env.
	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOrDefaultFn := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolEnvOrDefaultFn := func(k string, d bool) bool {
		if v := strings.ToLower(getenv(k)); v != "" {
			switch v {
			case "1", "true", "yes", "on":
				return true
			case "0", "false", "no", "off":
				return false
			}
		}
		return d
	}

	var exts string
	fs.StringVar(&exts, "ext", envOrDefaultFn("WORDFREQ_EXT", "c,h"), "Comma-separated file extensions to count")

	fs.IntVar(&cfg.Threads, "threads", intEnvOrDefaultFn("WORDFREQ_THREADS", runtime.NumCPU()), "Number of counting workers")
	fs.IntVar(&cfg.QueueDepth, "queue", intEnvOrDefaultFn("WORDFREQ_QUEUE", 64), "Open-file queue capacity")
	fs.IntVar(&cfg.ChunkSize, "chunk", intEnvOrDefaultFn("WORDFREQ_CHUNK", 64*1024), "Read chunk size in bytes")
	fs.BoolVar(&cfg.TreeMerge, "parallel-merge", boolEnvOrDefaultFn("WORDFREQ_PARALLEL_MERGE", true), "Merge worker counts with the pairwise tree reduction")
	fs.BoolVar(&cfg.Mmap, "mmap", boolEnvOrDefaultFn("WORDFREQ_MMAP", true), "Use memory-mapped reads where supported")
	fs.BoolVar(&cfg.Silent, "silent", boolEnvOrDefaultFn("WORDFREQ_SILENT", false), "Suppress diagnostics (results still print)")
	fs.IntVar(&cfg.Top, "top", intEnvOrDefaultFn("WORDFREQ_TOP", 0), "Print only the first N entries (0 = all)")

	fs.StringVar(&cfg.StoreDSN, "store", envOrDefaultFn("WORDFREQ_STORE", ""), "Save results to this database (DSN, or a sqlite path)")
	fs.StringVar(&cfg.MetricsBackend, "metrics", envOrDefaultFn("WORDFREQ_METRICS", ""), "Metrics backend: 'prometheus' or 'datadog'")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", envOrDefaultFn("WORDFREQ_METRICS_ADDR", ""), "Metrics backend address")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Root = fs.Arg(0)
	cfg.Extensions = splitExtensions(exts)
	return cfg, nil
}

// Load is the production entry point: it parses args against a fresh flag
// set reading the real process environment.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("wordfreq", flag.ExitOnError)
	fs.Usage = func() {
		out := fs.Output()
		_, _ = out.Write([]byte("Usage: wordfreq [flags] <directory>\n\nFlags:\n"))
		fs.PrintDefaults()
	}
	return LoadFromArgs(fs, os.Getenv, args)
}

// splitExtensions parses the comma-separated -ext value, dropping blanks.
func splitExtensions(s string) []string {
	var exts []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		exts = append(exts, part)
	}
	return exts
}
