package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"

	"wordfreq/internal/config"
	"wordfreq/internal/metrics"
	"wordfreq/internal/metrics/datadog"
	"wordfreq/internal/metrics/prompush"

	// register all backends with the storage factory.
	// the -store DSN decides which one a run actually uses.
	_ "wordfreq/internal/storage/all"
)

// Conventional local endpoints, used when -metrics-addr is not given.
const (
	defaultPushgatewayURL = "http://localhost:9091"
	defaultDogStatsdAddr  = "127.0.0.1:8125"
)

// main is the entry point for the wordfreq binary. It loads and validates the
// configuration, optionally initializes a metrics backend, and executes one
// counting run over the configured directory.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fatalf("loading configuration: %v", err)
	}

	issues := cfg.Validate()
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Field, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		os.Exit(2)
	}

	if cfg.Silent {
		log.SetOutput(io.Discard)
	}

	// Counting allocates heavily in short bursts; relax collection pressure
	// unless the operator tuned it themselves.
	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(800)
	}

	installMetrics(cfg)

	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		// A fatal error accompanies the non-zero exit even in silent mode.
		log.SetOutput(os.Stderr)
		fatalf("%v", err)
	}
}

// installMetrics wires the configured metrics backend into the package-global
// recorder. Setup failures leave the nop backend installed: metrics never
// block a run.
func installMetrics(cfg *config.Config) {
	switch cfg.MetricsBackend {
	case "prometheus":
		addr := cfg.MetricsAddr
		if addr == "" {
			addr = defaultPushgatewayURL
		}
		b, err := prompush.NewBackend("wordfreq", addr)
		if err != nil {
			log.Printf("metrics: prometheus backend unavailable: %v; metrics disabled", err)
			return
		}
		log.Printf("metrics: backend=prometheus url=%s", addr)
		metrics.SetBackend(b)

	case "datadog":
		addr := cfg.MetricsAddr
		if addr == "" {
			addr = defaultDogStatsdAddr
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: addr})
		if err != nil {
			log.Printf("metrics: datadog backend unavailable: %v; metrics disabled", err)
			return
		}
		log.Printf("metrics: backend=datadog addr=%s", addr)
		metrics.SetBackend(b)

	case "":
		// metrics disabled; the nop backend stays installed.

	default:
		// Unknown names are rejected by config validation before this runs.
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
