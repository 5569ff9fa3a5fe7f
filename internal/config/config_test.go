package config

import (
	"flag"
	"reflect"
	"runtime"
	"testing"
)

// loadWith is a test helper that runs LoadFromArgs with a map-backed
// environment and a ContinueOnError flag set.
func loadWith(t *testing.T, env map[string]string, args ...string) *Config {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	getenv := func(k string) string { return env[k] }
	cfg, err := LoadFromArgs(fs, getenv, args)
	if err != nil {
		t.Fatalf("LoadFromArgs(%v) = error %v, want nil", args, err)
	}
	return cfg
}

// TestLoadDefaults verifies the zero-environment, zero-flag defaults.
func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg := loadWith(t, nil, "/src/linux")

	if cfg.Root != "/src/linux" {
		t.Fatalf("Root = %q, want %q", cfg.Root, "/src/linux")
	}
	if want := []string{"c", "h"}; !reflect.DeepEqual(cfg.Extensions, want) {
		t.Fatalf("Extensions = %v, want %v", cfg.Extensions, want)
	}
	if cfg.Threads != runtime.NumCPU() {
		t.Fatalf("Threads = %d, want NumCPU (%d)", cfg.Threads, runtime.NumCPU())
	}
	if cfg.QueueDepth != 64 {
		t.Fatalf("QueueDepth = %d, want 64", cfg.QueueDepth)
	}
	if cfg.ChunkSize != 64*1024 {
		t.Fatalf("ChunkSize = %d, want %d", cfg.ChunkSize, 64*1024)
	}
	if !cfg.TreeMerge {
		t.Fatal("TreeMerge = false, want true by default")
	}
	if !cfg.Mmap {
		t.Fatal("Mmap = false, want true by default")
	}
	if cfg.Silent {
		t.Fatal("Silent = true, want false by default")
	}
	if cfg.Top != 0 {
		t.Fatalf("Top = %d, want 0", cfg.Top)
	}
	if cfg.StoreDSN != "" || cfg.MetricsBackend != "" || cfg.MetricsAddr != "" {
		t.Fatalf("store/metrics should default empty, got %q %q %q",
			cfg.StoreDSN, cfg.MetricsBackend, cfg.MetricsAddr)
	}
}

// TestLoadEnvFallback verifies WORDFREQ_* environment values seed the flag
// defaults.
func TestLoadEnvFallback(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"WORDFREQ_EXT":            "go",
		"WORDFREQ_THREADS":        "3",
		"WORDFREQ_QUEUE":          "16",
		"WORDFREQ_CHUNK":          "8192",
		"WORDFREQ_PARALLEL_MERGE": "off",
		"WORDFREQ_MMAP":           "false",
		"WORDFREQ_SILENT":         "yes",
		"WORDFREQ_TOP":            "25",
		"WORDFREQ_STORE":          "results.db",
		"WORDFREQ_METRICS":        "prometheus",
		"WORDFREQ_METRICS_ADDR":   "http://gateway:9091",
	}
	cfg := loadWith(t, env, "dir")

	if want := []string{"go"}; !reflect.DeepEqual(cfg.Extensions, want) {
		t.Fatalf("Extensions = %v, want %v", cfg.Extensions, want)
	}
	if cfg.Threads != 3 || cfg.QueueDepth != 16 || cfg.ChunkSize != 8192 {
		t.Fatalf("ints from env = %d/%d/%d, want 3/16/8192",
			cfg.Threads, cfg.QueueDepth, cfg.ChunkSize)
	}
	if cfg.TreeMerge || cfg.Mmap {
		t.Fatalf("TreeMerge/Mmap = %v/%v, want false/false from env", cfg.TreeMerge, cfg.Mmap)
	}
	if !cfg.Silent || cfg.Top != 25 {
		t.Fatalf("Silent/Top = %v/%d, want true/25", cfg.Silent, cfg.Top)
	}
	if cfg.StoreDSN != "results.db" || cfg.MetricsBackend != "prometheus" || cfg.MetricsAddr != "http://gateway:9091" {
		t.Fatalf("store/metrics from env = %q %q %q", cfg.StoreDSN, cfg.MetricsBackend, cfg.MetricsAddr)
	}
}

// TestLoadFlagsOverrideEnv verifies explicit flags win over environment
// values.
func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"WORDFREQ_THREADS": "3",
		"WORDFREQ_SILENT":  "true",
		"WORDFREQ_EXT":     "go",
	}
	cfg := loadWith(t, env, "-threads=8", "-silent=false", "-ext=c,h,inc", "dir")

	if cfg.Threads != 8 {
		t.Fatalf("Threads = %d, want flag value 8 over env 3", cfg.Threads)
	}
	if cfg.Silent {
		t.Fatal("Silent = true, want flag -silent=false to beat env")
	}
	if want := []string{"c", "h", "inc"}; !reflect.DeepEqual(cfg.Extensions, want) {
		t.Fatalf("Extensions = %v, want %v", cfg.Extensions, want)
	}
}

// TestLoadBadEnvValuesFallBack verifies unparseable env values fall back to
// the built-in defaults instead of failing the load.
func TestLoadBadEnvValuesFallBack(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"WORDFREQ_THREADS": "lots",
		"WORDFREQ_MMAP":    "maybe",
	}
	cfg := loadWith(t, env, "dir")

	if cfg.Threads != runtime.NumCPU() {
		t.Fatalf("Threads = %d, want NumCPU default on bad env", cfg.Threads)
	}
	if !cfg.Mmap {
		t.Fatal("Mmap = false, want default true on unrecognized env value")
	}
}

// TestSplitExtensions covers the -ext parsing corner cases.
func TestSplitExtensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "plain list", in: "c,h", want: []string{"c", "h"}},
		{name: "spaces trimmed", in: " c , h ", want: []string{"c", "h"}},
		{name: "blanks dropped", in: "c,,h,", want: []string{"c", "h"}},
		{name: "dots preserved", in: ".c,.h", want: []string{".c", ".h"}},
		{name: "empty", in: "", want: nil},
		{name: "only commas", in: ",,,", want: nil},
	}

	for _, tt := range tests {
		tt := tt // capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := splitExtensions(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("splitExtensions(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

// TestLoadNoPositional verifies a missing directory leaves Root empty (the
// validator turns that into an error issue).
func TestLoadNoPositional(t *testing.T) {
	t.Parallel()

	cfg := loadWith(t, nil)
	if cfg.Root != "" {
		t.Fatalf("Root = %q, want empty when no positional argument given", cfg.Root)
	}
}
