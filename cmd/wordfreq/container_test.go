package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"wordfreq/internal/config"

	_ "modernc.org/sqlite" // raw driver for result verification
)

// writeSourceTree lays out a small fake source tree and returns its root.
// Expected combined counts over the .c/.h files: int=2, x=2, main=1, y=1.
func writeSourceTree(tb testing.TB) string {
	tb.Helper()
	root := tb.TempDir()
	files := map[string]string{
		"a.c":         "int main\nint x\n",
		"include/b.h": "x y\n",
		"README.md":   "int int int\n", // wrong extension, must be ignored
	}
	for name, content := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			tb.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func testConfig(root string) *config.Config {
	return &config.Config{
		Root:       root,
		Extensions: []string{".c", ".h"},
		Threads:    2,
		QueueDepth: 4,
		ChunkSize:  8192,
	}
}

// openSQL opens a raw *sql.DB on the sink database so inserted rows can be
// verified directly.
func openSQL(tb testing.TB, path string) *sql.DB {
	tb.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		tb.Fatalf("sql open: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunWritesSortedTable(t *testing.T) {
	t.Parallel()

	root := writeSourceTree(t)
	var out bytes.Buffer
	if err := run(context.Background(), testConfig(root), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := fmt.Sprintf("%32s | %8d\n", "int", 2) +
		fmt.Sprintf("%32s | %8d\n", "x", 2) +
		fmt.Sprintf("%32s | %8d\n", "main", 1) +
		fmt.Sprintf("%32s | %8d\n", "y", 1)
	if out.String() != want {
		t.Fatalf("output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestRunTopTruncates(t *testing.T) {
	t.Parallel()

	root := writeSourceTree(t)
	cfg := testConfig(root)
	cfg.Top = 2

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := fmt.Sprintf("%32s | %8d\n", "int", 2) +
		fmt.Sprintf("%32s | %8d\n", "x", 2)
	if out.String() != want {
		t.Fatalf("output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestRunEmptyTree(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := run(context.Background(), testConfig(t.TempDir()), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("output = %q, want empty", out.String())
	}
}

func TestRunMissingRoot(t *testing.T) {
	t.Parallel()

	cfg := testConfig(filepath.Join(t.TempDir(), "no-such-dir"))
	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err == nil {
		t.Fatal("run() = nil error for an inaccessible root")
	}
	if out.Len() != 0 {
		t.Fatalf("output = %q, want nothing on a fatal error", out.String())
	}
}

// End-to-end sink test: a bare filesystem path as the DSN must land on the
// sqlite backend, and the full (untruncated) table must be persisted.
func TestRunSavesToSQLite(t *testing.T) {
	t.Parallel()

	root := writeSourceTree(t)
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	cfg := testConfig(root)
	cfg.StoreDSN = dbPath
	cfg.Top = 1 // must not affect what is stored

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	db := openSQL(t, dbPath)
	var runs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM word_runs`).Scan(&runs); err != nil {
		t.Fatalf("counting runs: %v", err)
	}
	if runs != 1 {
		t.Fatalf("word_runs rows = %d, want 1", runs)
	}
	var words int
	if err := db.QueryRow(`SELECT COUNT(*) FROM word_counts`).Scan(&words); err != nil {
		t.Fatalf("counting words: %v", err)
	}
	if words != 4 {
		t.Fatalf("word_counts rows = %d, want 4", words)
	}
}

func TestNormalizeDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"results.db", "sqlite://results.db"},
		{"/var/lib/wordfreq/runs.db", "sqlite:///var/lib/wordfreq/runs.db"},
		{"sqlite:///tmp/x.db", "sqlite:///tmp/x.db"},
		{"postgres://u:p@localhost/wf", "postgres://u:p@localhost/wf"},
	}
	for _, tt := range tests {
		if got := normalizeDSN(tt.in); got != tt.want {
			t.Errorf("normalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
