package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"wordfreq/internal/config"
	"wordfreq/internal/discover"
	"wordfreq/internal/engine"
	"wordfreq/internal/metrics"
	"wordfreq/internal/report"
	"wordfreq/internal/storage"
)

// humanize groups thousands in diagnostic counts; a kernel-tree run scans
// gigabytes and the summary should stay readable.
var humanize = message.NewPrinter(language.English)

// run executes one complete counting run: discovery, the counting pipeline,
// sorting, output, and the optional result sink. Results go to stdout; all
// diagnostics go through the standard logger.
//
// When the pipeline's accounting check fails (files handed to workers do not
// reconcile with files discovered), the counts cannot be trusted and nothing
// is emitted.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRun(err, time.Since(start))
		if ferr := metrics.Flush(); ferr != nil {
			log.Printf("metrics: flush: %v", ferr)
		}
	}()

	log.Printf("run: root=%s workers=%d queue=%d chunk=%d mmap=%v tree_merge=%v",
		cfg.Root, cfg.Threads, cfg.QueueDepth, cfg.ChunkSize, cfg.Mmap, cfg.TreeMerge)

	paths, err := discover.Files(cfg.Root, cfg.Extensions)
	if err != nil {
		return err
	}
	log.Print(humanize.Sprintf("Found %d files to process", len(paths)))

	res, err := engine.Count(ctx, paths, engine.Options{
		Workers:    cfg.Threads,
		QueueDepth: cfg.QueueDepth,
		ChunkSize:  cfg.ChunkSize,
		TreeMerge:  cfg.TreeMerge,
		Mmap:       cfg.Mmap,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	entries := report.Sort(res.Counts)
	digest := report.Digest(entries)
	logSummary(res.Stats, len(entries), digest, elapsed)
	recordStats(res.Stats, int64(len(entries)))

	if err := report.Write(stdout, report.Top(entries, cfg.Top)); err != nil {
		return err
	}

	if cfg.StoreDSN != "" {
		if err := saveRun(ctx, cfg, res.Stats, digest, entries, start, elapsed); err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
	}
	return nil
}

// logSummary prints the post-run accounting lines in discovery order: volume,
// vocabulary, trouble (only when there was any), then the comparables.
func logSummary(st engine.Stats, unique int, digest uint64, elapsed time.Duration) {
	log.Print(humanize.Sprintf("Processed %d files, %d bytes (%d blocks)", st.FilesProcessed, st.Bytes, st.Blocks))
	log.Print(humanize.Sprintf("Found %d unique words", unique))
	if st.OpenErrors > 0 {
		log.Print(humanize.Sprintf("%d files could not be opened", st.OpenErrors))
	}
	if st.ReadErrors > 0 {
		log.Print(humanize.Sprintf("%d files hit read errors; their partial counts are included", st.ReadErrors))
	}
	if st.DroppedWords > 0 {
		log.Print(humanize.Sprintf("Dropped %d oversized words", st.DroppedWords))
	}
	log.Printf("Result digest: %016x", digest)
	if secs := elapsed.Seconds(); secs > 0 {
		log.Print(humanize.Sprintf("Completed in %v (%.1f MB/s)",
			elapsed.Truncate(time.Millisecond), float64(st.Bytes)/1e6/secs))
	}
}

// recordStats forwards the run counters to the metrics backend.
func recordStats(st engine.Stats, unique int64) {
	metrics.RecordFiles("processed", st.FilesProcessed)
	metrics.RecordFiles("open_errors", st.OpenErrors)
	metrics.RecordFiles("read_errors", st.ReadErrors)
	metrics.RecordBytes(st.Bytes)
	metrics.RecordWords("unique", unique)
	metrics.RecordWords("dropped", st.DroppedWords)
}

// saveRun persists the complete sorted table to the configured sink. The
// -top flag only truncates the printed output; the sink always receives the
// full result so later runs can be compared in the database.
func saveRun(ctx context.Context, cfg *config.Config, st engine.Stats, digest uint64, entries []report.Entry, start time.Time, elapsed time.Duration) error {
	store, err := storage.Open(ctx, normalizeDSN(cfg.StoreDSN))
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.SaveRun(ctx, storage.Run{
		Root:         cfg.Root,
		StartedAt:    start,
		Duration:     elapsed,
		Files:        st.FilesProcessed,
		Bytes:        st.Bytes,
		DroppedWords: st.DroppedWords,
		Digest:       digest,
		Entries:      entries,
	})
	if err != nil {
		return err
	}
	log.Print(humanize.Sprintf("Saved %d words to %s", len(entries), cfg.StoreDSN))
	return nil
}

// normalizeDSN maps a bare filesystem path onto the sqlite backend so
// "-store results.db" works without spelling out a scheme.
func normalizeDSN(dsn string) string {
	if strings.Contains(dsn, "://") {
		return dsn
	}
	return "sqlite://" + dsn
}
