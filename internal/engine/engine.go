// Package engine runs the concurrent counting pipeline over a fixed list of
// files: one producer opening files into a bounded queue, N workers tokenizing
// into private count maps, and a merge stage combining the partial maps into
// one table.
//
// Concurrency model:
//
//	Producer (opens files, one per path)
//	     → bounded file queue (caps open descriptors in flight)
//	     → N workers (read or mmap, tokenize, count into a private map)
//	     → merge (sequential fold, or pairwise tree across the workers)
//
// Failure semantics are fail-soft at the file level: a file that cannot be
// opened is skipped and counted as an open error; a file whose read fails
// mid-stream keeps the counts accumulated so far and is counted as a read
// error. Only context cancellation aborts the run as a whole.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"wordfreq/internal/filequeue"
	"wordfreq/internal/token"
)

const (
	// Default read size per syscall on the buffered path.
	defaultChunkSize = 64 << 10 // 64 KiB

	// Initial capacity of each worker's private count map.
	mapSeedSize = 1 << 12
)

// ErrFileAccounting reports that the number of files handed to workers does
// not match the number the run expected to process. It indicates a pipeline
// bug, not an input problem; the counts that were produced accompany it.
var ErrFileAccounting = errors.New("file accounting mismatch")

// Options configures a counting run. The zero value picks sensible defaults
// for everything except the merge and mmap strategies, which stay off until
// enabled.
type Options struct {
	// Workers is the number of counting goroutines. Defaults to runtime.NumCPU().
	Workers int

	// QueueDepth bounds how many opened files may sit between the producer and
	// the workers. Defaults to 2*Workers.
	QueueDepth int

	// ChunkSize is the read size per syscall on the buffered path.
	// Defaults to 64 KiB.
	ChunkSize int

	// TreeMerge folds the partial maps pairwise across the workers in
	// log2(Workers) rounds instead of sequentially on the coordinator.
	// The resulting table is identical either way.
	TreeMerge bool

	// Mmap maps each file into memory and scans it as a single chunk instead
	// of issuing buffered reads. Falls back to reads per file when mapping is
	// not possible.
	Mmap bool
}

// withDefaults returns a copy of o with unset fields resolved.
func (o Options) withDefaults() Options {
	out := o
	if out.Workers <= 0 {
		out.Workers = runtime.NumCPU()
	}
	if out.QueueDepth <= 0 {
		out.QueueDepth = 2 * out.Workers
	}
	if out.ChunkSize <= 0 {
		out.ChunkSize = defaultChunkSize
	}
	return out
}

// Stats are the aggregate counters of a finished run.
type Stats struct {
	// FilesProcessed is the number of files workers took off the queue,
	// whether their read then succeeded or not.
	FilesProcessed int64

	// OpenErrors is the number of files that could not be opened.
	OpenErrors int64

	// ReadErrors is the number of files whose read failed mid-stream.
	ReadErrors int64

	// Bytes is the number of input bytes scanned across all workers.
	Bytes int64

	// Blocks is the number of scan units consumed: one per successful read on
	// the buffered path, one per file on the mmap path.
	Blocks int64

	// DroppedWords is the number of oversized split words the tokenizer
	// skipped.
	DroppedWords int64
}

// Result is the outcome of a counting run: the merged frequency table plus
// the run counters.
type Result struct {
	Counts map[string]int64
	Stats  Stats
}

// counters holds cross-goroutine statistics for the counting pipeline.
//
// All fields are updated atomically.
type counters struct {
	filesProcessed atomic.Int64 // files taken off the queue by workers
	openErrors     atomic.Int64 // files that could not be opened
	readErrors     atomic.Int64 // files whose read failed mid-stream
	bytes          atomic.Int64 // bytes scanned across all workers
	blocks         atomic.Int64 // scan units: reads on the buffered path, files on the mmap path
	droppedWords   atomic.Int64 // oversized split words skipped by scanners
}

func (c *counters) snapshot() Stats {
	return Stats{
		FilesProcessed: c.filesProcessed.Load(),
		OpenErrors:     c.openErrors.Load(),
		ReadErrors:     c.readErrors.Load(),
		Bytes:          c.bytes.Load(),
		Blocks:         c.blocks.Load(),
		DroppedWords:   c.droppedWords.Load(),
	}
}

// engine carries the shared state of one run.
type engine struct {
	opts  Options
	queue *filequeue.Queue
	parts []map[string]int64
	ready []chan struct{}
	stats counters
}

// Count scans every file in paths and returns the merged word-frequency
// table. Paths that cannot be opened or read are skipped without failing the
// run; the stats record how many were.
//
// When the per-file accounting does not line up at the end, Count returns the
// result it produced together with an error wrapping ErrFileAccounting.
func Count(ctx context.Context, paths []string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	e := &engine{
		opts:  opts,
		queue: filequeue.New(opts.QueueDepth),
		parts: make([]map[string]int64, opts.Workers),
		ready: make([]chan struct{}, opts.Workers),
	}
	for i := range e.ready {
		e.ready[i] = make(chan struct{})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.produce(ctx, paths) })
	for i := 0; i < opts.Workers; i++ {
		i := i
		g.Go(func() error { return e.work(ctx, i) })
	}

	if err := g.Wait(); err != nil {
		e.drainQueue()
		return nil, err
	}

	counts := e.parts[0]
	if !opts.TreeMerge {
		for i := 1; i < opts.Workers; i++ {
			absorb(counts, e.parts[i])
		}
	}

	res := &Result{Counts: counts, Stats: e.stats.snapshot()}
	if err := verifyAccounting(int64(len(paths)), res.Stats.FilesProcessed, res.Stats.OpenErrors); err != nil {
		return res, err
	}
	return res, nil
}

// produce opens each path in order and feeds it to the queue, then enqueues
// one sentinel per worker. Open failures are logged and counted, never fatal.
func (e *engine) produce(ctx context.Context, paths []string) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			e.stats.openErrors.Add(1)
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		adviseSequential(f)
		if err := e.queue.Put(ctx, filequeue.Item{File: f, Path: path}); err != nil {
			f.Close()
			return err
		}
	}
	for i := 0; i < e.opts.Workers; i++ {
		if err := e.queue.Put(ctx, filequeue.Item{Done: true}); err != nil {
			return err
		}
	}
	return nil
}

// work pulls files off the queue and counts them into a private map until it
// consumes its sentinel, then takes part in the merge.
func (e *engine) work(ctx context.Context, i int) error {
	counts := make(map[string]int64, mapSeedSize)
	sc := token.NewScanner(token.MaxWordLen, func(word []byte) {
		counts[string(word)]++
	})
	buf := make([]byte, e.opts.ChunkSize)

	for {
		it, err := e.queue.Get(ctx)
		if err != nil {
			return err
		}
		if it.Done {
			break
		}
		e.stats.filesProcessed.Add(1)
		if err := e.scanFile(ctx, it, sc, buf); err != nil {
			return err
		}
	}

	e.stats.droppedWords.Add(sc.Dropped())
	e.parts[i] = counts

	if e.opts.TreeMerge {
		return e.mergeTree(ctx, i)
	}
	return nil
}

// scanFile feeds one file through the scanner and always closes it. The only
// error it returns is context cancellation; I/O failures are logged, counted,
// and end the file early with its partial counts kept.
func (e *engine) scanFile(ctx context.Context, it filequeue.Item, sc *token.Scanner, buf []byte) error {
	defer it.File.Close()

	if e.opts.Mmap && e.scanMapped(it, sc) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			sc.Reset()
			return ctx.Err()
		default:
		}

		n, err := it.File.Read(buf)
		if n > 0 {
			e.stats.bytes.Add(int64(n))
			e.stats.blocks.Add(1)
			sc.Write(buf[:n])
		}
		if err == io.EOF {
			sc.Flush()
			return nil
		}
		if err != nil {
			e.stats.readErrors.Add(1)
			log.Printf("reading %s: %v", it.Path, err)
			// The word cut off at the failure point is unfinished; drop it,
			// keep everything counted before it.
			sc.Reset()
			return nil
		}
	}
}

// scanMapped maps the whole file and scans it as one chunk. It reports false
// when the file should go through the buffered read path instead.
func (e *engine) scanMapped(it filequeue.Item, sc *token.Scanner) bool {
	st, err := it.File.Stat()
	if err != nil {
		return false
	}
	size := st.Size()
	if size == 0 {
		// Nothing to scan; zero-length mappings are invalid anyway.
		return true
	}

	data, err := mmapFile(it.File, size)
	if err != nil {
		return false
	}
	defer munmapFile(data)

	e.stats.bytes.Add(int64(len(data)))
	e.stats.blocks.Add(1)
	sc.Write(data)
	sc.Flush()
	return true
}

// mergeTree folds the partial maps pairwise in log2(n) rounds. In the round
// with distance bit, worker i absorbs worker i+bit's map when bit is clear in
// its index; a worker whose bit is set signals that its map is final and
// drops out. Worker 0 ends up holding the full table. The trailing signal
// also covers workers whose partner index falls past the end, which happens
// whenever n is not a power of two.
func (e *engine) mergeTree(ctx context.Context, i int) error {
	for bit := 1; i+bit < e.opts.Workers; bit <<= 1 {
		if i&bit != 0 {
			close(e.ready[i])
			return nil
		}
		select {
		case <-e.ready[i+bit]:
		case <-ctx.Done():
			return ctx.Err()
		}
		absorb(e.parts[i], e.parts[i+bit])
	}
	close(e.ready[i])
	return nil
}

// absorb adds every count in src to dst.
func absorb(dst, src map[string]int64) {
	for w, n := range src {
		dst[w] += n
	}
}

// drainQueue closes any files still sitting in the queue after an aborted
// run.
func (e *engine) drainQueue() {
	for {
		it, ok := e.queue.TryGet()
		if !ok {
			return
		}
		if it.File != nil {
			it.File.Close()
		}
	}
}

// verifyAccounting checks that every discovered file was either handed to a
// worker or recorded as an open failure.
func verifyAccounting(found, processed, openErrors int64) error {
	expected := found - openErrors
	if processed != expected {
		return fmt.Errorf("%w: workers processed %d files, expected %d (%d found, %d unopenable)",
			ErrFileAccounting, processed, expected, found, openErrors)
	}
	return nil
}
