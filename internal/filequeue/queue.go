// Package filequeue provides the bounded hand-off between the file-opening
// producer and the counting workers. The queue capacity caps how many opened
// files can be in flight at once, which is what bounds the process's open
// descriptor usage during a run.
package filequeue

import (
	"context"
	"os"
)

// Item is one queue element: either an open file to count, or the end-of-
// stream sentinel.
type Item struct {
	// File is the open handle to count. nil when Done is set.
	File *os.File

	// Path identifies the file in diagnostics and error messages.
	Path string

	// Done marks the sentinel meaning "no more files for the worker that
	// receives this". The producer enqueues exactly one per worker, after all
	// real files; each worker stops pulling after consuming one.
	Done bool
}

// Queue is a fixed-capacity blocking queue of Items. Send and receive both
// park on context cancellation. Safe for any number of concurrent producers
// and consumers; each Item is delivered to exactly one receiver.
type Queue struct {
	ch chan Item
}

// New returns a Queue with the given capacity. Capacities below 1 are raised
// to 1 so a Put can always complete once a worker is pulling.
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan Item, capacity)}
}

// Put blocks until the item is enqueued or ctx is cancelled.
func (q *Queue) Put(ctx context.Context, it Item) error {
	select {
	case q.ch <- it:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get blocks until an item is available or ctx is cancelled.
func (q *Queue) Get(ctx context.Context) (Item, error) {
	select {
	case it := <-q.ch:
		return it, nil
	case <-ctx.Done():
		return Item{}, ctx.Err()
	}
}

// TryGet receives an item without blocking. It reports false when the queue is
// currently empty. Used to drain still-queued files during early teardown.
func (q *Queue) TryGet() (Item, bool) {
	select {
	case it := <-q.ch:
		return it, true
	default:
		return Item{}, false
	}
}

// Cap reports the queue capacity it was built with.
func (q *Queue) Cap() int { return cap(q.ch) }
