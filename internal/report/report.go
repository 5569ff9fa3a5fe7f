// Package report turns a merged word-count mapping into the final output: a
// deterministic ordering, optional truncation to the top entries, the
// fixed-width text table, and a digest that lets two runs be compared by a
// single number.
package report

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/zeebo/xxh3"
)

// Entry is one (word, count) pair of the final result.
type Entry struct {
	Word  string
	Count int64
}

// Sort flattens counts into entries ordered by count descending, then word
// ascending (byte-wise) on ties. Words are unique, so the order is total and
// the same mapping always produces the same sequence.
func Sort(counts map[string]int64) []Entry {
	entries := make([]Entry, 0, len(counts))
	for word, count := range counts {
		entries = append(entries, Entry{Word: word, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	return entries
}

// Top returns the first n entries of an already sorted sequence. n <= 0 means
// no truncation.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// Write renders entries as the classic table: the word right-aligned in a
// field of at least 32 characters (longer words widen their own line), a
// pipe separator, and the count right-aligned in at least 8.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%32s | %8d\n", e.Word, e.Count); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// Digest hashes the ordered entry sequence into a 64-bit value. Two runs that
// produced the same words in the same order with the same counts share a
// digest, so thread count or merge strategy differences show up as a one-line
// diff in diagnostics. Word bytes never include NUL, which keeps the framing
// unambiguous.
func Digest(entries []Entry) uint64 {
	h := xxh3.New()
	var num [8]byte
	for _, e := range entries {
		h.WriteString(e.Word)
		h.Write([]byte{0})
		binary.LittleEndian.PutUint64(num[:], uint64(e.Count))
		h.Write(num[:])
	}
	return h.Sum64()
}
