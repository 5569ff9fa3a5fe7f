// Package token splits byte streams of source-code text into identifier-like
// words (maximal runs of [A-Za-z0-9_]). The Scanner consumes a file as a
// sequence of chunks and correctly reassembles words that straddle chunk
// boundaries, so results are independent of how the input was sliced.
package token

import (
	"log"
)

// MaxWordLen bounds the length of a word reassembled across chunk boundaries.
// Longer words are dropped with a diagnostic rather than growing the carry
// buffer without limit.
const MaxWordLen = 1023

// Scanner is a streaming word splitter. Feed it chunks with Write, then call
// Flush once at end of stream so a word still open at EOF is emitted (many
// real source files end without a trailing newline).
//
// A Scanner is not safe for concurrent use. It is reusable across files via
// Reset.
type Scanner struct {
	onWord  func(word []byte)
	maxWord int

	// carry holds the open word at the previous chunk's end, waiting for the
	// rest of it to arrive in the next chunk.
	carry []byte

	// discard is set while skipping the remainder of an oversized word.
	discard bool

	dropped int64
}

// NewScanner returns a Scanner that calls onWord for every completed word.
// The slice passed to onWord is only valid during the call; callers that keep
// the word must copy it. maxWord bounds cross-chunk reassembly; values <= 0
// select MaxWordLen.
func NewScanner(maxWord int, onWord func(word []byte)) *Scanner {
	if maxWord <= 0 {
		maxWord = MaxWordLen
	}
	return &Scanner{
		onWord:  onWord,
		maxWord: maxWord,
		carry:   make([]byte, 0, 64),
	}
}

// Write implements io.Writer: it scans one chunk of the stream, emitting every
// word completed within it and carrying an unterminated trailing word over to
// the next call. It always returns len(p), nil.
func (s *Scanner) Write(p []byte) (int, error) {
	i := 0
	n := len(p)

	// Finish whatever the previous chunk left open: leading word bytes either
	// extend the carried prefix or belong to a word being discarded.
	if s.discard || len(s.carry) > 0 {
		j := 0
		for j < n && IsWordByte(p[j]) {
			j++
		}
		switch {
		case s.discard:
			if j == n {
				return n, nil // still inside the oversized word
			}
			s.discard = false
			i = j
		case j == n:
			// The whole chunk continues the open word.
			if !s.grow(p) {
				s.discard = true
			}
			return n, nil
		case j == 0:
			// The open word ended exactly at the chunk boundary: the carry is
			// itself a complete word.
			s.onWord(s.carry)
			s.carry = s.carry[:0]
		default:
			// Glue prefix and suffix into one word. On overflow the word is
			// already complete here, so it is dropped without entering the
			// discard state.
			if s.grow(p[:j]) {
				s.onWord(s.carry)
			}
			s.carry = s.carry[:0]
			i = j
		}
	}

	start := -1
	for ; i < n; i++ {
		if IsWordByte(p[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			s.onWord(p[start:i])
			start = -1
		}
	}

	// Chunk ended inside a word: stash it for the next chunk.
	if start >= 0 {
		if !s.grow(p[start:]) {
			s.discard = true
		}
	}
	return n, nil
}

// Flush signals end of stream. A word still open at EOF is emitted as
// complete; an oversized word cut off by EOF has already been counted and is
// simply forgotten.
func (s *Scanner) Flush() {
	if s.discard {
		s.discard = false
		return
	}
	if len(s.carry) > 0 {
		s.onWord(s.carry)
		s.carry = s.carry[:0]
	}
}

// Reset clears all cross-chunk state so the Scanner can start a new file.
func (s *Scanner) Reset() {
	s.carry = s.carry[:0]
	s.discard = false
}

// Dropped returns how many oversized words this Scanner has dropped since it
// was created.
func (s *Scanner) Dropped() int64 { return s.dropped }

// grow appends b to the carry, enforcing the reassembly bound. On overflow it
// records the drop, clears the carry, and returns false.
func (s *Scanner) grow(b []byte) bool {
	if len(s.carry)+len(b) > s.maxWord {
		log.Printf("skipping oversized word (%d+ bytes, limit %d)", len(s.carry)+len(b), s.maxWord)
		s.dropped++
		s.carry = s.carry[:0]
		return false
	}
	s.carry = append(s.carry, b...)
	return true
}
