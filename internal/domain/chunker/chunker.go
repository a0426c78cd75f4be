// Package chunker splits extracted text into overlapping, sentence-aligned
// segments sized for embedding.
package chunker

import (
	"strings"
	"unicode"
)

// Defaults applied when Split receives non-positive parameters.
const (
	DefaultSize    = 1500
	DefaultOverlap = 200

	// boundaryRadius bounds the neighborhood searched around a window edge
	// for a sentence boundary to snap to.
	boundaryRadius = 100
)

// Split cuts text into trimmed, non-empty segments of roughly size runes with
// the given overlap between consecutive segments. Window edges snap to the
// last sentence terminator followed by whitespace within boundaryRadius of
// the edge, keeping segments semantically coherent. Empty input yields nil.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0

	for start < len(runes) {
		end := start + size

		if end < len(runes) {
			lo := end - boundaryRadius
			if lo < start {
				lo = start
			}
			hi := end + boundaryRadius
			if hi > len(runes) {
				hi = len(runes)
			}
			if idx := lastSentenceEnd(runes[lo:hi]); idx >= 0 {
				end = lo + idx + 1
			}
		} else {
			end = len(runes)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// The final window already covers the rest of the input; stepping
		// back by the overlap here would re-emit its tail.
		if end == len(runes) {
			break
		}

		// Anti-stall rule: when the overlap would not advance the window,
		// start directly at the previous end.
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// lastSentenceEnd returns the index of the last '.', '!' or '?' that is
// followed by whitespace, or -1 when the window holds none.
func lastSentenceEnd(window []rune) int {
	for i := len(window) - 2; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?':
			if unicode.IsSpace(window[i+1]) {
				return i
			}
		}
	}
	return -1
}
