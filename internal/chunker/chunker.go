// Package chunker splits raw document text into overlapping fixed-size
// windows for embedding and retrieval. Boundaries snap to the largest
// structural break available inside each window (paragraph, line, sentence,
// word) so chunks avoid cutting tokens; only when no break exists does a
// chunk end at the raw size limit. Each chunk carries its position in the
// original document so retrieval results can cite exact source spans.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Chunk is one contiguous window of the source document.
type Chunk struct {
	// Index is the 0-based, contiguous position of this chunk.
	Index int

	// Text is the chunk content, a direct slice of the source document.
	Text string

	// Start is the chunk's starting byte offset in the source document.
	Start int

	// End is the chunk's ending byte offset (exclusive).
	End int
}

// Length returns the chunk's size in bytes (End minus Start).
func (c Chunk) Length() int { return c.End - c.Start }

// Chunker produces overlapping chunks of a configured size.
type Chunker struct {
	// size is the maximum chunk length in bytes.
	size int
	// overlap is the number of bytes shared between consecutive chunks.
	overlap int
}

// Defaults mirror the reference configuration: 1000-character windows with a
// 200-character (20%) overlap.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// sentenceEnders are the two-byte sequences treated as sentence boundaries.
// The punctuation stays with the left-hand chunk.
var sentenceEnders = []string{". ", "! ", "? "}

// New constructs a Chunker. size must be positive and overlap must be
// non-negative and strictly smaller than size; an overlap equal to or larger
// than the chunk size would never advance the window and is rejected as a
// configuration error before any chunking begins.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunker: overlap must be non-negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split chunks text into an ordered, gap-free sequence of overlapping chunks.
// Documents no longer than the chunk size yield a single chunk spanning the
// whole text. Consecutive chunks overlap by the configured amount, measured
// from the actual (possibly boundary-snapped) end of the previous chunk, so
// coverage has no gaps even when a chunk ends early at a structural break.
// The final chunk always ends exactly at the end of the document.
func (c *Chunker) Split(text string) []Chunk {
	if len(text) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.snap(text, start, end)
		}

		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  text[start:end],
			Start: start,
			End:   end,
		})

		if end == len(text) {
			return chunks
		}

		next := end - c.overlap
		if next <= start {
			// Degenerate window: force progress by at least one byte.
			next = start + 1
		}
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}
}

// snap moves a raw cut position backwards to the best structural boundary in
// the window [start, end). Boundary kinds are tried largest-first: paragraph
// break, line break, sentence-ending punctuation, word boundary. A boundary
// is only taken if it falls in the second half of the window, so snapping
// never produces degenerate slivers; with no acceptable boundary the cut
// stays at the raw limit, adjusted to a rune start.
func (c *Chunker) snap(text string, start, end int) int {
	window := text[start:end]
	minCut := len(window) / 2

	if i := strings.LastIndex(window, "\n\n"); i+2 > minCut && i >= 0 {
		return start + i + 2
	}
	if i := strings.LastIndex(window, "\n"); i+1 > minCut && i >= 0 {
		return start + i + 1
	}
	best := -1
	for _, sep := range sentenceEnders {
		if i := strings.LastIndex(window, sep); i+2 > minCut && i > best {
			best = i
		}
	}
	if best >= 0 {
		return start + best + 2
	}
	if i := strings.LastIndex(window, " "); i+1 > minCut && i >= 0 {
		return start + i + 1
	}

	// Raw cut; never split a multi-byte rune.
	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

// Stats summarises a chunking run for logs and the health endpoint.
type Stats struct {
	// TotalChunks is the number of chunks produced.
	TotalChunks int
	// TotalBytes is the sum of all chunk lengths (overlap counted twice).
	TotalBytes int
	// MinLength and MaxLength bound the produced chunk sizes.
	MinLength int
	MaxLength int
}

// Summarize computes chunk statistics. An empty slice yields the zero Stats.
func Summarize(chunks []Chunk) Stats {
	var s Stats
	for _, ch := range chunks {
		n := ch.Length()
		s.TotalChunks++
		s.TotalBytes += n
		if s.MinLength == 0 || n < s.MinLength {
			s.MinLength = n
		}
		if n > s.MaxLength {
			s.MaxLength = n
		}
	}
	return s
}
