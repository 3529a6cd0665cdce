// Package rag implements the retrieval-augmented answering pipeline:
// chunking, document shaping, vector indexing and search, context assembly,
// answer synthesis, and the chat and index orchestrators tying them together.
package rag

import (
	"fmt"

	"github.com/novanote/novanote/internal/domain"
)

const (
	DefaultWindowSize = 1000
	DefaultOverlap    = 150
)

// Chunker splits text into fixed-size windows that overlap their neighbour.
// Sizes are counted in runes. A Chunker is immutable and safe for concurrent use.
type Chunker struct {
	window  int
	overlap int
}

// NewChunker validates the window parameters. The step window-overlap must be
// positive or chunking would never advance.
func NewChunker(window, overlap int) (*Chunker, error) {
	if window <= 0 {
		return nil, domain.NewDomainError(domain.ErrCodeInvalidConfiguration,
			fmt.Sprintf("chunk window must be positive, got %d", window))
	}
	if overlap < 0 || overlap >= window {
		return nil, domain.NewDomainError(domain.ErrCodeInvalidConfiguration,
			fmt.Sprintf("chunk overlap must be in [0, %d), got %d", window, overlap))
	}
	return &Chunker{window: window, overlap: overlap}, nil
}

// DefaultChunker returns the 1000/150 chunker.
func DefaultChunker() *Chunker {
	return &Chunker{window: DefaultWindowSize, overlap: DefaultOverlap}
}

// Window returns the configured window size.
func (c *Chunker) Window() int { return c.window }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk emits [i, min(i+window, n)) for i = 0, step, 2*step, ... while i < n,
// stopping once a window reaches the end of the text so no chunk is a pure
// suffix of its predecessor. Empty text yields no chunks; text no longer than
// the window yields itself.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := c.window - c.overlap
	chunks := make([]string, 0, n/step+1)
	for i := 0; i < n; i += step {
		end := i + c.window
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == n {
			break
		}
	}
	return chunks
}
