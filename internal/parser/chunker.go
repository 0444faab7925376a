package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker splits extracted text into overlapping windows, preferring
// paragraph, line and word boundaries before falling back to characters.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
	size     int
	overlap  int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
		size:    size,
		overlap: overlap,
	}, nil
}

// Chunk returns the ordered chunks of text. Lengths are counted in runes.
func (c *Chunker) Chunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	chunks, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	var out []string
	for _, chunk := range chunks {
		for _, piece := range c.window(chunk) {
			if strings.TrimSpace(piece) == "" {
				continue
			}
			out = append(out, piece)
		}
	}
	return out, nil
}

// window re-splits a chunk longer than size runes into size-rune windows that
// keep the configured overlap. The splitter can exceed size by the length of
// a separator when merging.
func (c *Chunker) window(chunk string) []string {
	if utf8.RuneCountInString(chunk) <= c.size {
		return []string{chunk}
	}
	runes := []rune(chunk)
	step := c.size - c.overlap
	var out []string
	for start := 0; ; start += step {
		end := min(start+c.size, len(runes))
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			return out
		}
	}
}
