package splitters

import (
	"strings"

	"github.com/custodia-labs/graphrag/internal/core/domain"
	"github.com/custodia-labs/graphrag/internal/core/ports/driven"
)

// Ensure FixedSplitter implements the interface.
var _ driven.DocumentSplitter = (*FixedSplitter)(nil)

// Default chunking parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// FixedSplitter splits a document into fixed-size character windows with
// overlap between consecutive windows. Window boundaries are rune-aligned
// so multibyte text is never cut mid-character.
type FixedSplitter struct {
	// Size is the window length in runes (default: 1000).
	Size int

	// Overlap is how many runes consecutive windows share (default: 100).
	// Must be smaller than Size.
	Overlap int
}

// NewFixedSplitter creates a splitter with the default window and overlap.
func NewFixedSplitter() *FixedSplitter {
	return &FixedSplitter{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap}
}

// Split breaks the document into overlapping fixed-size segments.
func (f *FixedSplitter) Split(doc domain.Document) []*domain.Segment {
	size := f.Size
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap := f.Overlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}

	step := size - overlap
	var segments []*domain.Segment
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		text := strings.TrimSpace(string(runes[start:end]))
		if text != "" {
			segments = append(segments, domain.NewSegment(text, doc.Metadata))
		}
		if end == len(runes) {
			break
		}
	}
	return segments
}
