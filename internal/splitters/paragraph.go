package splitters

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/graphrag/internal/core/domain"
	"github.com/custodia-labs/graphrag/internal/core/ports/driven"
)

// Ensure ParagraphSplitter implements the interface.
var _ driven.DocumentSplitter = (*ParagraphSplitter)(nil)

// Paragraphs are separated by one or more blank lines, tolerating trailing
// whitespace on the separating lines.
var paragraphSeparator = regexp.MustCompile(`\n[ \t]*\n+`)

// ParagraphSplitter splits a document on blank lines, one segment per
// paragraph. MaxChars, when set, further breaks oversized paragraphs with
// a fixed-size splitter so no segment exceeds the cap.
type ParagraphSplitter struct {
	// MaxChars caps the segment length (0 = unlimited).
	MaxChars int
}

// NewParagraphSplitter creates a splitter with no length cap.
func NewParagraphSplitter() *ParagraphSplitter {
	return &ParagraphSplitter{}
}

// Split breaks the document into paragraph segments. Empty paragraphs are
// dropped.
func (p *ParagraphSplitter) Split(doc domain.Document) []*domain.Segment {
	var segments []*domain.Segment
	for _, part := range paragraphSeparator.Split(doc.Text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p.MaxChars > 0 && len(part) > p.MaxChars {
			fixed := &FixedSplitter{Size: p.MaxChars}
			segments = append(segments, fixed.Split(domain.Document{
				Text:     part,
				Metadata: doc.Metadata,
			})...)
			continue
		}
		segments = append(segments, domain.NewSegment(part, doc.Metadata))
	}
	return segments
}
