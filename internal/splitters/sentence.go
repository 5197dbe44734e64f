package splitters

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/graphrag/internal/core/domain"
	"github.com/custodia-labs/graphrag/internal/core/ports/driven"
)

// Ensure SentenceSplitter implements the interface.
var _ driven.DocumentSplitter = (*SentenceSplitter)(nil)

// A sentence runs up to the first terminal punctuation mark.
var sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// SentenceSplitter splits a document into sentences, packing up to
// MaxSentences consecutive sentences into each segment. Text after the last
// terminal punctuation mark becomes a final segment of its own.
type SentenceSplitter struct {
	// MaxSentences is the number of sentences per segment (default: 1).
	MaxSentences int
}

// NewSentenceSplitter creates a splitter packing n sentences per segment.
func NewSentenceSplitter(n int) *SentenceSplitter {
	if n < 1 {
		n = 1
	}
	return &SentenceSplitter{MaxSentences: n}
}

// Split breaks the document into sentence segments.
func (s *SentenceSplitter) Split(doc domain.Document) []*domain.Segment {
	perSegment := s.MaxSentences
	if perSegment < 1 {
		perSegment = 1
	}

	matches := sentencePattern.FindAllStringIndex(doc.Text, -1)

	var sentences []string
	last := 0
	for _, m := range matches {
		sentence := strings.TrimSpace(doc.Text[m[0]:m[1]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		last = m[1]
	}
	if tail := strings.TrimSpace(doc.Text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}

	var segments []*domain.Segment
	for i := 0; i < len(sentences); i += perSegment {
		end := i + perSegment
		if end > len(sentences) {
			end = len(sentences)
		}
		text := strings.Join(sentences[i:end], " ")
		segments = append(segments, domain.NewSegment(text, doc.Metadata))
	}
	return segments
}
