package splitters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/graphrag/internal/core/domain"
)

func TestParagraphSplitter_SplitsOnBlankLines(t *testing.T) {
	doc := domain.NewDocument("first paragraph\n\nsecond paragraph\n\n\nthird", nil)

	segs := NewParagraphSplitter().Split(doc)

	require.Len(t, segs, 3)
	assert.Equal(t, "first paragraph", segs[0].Text)
	assert.Equal(t, "second paragraph", segs[1].Text)
	assert.Equal(t, "third", segs[2].Text)
}

func TestParagraphSplitter_ToleratesWhitespaceOnBlankLines(t *testing.T) {
	doc := domain.NewDocument("one\n  \t\ntwo", nil)

	segs := NewParagraphSplitter().Split(doc)

	require.Len(t, segs, 2)
	assert.Equal(t, "one", segs[0].Text)
	assert.Equal(t, "two", segs[1].Text)
}

func TestParagraphSplitter_DropsEmptyParagraphs(t *testing.T) {
	doc := domain.NewDocument("\n\nonly\n\n\n\n", nil)

	segs := NewParagraphSplitter().Split(doc)

	require.Len(t, segs, 1)
	assert.Equal(t, "only", segs[0].Text)
}

func TestParagraphSplitter_PropagatesMetadata(t *testing.T) {
	doc := domain.NewDocument("a\n\nb", map[string]any{"id": "doc-1"})

	segs := NewParagraphSplitter().Split(doc)

	require.Len(t, segs, 2)
	for _, seg := range segs {
		assert.Equal(t, "doc-1", seg.Metadata["id"])
	}

	// Segment maps are independent copies.
	segs[0].Metadata["id"] = "mutated"
	assert.Equal(t, "doc-1", segs[1].Metadata["id"])
}

func TestParagraphSplitter_CapsOversizedParagraphs(t *testing.T) {
	long := strings.Repeat("x", 250)
	doc := domain.NewDocument("short\n\n"+long, nil)

	splitter := &ParagraphSplitter{MaxChars: 100}
	segs := splitter.Split(doc)

	require.Greater(t, len(segs), 2)
	assert.Equal(t, "short", segs[0].Text)
	for _, seg := range segs[1:] {
		assert.LessOrEqual(t, len(seg.Text), 100)
	}
}

func TestSentenceSplitter_OneSentencePerSegment(t *testing.T) {
	doc := domain.NewDocument("First sentence. Second one! Third?", nil)

	segs := NewSentenceSplitter(1).Split(doc)

	require.Len(t, segs, 3)
	assert.Equal(t, "First sentence.", segs[0].Text)
	assert.Equal(t, "Second one!", segs[1].Text)
	assert.Equal(t, "Third?", segs[2].Text)
}

func TestSentenceSplitter_PacksSentences(t *testing.T) {
	doc := domain.NewDocument("A. B. C. D. E.", nil)

	segs := NewSentenceSplitter(2).Split(doc)

	require.Len(t, segs, 3)
	assert.Equal(t, "A. B.", segs[0].Text)
	assert.Equal(t, "C. D.", segs[1].Text)
	assert.Equal(t, "E.", segs[2].Text)
}

func TestSentenceSplitter_KeepsTrailingFragment(t *testing.T) {
	doc := domain.NewDocument("Complete sentence. trailing fragment without period", nil)

	segs := NewSentenceSplitter(1).Split(doc)

	require.Len(t, segs, 2)
	assert.Equal(t, "trailing fragment without period", segs[1].Text)
}

func TestSentenceSplitter_EmptyDocument(t *testing.T) {
	segs := NewSentenceSplitter(1).Split(domain.NewDocument("", nil))
	assert.Empty(t, segs)
}

func TestFixedSplitter_WindowsWithOverlap(t *testing.T) {
	doc := domain.NewDocument(strings.Repeat("abcdefghij", 3), nil) // 30 chars

	splitter := &FixedSplitter{Size: 10, Overlap: 2}
	segs := splitter.Split(doc)

	require.Len(t, segs, 4)
	assert.Equal(t, "abcdefghij", segs[0].Text)
	assert.Equal(t, "ijabcdefgh", segs[1].Text)
	// Consecutive windows share the overlap.
	for i := 1; i < len(segs); i++ {
		prev := segs[i-1].Text
		assert.True(t, strings.HasPrefix(segs[i].Text, prev[len(prev)-2:]))
	}
}

func TestFixedSplitter_RuneAligned(t *testing.T) {
	doc := domain.NewDocument(strings.Repeat("é", 20), nil)

	splitter := &FixedSplitter{Size: 8, Overlap: 0}
	segs := splitter.Split(doc)

	require.Len(t, segs, 3)
	for _, seg := range segs {
		for _, r := range seg.Text {
			assert.Equal(t, 'é', r)
		}
	}
}

func TestFixedSplitter_Defaults(t *testing.T) {
	splitter := NewFixedSplitter()
	assert.Equal(t, DefaultChunkSize, splitter.Size)
	assert.Equal(t, DefaultChunkOverlap, splitter.Overlap)

	segs := (&FixedSplitter{}).Split(domain.NewDocument("short text", nil))
	require.Len(t, segs, 1)
	assert.Equal(t, "short text", segs[0].Text)
}

func TestFixedSplitter_EmptyDocument(t *testing.T) {
	assert.Empty(t, NewFixedSplitter().Split(domain.NewDocument("", nil)))
}
