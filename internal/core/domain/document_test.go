package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDocument_ClonesMetadata(t *testing.T) {
	metadata := map[string]any{"id": "doc-1"}
	doc := NewDocument("hello", metadata)

	metadata["id"] = "mutated"

	assert.Equal(t, "doc-1", doc.Metadata["id"])
}

func TestNewSegment_ClonesMetadata(t *testing.T) {
	metadata := map[string]any{"id": "doc-1", "title": "Title"}
	seg := NewSegment("hello", metadata)

	metadata["title"] = "mutated"

	assert.Equal(t, "Title", seg.Metadata["title"])
	assert.Equal(t, "hello", seg.Text)
}

func TestNewSegment_NilMetadataGetsEmptyMap(t *testing.T) {
	seg := NewSegment("hello", nil)

	assert.NotNil(t, seg.Metadata)
	seg.Metadata["k"] = "v"
	assert.Equal(t, "v", seg.Metadata["k"])
}

func TestContentFromMatch(t *testing.T) {
	match := Match{
		ID:    "child-1",
		Score: 0.87,
		Segment: &Segment{
			Text:     "some text",
			Metadata: map[string]any{"parentId": "parent_0"},
		},
	}

	content := ContentFromMatch(match)

	assert.Equal(t, "some text", content.Text)
	assert.Equal(t, 0.87, content.Score)
	assert.Equal(t, "parent_0", content.Metadata["parentId"])
}
