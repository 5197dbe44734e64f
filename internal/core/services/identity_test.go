package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/graphrag/internal/core/domain"
)

func TestAssignIdentity_ParentAndCallerID(t *testing.T) {
	seg := domain.NewSegment("text", map[string]any{"id": "doc-ai"})

	AssignIdentity(seg, "id", "parent_2")

	id, ok := seg.Metadata["id"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(id, "parent_2_doc-ai_"), id)

	token := strings.TrimPrefix(id, "parent_2_doc-ai_")
	_, err := uuid.Parse(token)
	assert.NoError(t, err, "suffix should be a random token")
}

func TestAssignIdentity_ParentOnly(t *testing.T) {
	seg := domain.NewSegment("text", nil)

	AssignIdentity(seg, "id", "parent_0")

	id := seg.Metadata["id"].(string)
	require.True(t, strings.HasPrefix(id, "parent_0_"), id)
	_, err := uuid.Parse(strings.TrimPrefix(id, "parent_0_"))
	assert.NoError(t, err)
}

func TestAssignIdentity_CallerIDOnly(t *testing.T) {
	seg := domain.NewSegment("text", map[string]any{"id": "doc-ai"})

	AssignIdentity(seg, "id", "")

	id := seg.Metadata["id"].(string)
	require.True(t, strings.HasPrefix(id, "doc-ai_"), id)
}

func TestAssignIdentity_NoPrefixes(t *testing.T) {
	seg := domain.NewSegment("text", nil)

	AssignIdentity(seg, "id", "")

	id := seg.Metadata["id"].(string)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestAssignIdentity_UniquePerCall(t *testing.T) {
	a := domain.NewSegment("text", map[string]any{"id": "doc-ai"})
	b := domain.NewSegment("text", map[string]any{"id": "doc-ai"})

	AssignIdentity(a, "id", "parent_0")
	AssignIdentity(b, "id", "parent_0")

	assert.NotEqual(t, a.Metadata["id"], b.Metadata["id"])
}

func TestAssignIdentity_InitializesNilMetadata(t *testing.T) {
	seg := &domain.Segment{Text: "text"}

	AssignIdentity(seg, "id", "parent_1")

	require.NotNil(t, seg.Metadata)
	assert.NotEmpty(t, seg.Metadata["id"])
}
