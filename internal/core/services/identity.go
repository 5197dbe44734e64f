package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/graphrag/internal/core/domain"
)

// AssignIdentity writes a unique identity value into the segment's metadata
// under idProperty, mutating the segment in place.
//
// The store enforces a uniqueness constraint on (label, idProperty), so a
// caller-supplied id such as "doc-ai" reused across segments would fail at
// write time. A fresh random token guarantees uniqueness; the caller id and
// the owning parent id are kept as underscore-joined prefixes so lineage
// stays visible: "parent_2_doc-ai_<token>".
func AssignIdentity(seg *domain.Segment, idProperty, parentID string) {
	if seg.Metadata == nil {
		seg.Metadata = make(map[string]any)
	}

	parts := make([]string, 0, 3)
	if parentID != "" {
		parts = append(parts, parentID)
	}
	if existing, ok := seg.Metadata[idProperty]; ok {
		if s, ok := existing.(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, uuid.NewString())

	seg.Metadata[idProperty] = strings.Join(parts, "_")
}
