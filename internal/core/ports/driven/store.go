package driven

import (
	"context"

	"github.com/custodia-labs/graphrag/internal/core/domain"
)

// SearchRequest parametrizes a similarity search against the store.
type SearchRequest struct {
	// QueryVector is the embedded query text.
	QueryVector []float32

	// MaxResults is the maximum number of results to return (positive).
	MaxResults int

	// MinScore is the minimum similarity score; matches below it are
	// filtered by the store before returning.
	MinScore float64
}

// EmbeddingStore persists embedding+segment pairs in a vector-search-capable
// graph store and answers similarity searches against them.
//
// When a variant retrieval query is configured, Search returns parent-level
// rows already deduplicated and ranked by the store; otherwise it returns
// raw child-level matches.
type EmbeddingStore interface {
	// AddAll writes embedding+segment pairs in one batch. When ids is nil,
	// identities are taken from each segment's identity-property metadata,
	// falling back to generated ones. Vectors whose length differs from
	// the configured dimension are rejected. An empty batch is skipped,
	// not an error.
	AddAll(ctx context.Context, ids []string, embeddings [][]float32, segments []*domain.Segment) ([]string, error)

	// Search runs a similarity search. Matches come back pre-filtered
	// (score >= MinScore), pre-truncated and pre-sorted by score
	// descending; callers trust the store's ordering.
	Search(ctx context.Context, req SearchRequest) ([]domain.Match, error)

	// SetAdditionalParams sets extra parameters merged into subsequent
	// write-query executions (e.g. the current parentId).
	SetAdditionalParams(params map[string]any)

	// IDProperty returns the configured identity property name.
	IDProperty() string

	// Label returns the configured node label.
	Label() string

	// IndexName returns the configured vector index name.
	IndexName() string
}
