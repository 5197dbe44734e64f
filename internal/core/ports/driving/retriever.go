package driving

import (
	"context"

	"github.com/custodia-labs/graphrag/internal/core/domain"
	"github.com/custodia-labs/graphrag/internal/core/ports/driven"
)

// DocumentIndexer turns one document into a persisted parent/child tree
// plus its embeddings.
type DocumentIndexer interface {
	// Index splits the document into parent segments, optionally into
	// child segments, embeds the fine-grained units and persists both
	// levels with their relationship. A nil childSplitter embeds each
	// parent directly (single-level indexing).
	Index(ctx context.Context, doc domain.Document, parentSplitter, childSplitter driven.DocumentSplitter) error
}

// ContentRetriever answers a free-text query with ranked content.
type ContentRetriever interface {
	// Retrieve embeds the query, searches child embeddings, and returns
	// deduplicated parent-level content ordered by best child score.
	// An empty result set is a valid, non-exceptional outcome.
	Retrieve(ctx context.Context, query string) ([]domain.Content, error)
}
