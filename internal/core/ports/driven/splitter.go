package driven

import "github.com/custodia-labs/graphrag/internal/core/domain"

// DocumentSplitter splits a document into an ordered sequence of segments.
// The same interface serves both levels: a coarse parent splitter and an
// optional fine-grained child splitter.
type DocumentSplitter interface {
	// Split returns the document's segments in order. Order matters:
	// parent identifiers are assigned by split position.
	Split(doc domain.Document) []*domain.Segment
}
