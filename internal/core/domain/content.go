package domain

// Match is a single child-level similarity hit returned by the store.
// For aggregating retrieval queries the store already collapses matches to
// parent level, in which case a Match carries the parent row.
type Match struct {
	// ID is the matched node's identity property value.
	ID string

	// Score is the similarity score on the store's scale
	// (cosine similarity by convention).
	Score float64

	// Segment is the stored text and metadata of the matched node.
	Segment *Segment
}

// Content is a single retrieved result handed back to the caller:
// deduplicated, score-ranked parent content, or a synthesized answer.
type Content struct {
	// Text is the returned content text.
	Text string

	// Score is the representative (max-child) score for the content.
	// Zero for synthesized answers, which have no single source score.
	Score float64

	// Metadata is the surfaced result metadata.
	Metadata map[string]any
}

// ContentFromMatch converts a store match into returned content.
func ContentFromMatch(m Match) Content {
	c := Content{Score: m.Score}
	if m.Segment != nil {
		c.Text = m.Segment.Text
		c.Metadata = m.Segment.Metadata
	}
	return c
}
