package domain

import "fmt"

// Variant names a retrieval policy preset. The presets share one engine and
// differ only in the relationship type written at index time, the store
// label/index they target, and how child matches are aggregated back into
// parent content.
type Variant string

const (
	// VariantPlain matches and returns the embedded segments directly,
	// with no parent-edge traversal.
	VariantPlain Variant = "plain"

	// VariantParentChild embeds child segments and returns the owning
	// parent's text with all matching children's texts appended.
	VariantParentChild Variant = "parent-child"

	// VariantHypotheticalQuestion embeds generated hypothetical questions
	// per child unit and returns the owning parent's text.
	VariantHypotheticalQuestion Variant = "hypothetical-question"

	// VariantSummary embeds generated summaries per child unit and
	// returns the owning parent's text.
	VariantSummary Variant = "summary"
)

// VariantSpec holds the store-facing parameters of a variant.
type VariantSpec struct {
	// Relationship is the edge type from parent to child node.
	// Empty for the plain variant, which persists no parent edges.
	Relationship string

	// Label is the child node label.
	Label string

	// IndexName is the vector index covering the child embeddings.
	IndexName string

	// ConcatChildren selects the aggregation that appends all matching
	// children's texts after the parent's own text, instead of returning
	// the parent text with the best child's metadata.
	ConcatChildren bool
}

// Spec returns the store-facing parameters for the variant.
func (v Variant) Spec() VariantSpec {
	switch v {
	case VariantParentChild:
		return VariantSpec{
			Relationship:   "HAS_CHILD",
			Label:          "Child",
			IndexName:      "child_embedding_index",
			ConcatChildren: true,
		}
	case VariantHypotheticalQuestion:
		return VariantSpec{
			Relationship: "HAS_QUESTION",
			Label:        "Child",
			IndexName:    "child_embedding_index",
		}
	case VariantSummary:
		return VariantSpec{
			Relationship: "HAS_SUMMARY",
			Label:        "Summary",
			IndexName:    "summary_embedding_index",
		}
	default:
		return VariantSpec{
			Label:     "Chunk",
			IndexName: "chunk_embedding_index",
		}
	}
}

// ParseVariant converts a configuration string into a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantPlain, VariantParentChild, VariantHypotheticalQuestion, VariantSummary:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}
