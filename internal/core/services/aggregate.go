package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/graphrag/internal/core/domain"
)

// parentGroup accumulates one parent's matching children during in-process
// aggregation.
type parentGroup struct {
	parentText     string
	parentMetadata map[string]any
	bestScore      float64
	bestMetadata   map[string]any
	firstSeen      int
	childTexts     []orderedText
}

// orderedText keeps a child's original match position so concatenation
// follows match order, not row order.
type orderedText struct {
	order int
	text  string
}

// aggregate collapses child-level matches into deduplicated parent-level
// content: traverse each match's parent edge, group by parent, take the max
// child score per group, sort descending, and truncate to maxResults only
// after grouping so collapsed parents cannot under-fill the result.
//
// This is the in-process twin of the store-side retrieval queries; both
// produce identical results for the same stored data.
func (r *GraphRetriever) aggregate(ctx context.Context, matches []domain.Match) ([]domain.Content, error) {
	if len(matches) == 0 {
		return []domain.Content{}, nil
	}

	childIDs := make([]string, 0, len(matches))
	scores := make(map[string]float64, len(matches))
	matchOrder := make(map[string]int, len(matches))
	for i, m := range matches {
		if m.ID == "" {
			continue
		}
		childIDs = append(childIDs, m.ID)
		scores[m.ID] = m.Score
		matchOrder[m.ID] = i
	}
	if len(childIDs) == 0 {
		return []domain.Content{}, nil
	}

	query, err := r.parentLookupQuery()
	if err != nil {
		return nil, err
	}
	rows, err := r.graph.Run(ctx, query, map[string]any{"childIds": childIDs})
	if err != nil {
		return nil, fmt.Errorf("parent lookup: %w", err)
	}

	groups := make(map[string]*parentGroup)
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		childID := asString(row["childId"])
		parentKey := asString(row["parentKey"])
		score, matched := scores[childID]
		if !matched {
			continue
		}

		g, ok := groups[parentKey]
		if !ok {
			g = &parentGroup{
				parentText:     asString(row["parentText"]),
				parentMetadata: asMetadata(row["parentMetadata"]),
				bestScore:      score,
				bestMetadata:   asMetadata(row["childMetadata"]),
				firstSeen:      matchOrder[childID],
			}
			groups[parentKey] = g
			keys = append(keys, parentKey)
		} else if score > g.bestScore {
			g.bestScore = score
			g.bestMetadata = asMetadata(row["childMetadata"])
		}
		g.childTexts = append(g.childTexts, orderedText{
			order: matchOrder[childID],
			text:  asString(row["childText"]),
		})
	}

	// Ties are broken by first match position; beyond that the store's
	// order is not guaranteed.
	sort.SliceStable(keys, func(i, j int) bool {
		gi, gj := groups[keys[i]], groups[keys[j]]
		if gi.bestScore != gj.bestScore {
			return gi.bestScore > gj.bestScore
		}
		return gi.firstSeen < gj.firstSeen
	})

	if len(keys) > r.maxResults {
		keys = keys[:r.maxResults]
	}

	contents := make([]domain.Content, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		if r.concatChildren {
			sort.SliceStable(g.childTexts, func(i, j int) bool {
				return g.childTexts[i].order < g.childTexts[j].order
			})
			text := g.parentText
			for _, chunk := range g.childTexts {
				text += "\n\n" + chunk.text
			}
			contents = append(contents, domain.Content{
				Text:     text,
				Score:    g.bestScore,
				Metadata: g.parentMetadata,
			})
			continue
		}
		contents = append(contents, domain.Content{
			Text:     g.parentText,
			Score:    g.bestScore,
			Metadata: g.bestMetadata,
		})
	}
	return contents, nil
}

// parentLookupQuery composes the parent-edge traversal for the matched child
// ids. Every spliced identifier passes sanitization first.
func (r *GraphRetriever) parentLookupQuery() (string, error) {
	label, err := domain.SanitizeIdentifier(r.store.Label(), "label")
	if err != nil {
		return "", err
	}
	relationship, err := domain.SanitizeIdentifier(r.relationship, "relationship type")
	if err != nil {
		return "", err
	}
	idProperty, err := domain.SanitizeIdentifier(r.store.IDProperty(), "id property")
	if err != nil {
		return "", err
	}
	parentIDKey, err := domain.SanitizeIdentifier(r.parentIDKey, "parent id key")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (child:%s)<-[:%s]-(parent)\n", label, relationship)
	fmt.Fprintf(&b, "WHERE child.%s IN $childIds\n", idProperty)
	fmt.Fprintf(&b, "RETURN child.%s AS childId, child.text AS childText, ", idProperty)
	fmt.Fprintf(&b, "parent.%s AS parentKey, parent.text AS parentText, ", parentIDKey)
	b.WriteString("properties(parent) AS parentMetadata, properties(child) AS childMetadata")
	return b.String(), nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asMetadata(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
