package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/graphrag/internal/core/domain"
)

func aggregateFixture(t *testing.T, graph *fakeGraph, maxResults int, concat bool) (*GraphRetriever, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	r, err := New(Config{
		Embedder:       newFakeEmbedder(),
		Store:          store,
		Graph:          graph,
		MaxResults:     maxResults,
		Aggregation:    AggregationInProcess,
		ConcatChildren: concat,
	})
	require.NoError(t, err)
	return r, store
}

func lookupRow(childID, childText, parentKey, parentText string) map[string]any {
	return map[string]any{
		"childId":        childID,
		"childText":      childText,
		"parentKey":      parentKey,
		"parentText":     parentText,
		"parentMetadata": map[string]any{"parentId": parentKey},
		"childMetadata":  map[string]any{"id": childID},
	}
}

func TestAggregate_DeduplicatesByParent(t *testing.T) {
	graph := &fakeGraph{rows: []map[string]any{
		lookupRow("c1", "child one", "parent_0", "parent text"),
		lookupRow("c2", "child two", "parent_0", "parent text"),
	}}
	r, _ := aggregateFixture(t, graph, 3, false)

	matches := []domain.Match{
		{ID: "c1", Score: 0.9},
		{ID: "c2", Score: 0.7},
	}
	contents, err := r.aggregate(context.Background(), matches)
	require.NoError(t, err)

	require.Len(t, contents, 1)
	assert.Equal(t, "parent text", contents[0].Text)
	assert.Equal(t, 0.9, contents[0].Score, "group score is the max child score")
	assert.Equal(t, "c1", contents[0].Metadata["id"], "metadata follows the best child")
}

func TestAggregate_BestChildWinsRegardlessOfRowOrder(t *testing.T) {
	// Rows arrive with the weaker child first.
	graph := &fakeGraph{rows: []map[string]any{
		lookupRow("c2", "weaker", "parent_0", "parent text"),
		lookupRow("c1", "stronger", "parent_0", "parent text"),
	}}
	r, _ := aggregateFixture(t, graph, 3, false)

	contents, err := r.aggregate(context.Background(), []domain.Match{
		{ID: "c1", Score: 0.95},
		{ID: "c2", Score: 0.5},
	})
	require.NoError(t, err)

	require.Len(t, contents, 1)
	assert.Equal(t, 0.95, contents[0].Score)
	assert.Equal(t, "c1", contents[0].Metadata["id"])
}

func TestAggregate_OrdersParentsByBestScore(t *testing.T) {
	graph := &fakeGraph{rows: []map[string]any{
		lookupRow("c1", "a", "parent_0", "low parent"),
		lookupRow("c2", "b", "parent_1", "high parent"),
	}}
	r, _ := aggregateFixture(t, graph, 3, false)

	contents, err := r.aggregate(context.Background(), []domain.Match{
		{ID: "c1", Score: 0.6},
		{ID: "c2", Score: 0.8},
	})
	require.NoError(t, err)

	require.Len(t, contents, 2)
	assert.Equal(t, "high parent", contents[0].Text)
	assert.Equal(t, "low parent", contents[1].Text)
}

func TestAggregate_LimitAppliesAfterGrouping(t *testing.T) {
	graph := &fakeGraph{rows: []map[string]any{
		lookupRow("c1", "a", "parent_0", "p0"),
		lookupRow("c2", "b", "parent_0", "p0"),
		lookupRow("c3", "c", "parent_1", "p1"),
	}}
	r, _ := aggregateFixture(t, graph, 1, false)

	contents, err := r.aggregate(context.Background(), []domain.Match{
		{ID: "c1", Score: 0.9},
		{ID: "c2", Score: 0.8},
		{ID: "c3", Score: 0.7},
	})
	require.NoError(t, err)

	// Three matches collapse to two parents; the limit keeps the best one.
	require.Len(t, contents, 1)
	assert.Equal(t, "p0", contents[0].Text)
}

func TestAggregate_ConcatFollowsMatchOrder(t *testing.T) {
	// Rows come back in reverse of match order.
	graph := &fakeGraph{rows: []map[string]any{
		lookupRow("c2", "second child", "parent_0", "parent text"),
		lookupRow("c1", "first child", "parent_0", "parent text"),
	}}
	r, _ := aggregateFixture(t, graph, 3, true)

	contents, err := r.aggregate(context.Background(), []domain.Match{
		{ID: "c1", Score: 0.9},
		{ID: "c2", Score: 0.8},
	})
	require.NoError(t, err)

	require.Len(t, contents, 1)
	assert.Equal(t, "parent text\n\nfirst child\n\nsecond child", contents[0].Text)
	assert.Equal(t, "parent_0", contents[0].Metadata["parentId"], "concat mode surfaces parent metadata")
}

func TestAggregate_SkipsRowsWithoutMatchingChild(t *testing.T) {
	graph := &fakeGraph{rows: []map[string]any{
		lookupRow("c1", "a", "parent_0", "p0"),
		lookupRow("stale", "b", "parent_9", "p9"),
	}}
	r, _ := aggregateFixture(t, graph, 3, false)

	contents, err := r.aggregate(context.Background(), []domain.Match{{ID: "c1", Score: 0.9}})
	require.NoError(t, err)

	require.Len(t, contents, 1)
	assert.Equal(t, "p0", contents[0].Text)
}

func TestAggregate_EmptyMatches(t *testing.T) {
	graph := &fakeGraph{}
	r, _ := aggregateFixture(t, graph, 3, false)

	contents, err := r.aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, contents)
	assert.Empty(t, graph.calls, "no lookup without matches")
}

func TestParentLookupQuery_Shape(t *testing.T) {
	graph := &fakeGraph{}
	r, _ := aggregateFixture(t, graph, 3, false)

	query, err := r.parentLookupQuery()
	require.NoError(t, err)

	assert.Contains(t, query, "MATCH (child:Child)<-[:HAS_CHILD]-(parent)")
	assert.Contains(t, query, "WHERE child.id IN $childIds")
	assert.Contains(t, query, "parent.parentId AS parentKey")
}

func TestParentLookupQuery_RejectsUnsafeIdentifiers(t *testing.T) {
	graph := &fakeGraph{}
	r, store := aggregateFixture(t, graph, 3, false)
	store.label = "Bad Label`) DETACH DELETE n //"

	_, err := r.aggregate(context.Background(), []domain.Match{{ID: "c1", Score: 0.9}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
	assert.Empty(t, graph.calls, "nothing reaches the database")
}
