package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/graphrag/internal/core/domain"
	"github.com/custodia-labs/graphrag/internal/core/ports/driven"
	"github.com/custodia-labs/graphrag/internal/core/ports/driving"
	"github.com/custodia-labs/graphrag/internal/logger"
)

// Ensure GraphRetriever implements the driving ports.
var (
	_ driving.ContentRetriever = (*GraphRetriever)(nil)
	_ driving.DocumentIndexer  = (*GraphRetriever)(nil)
)

// DefaultParentQuery creates one parent node per parent segment from the
// composed metadata map.
const DefaultParentQuery = "CREATE (:Parent $metadata)"

// defaultParentIDKey is the metadata key carrying the run-scoped parent
// identifier on parent and child nodes.
const defaultParentIDKey = "parentId"

// AggregationMode selects where child matches are collapsed into parent
// content.
type AggregationMode int

const (
	// AggregationPushDown trusts the store's retrieval query to group,
	// rank and truncate matches (the default).
	AggregationPushDown AggregationMode = iota

	// AggregationInProcess fetches raw child matches, looks their parents
	// up through the graph, and performs the grouping locally. Results
	// are identical to push-down for the same stored data.
	AggregationInProcess
)

// Config assembles a GraphRetriever. All variants share this one field set
// with different defaults; use NewVariant for the presets.
type Config struct {
	// Embedder generates query and segment embeddings (required).
	Embedder driven.EmbeddingService

	// Store persists embeddings and answers similarity searches (required).
	Store driven.EmbeddingStore

	// Graph executes parent writes and in-process parent lookups.
	// Required when ParentQuery is set or Aggregation is in-process.
	Graph driven.CypherRunner

	// MaxResults bounds the number of returned results (required, positive).
	MaxResults int

	// MinScore is the similarity threshold on the store's scale.
	MinScore float64

	// ParentQuery is the write query executed once per parent segment
	// with a $metadata parameter. Empty disables parent-node writes.
	ParentQuery string

	// ParentParams are caller-supplied static parameters merged into the
	// parent metadata map and into child write executions.
	ParentParams map[string]any

	// ParentIDKey overrides the parent identifier metadata key
	// (default "parentId").
	ParentIDKey string

	// TransformModel rewrites parent text before child splitting and
	// embedding (optional). Requires both prompts.
	TransformModel driven.ChatService

	// SystemPrompt and UserPrompt drive the transform model. UserPrompt
	// may reference the parent text as {{input}}.
	SystemPrompt string
	UserPrompt   string

	// AnswerModel composes a single answer from the aggregated context
	// (optional).
	AnswerModel driven.ChatService

	// AnswerPrompt overrides the built-in answer instruction prefix.
	AnswerPrompt string

	// Aggregation selects push-down or in-process aggregation.
	Aggregation AggregationMode

	// Relationship is the parent-to-child edge type used by in-process
	// aggregation (default "HAS_CHILD").
	Relationship string

	// ConcatChildren appends all matching children's texts after the
	// parent's own text instead of returning the parent text alone.
	// Only used by in-process aggregation; push-down variants encode
	// this in their retrieval query.
	ConcatChildren bool
}

// GraphRetriever is the hierarchical parent/child indexing and retrieval
// engine. One instance covers every retrieval policy; the variants differ
// only in configuration.
type GraphRetriever struct {
	embedder       driven.EmbeddingService
	store          driven.EmbeddingStore
	graph          driven.CypherRunner
	maxResults     int
	minScore       float64
	parentQuery    string
	parentParams   map[string]any
	parentIDKey    string
	transformModel driven.ChatService
	systemPrompt   string
	userPrompt     string
	answerModel    driven.ChatService
	answerPrompt   string
	aggregation    AggregationMode
	relationship   string
	concatChildren bool
}

// New validates the configuration and builds the engine. Configuration
// errors surface here, before anything is written to the store.
func New(cfg Config) (*GraphRetriever, error) {
	if cfg.Embedder == nil {
		return nil, domain.ErrEmbedderRequired
	}
	if cfg.Store == nil {
		return nil, domain.ErrStoreRequired
	}
	if cfg.MaxResults <= 0 {
		return nil, domain.ErrInvalidMaxResults
	}
	if cfg.TransformModel != nil && (cfg.SystemPrompt == "" || cfg.UserPrompt == "") {
		return nil, domain.ErrMissingPromptPair
	}
	if cfg.Graph == nil && (cfg.ParentQuery != "" || cfg.Aggregation == AggregationInProcess) {
		return nil, domain.ErrGraphRequired
	}

	if cfg.ParentIDKey == "" {
		cfg.ParentIDKey = defaultParentIDKey
	}
	if cfg.AnswerPrompt == "" {
		cfg.AnswerPrompt = DefaultAnswerPrompt
	}
	if cfg.Relationship == "" {
		cfg.Relationship = "HAS_CHILD"
	}

	return &GraphRetriever{
		embedder:       cfg.Embedder,
		store:          cfg.Store,
		graph:          cfg.Graph,
		maxResults:     cfg.MaxResults,
		minScore:       cfg.MinScore,
		parentQuery:    cfg.ParentQuery,
		parentParams:   cfg.ParentParams,
		parentIDKey:    cfg.ParentIDKey,
		transformModel: cfg.TransformModel,
		systemPrompt:   cfg.SystemPrompt,
		userPrompt:     cfg.UserPrompt,
		answerModel:    cfg.AnswerModel,
		answerPrompt:   cfg.AnswerPrompt,
		aggregation:    cfg.Aggregation,
		relationship:   cfg.Relationship,
		concatChildren: cfg.ConcatChildren,
	}, nil
}

// NewVariant builds the engine from a named preset, filling in the variant's
// parent query, relationship type, aggregation shape and transform prompts
// where the config leaves them unset.
func NewVariant(variant domain.Variant, cfg Config) (*GraphRetriever, error) {
	spec := variant.Spec()
	if variant != domain.VariantPlain && cfg.ParentQuery == "" {
		cfg.ParentQuery = DefaultParentQuery
	}
	if cfg.TransformModel != nil && cfg.SystemPrompt == "" && cfg.UserPrompt == "" {
		cfg.SystemPrompt, cfg.UserPrompt = TransformPrompts(variant)
	}
	if spec.Relationship != "" {
		cfg.Relationship = spec.Relationship
	}
	cfg.ConcatChildren = spec.ConcatChildren
	return New(cfg)
}

// Index transforms one document into a persisted parent/child tree and its
// embeddings. Parent segments are processed sequentially: parent identifiers
// are sequence-dependent and each parent's write must complete before its
// children reference it. Store and model failures propagate as-is; parents
// persisted by earlier iterations stay persisted.
func (r *GraphRetriever) Index(
	ctx context.Context, doc domain.Document, parentSplitter, childSplitter driven.DocumentSplitter,
) error {
	logger.Section("Indexing")
	parents := parentSplitter.Split(doc)
	logger.Debug("Parent segments: %d", len(parents))

	idProperty := r.store.IDProperty()

	for i, parent := range parents {
		parentID := fmt.Sprintf("parent_%d", i)
		AssignIdentity(parent, idProperty, "")

		text := parent.Text
		if r.transformModel != nil {
			transformed, err := r.transform(ctx, parent.Text)
			if err != nil {
				return fmt.Errorf("transform parent %s: %w", parentID, err)
			}
			logger.Debug("Transformed parent %s (%d -> %d chars)", parentID, len(parent.Text), len(transformed))
			text = transformed
		}

		if r.parentQuery != "" {
			if err := r.writeParent(ctx, doc, parentID, text); err != nil {
				return err
			}
		}

		r.store.SetAdditionalParams(r.additionalParams(parentID))

		if childSplitter == nil {
			// Single-level indexing: the parent is embedded directly as
			// its own child-equivalent entry.
			child := domain.NewSegment(text, parent.Metadata)
			embedding, err := r.embedder.Embed(ctx, child.Text)
			if err != nil {
				return fmt.Errorf("embed parent %s: %w", parentID, err)
			}
			if _, err := r.store.AddAll(ctx, nil, [][]float32{embedding}, []*domain.Segment{child}); err != nil {
				return fmt.Errorf("persist parent %s: %w", parentID, err)
			}
			continue
		}

		// Reconstitute a document from the (possibly transformed) parent
		// text so child splitting operates on the text the parent indexed.
		parentDoc := domain.NewDocument(text, doc.Metadata)
		children := childSplitter.Split(parentDoc)
		if len(children) == 0 {
			logger.Debug("Parent %s produced no child segments, skipping", parentID)
			continue
		}

		texts := make([]string, len(children))
		for j, child := range children {
			AssignIdentity(child, idProperty, parentID)
			texts[j] = child.Text
		}

		embeddings, err := r.embedder.EmbedAll(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed children of %s: %w", parentID, err)
		}
		if _, err := r.store.AddAll(ctx, nil, embeddings, children); err != nil {
			return fmt.Errorf("persist children of %s: %w", parentID, err)
		}
		logger.Debug("Persisted %d children for %s", len(children), parentID)
	}

	return nil
}

// writeParent composes the parent metadata map and executes the parent-write
// query. The document's own "text" and "title" metadata win over defaults.
func (r *GraphRetriever) writeParent(ctx context.Context, doc domain.Document, parentID, text string) error {
	metadata := domain.CloneMetadata(doc.Metadata)
	metadata[r.parentIDKey] = parentID
	if _, ok := metadata["text"]; !ok {
		metadata["text"] = text
	}
	if _, ok := metadata["title"]; !ok {
		metadata["title"] = "Untitled"
	}
	for k, v := range r.parentParams {
		metadata[k] = v
	}

	if _, err := r.graph.Run(ctx, r.parentQuery, map[string]any{"metadata": metadata}); err != nil {
		return fmt.Errorf("write parent %s: %w", parentID, err)
	}
	return nil
}

// additionalParams merges the static params with the current parent id for
// the store's child write execution.
func (r *GraphRetriever) additionalParams(parentID string) map[string]any {
	params := make(map[string]any, len(r.parentParams)+1)
	for k, v := range r.parentParams {
		params[k] = v
	}
	params[r.parentIDKey] = parentID
	return params
}

// transform rewrites parent text through the transform model using the
// configured system/user prompt pair.
func (r *GraphRetriever) transform(ctx context.Context, input string) (string, error) {
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: r.systemPrompt},
		{Role: driven.RoleUser, Content: applyTemplate(r.userPrompt, map[string]string{"input": input})},
	}
	return r.transformModel.Chat(ctx, messages)
}

// Retrieve embeds the query once, runs a single similarity search, collapses
// the matches into parent content, and optionally synthesizes one answer.
func (r *GraphRetriever) Retrieve(ctx context.Context, query string) ([]domain.Content, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.store.Search(ctx, driven.SearchRequest{
		QueryVector: vector,
		MaxResults:  r.maxResults,
		MinScore:    r.minScore,
	})
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	logger.Debug("Matches: %d", len(matches))

	var contents []domain.Content
	if r.aggregation == AggregationInProcess {
		contents, err = r.aggregate(ctx, matches)
		if err != nil {
			return nil, err
		}
	} else {
		contents = make([]domain.Content, 0, len(matches))
		for _, m := range matches {
			contents = append(contents, domain.ContentFromMatch(m))
		}
	}

	if r.answerModel == nil {
		return contents, nil
	}
	// The answer model is invoked unconditionally, even with empty
	// context, and its single output replaces the aggregated results.
	return r.synthesize(ctx, query, contents)
}

// synthesize composes the answer prompt from the aggregated context strings
// and the original question, and returns the model's single text output as
// the sole content item.
func (r *GraphRetriever) synthesize(ctx context.Context, question string, contents []domain.Content) ([]domain.Content, error) {
	texts := make([]string, len(contents))
	for i, c := range contents {
		texts[i] = c.Text
	}

	prompt := applyTemplate(r.answerPrompt+answerTemplate, map[string]string{
		"context":  strings.Join(texts, "\n\n"),
		"question": question,
	})

	answer, err := r.answerModel.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}
	return []domain.Content{{Text: answer}}, nil
}
