package neo4j

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/custodia-labs/graphrag/internal/core/domain"
	"github.com/custodia-labs/graphrag/internal/core/ports/driven"
	"github.com/custodia-labs/graphrag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.EmbeddingStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultLabel             = "Chunk"
	DefaultIDProperty        = "id"
	DefaultEmbeddingProperty = "embedding"
	DefaultTextProperty      = "text"
	DefaultIndexName         = "vector"
	DefaultDatabase          = "neo4j"
	DefaultAwaitIndexTimeout = 60 * time.Second
)

// maxDimension bounds the configurable vector dimension.
const maxDimension = 4096

// writeBatchSize is the number of rows per UNWIND write transaction.
const writeBatchSize = 1000

// defaultCreationQuery upserts flat embedding rows. %[1]s is the sanitized
// label, %[2]s the sanitized identity property.
const defaultCreationQuery = `UNWIND $rows AS row
MERGE (u:%[1]s {%[2]s: row.%[2]s})
SET u += row.props
WITH row, u
CALL db.create.setNodeVectorProperty(u, $embeddingProperty, row.embedding)
RETURN count(*)`

// createVectorIndexQuery creates the cosine vector index; arguments are the
// sanitized index name, label, embedding property and the dimension.
const createVectorIndexQuery = "CREATE VECTOR INDEX %s IF NOT EXISTS\n" +
	"FOR (m:%s) ON m.%s\n" +
	"OPTIONS { indexConfig: {\n" +
	"    `vector.dimensions`: %d,\n" +
	"    `vector.similarity_function`: 'cosine'\n" +
	"}}"

// vectorSearchQuery is the prefix of every similarity search; the configured
// retrieval query is appended to it and consumes the yielded node and score.
const vectorSearchQuery = "CALL db.index.vector.queryNodes($indexName, $fetchSize, $embeddingValue)\n" +
	"YIELD node, score\n" +
	"WHERE score >= $minScore\n"

// Config holds configuration for the Neo4j embedding store.
type Config struct {
	// Driver is the Neo4j driver (required).
	Driver neo4j.DriverWithContext

	// Dimension is the embedding vector size (required, 1..4096).
	// Vectors of any other length are rejected at write time.
	Dimension int

	// Database is the target database (default: neo4j).
	Database string

	// Label is the node label for embedded segments (default: Chunk).
	Label string

	// IDProperty is the identity property name (default: id).
	IDProperty string

	// EmbeddingProperty is the vector property name (default: embedding).
	EmbeddingProperty string

	// TextProperty is the text property name (default: text).
	TextProperty string

	// IndexName is the vector index name (default: vector).
	IndexName string

	// MetadataPrefix is prepended to persisted metadata keys (default: "").
	MetadataPrefix string

	// RetrievalQuery is appended to the vector index call. It must return
	// `text`, `score` and `metadata` columns. Empty selects a default
	// that returns the matched node's own properties.
	RetrievalQuery string

	// CreationQuery overrides the write statement for embedding rows.
	// %[1]s is the label, %[2]s the identity property, and %[3]s the
	// relationship type when Relationship is set.
	CreationQuery string

	// Relationship is the parent-to-child edge type referenced by the
	// creation query (empty for flat upserts).
	Relationship string

	// Overfetch multiplies the child-level fetch size so that matches
	// collapsing into one parent cannot under-fill an aggregating
	// retrieval query's post-grouping LIMIT (default: 1).
	Overfetch int

	// AwaitIndexTimeout bounds the wait for indexes to come online
	// (default: 60s).
	AwaitIndexTimeout time.Duration
}

// Store is a Neo4j-backed embedding store.
type Store struct {
	driver    neo4j.DriverWithContext
	database  string
	dimension int
	overfetch int

	label             string
	idProperty        string
	embeddingProperty string
	textProperty      string
	indexName         string
	metadataPrefix    string

	retrievalQuery string
	writeQuery     string

	awaitIndexTimeout time.Duration

	mu               sync.Mutex
	additionalParams map[string]any
}

// NewStore validates the configuration, sanitizes every identifier that gets
// spliced into query text, and creates the vector index and uniqueness
// constraint if they do not exist yet.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	s, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// newStore builds the store without touching the database.
func newStore(cfg Config) (*Store, error) {
	if cfg.Driver == nil {
		return nil, fmt.Errorf("neo4j: driver is required")
	}
	if cfg.Dimension <= 0 || cfg.Dimension > maxDimension {
		return nil, fmt.Errorf("neo4j: dimension must be in 1..%d, got %d", maxDimension, cfg.Dimension)
	}

	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Label == "" {
		cfg.Label = DefaultLabel
	}
	if cfg.IDProperty == "" {
		cfg.IDProperty = DefaultIDProperty
	}
	if cfg.EmbeddingProperty == "" {
		cfg.EmbeddingProperty = DefaultEmbeddingProperty
	}
	if cfg.TextProperty == "" {
		cfg.TextProperty = DefaultTextProperty
	}
	if cfg.IndexName == "" {
		cfg.IndexName = DefaultIndexName
	}
	if cfg.CreationQuery == "" {
		cfg.CreationQuery = defaultCreationQuery
	}
	if cfg.Overfetch <= 0 {
		cfg.Overfetch = 1
	}
	if cfg.AwaitIndexTimeout == 0 {
		cfg.AwaitIndexTimeout = DefaultAwaitIndexTimeout
	}

	label, err := domain.SanitizeIdentifier(cfg.Label, "label")
	if err != nil {
		return nil, err
	}
	idProperty, err := domain.SanitizeIdentifier(cfg.IDProperty, "id property")
	if err != nil {
		return nil, err
	}
	embeddingProperty, err := domain.SanitizeIdentifier(cfg.EmbeddingProperty, "embedding property")
	if err != nil {
		return nil, err
	}
	textProperty, err := domain.SanitizeIdentifier(cfg.TextProperty, "text property")
	if err != nil {
		return nil, err
	}
	indexName, err := domain.SanitizeIdentifier(cfg.IndexName, "index name")
	if err != nil {
		return nil, err
	}

	var writeQuery string
	if cfg.Relationship != "" {
		relationship, err := domain.SanitizeIdentifier(cfg.Relationship, "relationship type")
		if err != nil {
			return nil, err
		}
		writeQuery = fmt.Sprintf(cfg.CreationQuery, label, idProperty, relationship)
	} else {
		writeQuery = fmt.Sprintf(cfg.CreationQuery, label, idProperty)
	}

	retrievalQuery := cfg.RetrievalQuery
	if retrievalQuery == "" {
		retrievalQuery = fmt.Sprintf(
			"RETURN properties(node) AS metadata, node.%[1]s AS %[1]s, node.%[2]s AS %[2]s, score",
			idProperty, textProperty)
	}

	return &Store{
		driver:            cfg.Driver,
		database:          cfg.Database,
		dimension:         cfg.Dimension,
		overfetch:         cfg.Overfetch,
		label:             label,
		idProperty:        idProperty,
		embeddingProperty: embeddingProperty,
		textProperty:      textProperty,
		indexName:         indexName,
		metadataPrefix:    cfg.MetadataPrefix,
		retrievalQuery:    retrievalQuery,
		writeQuery:        writeQuery,
		awaitIndexTimeout: cfg.AwaitIndexTimeout,
	}, nil
}

// IDProperty returns the configured identity property name.
func (s *Store) IDProperty() string { return s.idProperty }

// Label returns the configured node label.
func (s *Store) Label() string { return s.label }

// IndexName returns the configured vector index name.
func (s *Store) IndexName() string { return s.indexName }

// SetAdditionalParams sets extra parameters merged into subsequent write
// executions (e.g. the current parentId for child rows).
func (s *Store) SetAdditionalParams(params map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.additionalParams = params
}

// AddAll writes embedding+segment pairs in batched UNWIND transactions.
// When ids is nil, identities come from each segment's identity-property
// metadata, falling back to generated ones. An empty batch is skipped.
func (s *Store) AddAll(
	ctx context.Context, ids []string, embeddings [][]float32, segments []*domain.Segment,
) ([]string, error) {
	if len(embeddings) == 0 {
		logger.Debug("Skipping empty embedding batch")
		return nil, nil
	}
	if ids != nil && len(ids) != len(embeddings) {
		return nil, fmt.Errorf("neo4j: ids size %d does not match embeddings size %d", len(ids), len(embeddings))
	}
	if segments != nil && len(segments) != len(embeddings) {
		return nil, fmt.Errorf("neo4j: segments size %d does not match embeddings size %d", len(segments), len(embeddings))
	}

	if ids == nil {
		ids = make([]string, len(embeddings))
		for i := range ids {
			ids[i] = s.segmentID(segmentAt(segments, i))
		}
	}

	rows := make([]map[string]any, len(embeddings))
	for i, embedding := range embeddings {
		row, err := s.row(ids[i], embedding, segmentAt(segments, i))
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}

	s.mu.Lock()
	additional := s.additionalParams
	s.mu.Unlock()

	session := s.session(ctx)
	defer session.Close(ctx)

	for start := 0; start < len(rows); start += writeBatchSize {
		end := start + writeBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		params := map[string]any{
			"rows":              rows[start:end],
			"embeddingProperty": s.embeddingProperty,
		}
		for k, v := range additional {
			params[k] = v
		}

		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, s.writeQuery, params)
			if err != nil {
				return nil, err
			}
			_, err = result.Consume(ctx)
			return nil, err
		})
		if err != nil {
			return nil, fmt.Errorf("neo4j: write embeddings: %w", err)
		}
	}
	logger.Debug("Persisted %d embedding rows with label %s", len(rows), s.label)

	return ids, nil
}

// Search runs the vector index query and hands the yielded node/score pairs
// to the configured retrieval query. Results come back filtered, ranked and
// truncated by the database.
func (s *Store) Search(ctx context.Context, req driven.SearchRequest) ([]domain.Match, error) {
	if len(req.QueryVector) != s.dimension {
		return nil, fmt.Errorf("neo4j: query vector has %d dimensions, index has %d: %w",
			len(req.QueryVector), s.dimension, domain.ErrDimensionMismatch)
	}

	params := map[string]any{
		"indexName":      s.indexName,
		"embeddingValue": toFloat64s(req.QueryVector),
		"minScore":       req.MinScore,
		"maxResults":     req.MaxResults,
		"fetchSize":      req.MaxResults * s.overfetch,
	}

	records, err := s.run(ctx, vectorSearchQuery+s.retrievalQuery, params)
	if err != nil {
		return nil, fmt.Errorf("neo4j: similarity search: %w", err)
	}

	matches := make([]domain.Match, len(records))
	for i, record := range records {
		matches[i] = s.toMatch(record)
	}
	return matches, nil
}

// RemoveAll detaches and deletes every node with the store's label.
func (s *Store) RemoveAll(ctx context.Context) error {
	statement := fmt.Sprintf("CALL { MATCH (n:%s) DETACH DELETE n } IN TRANSACTIONS", s.label)
	if _, err := s.run(ctx, statement, nil); err != nil {
		return fmt.Errorf("neo4j: remove all: %w", err)
	}
	return nil
}

// RemoveByIDs detaches and deletes the nodes with the given identities.
func (s *Store) RemoveByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("neo4j: ids must not be empty")
	}
	statement := fmt.Sprintf(
		"CALL { UNWIND $ids AS id MATCH (n:%s {%s: id}) DETACH DELETE n } IN TRANSACTIONS",
		s.label, s.idProperty)
	if _, err := s.run(ctx, statement, map[string]any{"ids": ids}); err != nil {
		return fmt.Errorf("neo4j: remove by ids: %w", err)
	}
	return nil
}

// row builds one UNWIND row: identity, plain properties, and the embedding
// vector applied separately via setNodeVectorProperty.
func (s *Store) row(id string, embedding []float32, seg *domain.Segment) (map[string]any, error) {
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("neo4j: vector for %q has %d dimensions, store is configured for %d: %w",
			id, len(embedding), s.dimension, domain.ErrDimensionMismatch)
	}

	props := make(map[string]any)
	if seg != nil {
		props[s.textProperty] = seg.Text
		for k, v := range seg.Metadata {
			if k == s.idProperty || k == s.embeddingProperty || k == s.textProperty {
				continue
			}
			props[s.metadataPrefix+k] = v
		}
	}

	return map[string]any{
		s.idProperty: id,
		"props":      props,
		"embedding":  toFloat64s(embedding),
	}, nil
}

// toFloat64s widens a vector for the wire protocol, which has no 32-bit
// float type.
func toFloat64s(vector []float32) []float64 {
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = float64(v)
	}
	return out
}

// segmentID reads the segment's assigned identity, generating one when the
// segment carries none.
func (s *Store) segmentID(seg *domain.Segment) string {
	if seg != nil {
		if id, ok := seg.Metadata[s.idProperty].(string); ok && id != "" {
			return id
		}
	}
	return uuid.NewString()
}

// toMatch converts one retrieval record into a match. Retrieval queries
// return at least `score` plus either node-level columns (default query) or
// aggregated `text`/`metadata` columns (variant queries).
func (s *Store) toMatch(record *db.Record) domain.Match {
	match := domain.Match{Segment: &domain.Segment{}}

	if v, ok := record.Get("score"); ok {
		if f, ok := v.(float64); ok {
			match.Score = f
		}
	}

	var metadata map[string]any
	if v, ok := record.Get("metadata"); ok {
		metadata, _ = v.(map[string]any)
	}

	if v, ok := record.Get(s.textProperty); ok {
		match.Segment.Text, _ = v.(string)
	} else if t, ok := metadata[s.textProperty].(string); ok {
		match.Segment.Text = t
	}

	if v, ok := record.Get(s.idProperty); ok {
		match.ID, _ = v.(string)
	} else if id, ok := metadata[s.idProperty].(string); ok {
		match.ID = id
	}

	if metadata != nil {
		cleaned := domain.CloneMetadata(metadata)
		delete(cleaned, s.idProperty)
		delete(cleaned, s.embeddingProperty)
		delete(cleaned, s.textProperty)
		match.Segment.Metadata = cleaned
	}

	return match
}

// ensureSchema creates the vector index and uniqueness constraint unless a
// conflicting index already exists.
func (s *Store) ensureSchema(ctx context.Context) error {
	exists, err := s.indexExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.createIndex(ctx); err != nil {
			return err
		}
	}
	return s.createUniqueConstraint(ctx)
}

// indexExists reports whether the configured vector index is already online.
// An index with the same name over a different label or property is a hard
// error: silently reusing it would corrupt search results.
func (s *Store) indexExists(ctx context.Context) (bool, error) {
	records, err := s.run(ctx, "SHOW VECTOR INDEXES WHERE name = $name", map[string]any{"name": s.indexName})
	if err != nil {
		return false, fmt.Errorf("neo4j: show vector indexes: %w", err)
	}
	if len(records) == 0 {
		return false, nil
	}

	record := records[0]
	labels := asStringSlice(recordValue(record, "labelsOrTypes"))
	properties := asStringSlice(recordValue(record, "properties"))
	if len(labels) != 1 || labels[0] != s.label ||
		len(properties) != 1 || properties[0] != s.embeddingProperty {
		return false, fmt.Errorf("neo4j: index %q covers %v %v, wanted (%s, %s): %w",
			s.indexName, labels, properties, s.label, s.embeddingProperty, domain.ErrIndexConflict)
	}
	return true, nil
}

func (s *Store) createIndex(ctx context.Context) error {
	statement := fmt.Sprintf(createVectorIndexQuery, s.indexName, s.label, s.embeddingProperty, s.dimension)
	if _, err := s.run(ctx, statement, nil); err != nil {
		return fmt.Errorf("neo4j: create vector index: %w", err)
	}

	timeout := s.awaitIndexTimeout.Milliseconds()
	if _, err := s.run(ctx, "CALL db.awaitIndexes($timeout)", map[string]any{"timeout": timeout}); err != nil {
		return fmt.Errorf("neo4j: await indexes: %w", err)
	}
	return nil
}

func (s *Store) createUniqueConstraint(ctx context.Context) error {
	statement := fmt.Sprintf(
		"CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
		s.label, s.idProperty)
	if _, err := s.run(ctx, statement, nil); err != nil {
		return fmt.Errorf("neo4j: create uniqueness constraint: %w", err)
	}
	return nil
}

func (s *Store) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
}

// run executes one statement in its own session and collects the records.
func (s *Store) run(ctx context.Context, statement string, params map[string]any) ([]*db.Record, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, statement, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

func segmentAt(segments []*domain.Segment, i int) *domain.Segment {
	if segments == nil {
		return nil
	}
	return segments[i]
}

func recordValue(record *db.Record, key string) any {
	v, _ := record.Get(key)
	return v
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
