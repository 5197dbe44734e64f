package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors, which propagate as-is
// from the store and model clients.
var (
	// ErrEmbedderRequired indicates no embedding service was configured.
	ErrEmbedderRequired = errors.New("embedding service required")

	// ErrStoreRequired indicates no embedding store was configured.
	ErrStoreRequired = errors.New("embedding store required")

	// ErrGraphRequired indicates no graph query runner was configured.
	ErrGraphRequired = errors.New("graph runner required")

	// ErrInvalidMaxResults indicates a non-positive maximum result count.
	ErrInvalidMaxResults = errors.New("max results must be positive")

	// ErrMissingPromptPair indicates a transform model was configured
	// without both the system and user prompts.
	ErrMissingPromptPair = errors.New("transform model requires both system and user prompts")

	// ErrInvalidIdentifier indicates a label or property name failed
	// sanitization and cannot be spliced into query text.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrDimensionMismatch indicates an embedding vector's length differs
	// from the store's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexConflict indicates an existing vector index with the same
	// name covers a different label or property.
	ErrIndexConflict = errors.New("vector index exists with different label or property")

	// ErrUnknownVariant indicates an unrecognized retriever variant name.
	ErrUnknownVariant = errors.New("unknown retriever variant")
)
