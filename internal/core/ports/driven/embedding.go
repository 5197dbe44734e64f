package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: this is separate from EmbeddingStore, which persists and searches
// vectors. EmbeddingService generates vectors; EmbeddingStore stores them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedAll generates embeddings for multiple texts in one request.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	// This is determined by the model and must match the store configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}
