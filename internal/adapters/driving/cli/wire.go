package cli

import (
	"context"
	"fmt"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/custodia-labs/graphrag/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/graphrag/internal/adapters/driven/embedding/openai"
	llmanthropic "github.com/custodia-labs/graphrag/internal/adapters/driven/llm/anthropic"
	llmollama "github.com/custodia-labs/graphrag/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/graphrag/internal/adapters/driven/llm/openai"
	neo4jstore "github.com/custodia-labs/graphrag/internal/adapters/driven/neo4j"
	"github.com/custodia-labs/graphrag/internal/config"
	"github.com/custodia-labs/graphrag/internal/core/domain"
	"github.com/custodia-labs/graphrag/internal/core/ports/driven"
	"github.com/custodia-labs/graphrag/internal/core/services"
	"github.com/custodia-labs/graphrag/internal/logger"
)

// wire builds the service graph from the config file and fills the
// package-level service variables. Called lazily by the first command that
// needs a service.
func wire() error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("Loaded config from %s", path)

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	dimension := embedder.Dimensions()
	if cfg.Embedding.Dimensions > 0 {
		dimension = cfg.Embedding.Dimensions
	}
	if dimension <= 0 {
		return fmt.Errorf("embedding dimension unknown for model %q, set embedding.dimensions", embedder.ModelName())
	}

	variant, err := domain.ParseVariant(cfg.Retriever.Variant)
	if err != nil {
		return err
	}

	ctx := context.Background()
	driver, err := neo4jdriver.NewDriverWithContext(
		cfg.Neo4j.URI,
		neo4jdriver.BasicAuth(cfg.Neo4j.Username, cfg.Neo4j.Password, ""),
	)
	if err != nil {
		return fmt.Errorf("create neo4j driver: %w", err)
	}

	storeCfg, err := neo4jstore.VariantStoreConfig(variant, driver, dimension)
	if err != nil {
		return err
	}
	storeCfg.Database = cfg.Neo4j.Database

	store, err := neo4jstore.NewStore(ctx, storeCfg)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	graph := neo4jstore.NewGraph(driver, cfg.Neo4j.Database)

	transformModel, answerModel, err := buildModels(cfg, variant)
	if err != nil {
		return err
	}

	retriever, err := services.NewVariant(variant, services.Config{
		Embedder:       embedder,
		Store:          store,
		Graph:          graph,
		MaxResults:     cfg.Retriever.MaxResults,
		MinScore:       cfg.Retriever.MinScore,
		TransformModel: transformModel,
		AnswerModel:    answerModel,
	})
	if err != nil {
		return err
	}

	indexerService = retriever
	retrieverService = retriever
	removerService = store
	return nil
}

func buildEmbedder(cfg *config.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

// buildModels wires the chat services. The transform model is only attached
// to variants whose indexing rewrites parent text; the answer model is
// attached when answer synthesis is enabled.
func buildModels(cfg *config.Config, variant domain.Variant) (transform, answer driven.ChatService, err error) {
	if cfg.LLM.Provider == "" {
		return nil, nil, nil
	}

	chat, err := buildChat(cfg)
	if err != nil {
		return nil, nil, err
	}

	if variant == domain.VariantHypotheticalQuestion || variant == domain.VariantSummary {
		transform = chat
	}
	if cfg.Retriever.Answer {
		answer = chat
	}
	return transform, answer, nil
}

func buildChat(cfg *config.Config) (driven.ChatService, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return llmopenai.NewChatService(llmopenai.Config{
			APIKey:            cfg.LLM.APIKey,
			BaseURL:           cfg.LLM.BaseURL,
			Model:             cfg.LLM.Model,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		})
	case "anthropic":
		return llmanthropic.NewChatService(llmanthropic.Config{
			APIKey:            cfg.LLM.APIKey,
			BaseURL:           cfg.LLM.BaseURL,
			Model:             cfg.LLM.Model,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		})
	case "ollama":
		return llmollama.NewChatService(llmollama.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
