// Package config loads the TOML configuration file that wires providers,
// database connection and retriever settings together.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/graphrag/internal/core/domain"
)

// Default configuration values.
const (
	DefaultMaxResults = 3
	DefaultVariant    = "parent-child"
)

// Config is the full application configuration.
type Config struct {
	Neo4j     Neo4jConfig     `toml:"neo4j"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Retriever RetrieverConfig `toml:"retriever"`
}

// Neo4jConfig holds the database connection settings.
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider   string `toml:"provider"`
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

// LLMConfig selects and configures the chat provider used for transform
// and answer stages. An empty provider disables both stages.
type LLMConfig struct {
	// Provider is "openai", "anthropic", "ollama" or empty.
	Provider          string  `toml:"provider"`
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key"`
	Model             string  `toml:"model"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// RetrieverConfig holds retrieval behavior settings.
type RetrieverConfig struct {
	// Variant is one of plain, parent-child, hypothetical-question or
	// summary.
	Variant    string  `toml:"variant"`
	MaxResults int     `toml:"max_results"`
	MinScore   float64 `toml:"min_score"`

	// Answer enables answer synthesis on retrieve when an LLM provider
	// is configured.
	Answer bool `toml:"answer"`
}

// DefaultPath returns the default config file location,
// ~/.graphrag/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".graphrag", "config.toml"), nil
}

// Load reads and validates the configuration file at path. Missing API keys
// fall back to the provider's conventional environment variable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
		},
		Retriever: RetrieverConfig{
			Variant:    DefaultVariant,
			MaxResults: DefaultMaxResults,
		},
	}
}

// applyEnv fills empty secrets from the environment.
func (c *Config) applyEnv() {
	if c.Embedding.APIKey == "" && c.Embedding.Provider == "openai" {
		c.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if c.Neo4j.Password == "" {
		c.Neo4j.Password = os.Getenv("NEO4J_PASSWORD")
	}
}

// Validate checks the configuration for settings that can be rejected
// without talking to any backend.
func (c *Config) Validate() error {
	if c.Neo4j.URI == "" {
		return fmt.Errorf("config: neo4j.uri is required")
	}

	switch c.Embedding.Provider {
	case "openai":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("config: embedding.api_key is required for provider %q (or set OPENAI_API_KEY)", c.Embedding.Provider)
		}
	case "ollama":
	default:
		return fmt.Errorf("config: unknown embedding provider %q", c.Embedding.Provider)
	}

	switch c.LLM.Provider {
	case "", "ollama":
	case "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("config: llm.api_key is required for provider %q (or set OPENAI_API_KEY)", c.LLM.Provider)
		}
	case "anthropic":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("config: llm.api_key is required for provider %q (or set ANTHROPIC_API_KEY)", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("config: unknown llm provider %q", c.LLM.Provider)
	}

	if _, err := domain.ParseVariant(c.Retriever.Variant); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Retriever.MaxResults < 1 {
		return fmt.Errorf("config: retriever.max_results must be positive")
	}
	if c.Retriever.MinScore < 0 || c.Retriever.MinScore > 1 {
		return fmt.Errorf("config: retriever.min_score must be within [0, 1]")
	}
	return nil
}
