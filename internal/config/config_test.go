package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
[neo4j]
uri = "neo4j://db.example.com:7687"
username = "app"
password = "secret"
database = "rag"

[embedding]
provider = "openai"
api_key = "sk-test"
model = "text-embedding-3-large"
dimensions = 3072

[llm]
provider = "anthropic"
api_key = "sk-ant-test"
model = "claude-3-5-sonnet-latest"
requests_per_second = 2.5

[retriever]
variant = "summary"
max_results = 5
min_score = 0.4
answer = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "neo4j://db.example.com:7687", cfg.Neo4j.URI)
	assert.Equal(t, "rag", cfg.Neo4j.Database)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedding.Model)
	assert.Equal(t, 3072, cfg.Embedding.Dimensions)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 2.5, cfg.LLM.RequestsPerSecond)
	assert.Equal(t, "summary", cfg.Retriever.Variant)
	assert.Equal(t, 5, cfg.Retriever.MaxResults)
	assert.True(t, cfg.Retriever.Answer)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[embedding]
provider = "ollama"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "neo4j://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.Username)
	assert.Equal(t, DefaultVariant, cfg.Retriever.Variant)
	assert.Equal(t, DefaultMaxResults, cfg.Retriever.MaxResults)
	assert.Empty(t, cfg.LLM.Provider)
}

func TestLoad_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	path := writeConfig(t, `
[embedding]
provider = "openai"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Embedding.APIKey)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := writeConfig(t, `
[embedding]
provider = "openai"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding.api_key")
}

func TestLoad_UnknownProviders(t *testing.T) {
	path := writeConfig(t, `
[embedding]
provider = "acme"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown embedding provider")

	path = writeConfig(t, `
[embedding]
provider = "ollama"

[llm]
provider = "acme"
`)
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider")
}

func TestLoad_RejectsBadRetrieverSettings(t *testing.T) {
	path := writeConfig(t, `
[embedding]
provider = "ollama"

[retriever]
variant = "nonsense"
`)
	_, err := Load(path)
	assert.Error(t, err)

	path = writeConfig(t, `
[embedding]
provider = "ollama"

[retriever]
max_results = 0
`)
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_results")

	path = writeConfig(t, `
[embedding]
provider = "ollama"

[retriever]
min_score = 1.5
`)
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_score")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "not [valid toml")
	_, err := Load(path)
	assert.Error(t, err)
}
