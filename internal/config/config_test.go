package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

func TestLoad_WithEnvVars(t *testing.T) {
	os.Setenv("DEVDOC_PORT", "9090")
	os.Setenv("DEVDOC_DEBUG", "true")
	os.Setenv("DEVDOC_LLM_PROVIDER", "openai")
	os.Setenv("DEVDOC_OPENAI_API_KEY", "sk-test")
	os.Setenv("DEVDOC_CHUNK_SIZE", "256")
	os.Setenv("DEVDOC_LLM_TIMEOUT", "5s")
	os.Setenv("DEVDOC_OPENAI_EMBEDDING_DIMENSIONS", "3072")
	defer func() {
		os.Unsetenv("DEVDOC_OPENAI_EMBEDDING_DIMENSIONS")
		os.Unsetenv("DEVDOC_PORT")
		os.Unsetenv("DEVDOC_DEBUG")
		os.Unsetenv("DEVDOC_LLM_PROVIDER")
		os.Unsetenv("DEVDOC_OPENAI_API_KEY")
		os.Unsetenv("DEVDOC_CHUNK_SIZE")
		os.Unsetenv("DEVDOC_LLM_TIMEOUT")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, 256, cfg.ChunkSize)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 3072, cfg.OpenAIEmbeddingDimensions)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderLocal, cfg.LLMProvider)
	assert.Equal(t, ProviderLocal, cfg.EmbeddingProvider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
	assert.Equal(t, 512, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopK)
	assert.True(t, cfg.EnableMemory)
	assert.Equal(t, 10, cfg.MaxConversationHistory)
	assert.Equal(t, time.Hour, cfg.SessionTimeout)
	assert.Equal(t, IndexBackendMemory, cfg.IndexBackend)
	assert.NoError(t, cfg.Validate())
}

func validConfig() *Config {
	return &Config{
		LLMProvider:              ProviderLocal,
		EmbeddingProvider:        ProviderLocal,
		LocalEmbeddingDimensions: 64,
		ChunkSize:                512,
		ChunkOverlap:             50,
		TopK:                     5,
		EnableMemory:             true,
		MaxConversationHistory:   10,
		LLMTimeout:               time.Second,
		IndexBackend:             IndexBackendMemory,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, "CHUNK_SIZE"},
		{"overlap equal to size", func(c *Config) { c.ChunkOverlap = 512 }, "CHUNK_OVERLAP"},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, "CHUNK_OVERLAP"},
		{"zero top k", func(c *Config) { c.TopK = 0 }, "TOP_K"},
		{"negative openai dimensions", func(c *Config) { c.OpenAIEmbeddingDimensions = -1 }, "OPENAI_EMBEDDING_DIMENSIONS"},
		{"memory without history", func(c *Config) { c.MaxConversationHistory = 0 }, "MAX_CONVERSATION_HISTORY"},
		{"openai without key", func(c *Config) { c.LLMProvider = ProviderOpenAI }, "OPENAI_API_KEY"},
		{"gemini embeddings without key", func(c *Config) { c.EmbeddingProvider = ProviderGemini }, "GOOGLE_API_KEY"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "claude" }, "unknown LLM_PROVIDER"},
		{"pgvector without database", func(c *Config) { c.IndexBackend = IndexBackendPgvector }, "DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	assert.NoError(t, validConfig().Validate())
}

func TestValidate_ZeroOverlapAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.ChunkOverlap = 0

	assert.NoError(t, cfg.Validate())
}

func TestValidate_MemoryDisabledAllowsZeroHistory(t *testing.T) {
	cfg := validConfig()
	cfg.EnableMemory = false
	cfg.MaxConversationHistory = 0

	assert.NoError(t, cfg.Validate())
}

func TestHasS3(t *testing.T) {
	cfg := &Config{
		S3Endpoint:  "http://localhost:9000",
		S3AccessKey: "key",
		S3SecretKey: "secret",
	}
	assert.True(t, cfg.HasS3())

	cfg.S3Endpoint = ""
	assert.False(t, cfg.HasS3())
}

func TestHasProviders(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasOpenAI())
	assert.False(t, cfg.HasGemini())
	assert.False(t, cfg.HasSentry())

	cfg.OpenAIAPIKey = "sk"
	cfg.GoogleAPIKey = "g"
	cfg.SentryDSN = "https://k@sentry.example/1"
	assert.True(t, cfg.HasOpenAI())
	assert.True(t, cfg.HasGemini())
	assert.True(t, cfg.HasSentry())
}
