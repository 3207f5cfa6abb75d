package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DEVDOC"

// Provider names accepted by LLMProvider and EmbeddingProvider.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderHugot  = "hugot"
)

// Index backends.
const (
	IndexBackendMemory   = "memory"
	IndexBackendPgvector = "pgvector"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	LLMProvider       string `envconfig:"LLM_PROVIDER" default:"local"`
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"local"`

	OpenAIAPIKey         string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL        string `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel          string `envconfig:"OPENAI_MODEL" default:"gpt-3.5-turbo"`
	OpenAIEmbeddingModel string `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-ada-002"`

	// OpenAIEmbeddingDimensions overrides the size known for the model; 0 derives it.
	OpenAIEmbeddingDimensions int `envconfig:"OPENAI_EMBEDDING_DIMENSIONS" default:"0"`

	GoogleAPIKey         string `envconfig:"GOOGLE_API_KEY"`
	GeminiModel          string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	GeminiEmbeddingModel string `envconfig:"GEMINI_EMBEDDING_MODEL" default:"text-embedding-004"`

	HugotModelDir            string `envconfig:"HUGOT_MODEL_DIR" default:"./models"`
	LocalEmbeddingDimensions int    `envconfig:"LOCAL_EMBEDDING_DIMENSIONS" default:"384"`

	ChunkSize      int `envconfig:"CHUNK_SIZE" default:"512"`
	ChunkOverlap   int `envconfig:"CHUNK_OVERLAP" default:"50"`
	TopK           int `envconfig:"TOP_K" default:"5"`
	EmbedBatchSize int `envconfig:"EMBED_BATCH_SIZE" default:"32"`
	IngestWorkers  int `envconfig:"INGEST_WORKERS" default:"4"`

	EnableMemory           bool          `envconfig:"ENABLE_MEMORY" default:"true"`
	MaxConversationHistory int           `envconfig:"MAX_CONVERSATION_HISTORY" default:"10"`
	MemoryMaxAge           time.Duration `envconfig:"MEMORY_MAX_AGE" default:"0"`
	SessionTimeout         time.Duration `envconfig:"SESSION_TIMEOUT" default:"1h"`
	HistoryTurns           int           `envconfig:"HISTORY_TURNS" default:"6"`

	LLMTimeout        time.Duration `envconfig:"LLM_TIMEOUT" default:"30s"`
	LLMMaxRetries     int           `envconfig:"LLM_MAX_RETRIES" default:"3"`
	LLMBackoffInitial time.Duration `envconfig:"LLM_BACKOFF_INITIAL" default:"500ms"`
	LLMBackoffMax     time.Duration `envconfig:"LLM_BACKOFF_MAX" default:"8s"`
	LLMTemperature    float32       `envconfig:"LLM_TEMPERATURE" default:"0.3"`
	LLMMaxTokens      int           `envconfig:"LLM_MAX_TOKENS" default:"1000"`
	AllowEmptyContext bool          `envconfig:"ALLOW_EMPTY_CONTEXT" default:"false"`

	IndexBackend     string        `envconfig:"INDEX_BACKEND" default:"memory"`
	IndexPath        string        `envconfig:"INDEX_PATH" default:"./data/index.zst"`
	SnapshotInterval time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"1m"`
	DocsDirectory    string        `envconfig:"DOCS_DIRECTORY" default:"./docs"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"devdoc-index"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Key       string `envconfig:"S3_KEY" default:"index/snapshot.zst"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that envconfig cannot express.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return domain.ConfigurationError("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return domain.ConfigurationError("CHUNK_OVERLAP must be in [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.OpenAIEmbeddingDimensions < 0 {
		return domain.ConfigurationError("OPENAI_EMBEDDING_DIMENSIONS cannot be negative")
	}
	if c.TopK <= 0 {
		return domain.ConfigurationError("TOP_K must be positive, got %d", c.TopK)
	}
	if c.EnableMemory && c.MaxConversationHistory <= 0 {
		return domain.ConfigurationError("MAX_CONVERSATION_HISTORY must be positive when memory is enabled")
	}
	if c.LLMMaxRetries < 0 {
		return domain.ConfigurationError("LLM_MAX_RETRIES cannot be negative")
	}
	if c.LLMTimeout <= 0 {
		return domain.ConfigurationError("LLM_TIMEOUT must be positive")
	}

	switch c.LLMProvider {
	case ProviderLocal:
	case ProviderOpenAI:
		if !c.HasOpenAI() {
			return domain.ConfigurationError("LLM_PROVIDER=openai requires OPENAI_API_KEY")
		}
	case ProviderGemini:
		if !c.HasGemini() {
			return domain.ConfigurationError("LLM_PROVIDER=gemini requires GOOGLE_API_KEY")
		}
	default:
		return domain.ConfigurationError("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.EmbeddingProvider {
	case ProviderLocal:
		if c.LocalEmbeddingDimensions <= 0 {
			return domain.ConfigurationError("LOCAL_EMBEDDING_DIMENSIONS must be positive")
		}
	case ProviderHugot:
	case ProviderOpenAI:
		if !c.HasOpenAI() {
			return domain.ConfigurationError("EMBEDDING_PROVIDER=openai requires OPENAI_API_KEY")
		}
	case ProviderGemini:
		if !c.HasGemini() {
			return domain.ConfigurationError("EMBEDDING_PROVIDER=gemini requires GOOGLE_API_KEY")
		}
	default:
		return domain.ConfigurationError("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}

	switch c.IndexBackend {
	case IndexBackendMemory:
	case IndexBackendPgvector:
		if c.DatabaseURL == "" {
			return domain.ConfigurationError("INDEX_BACKEND=pgvector requires DATABASE_URL")
		}
	default:
		return domain.ConfigurationError("unknown INDEX_BACKEND %q", c.IndexBackend)
	}

	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasGemini() bool {
	return c.GoogleAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
