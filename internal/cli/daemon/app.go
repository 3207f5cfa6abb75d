// Package daemon implements the devdocd commands: the API server, offline
// ingestion and index inspection.
package daemon

import (
	"context"
	"fmt"
	"log"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/config"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/database"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/gemini"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/index"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/jobs"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/local"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/memory"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/openai"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/reader"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/repository"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/service"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/storage"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/telemetry"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/transformer"
)

// localAnswerPassages is how many passages the local provider quotes.
const localAnswerPassages = 3

// BuildOptions adjusts how the application is assembled.
type BuildOptions struct {
	// SkipMigrations leaves the pgvector schema untouched.
	SkipMigrations bool
}

// App is the assembled query pipeline.
type App struct {
	Config   *config.Config
	Counters *telemetry.Counters
	Index    service.VectorIndex
	// Snapshot is nil for the pgvector backend, which persists on write.
	Snapshot *jobs.SnapshotJob
	Ingest   *service.IngestionService
	Query    *service.QueryService

	closers []func()
}

// Build wires providers, the index backend and the services described by cfg.
// The in-memory index is restored from its snapshot when one exists.
func Build(ctx context.Context, cfg *config.Config, opts BuildOptions) (*App, error) {
	app := &App{Config: cfg, Counters: telemetry.NewCounters()}

	embedder, err := app.newEmbedder(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	llm, err := newLLM(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	log.Printf("providers: embeddings=%s (%d dimensions), llm=%s", embedder.Name(), embedder.Dimensions(), llm.Name())

	if err := app.openIndex(ctx, embedder.Dimensions(), opts); err != nil {
		app.Close()
		return nil, err
	}

	var convMemory service.ConversationMemory
	if cfg.EnableMemory {
		store, err := memory.NewStore(memory.Config{
			MaxHistory:     cfg.MaxConversationHistory,
			MaxAge:         cfg.MemoryMaxAge,
			SessionTimeout: cfg.SessionTimeout,
		})
		if err != nil {
			app.Close()
			return nil, err
		}
		convMemory = store
	}

	app.Ingest = service.NewIngestionService(embedder, app.Index, reader.NewLoader(), service.IngestionConfig{
		Chunk:     service.ChunkConfig{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
		BatchSize: cfg.EmbedBatchSize,
		Workers:   cfg.IngestWorkers,
	}, app.Counters)

	generator := service.NewGenerator(llm, service.GenerationConfig{
		HistoryTurns:   cfg.HistoryTurns,
		Timeout:        cfg.LLMTimeout,
		MaxRetries:     cfg.LLMMaxRetries,
		BackoffInitial: cfg.LLMBackoffInitial,
		BackoffMax:     cfg.LLMBackoffMax,
		Temperature:    cfg.LLMTemperature,
		MaxTokens:      cfg.LLMMaxTokens,
	}, app.Counters)

	app.Query = service.NewQueryService(embedder, app.Index, generator, convMemory, service.QueryConfig{
		TopK:              cfg.TopK,
		MemoryEnabled:     cfg.EnableMemory,
		MaxHistory:        cfg.MaxConversationHistory,
		AllowEmptyContext: cfg.AllowEmptyContext,
	}, app.Counters)

	return app, nil
}

// Close releases database pools and model sessions in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) newEmbedder(ctx context.Context) (service.EmbeddingProvider, error) {
	cfg := a.Config
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case config.ProviderGemini:
		return newGeminiClient(ctx, cfg)
	case config.ProviderHugot:
		e, err := transformer.NewEmbedder(transformer.Config{ModelDir: cfg.HugotModelDir})
		if err != nil {
			return nil, fmt.Errorf("failed to start hugot embedder: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := e.Close(); err != nil {
				log.Printf("hugot: failed to close session: %v", err)
			}
		})
		return e, nil
	default:
		return local.NewHashEmbedder(cfg.LocalEmbeddingDimensions)
	}
}

func newLLM(ctx context.Context, cfg *config.Config) (service.LLMProvider, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case config.ProviderGemini:
		return newGeminiClient(ctx, cfg)
	default:
		return local.NewAnswerer(localAnswerPassages), nil
	}
}

func newOpenAIClient(cfg *config.Config) *openai.Client {
	return openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		BaseURL:             cfg.OpenAIBaseURL,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.OpenAIEmbeddingModel),
		EmbeddingDimensions: cfg.OpenAIEmbeddingDimensions,
		ChatModel:           cfg.OpenAIModel,
	})
}

func newGeminiClient(ctx context.Context, cfg *config.Config) (*gemini.Client, error) {
	return gemini.NewClient(ctx, gemini.Config{
		APIKey:         cfg.GoogleAPIKey,
		Model:          cfg.GeminiModel,
		EmbeddingModel: cfg.GeminiEmbeddingModel,
	})
}

func (a *App) openIndex(ctx context.Context, dimensions int, opts BuildOptions) error {
	cfg := a.Config
	if cfg.IndexBackend == config.IndexBackendPgvector {
		pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pool.Close)
		log.Println("connected to database")

		if !opts.SkipMigrations {
			if err := database.Migrate(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		repo, err := repository.NewChunkRepository(ctx, pool, dimensions)
		if err != nil {
			return err
		}
		a.Index = repo
		return nil
	}

	idx, err := index.NewMemoryIndex(dimensions)
	if err != nil {
		return err
	}
	store, err := NewSnapshotStore(ctx, cfg)
	if err != nil {
		return err
	}
	a.Index = idx
	a.Snapshot = jobs.NewSnapshotJob(idx, store)

	restored, err := a.Snapshot.Restore(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore index: %w", err)
	}
	if !restored {
		log.Printf("no index snapshot at %s, starting empty", store.Location())
	}
	return nil
}

// NewSnapshotStore returns the S3 store when S3 is configured and the local
// file store otherwise.
func NewSnapshotStore(ctx context.Context, cfg *config.Config) (storage.SnapshotStore, error) {
	if !cfg.HasS3() {
		return storage.NewFileStore(cfg.IndexPath), nil
	}

	store, err := storage.NewS3Store(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		Key:             cfg.S3Key,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
	return store, nil
}
