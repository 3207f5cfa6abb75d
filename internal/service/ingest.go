package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/telemetry"
)

// DocumentLoader reads documents from a file or directory path.
type DocumentLoader interface {
	Load(ctx context.Context, path string) ([]*domain.Document, error)
}

// IngestionConfig controls batching and parallelism of ingestion.
type IngestionConfig struct {
	Chunk     ChunkConfig
	BatchSize int
	Workers   int
}

// DefaultIngestionConfig provides sane defaults for ingestion.
func DefaultIngestionConfig() IngestionConfig {
	return IngestionConfig{
		Chunk:     DefaultChunkConfig(),
		BatchSize: 32,
		Workers:   4,
	}
}

// IngestionService chunks, embeds and indexes documents.
type IngestionService struct {
	embedder EmbeddingProvider
	index    VectorIndex
	loader   DocumentLoader
	cfg      IngestionConfig
	counters *telemetry.Counters
}

// NewIngestionService creates a new IngestionService instance
func NewIngestionService(
	embedder EmbeddingProvider,
	index VectorIndex,
	loader DocumentLoader,
	cfg IngestionConfig,
	counters *telemetry.Counters,
) *IngestionService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultIngestionConfig().BatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &IngestionService{
		embedder: embedder,
		index:    index,
		loader:   loader,
		cfg:      cfg,
		counters: counters,
	}
}

// ChunkConfig returns the service's default chunking parameters.
func (s *IngestionService) ChunkConfig() ChunkConfig {
	return s.cfg.Chunk
}

// Ingest indexes docs using chunkCfg. Re-ingesting a document replaces every
// chunk previously indexed for it. Per-chunk failures are counted in the
// report and do not abort the run; an invalid chunkCfg fails before any work.
func (s *IngestionService) Ingest(ctx context.Context, docs []*domain.Document, chunkCfg ChunkConfig) (*domain.IngestionReport, error) {
	if err := chunkCfg.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "ingest", telemetry.SpanAttributes{
		Provider:  s.embedder.Name(),
		Operation: "ingest",
	})
	defer span.End()

	var (
		mu     sync.Mutex
		report domain.IngestionReport
	)

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)
	for _, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r := s.ingestDocument(ctx, doc, chunkCfg)
			mu.Lock()
			report.Merge(r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.SetError(err)
		return &report, err
	}

	s.counters.Add(telemetry.CounterChunksIndexed, int64(report.ChunksCreated))
	s.counters.Add(telemetry.CounterChunksFailed, int64(report.ChunksFailed))

	log.Printf("Ingested %d documents (%d failed): %d chunks indexed, %d failed",
		report.DocumentsProcessed, report.DocumentsFailed, report.ChunksCreated, report.ChunksFailed)
	return &report, nil
}

// IngestPaths loads every supported file under paths and ingests it.
// Files that cannot be read count as failed documents.
func (s *IngestionService) IngestPaths(ctx context.Context, paths []string, chunkCfg ChunkConfig) (*domain.IngestionReport, error) {
	if err := chunkCfg.Validate(); err != nil {
		return nil, err
	}
	if s.loader == nil {
		return nil, domain.ConfigurationError("no document loader configured")
	}

	var (
		docs     []*domain.Document
		failures domain.IngestionReport
	)
	for _, p := range paths {
		loaded, err := s.loader.Load(ctx, p)
		if err != nil {
			failures.DocumentsFailed++
			failures.Errors = append(failures.Errors, fmt.Sprintf("%s: %v", p, err))
			continue
		}
		docs = append(docs, loaded...)
	}

	report, err := s.Ingest(ctx, docs, chunkCfg)
	if report != nil {
		report.Merge(failures)
	}
	return report, err
}

func (s *IngestionService) ingestDocument(ctx context.Context, doc *domain.Document, chunkCfg ChunkConfig) domain.IngestionReport {
	var report domain.IngestionReport

	if err := domain.ValidateDocument(doc); err != nil {
		report.DocumentsFailed++
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	ctx, span := telemetry.StartSpan(ctx, "ingest.document", telemetry.SpanAttributes{
		DocumentID: doc.ID,
		Operation:  "ingest",
	})
	defer span.End()

	chunks, err := ChunkDocument(doc, chunkCfg)
	if err != nil {
		report.DocumentsFailed++
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", doc.Source, err))
		return report
	}

	entries := make([]domain.IndexEntry, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(chunks))
		batch := chunks[start:end]

		embedded, errs := s.embedBatch(ctx, batch)
		entries = append(entries, embedded...)
		report.ChunksFailed += len(errs)
		for _, e := range errs {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", doc.Source, e))
		}
	}

	// Keep the previous version when nothing new could be embedded.
	if len(entries) == 0 && len(chunks) > 0 {
		report.DocumentsFailed++
		return report
	}

	if err := s.index.ReplaceDocument(ctx, doc.ID, entries); err != nil {
		span.SetError(err)
		report.DocumentsFailed++
		report.ChunksFailed += len(entries)
		report.Errors = append(report.Errors, fmt.Sprintf("%s: failed to index chunks: %v", doc.Source, err))
		return report
	}

	report.DocumentsProcessed++
	report.ChunksCreated += len(entries)
	return report
}

// embedBatch embeds a batch in one call and falls back to one call per chunk
// when the batch fails, so a single bad chunk only loses itself.
func (s *IngestionService) embedBatch(ctx context.Context, batch []domain.Chunk) ([]domain.IndexEntry, []error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err == nil && len(vectors) == len(batch) {
		entries := make([]domain.IndexEntry, len(batch))
		for i, c := range batch {
			entries[i] = newIndexEntry(c, vectors[i])
		}
		return entries, nil
	}
	if len(batch) == 1 {
		if err == nil {
			err = fmt.Errorf("provider returned %d vectors for 1 text", len(vectors))
		}
		return nil, []error{fmt.Errorf("chunk %s: %w", batch[0].ID, err)}
	}

	var (
		entries []domain.IndexEntry
		errs    []error
	)
	for _, c := range batch {
		vecs, err := s.embedder.Embed(ctx, []string{c.Text})
		if err == nil && len(vecs) != 1 {
			err = fmt.Errorf("provider returned %d vectors for 1 text", len(vecs))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("chunk %s: %w", c.ID, err))
			continue
		}
		entries = append(entries, newIndexEntry(c, vecs[0]))
	}
	return entries, errs
}

func newIndexEntry(c domain.Chunk, vector []float32) domain.IndexEntry {
	c.Embedding = vector
	return domain.IndexEntry{Chunk: c, Vector: vector}
}
