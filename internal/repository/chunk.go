package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// ChunkRepository is a vector index stored in PostgreSQL with pgvector.
// Scores are cosine similarities, ties are broken by insertion order.
type ChunkRepository struct {
	db         dbtx
	tx         *TxRunner
	dimensions int
}

// NewChunkRepository binds the repository to a database for vectors of the
// given length. The first repository to open a database records the
// dimensions; opening it later with different dimensions fails.
func NewChunkRepository(ctx context.Context, pool *pgxpool.Pool, dimensions int) (*ChunkRepository, error) {
	if dimensions <= 0 {
		return nil, domain.ConfigurationError("index dimensions must be positive, got %d", dimensions)
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO index_meta (id, dimensions, metric) VALUES (TRUE, $1, 'cosine')
		 ON CONFLICT (id) DO NOTHING`,
		dimensions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record index dimensions: %w", err)
	}

	var stored int
	if err := pool.QueryRow(ctx, `SELECT dimensions FROM index_meta WHERE id`).Scan(&stored); err != nil {
		return nil, fmt.Errorf("failed to read index dimensions: %w", err)
	}
	if stored != dimensions {
		return nil, domain.IndexFormatError("database index has %d dimensions, embedding provider produces %d", stored, dimensions)
	}

	return &ChunkRepository{db: pool, tx: NewTxRunner(pool), dimensions: dimensions}, nil
}

func newChunkRepositoryWithTx(tx pgx.Tx, dimensions int) *ChunkRepository {
	return &ChunkRepository{db: tx, dimensions: dimensions}
}

// Dimensions returns the vector length accepted by the repository.
func (r *ChunkRepository) Dimensions() int {
	return r.dimensions
}

func (r *ChunkRepository) validate(entries []domain.IndexEntry) error {
	for _, e := range entries {
		if e.Chunk.ID == "" || e.Chunk.DocumentID == "" {
			return domain.ErrMissingRequiredField
		}
		if len(e.Vector) != r.dimensions {
			return domain.DimensionMismatchError(r.dimensions, len(e.Vector))
		}
	}
	return nil
}

// Upsert inserts entries or replaces rows with the same chunk ID. A replaced
// row keeps its sequence number.
func (r *ChunkRepository) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if err := r.validate(entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if r.tx == nil {
		return r.upsert(ctx, entries)
	}
	return r.tx.WithTx(ctx, r.dimensions, func(repo *ChunkRepository) error {
		return repo.upsert(ctx, entries)
	})
}

func (r *ChunkRepository) upsert(ctx context.Context, entries []domain.IndexEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		c := e.Chunk
		batch.Queue(
			`INSERT INTO chunks
				(id, document_id, source, chunk_index, content, start_offset, end_offset, embedding)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO UPDATE SET
				document_id = EXCLUDED.document_id,
				source = EXCLUDED.source,
				chunk_index = EXCLUDED.chunk_index,
				content = EXCLUDED.content,
				start_offset = EXCLUDED.start_offset,
				end_offset = EXCLUDED.end_offset,
				embedding = EXCLUDED.embedding,
				updated_at = NOW()`,
			c.ID,
			c.DocumentID,
			c.Source,
			c.Index,
			c.Text,
			c.StartOffset,
			c.EndOffset,
			pgvector.NewVector(e.Vector),
		)
	}

	br := r.db.SendBatch(ctx, batch)
	for _, e := range entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to upsert chunk %s: %w", e.Chunk.ID, err)
		}
	}
	return br.Close()
}

// ReplaceDocument removes every chunk of documentID and inserts entries in
// one transaction.
func (r *ChunkRepository) ReplaceDocument(ctx context.Context, documentID string, entries []domain.IndexEntry) error {
	if documentID == "" {
		return domain.ErrMissingRequiredField
	}
	if err := r.validate(entries); err != nil {
		return err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Chunk.DocumentID != documentID {
			return domain.NewDomainError(domain.ErrCodeInvalidArgument,
				"entry "+e.Chunk.ID+" does not belong to document "+documentID)
		}
		ids = append(ids, e.Chunk.ID)
	}

	replace := func(repo *ChunkRepository) error {
		_, err := repo.db.Exec(ctx,
			`DELETE FROM chunks WHERE document_id = $1 AND NOT (id = ANY($2))`,
			documentID, ids,
		)
		if err != nil {
			return fmt.Errorf("failed to delete stale chunks: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		return repo.upsert(ctx, entries)
	}

	if r.tx == nil {
		return replace(r)
	}
	return r.tx.WithTx(ctx, r.dimensions, replace)
}

// Search returns up to topK chunks ordered by descending cosine similarity.
func (r *ChunkRepository) Search(ctx context.Context, vector []float32, topK int) ([]domain.ScoredEntry, error) {
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}
	if len(vector) != r.dimensions {
		return nil, domain.DimensionMismatchError(r.dimensions, len(vector))
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, source, chunk_index, content, start_offset, end_offset,
		        embedding::text, 1 - (embedding <=> $1::vector) AS score
		 FROM chunks
		 ORDER BY embedding <=> $1::vector, seq
		 LIMIT $2`,
		pgvector.NewVector(vector), topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	results := make([]domain.ScoredEntry, 0, topK)
	for rows.Next() {
		var (
			c     domain.Chunk
			vec   pgvector.Vector
			score float64
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Source, &c.Index, &c.Text,
			&c.StartOffset, &c.EndOffset, &vec, &score); err != nil {
			return nil, err
		}
		// pgvector yields NaN for zero-length vectors.
		if math.IsNaN(score) {
			score = 0
		}
		c.Embedding = vec.Slice()
		results = append(results, domain.ScoredEntry{
			Entry: domain.IndexEntry{Chunk: c, Vector: c.Embedding},
			Score: score,
		})
	}

	return results, rows.Err()
}

// Stats reports the number of chunks and documents stored.
func (r *ChunkRepository) Stats(ctx context.Context) (domain.IndexStats, error) {
	stats := domain.IndexStats{Dimensions: r.dimensions}
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT document_id) FROM chunks`,
	).Scan(&stats.Chunks, &stats.Documents)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("failed to count chunks: %w", err)
	}
	return stats, nil
}
