//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/testutil"
)

func chunkEntry(docID string, idx int, text string, vec ...float32) domain.IndexEntry {
	return domain.IndexEntry{
		Chunk: domain.Chunk{
			ID:         domain.ChunkID(docID, idx),
			DocumentID: docID,
			Source:     docID + ".md",
			Index:      idx,
			Text:       text,
			EndOffset:  len(text),
		},
		Vector: vec,
	}
}

func TestChunkRepository(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc)
	defer pool.Close()

	t.Run("search ranks by cosine similarity", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		repo, err := NewChunkRepository(ctx, pool, 2)
		require.NoError(t, err)

		require.NoError(t, repo.Upsert(ctx, []domain.IndexEntry{
			chunkEntry("low", 0, "low", 0, 1),
			chunkEntry("high", 0, "high", 1, 0),
			chunkEntry("mid", 0, "mid", 1, 1),
		}))

		hits, err := repo.Search(ctx, []float32{1, 0}, 2)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "high", hits[0].Entry.Chunk.Text)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
		assert.Equal(t, "mid", hits[1].Entry.Chunk.Text)
		assert.Equal(t, []float32{1, 0}, hits[0].Entry.Vector)
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		repo, err := NewChunkRepository(ctx, pool, 2)
		require.NoError(t, err)

		require.NoError(t, repo.Upsert(ctx, []domain.IndexEntry{chunkEntry("first", 0, "first", 1, 1)}))
		require.NoError(t, repo.Upsert(ctx, []domain.IndexEntry{chunkEntry("second", 0, "second", 1, 1)}))
		require.NoError(t, repo.Upsert(ctx, []domain.IndexEntry{chunkEntry("first", 0, "first again", 1, 1)}))

		hits, err := repo.Search(ctx, []float32{1, 1}, 5)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "first again", hits[0].Entry.Chunk.Text)
		assert.Equal(t, "second", hits[1].Entry.Chunk.Text)
	})

	t.Run("replace document removes stale chunks", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		repo, err := NewChunkRepository(ctx, pool, 2)
		require.NoError(t, err)

		require.NoError(t, repo.ReplaceDocument(ctx, "doc", []domain.IndexEntry{
			chunkEntry("doc", 0, "a", 1, 0),
			chunkEntry("doc", 1, "b", 0, 1),
			chunkEntry("doc", 2, "c", 1, 1),
		}))
		require.NoError(t, repo.ReplaceDocument(ctx, "doc", []domain.IndexEntry{
			chunkEntry("doc", 0, "a2", 1, 0),
		}))

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.IndexStats{Chunks: 1, Documents: 1, Dimensions: 2}, stats)

		require.NoError(t, repo.ReplaceDocument(ctx, "doc", nil))
		stats, err = repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Chunks)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		repo, err := NewChunkRepository(ctx, pool, 2)
		require.NoError(t, err)

		err = repo.Upsert(ctx, []domain.IndexEntry{chunkEntry("a", 0, "x", 1, 0, 0)})
		assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))

		err = repo.ReplaceDocument(ctx, "a", []domain.IndexEntry{chunkEntry("b", 0, "x", 1, 0)})
		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

		_, err = repo.Search(ctx, []float32{1, 0}, 0)
		assert.True(t, errors.Is(err, domain.ErrInvalidTopK))
	})

	t.Run("dimensions are fixed per database", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		_, err := NewChunkRepository(ctx, pool, 2)
		require.NoError(t, err)

		_, err = NewChunkRepository(ctx, pool, 3)
		assert.True(t, errors.Is(err, domain.ErrIndexFormat))
	})
}
