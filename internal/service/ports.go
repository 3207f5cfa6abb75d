package service

import (
	"context"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// EmbeddingProvider maps texts to fixed-dimension vectors. The returned
// slice has one vector per input, in input order.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
}

// VectorIndex stores chunk embeddings and answers nearest-neighbour queries.
type VectorIndex interface {
	Upsert(ctx context.Context, entries []domain.IndexEntry) error
	// ReplaceDocument atomically swaps every entry of documentID for entries.
	ReplaceDocument(ctx context.Context, documentID string, entries []domain.IndexEntry) error
	Search(ctx context.Context, vector []float32, topK int) ([]domain.ScoredEntry, error)
	Stats(ctx context.Context) (domain.IndexStats, error)
}

// LLMProvider turns an assembled prompt into an answer.
type LLMProvider interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
	Name() string
}

// ConversationMemory holds recent conversation turns per user.
type ConversationMemory interface {
	Append(userID string, entry domain.ConversationEntry) error
	Get(userID string) []domain.ConversationEntry
	Clear(userID string)
	ActiveConversations() int
}
