package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// MockEmbeddingProvider mocks an embedding provider
type MockEmbeddingProvider struct {
	mock.Mock
	dims int
}

func (m *MockEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbeddingProvider) Dimensions() int { return m.dims }

func (m *MockEmbeddingProvider) Name() string { return "mock-embedder" }

// MockVectorIndex mocks a vector index
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockVectorIndex) ReplaceDocument(ctx context.Context, documentID string, entries []domain.IndexEntry) error {
	args := m.Called(ctx, documentID, entries)
	return args.Error(0)
}

func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, topK int) ([]domain.ScoredEntry, error) {
	args := m.Called(ctx, vector, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredEntry), args.Error(1)
}

func (m *MockVectorIndex) Stats(ctx context.Context) (domain.IndexStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.IndexStats), args.Error(1)
}

// MockLLMProvider mocks an LLM provider
type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockLLMProvider) Name() string { return "mock-llm" }

// MockMemory mocks conversation memory
type MockMemory struct {
	mock.Mock
}

func (m *MockMemory) Append(userID string, entry domain.ConversationEntry) error {
	args := m.Called(userID, entry)
	return args.Error(0)
}

func (m *MockMemory) Get(userID string) []domain.ConversationEntry {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.ConversationEntry)
}

func (m *MockMemory) Clear(userID string) {
	m.Called(userID)
}

func (m *MockMemory) ActiveConversations() int {
	args := m.Called()
	return args.Int(0)
}

// MockLoader mocks a document loader
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, path string) ([]*domain.Document, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}
