package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// MockOpenAIAPI is a mock for the OpenAI API
type MockOpenAIAPI struct {
	mock.Mock
}

func (m *MockOpenAIAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockOpenAIAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func vector(dims int, seed float32) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = seed + float32(i)*0.001
	}
	return v
}

func TestClient_Embed_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: 1536}

	ctx := context.Background()
	texts := []string{"Go modules", "Vector search"}
	expected := [][]float32{vector(1536, 0), vector(1536, 1)}

	mockAPI.On("CreateEmbeddings", ctx, texts).Return(expected, nil)

	embeddings, err := client.Embed(ctx, texts)

	assert.NoError(t, err)
	assert.Equal(t, expected, embeddings)
	mockAPI.AssertExpectations(t)
}

func TestClient_Embed_EmptyText(t *testing.T) {
	client := NewClient("")

	embeddings, err := client.Embed(context.Background(), []string{"ok", ""})

	assert.Nil(t, embeddings)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_Embed_NoTexts(t *testing.T) {
	client := NewClient("")

	embeddings, err := client.Embed(context.Background(), nil)

	assert.NoError(t, err)
	assert.Empty(t, embeddings)
}

func TestClient_Embed_WrongDimensions(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: 1536}
	ctx := context.Background()

	mockAPI.On("CreateEmbeddings", ctx, []string{"x"}).Return([][]float32{vector(10, 0)}, nil)

	_, err := client.Embed(ctx, []string{"x"})

	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}

func TestClient_Embed_APIError(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: 1536}

	ctx := context.Background()
	apiErr := errors.New("connection reset")

	mockAPI.On("CreateEmbeddings", ctx, []string{"x"}).Return(nil, apiErr)

	embeddings, err := client.Embed(ctx, []string{"x"})

	assert.Error(t, err)
	assert.Nil(t, embeddings)
	assert.Contains(t, err.Error(), "failed to create embeddings")
	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.True(t, perr.Retryable)
	mockAPI.AssertExpectations(t)
}

func TestClient_Complete_BuildsMessages(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{chat: mockAPI, chatModel: "gpt-test"}
	ctx := context.Background()

	expectedReq := openai.ChatCompletionRequest{
		Model: "gpt-test",
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "system"},
			{Role: openai.ChatMessageRoleUser, Content: "earlier question"},
			{Role: openai.ChatMessageRoleAssistant, Content: "earlier answer"},
			{Role: openai.ChatMessageRoleUser, Content: "question"},
		},
		Temperature: 0.3,
		MaxTokens:   100,
	}
	mockAPI.On("CreateChatCompletion", ctx, expectedReq).Return(openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "answer"}}},
	}, nil)

	got, err := client.Complete(ctx, domain.CompletionRequest{
		System: "system",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "earlier question"},
			{Role: domain.RoleAssistant, Content: "earlier answer"},
			{Role: domain.RoleUser, Content: "question"},
		},
		Temperature: 0.3,
		MaxTokens:   100,
	})

	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	mockAPI.AssertExpectations(t)
}

func TestClient_Complete_NoChoices(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{chat: mockAPI, chatModel: "gpt-test"}
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(openai.ChatCompletionResponse{}, nil)

	_, err := client.Complete(context.Background(), domain.CompletionRequest{})

	assert.ErrorIs(t, err, ErrEmptyChoices)
}

func TestNewClient(t *testing.T) {
	apiKey := "test-api-key"
	client := NewClient(apiKey)

	assert.NotNil(t, client)
	assert.NotNil(t, client.api)
	assert.NotNil(t, client.chat)
	assert.Equal(t, DefaultEmbeddingDimensions, client.Dimensions())
	assert.Equal(t, "openai", client.Name())
}

func TestNewClientWithConfig_EmbeddingDimensions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected int
	}{
		{"default model", Config{}, 1536},
		{"small v3", Config{EmbeddingModel: openai.SmallEmbedding3}, 1536},
		{"large v3", Config{EmbeddingModel: openai.LargeEmbedding3}, 3072},
		{"unknown model", Config{EmbeddingModel: "custom-embedder"}, DefaultEmbeddingDimensions},
		{"explicit override", Config{EmbeddingModel: openai.LargeEmbedding3, EmbeddingDimensions: 256}, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewClientWithConfig(tt.cfg).Dimensions())
		})
	}
}

func TestClient_SendsDimensionsForShortenableModels(t *testing.T) {
	tests := []struct {
		model    openai.EmbeddingModel
		dims     int
		expected any
	}{
		{openai.LargeEmbedding3, 2, float64(2)},
		{openai.AdaEmbeddingV2, 2, nil},
	}

	for _, tt := range tests {
		var sent map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float32{0.6, 0.8}}},
			})
		}))

		client := NewClientWithConfig(Config{APIKey: "k", BaseURL: srv.URL + "/v1", EmbeddingModel: tt.model, EmbeddingDimensions: tt.dims})
		vecs, err := client.Embed(context.Background(), []string{"a"})
		srv.Close()

		require.NoError(t, err, "model %s", tt.model)
		assert.Len(t, vecs[0], 2)
		assert.Equal(t, tt.expected, sent["dimensions"], "model %s", tt.model)
	}
}

func TestClient_AgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/embeddings":
			// Returned out of order to check the adapter restores input order.
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"data": []map[string]any{
					{"object": "embedding", "index": 1, "embedding": []float32{0, 1, 0}},
					{"object": "embedding", "index": 0, "embedding": []float32{1, 0, 0}},
				},
			})
		case "/v1/chat/completions":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "chatcmpl-1",
				"object": "chat.completion",
				"choices": []map[string]any{
					{"index": 0, "message": map[string]any{"role": "assistant", "content": "from server"}, "finish_reason": "stop"},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClientWithConfig(Config{APIKey: "k", BaseURL: srv.URL + "/v1", EmbeddingDimensions: 3})

	vecs, err := client.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}}, vecs)

	answer, err := client.Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "from server", answer)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusUnauthorized, false},
		{http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"test_error"}}`))
		}))

		client := NewClientWithConfig(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
		_, err := client.Complete(context.Background(), domain.CompletionRequest{
			Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
		})
		srv.Close()

		var perr *domain.ProviderError
		require.True(t, errors.As(err, &perr), "status %d", tt.status)
		assert.Equal(t, tt.status, perr.StatusCode)
		assert.Equal(t, tt.retryable, perr.Retryable, "status %d", tt.status)
	}
}
