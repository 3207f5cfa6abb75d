package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

type MockModels struct {
	mock.Mock
}

func (m *MockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func (m *MockModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	args := m.Called(ctx, model, contents, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.EmbedContentResponse), args.Error(1)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: string(genai.RoleModel), Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestClient_Defaults(t *testing.T) {
	c := newClient(new(MockModels), Config{})

	assert.Equal(t, "gemini", c.Name())
	assert.Equal(t, DefaultEmbeddingDimensions, c.Dimensions())
	assert.Equal(t, DefaultModel, c.model)
	assert.Equal(t, DefaultEmbeddingModel, c.embeddingModel)
}

func TestClient_Complete_MapsRoles(t *testing.T) {
	models := new(MockModels)
	c := newClient(models, Config{Model: "gemini-test"})

	models.On("GenerateContent", mock.Anything, "gemini-test",
		mock.MatchedBy(func(contents []*genai.Content) bool {
			return len(contents) == 2 &&
				contents[0].Role == string(genai.RoleUser) &&
				contents[1].Role == string(genai.RoleModel) &&
				contents[1].Parts[0].Text == "earlier answer"
		}),
		mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
			return cfg.SystemInstruction != nil &&
				cfg.SystemInstruction.Parts[0].Text == "system" &&
				cfg.MaxOutputTokens == 200
		}),
	).Return(textResponse("answer"), nil)

	got, err := c.Complete(context.Background(), domain.CompletionRequest{
		System: "system",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "question"},
			{Role: domain.RoleAssistant, Content: "earlier answer"},
		},
		MaxTokens: 200,
	})

	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	models.AssertExpectations(t)
}

func TestClient_Complete_ClassifiesAPIErrors(t *testing.T) {
	models := new(MockModels)
	c := newClient(models, Config{})

	models.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"}).Once()
	models.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, genai.APIError{Code: http.StatusBadRequest, Message: "bad"}).Once()

	_, err := c.Complete(context.Background(), domain.CompletionRequest{})
	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.True(t, perr.Retryable)

	_, err = c.Complete(context.Background(), domain.CompletionRequest{})
	require.True(t, errors.As(err, &perr))
	assert.False(t, perr.Retryable)
}

func TestClient_Embed(t *testing.T) {
	models := new(MockModels)
	c := newClient(models, Config{EmbeddingDimensions: 3})

	models.On("EmbedContent", mock.Anything, DefaultEmbeddingModel, mock.Anything,
		mock.MatchedBy(func(cfg *genai.EmbedContentConfig) bool {
			return cfg.OutputDimensionality != nil && *cfg.OutputDimensionality == 3
		}),
	).Return(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{
			{Values: []float32{1, 0, 0}},
			{Values: []float32{0, 1, 0}},
		},
	}, nil)

	vecs, err := c.Embed(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}}, vecs)
}

func TestClient_Embed_WrongDimensions(t *testing.T) {
	models := new(MockModels)
	c := newClient(models, Config{EmbeddingDimensions: 3})
	models.On("EmbedContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}}}, nil)

	_, err := c.Embed(context.Background(), []string{"a"})

	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}
