package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/api/handlers"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/index"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/local"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/memory"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/service"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/telemetry"
)

// newTestRouter wires the real services over the in-process backends.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	embedder, err := local.NewHashEmbedder(64)
	require.NoError(t, err)
	idx, err := index.NewMemoryIndex(embedder.Dimensions())
	require.NoError(t, err)
	mem, err := memory.NewStore(memory.DefaultConfig())
	require.NoError(t, err)
	counters := telemetry.NewCounters()

	ingestSvc := service.NewIngestionService(embedder, idx, nil, service.DefaultIngestionConfig(), counters)
	gen := service.NewGenerator(local.NewAnswerer(1), service.DefaultGenerationConfig(), counters)
	querySvc := service.NewQueryService(embedder, idx, gen, mem, service.DefaultQueryConfig(), counters)

	return NewRouter(RouterConfig{
		QueryHandler:  handlers.NewQueryHandler(querySvc),
		IngestHandler: handlers.NewIngestHandler(ingestSvc, t.TempDir(), nil),
		Version:       "test",
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader).WithContext(context.Background())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"index_loaded":false`)
}

func TestRouter_IngestQueryAndClear(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/ingest", map[string]any{
		"documents": []map[string]string{
			{"source": "auth.md", "text": "Authenticate by sending the API key in the Authorization header."},
			{"source": "deploy.md", "text": "Deploy with the Helm chart into your Kubernetes cluster."},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/query", map[string]any{
		"query":   "How do I authenticate with the API key?",
		"user_id": "U1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data domain.QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Sources)
	assert.Equal(t, "auth.md", resp.Data.Sources[0].Source)
	assert.True(t, strings.Contains(resp.Data.Answer, "Authorization header"))

	w = do(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Data domain.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Data.IndexedDocuments)
	assert.Equal(t, 1, stats.Data.ActiveConversations)

	w = do(t, router, http.MethodDelete, "/memory/U1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_QueryOnEmptyIndex(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/query", map[string]any{"query": "anything?"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_EmptyQuery(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/query", map[string]any{"query": "<@U123> :wave:"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/knowledge", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
