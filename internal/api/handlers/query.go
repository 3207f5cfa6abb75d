package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/api"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/api/middleware"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/service"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/textutil"
)

type QueryService interface {
	Query(ctx context.Context, in service.QueryInput) (*domain.QueryResult, error)
	ClearMemory(userID string) error
	Stats(ctx context.Context) (*domain.Stats, error)
}

type QueryHandler struct {
	svc QueryService
}

func NewQueryHandler(svc QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type QueryRequest struct {
	Query          string `json:"query"`
	UserID         string `json:"user_id"`
	ChannelID      string `json:"channel_id"`
	IncludeSources *bool  `json:"include_sources"`
}

// Query answers a question. Slack markup is stripped from the text first so
// messages forwarded from Slack can be posted as-is.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	includeSources := true
	if req.IncludeSources != nil {
		includeSources = *req.IncludeSources
	}

	userID := strings.TrimSpace(req.UserID)
	middleware.SetUserID(r.Context(), userID)

	result, err := h.svc.Query(r.Context(), service.QueryInput{
		Text:           textutil.CleanSlackMessage(req.Query),
		UserID:         userID,
		ChannelID:      req.ChannelID,
		IncludeSources: includeSources,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

type ClearMemoryResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

func (h *QueryHandler) ClearMemory(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		api.Error(w, http.StatusBadRequest, "user id is required")
		return
	}
	middleware.SetUserID(r.Context(), userID)

	if err := h.svc.ClearMemory(userID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ClearMemoryResponse{Status: "cleared", UserID: userID})
}

func (h *QueryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, stats)
}

type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	IndexLoaded bool   `json:"index_loaded"`
}

// Health reports liveness. A failing stats lookup degrades the status
// instead of failing the probe.
func (h *QueryHandler) Health(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Version: version}
		stats, err := h.svc.Stats(r.Context())
		if err != nil {
			resp.Status = "degraded"
		} else {
			resp.IndexLoaded = stats.IndexedChunks > 0
		}
		api.Success(w, http.StatusOK, resp)
	}
}
