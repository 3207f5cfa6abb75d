package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/api/handlers"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/api/middleware"
)

const defaultMaxBodyBytes int64 = 5 * 1024 * 1024

type RouterConfig struct {
	QueryHandler  *handlers.QueryHandler
	IngestHandler *handlers.IngestHandler
	Version       string
	MaxBodyBytes  int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.QueryHandler.Health(cfg.Version))
	r.Post("/query", cfg.QueryHandler.Query)
	r.Delete("/memory/{userID}", cfg.QueryHandler.ClearMemory)
	r.Get("/stats", cfg.QueryHandler.Stats)

	if cfg.IngestHandler != nil {
		r.Post("/ingest", cfg.IngestHandler.Ingest)
	}

	return r
}
