package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/api"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/service"
)

type IngestService interface {
	Ingest(ctx context.Context, docs []*domain.Document, chunkCfg service.ChunkConfig) (*domain.IngestionReport, error)
	IngestPaths(ctx context.Context, paths []string, chunkCfg service.ChunkConfig) (*domain.IngestionReport, error)
	ChunkConfig() service.ChunkConfig
}

// SnapshotSaver persists the index after a successful ingestion.
type SnapshotSaver interface {
	Save(ctx context.Context, force bool) (bool, error)
}

type IngestHandler struct {
	svc      IngestService
	docsDir  string
	snapshot SnapshotSaver
}

// NewIngestHandler creates a handler that ingests inline documents or, when
// a request asks for a reload, the server's documentation directory.
// snapshot may be nil.
func NewIngestHandler(svc IngestService, docsDir string, snapshot SnapshotSaver) *IngestHandler {
	return &IngestHandler{svc: svc, docsDir: docsDir, snapshot: snapshot}
}

type IngestDocument struct {
	Source string `json:"source"`
	Text   string `json:"text"`
	Format string `json:"format"`
}

type IngestRequest struct {
	Documents    []IngestDocument `json:"documents"`
	Reload       bool             `json:"reload"`
	ChunkSize    int              `json:"chunk_size"`
	ChunkOverlap *int             `json:"chunk_overlap"`
}

func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Documents) == 0 && !req.Reload {
		api.Error(w, http.StatusBadRequest, "documents or reload is required")
		return
	}

	chunkCfg := h.svc.ChunkConfig()
	if req.ChunkSize > 0 {
		chunkCfg.Size = req.ChunkSize
	}
	if req.ChunkOverlap != nil {
		chunkCfg.Overlap = *req.ChunkOverlap
	}
	if err := chunkCfg.Validate(); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	docs := make([]*domain.Document, 0, len(req.Documents))
	for _, d := range req.Documents {
		if d.Source == "" {
			api.Error(w, http.StatusBadRequest, "document source is required")
			return
		}
		format := domain.DocumentFormat(d.Format)
		if format == "" {
			format, _ = domain.FormatForPath(d.Source)
		}
		docs = append(docs, domain.NewDocument(d.Source, d.Text, format))
	}

	var report domain.IngestionReport
	if len(docs) > 0 {
		rep, err := h.svc.Ingest(r.Context(), docs, chunkCfg)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		report.Merge(*rep)
	}
	if req.Reload {
		rep, err := h.svc.IngestPaths(r.Context(), []string{h.docsDir}, chunkCfg)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		report.Merge(*rep)
	}

	if h.snapshot != nil && report.ChunksCreated > 0 {
		if _, err := h.snapshot.Save(r.Context(), false); err != nil {
			log.Printf("ingest: failed to save snapshot: %v", err)
		}
	}

	api.Success(w, http.StatusOK, report)
}
