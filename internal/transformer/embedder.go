// Package transformer runs a sentence-transformer model in-process through
// hugot's pure Go backend.
package transformer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

const (
	// DefaultModel produces 384-dimensional embeddings.
	DefaultModel      = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultDimensions = 384
)

type Config struct {
	ModelDir   string
	ModelName  string
	Dimensions int
}

// Embedder is an EmbeddingProvider backed by a local ONNX model.
type Embedder struct {
	mu         sync.Mutex
	run        func(texts []string) ([][]float32, error)
	destroy    func() error
	dimensions int
	name       string
}

// NewEmbedder downloads the model on first use and starts a hugot session.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModel
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = "./models"
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}

	modelPath, err := PrepareModel(cfg.ModelDir, cfg.ModelName)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "devdoc-embedder",
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create embedding pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create embedding pipeline: %w", err)
	}

	return &Embedder{
		run: func(texts []string) ([][]float32, error) {
			result, err := pipeline.RunPipeline(texts)
			if err != nil {
				return nil, err
			}
			return result.Embeddings, nil
		},
		destroy:    session.Destroy,
		dimensions: cfg.Dimensions,
		name:       "hugot:" + cfg.ModelName,
	}, nil
}

func (e *Embedder) Name() string {
	return e.name
}

func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Embed runs the model over texts. Calls are serialized because a pipeline
// is not safe for concurrent use.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	embeddings, err := e.run(texts)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}
	for _, v := range embeddings {
		if len(v) != e.dimensions {
			return nil, domain.DimensionMismatchError(e.dimensions, len(v))
		}
	}
	return embeddings, nil
}

// Close releases the hugot session.
func (e *Embedder) Close() error {
	if e.destroy == nil {
		return nil
	}
	return e.destroy()
}

// PrepareModel downloads modelName into modelDir unless it is already there
// and returns the model path.
func PrepareModel(modelDir, modelName string) (string, error) {
	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		downloadOptions.OnnxFilePath = "onnx/model.onnx"
		downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
}
