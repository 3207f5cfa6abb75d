package service

import (
	"unicode"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// ChunkConfig controls how documents are split before embedding. Sizes are
// counted in runes.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    512,
		Overlap: 50,
	}
}

// Validate rejects sizes that could not make progress.
func (c ChunkConfig) Validate() error {
	if c.Size <= 0 {
		return domain.ConfigurationError("chunk size must be positive, got %d", c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return domain.ConfigurationError("chunk overlap must be in [0, %d), got %d", c.Size, c.Overlap)
	}
	return nil
}

// ChunkDocument splits doc into overlapping windows of at most cfg.Size runes.
// A window ends on whitespace when one exists in its second half. The next
// window starts cfg.Overlap runes before the previous end. The result is a
// pure function of the document text and cfg.
func ChunkDocument(doc *domain.Document, cfg ChunkConfig) ([]domain.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(doc.Text)
	chunks := make([]domain.Chunk, 0, len(runes)/cfg.Size+1)

	start := skipSpace(runes, 0)
	for start < len(runes) {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			minCut := start + cfg.Size/2
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					end = i
					break
				}
			}
		}

		textEnd := end
		for textEnd > start && unicode.IsSpace(runes[textEnd-1]) {
			textEnd--
		}
		if textEnd > start {
			idx := len(chunks)
			chunks = append(chunks, domain.Chunk{
				ID:          domain.ChunkID(doc.ID, idx),
				DocumentID:  doc.ID,
				Source:      doc.Source,
				Index:       idx,
				Text:        string(runes[start:textEnd]),
				StartOffset: start,
				EndOffset:   textEnd,
			})
		}

		if end >= len(runes) {
			break
		}

		next := end - cfg.Overlap
		if next <= start {
			next = end
		}
		start = skipSpace(runes, next)
	}

	return chunks, nil
}

func skipSpace(runes []rune, i int) int {
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}
