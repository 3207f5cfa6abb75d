// Package index implements an exact, in-process cosine-similarity vector index
// with a self-describing snapshot format.
package index

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// MetricCosine is the only similarity metric supported.
const MetricCosine = "cosine"

type entry struct {
	chunk  domain.Chunk
	vector []float32
	norm   float64
	seq    uint64
}

// MemoryIndex is a VectorIndex held entirely in memory. Searches scan every
// entry. Searches may run concurrently; writes take an exclusive lock and
// are applied all-or-nothing.
type MemoryIndex struct {
	mu         sync.RWMutex
	dimensions int
	entries    map[string]*entry
	byDocument map[string]map[string]struct{}
	nextSeq    uint64
	revision   uint64
}

// NewMemoryIndex creates an empty index for vectors of the given length.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, domain.ConfigurationError("index dimensions must be positive, got %d", dimensions)
	}
	return &MemoryIndex{
		dimensions: dimensions,
		entries:    make(map[string]*entry),
		byDocument: make(map[string]map[string]struct{}),
	}, nil
}

// Dimensions returns the vector length accepted by the index.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Revision increases on every successful mutation.
func (m *MemoryIndex) Revision() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// Upsert inserts entries or replaces entries with the same chunk ID. A
// replaced entry keeps its original insertion position for tie-breaking.
func (m *MemoryIndex) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	prepared, err := m.prepare(entries)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range prepared {
		m.put(e)
	}
	m.revision++
	return nil
}

// ReplaceDocument removes every entry of documentID and inserts entries in a
// single step. Entries must belong to documentID.
func (m *MemoryIndex) ReplaceDocument(_ context.Context, documentID string, entries []domain.IndexEntry) error {
	if documentID == "" {
		return domain.ErrMissingRequiredField
	}
	prepared, err := m.prepare(entries)
	if err != nil {
		return err
	}
	for _, e := range prepared {
		if e.chunk.DocumentID != documentID {
			return domain.NewDomainError(domain.ErrCodeInvalidArgument,
				"entry "+e.chunk.ID+" does not belong to document "+documentID)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	keep := make(map[string]struct{}, len(prepared))
	for _, e := range prepared {
		keep[e.chunk.ID] = struct{}{}
	}
	for id := range m.byDocument[documentID] {
		if _, ok := keep[id]; !ok {
			m.remove(id)
		}
	}
	for _, e := range prepared {
		m.put(e)
	}
	m.revision++
	return nil
}

// Search returns up to topK entries ordered by descending cosine similarity.
// Equal scores are ordered by insertion, earliest first.
func (m *MemoryIndex) Search(_ context.Context, vector []float32, topK int) ([]domain.ScoredEntry, error) {
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}
	if len(vector) != m.dimensions {
		return nil, domain.DimensionMismatchError(m.dimensions, len(vector))
	}
	qnorm := norm(vector)

	m.mu.RLock()
	type scored struct {
		e     *entry
		score float64
	}
	all := make([]scored, 0, len(m.entries))
	for _, e := range m.entries {
		all = append(all, scored{e: e, score: cosine(vector, qnorm, e.vector, e.norm)})
	}
	m.mu.RUnlock()

	slices.SortFunc(all, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		case a.e.seq < b.e.seq:
			return -1
		case a.e.seq > b.e.seq:
			return 1
		}
		return 0
	})

	if len(all) > topK {
		all = all[:topK]
	}
	out := make([]domain.ScoredEntry, len(all))
	for i, s := range all {
		chunk := s.e.chunk
		chunk.Embedding = slices.Clone(s.e.vector)
		out[i] = domain.ScoredEntry{
			Entry: domain.IndexEntry{Chunk: chunk, Vector: chunk.Embedding},
			Score: s.score,
		}
	}
	return out, nil
}

// Stats reports the number of chunks and documents held.
func (m *MemoryIndex) Stats(_ context.Context) (domain.IndexStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.IndexStats{
		Chunks:     len(m.entries),
		Documents:  len(m.byDocument),
		Dimensions: m.dimensions,
	}, nil
}

// prepare validates entries and copies their vectors so callers may reuse
// their buffers.
func (m *MemoryIndex) prepare(entries []domain.IndexEntry) ([]*entry, error) {
	out := make([]*entry, 0, len(entries))
	for _, ie := range entries {
		if ie.Chunk.ID == "" || ie.Chunk.DocumentID == "" {
			return nil, domain.ErrMissingRequiredField
		}
		if len(ie.Vector) != m.dimensions {
			return nil, domain.DimensionMismatchError(m.dimensions, len(ie.Vector))
		}
		chunk := ie.Chunk
		chunk.Embedding = nil
		vec := slices.Clone(ie.Vector)
		out = append(out, &entry{chunk: chunk, vector: vec, norm: norm(vec)})
	}
	return out, nil
}

// put must be called with the write lock held.
func (m *MemoryIndex) put(e *entry) {
	if prev, ok := m.entries[e.chunk.ID]; ok {
		e.seq = prev.seq
		if prev.chunk.DocumentID != e.chunk.DocumentID {
			m.unlinkDocument(prev.chunk.DocumentID, prev.chunk.ID)
		}
	} else {
		e.seq = m.nextSeq
		m.nextSeq++
	}
	m.entries[e.chunk.ID] = e
	ids, ok := m.byDocument[e.chunk.DocumentID]
	if !ok {
		ids = make(map[string]struct{})
		m.byDocument[e.chunk.DocumentID] = ids
	}
	ids[e.chunk.ID] = struct{}{}
}

// remove must be called with the write lock held.
func (m *MemoryIndex) remove(id string) {
	e, ok := m.entries[id]
	if !ok {
		return
	}
	delete(m.entries, id)
	m.unlinkDocument(e.chunk.DocumentID, id)
}

func (m *MemoryIndex) unlinkDocument(documentID, id string) {
	ids := m.byDocument[documentID]
	delete(ids, id)
	if len(ids) == 0 {
		delete(m.byDocument, documentID)
	}
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns 0 when either vector has zero length.
func cosine(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}
