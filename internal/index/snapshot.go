package index

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/klauspost/compress/zstd"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// Snapshot format identifiers written in every header.
const (
	SnapshotFormat  = "devdoc-vector-index"
	SnapshotVersion = 1
)

// Header is the first JSON value of a snapshot stream. It is enough to
// decide whether the snapshot can be loaded by a given index.
type Header struct {
	Format     string `json:"format"`
	Version    int    `json:"version"`
	Dimensions int    `json:"dimensions"`
	Metric     string `json:"metric"`
	Count      int    `json:"count"`
}

type record struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	Source      string    `json:"source"`
	Index       int       `json:"index"`
	Text        string    `json:"text"`
	StartOffset int       `json:"start_offset"`
	EndOffset   int       `json:"end_offset"`
	Seq         uint64    `json:"seq"`
	Vector      []float32 `json:"vector"`
}

// Persist writes a zstd-compressed snapshot: a Header followed by one JSON
// record per entry in insertion order.
func (m *MemoryIndex) Persist(w io.Writer) error {
	m.mu.RLock()
	records := make([]record, 0, len(m.entries))
	for _, e := range m.entries {
		records = append(records, record{
			ID:          e.chunk.ID,
			DocumentID:  e.chunk.DocumentID,
			Source:      e.chunk.Source,
			Index:       e.chunk.Index,
			Text:        e.chunk.Text,
			StartOffset: e.chunk.StartOffset,
			EndOffset:   e.chunk.EndOffset,
			Seq:         e.seq,
			Vector:      e.vector,
		})
	}
	dims := m.dimensions
	m.mu.RUnlock()

	slices.SortFunc(records, func(a, b record) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create snapshot encoder: %w", err)
	}
	enc := json.NewEncoder(zw)
	if err := enc.Encode(Header{
		Format:     SnapshotFormat,
		Version:    SnapshotVersion,
		Dimensions: dims,
		Metric:     MetricCosine,
		Count:      len(records),
	}); err != nil {
		zw.Close()
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			zw.Close()
			return fmt.Errorf("failed to write snapshot entry %s: %w", r.ID, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// ReadHeader decodes only the header of a snapshot stream.
func ReadHeader(r io.Reader) (*Header, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, domain.IndexFormatError("snapshot is not zstd compressed: %v", err)
	}
	defer zr.Close()
	return decodeHeader(json.NewDecoder(zr))
}

func decodeHeader(dec *json.Decoder) (*Header, error) {
	var h Header
	if err := dec.Decode(&h); err != nil {
		return nil, domain.IndexFormatError("failed to read snapshot header: %v", err)
	}
	if h.Format != SnapshotFormat {
		return nil, domain.IndexFormatError("unknown snapshot format %q", h.Format)
	}
	if h.Version != SnapshotVersion {
		return nil, domain.IndexFormatError("unsupported snapshot version %d", h.Version)
	}
	return &h, nil
}

// Load replaces the contents of the index with a snapshot written by Persist.
// The snapshot must match the index's dimensions and metric; on any error
// the index is left unchanged.
func (m *MemoryIndex) Load(r io.Reader) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return domain.IndexFormatError("snapshot is not zstd compressed: %v", err)
	}
	defer zr.Close()

	dec := json.NewDecoder(zr)
	h, err := decodeHeader(dec)
	if err != nil {
		return err
	}
	if h.Metric != MetricCosine {
		return domain.IndexFormatError("snapshot metric %q, index uses %q", h.Metric, MetricCosine)
	}
	if h.Dimensions != m.dimensions {
		return domain.IndexFormatError("snapshot has %d dimensions, index expects %d", h.Dimensions, m.dimensions)
	}
	if h.Count < 0 {
		return domain.IndexFormatError("snapshot has negative entry count")
	}

	entries := make(map[string]*entry, h.Count)
	byDocument := make(map[string]map[string]struct{})
	var nextSeq uint64
	for i := 0; i < h.Count; i++ {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return domain.IndexFormatError("failed to read snapshot entry %d of %d: %v", i+1, h.Count, err)
		}
		if len(rec.Vector) != m.dimensions {
			return domain.IndexFormatError("snapshot entry %s has %d dimensions", rec.ID, len(rec.Vector))
		}
		if rec.ID == "" || rec.DocumentID == "" {
			return domain.IndexFormatError("snapshot entry %d has no identifier", i+1)
		}
		entries[rec.ID] = &entry{
			chunk: domain.Chunk{
				ID:          rec.ID,
				DocumentID:  rec.DocumentID,
				Source:      rec.Source,
				Index:       rec.Index,
				Text:        rec.Text,
				StartOffset: rec.StartOffset,
				EndOffset:   rec.EndOffset,
			},
			vector: rec.Vector,
			norm:   norm(rec.Vector),
			seq:    rec.Seq,
		}
		ids, ok := byDocument[rec.DocumentID]
		if !ok {
			ids = make(map[string]struct{})
			byDocument[rec.DocumentID] = ids
		}
		ids[rec.ID] = struct{}{}
		if rec.Seq >= nextSeq {
			nextSeq = rec.Seq + 1
		}
	}
	if len(entries) != h.Count {
		return domain.IndexFormatError("snapshot declares %d entries but holds %d unique ids", h.Count, len(entries))
	}

	m.mu.Lock()
	m.entries = entries
	m.byDocument = byDocument
	m.nextSeq = nextSeq
	m.revision++
	m.mu.Unlock()
	return nil
}
