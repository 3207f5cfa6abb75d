package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentFormat is the source format a document was read from.
type DocumentFormat string

const (
	DocumentFormatText     DocumentFormat = "text"
	DocumentFormatMarkdown DocumentFormat = "markdown"
	DocumentFormatRST      DocumentFormat = "rst"
	DocumentFormatHTML     DocumentFormat = "html"
	DocumentFormatJSON     DocumentFormat = "json"
	DocumentFormatPDF      DocumentFormat = "pdf"
)

// formatsByExtension lists the file types the ingestion reader accepts.
var formatsByExtension = map[string]DocumentFormat{
	".txt":  DocumentFormatText,
	".md":   DocumentFormatMarkdown,
	".rst":  DocumentFormatRST,
	".html": DocumentFormatHTML,
	".json": DocumentFormatJSON,
	".pdf":  DocumentFormatPDF,
}

// FormatForPath returns the document format for a file path.
func FormatForPath(path string) (DocumentFormat, bool) {
	f, ok := formatsByExtension[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Document is a unit of source text. Its ID is derived from Source, so
// ingesting the same source again supersedes the earlier version.
type Document struct {
	ID         string
	Source     string
	Text       string
	Format     DocumentFormat
	IngestedAt time.Time
}

// DocumentID returns the stable identifier for a source.
func DocumentID(source string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source)).String()
}

// NewDocument creates a new Document instance
func NewDocument(source, text string, format DocumentFormat) *Document {
	if format == "" {
		format = DocumentFormatText
	}
	return &Document{
		ID:         DocumentID(source),
		Source:     source,
		Text:       text,
		Format:     format,
		IngestedAt: time.Now().UTC(),
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.Source == "" {
		return fmt.Errorf("document Source is required")
	}
	return nil
}

// Chunk is a contiguous slice of a document. Offsets count runes into the
// document text; End is exclusive.
type Chunk struct {
	ID          string
	DocumentID  string
	Source      string
	Index       int
	Text        string
	StartOffset int
	EndOffset   int
	Embedding   []float32
}

// ChunkID returns the identifier of the index-th chunk of a document.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s#%d", documentID, index)
}

// IndexEntry associates a chunk with its embedding vector.
type IndexEntry struct {
	Chunk  Chunk
	Vector []float32
}

// ScoredEntry is a search hit. Higher scores are more similar.
type ScoredEntry struct {
	Entry IndexEntry
	Score float64
}
