// Package reader loads documentation files from disk into domain documents.
package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// Loader reads supported files from a file or directory path. Directories
// are walked recursively; hidden entries and unsupported extensions are
// skipped.
type Loader struct {
	// MaxFileSize skips files larger than this many bytes. Zero disables
	// the limit.
	MaxFileSize int64
}

// NewLoader creates a new Loader instance
func NewLoader() *Loader {
	return &Loader{MaxFileSize: 20 << 20}
}

// Load returns one document per supported file under path. A single file
// with an unsupported extension is an error; inside a directory such files
// are ignored. Files that fail to parse are logged and skipped.
func (l *Loader) Load(ctx context.Context, path string) ([]*domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeNotFound, "path not found: "+path, err)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		format, ok := domain.FormatForPath(path)
		if !ok {
			return nil, domain.NewDomainError(domain.ErrCodeInvalidArgument, "unsupported file type: "+path)
		}
		doc, err := l.loadFile(path, format)
		if err != nil {
			return nil, err
		}
		return []*domain.Document{doc}, nil
	}

	var docs []*domain.Document
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		format, ok := domain.FormatForPath(p)
		if !ok {
			return nil
		}
		doc, err := l.loadFile(p, format)
		if err != nil {
			log.Printf("reader: skipping %s: %v", p, err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}

	log.Printf("Loaded %d documents from %s", len(docs), path)
	return docs, nil
}

func (l *Loader) loadFile(path string, format domain.DocumentFormat) (*domain.Document, error) {
	if l.MaxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > l.MaxFileSize {
			return nil, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), l.MaxFileSize)
		}
	}

	var (
		text string
		err  error
	)
	switch format {
	case domain.DocumentFormatPDF:
		text, err = readPDF(path)
	default:
		var raw []byte
		raw, err = os.ReadFile(path)
		if err == nil {
			text, err = extractText(raw, format)
		}
	}
	if err != nil {
		return nil, err
	}

	return domain.NewDocument(filepath.ToSlash(path), text, format), nil
}

func extractText(raw []byte, format domain.DocumentFormat) (string, error) {
	switch format {
	case domain.DocumentFormatHTML:
		return StripHTML(string(raw)), nil
	case domain.DocumentFormatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return "", fmt.Errorf("invalid JSON: %w", err)
		}
		return buf.String(), nil
	default:
		return string(raw), nil
	}
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", fmt.Errorf("read pdf buffer: %w", err)
	}
	return buf.String(), nil
}

var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</?(p|div|br|hr|h[1-6]|li|tr|pre|table|section|article)[^>]*>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// StripHTML removes markup and returns the readable text of an HTML page.
func StripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")
	content = blockElements.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
	}
	content = strings.Join(lines, "\n")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
