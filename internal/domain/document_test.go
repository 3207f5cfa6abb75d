package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentID_StablePerSource(t *testing.T) {
	a := DocumentID("docs/install.md")
	b := DocumentID("docs/install.md")
	c := DocumentID("docs/config.md")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNewDocument(t *testing.T) {
	d := NewDocument("docs/install.md", "hello", "")

	assert.Equal(t, DocumentID("docs/install.md"), d.ID)
	assert.Equal(t, DocumentFormatText, d.Format)
	assert.False(t, d.IngestedAt.IsZero())
	assert.NoError(t, ValidateDocument(d))
}

func TestValidateDocument(t *testing.T) {
	assert.Error(t, ValidateDocument(nil))
	assert.Error(t, ValidateDocument(&Document{Source: "x"}))
	assert.Error(t, ValidateDocument(&Document{ID: "x"}))
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path   string
		format DocumentFormat
		ok     bool
	}{
		{"a/README.md", DocumentFormatMarkdown, true},
		{"guide.PDF", DocumentFormatPDF, true},
		{"index.html", DocumentFormatHTML, true},
		{"notes.rst", DocumentFormatRST, true},
		{"data.json", DocumentFormatJSON, true},
		{"plain.txt", DocumentFormatText, true},
		{"image.png", "", false},
	}

	for _, tt := range tests {
		f, ok := FormatForPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.format, f, tt.path)
	}
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "doc#3", ChunkID("doc", 3))
}

func TestValidateConversationEntry(t *testing.T) {
	assert.NoError(t, ValidateConversationEntry(NewConversationEntry("u1", RoleUser, "hi")))
	assert.Error(t, ValidateConversationEntry(NewConversationEntry("", RoleUser, "hi")))
	assert.Error(t, ValidateConversationEntry(NewConversationEntry("u1", Role("system"), "hi")))
}
