// Package chunker splits extracted text into retrieval units. Three
// interchangeable strategies cover the pipeline's granularities: a
// token-windowed fallback with overlap, one-chunk-per-page for PDFs, and
// header-delimited sections for Markdown.
package chunker

import (
	"supportkb/internal/extractor"
	"supportkb/internal/models"
)

// charsPerToken is the estimation factor used for both the character budget
// and the token-count estimate (ceil(chars/4)).
const charsPerToken = 4

type Options struct {
	ChunkSize     int // tokens
	ChunkOverlap  int // tokens
	MinChunkChars int
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 500
	}
	if o.ChunkOverlap < 0 {
		o.ChunkOverlap = 0
	}
	if o.MinChunkChars <= 0 {
		o.MinChunkChars = 50
	}
	return o
}

// Strategy turns one extraction into chunks. Implementations attach the
// shared envelope fields (docId, source, numPages, fileType); the ingestion
// caller stamps application afterwards. An empty document yields zero
// chunks, never an error.
type Strategy interface {
	Name() string
	Chunk(docID string, ext *extractor.Extraction) []models.Chunk
}

// ForFileType selects the chunking strategy at the orchestrator boundary:
// page-accurate chunks for PDFs, header sections for Markdown, the token
// window for everything else.
func ForFileType(fileType string, opts Options) Strategy {
	opts = opts.withDefaults()
	switch fileType {
	case models.FileTypePDF:
		return &PerPage{opts: opts}
	case models.FileTypeMarkdown:
		return &Header{opts: opts}
	default:
		return &Window{opts: opts}
	}
}

func estimateTokens(s string) int {
	return (len(s) + charsPerToken - 1) / charsPerToken
}

func envelope(docID string, ext *extractor.Extraction, index int) models.ChunkMetadata {
	return models.ChunkMetadata{
		Type:       models.ChunkTypeText,
		DocID:      docID,
		ChunkIndex: index,
		Source:     ext.Source,
		NumPages:   ext.NumPages,
		FileType:   ext.FileType,
	}
}
