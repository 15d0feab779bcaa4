package chunker

import (
	"supportkb/internal/extractor"
	"supportkb/internal/models"
)

// PerPage emits exactly one chunk per PDF page whose cleaned text meets the
// minimum content threshold. Blank or scanned-image-only pages are skipped
// entirely, leaving no gap in chunk indexes. Exact page attribution lets
// the UI jump to source pages, at the cost of the window strategy's
// context-sharing overlap.
type PerPage struct {
	opts Options
}

func (p *PerPage) Name() string { return "page" }

func (p *PerPage) Chunk(docID string, ext *extractor.Extraction) []models.Chunk {
	var chunks []models.Chunk
	for _, pt := range ext.Pages {
		if len(pt.Text) < p.opts.MinChunkChars {
			continue
		}
		page := pt.Page
		meta := envelope(docID, ext, len(chunks))
		meta.PageNumber = &page
		meta.StartPage = &page
		meta.EndPage = &page
		chunks = append(chunks, models.Chunk{
			Content:    pt.Text,
			TokenCount: estimateTokens(pt.Text),
			Metadata:   meta,
		})
	}
	return chunks
}
