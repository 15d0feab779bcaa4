package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportkb/internal/extractor"
)

func pdfExt(pages ...string) *extractor.Extraction {
	ext := &extractor.Extraction{NumPages: len(pages), Source: "manual.pdf", FileType: "pdf"}
	for i, text := range pages {
		ext.Pages = append(ext.Pages, extractor.PageText{Page: i + 1, Text: text})
	}
	return ext
}

func TestPerPageSkipsBlankPages(t *testing.T) {
	longText := strings.Repeat("troubleshooting steps for the vpn client. ", 3)

	p := ForFileType("pdf", Options{})
	chunks := p.Chunk("doc1", pdfExt(longText, "", longText))
	require.Len(t, chunks, 2)

	require.NotNil(t, chunks[0].Metadata.PageNumber)
	assert.Equal(t, 1, *chunks[0].Metadata.PageNumber)
	assert.Equal(t, 1, *chunks[0].Metadata.StartPage)
	assert.Equal(t, 1, *chunks[0].Metadata.EndPage)

	require.NotNil(t, chunks[1].Metadata.PageNumber)
	assert.Equal(t, 3, *chunks[1].Metadata.PageNumber)

	// Skipped pages leave no gap in chunk indexes.
	assert.Equal(t, 0, chunks[0].Metadata.ChunkIndex)
	assert.Equal(t, 1, chunks[1].Metadata.ChunkIndex)
	assert.Equal(t, 3, chunks[0].Metadata.NumPages)
}

func TestPerPageBelowThreshold(t *testing.T) {
	p := ForFileType("pdf", Options{MinChunkChars: 50})
	chunks := p.Chunk("doc1", pdfExt("too short", "x"))
	assert.Empty(t, chunks)
}

func TestPerPageCoverage(t *testing.T) {
	long := strings.Repeat("page body with plenty of characters to pass the minimum. ", 2)
	pages := []string{long, "", long, "short", long}

	p := ForFileType("pdf", Options{})
	chunks := p.Chunk("doc1", pdfExt(pages...))

	// Exactly the pages with >= 50 chars, in order, no duplicates.
	var got []int
	for _, c := range chunks {
		got = append(got, *c.Metadata.PageNumber)
	}
	assert.Equal(t, []int{1, 3, 5}, got)
	for i, c := range chunks {
		assert.Equal(t, i, c.Metadata.ChunkIndex)
		assert.Equal(t, long, c.Content)
	}
}
