package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"supportkb/internal/extractor"
	"supportkb/internal/models"
)

// Header splits Markdown into sections delimited by heading lines (# through
// ######). Each heading starts a section running to the next heading or the
// document end. Content before the first heading becomes an "Introduction"
// section when it is long enough; a document without headings becomes a
// single "Document" section. Sections carry a 1-based sectionIndex and no
// page numbers.
type Header struct {
	opts Options
}

func (h *Header) Name() string { return "header" }

type mdHeading struct {
	title     string
	lineStart int // offset of the heading line's first byte
	bodyStart int // offset just past the heading text
}

func (h *Header) Chunk(docID string, ext *extractor.Extraction) []models.Chunk {
	src := []byte(ext.Text)
	if len(strings.TrimSpace(ext.Text)) == 0 {
		return nil
	}

	headings := scanHeadings(src)

	var chunks []models.Chunk
	emit := func(header, body string) {
		body = strings.TrimSpace(body)
		content := header
		if body != "" {
			content = header + "\n\n" + body
		}
		meta := envelope(docID, ext, len(chunks))
		meta.Header = header
		meta.SectionIndex = len(chunks) + 1
		chunks = append(chunks, models.Chunk{
			Content:    content,
			TokenCount: estimateTokens(content),
			Metadata:   meta,
		})
	}

	if len(headings) == 0 {
		emit("Document", ext.Text)
		return chunks
	}

	if intro := strings.TrimSpace(string(src[:headings[0].lineStart])); len(intro) >= h.opts.MinChunkChars {
		emit("Introduction", intro)
	}
	for i, hd := range headings {
		end := len(src)
		if i+1 < len(headings) {
			end = headings[i+1].lineStart
		}
		emit(hd.title, string(src[hd.bodyStart:end]))
	}
	return chunks
}

// scanHeadings parses the source with goldmark and returns every top-level
// heading with its byte offsets in document order.
func scanHeadings(src []byte) []mdHeading {
	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var headings []mdHeading
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		heading, ok := node.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}
		seg := heading.Lines().At(0)
		lineStart := seg.Start
		for lineStart > 0 && src[lineStart-1] != '\n' {
			lineStart--
		}
		headings = append(headings, mdHeading{
			title:     strings.TrimSpace(string(src[seg.Start:seg.Stop])),
			lineStart: lineStart,
			bodyStart: seg.Stop,
		})
	}
	return headings
}
