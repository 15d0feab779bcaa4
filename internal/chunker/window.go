package chunker

import (
	"regexp"
	"strings"

	"supportkb/internal/extractor"
	"supportkb/internal/models"
)

var blankLineRe = regexp.MustCompile(`\n\s*\n`)

// Window accumulates paragraphs into a running buffer and closes a chunk
// when the next paragraph would exceed the character budget
// (chunkSize tokens * 4). The closed chunk's trailing words are carried
// into the next buffer so adjacent chunks share context.
type Window struct {
	opts Options
}

func (w *Window) Name() string { return "window" }

func (w *Window) Chunk(docID string, ext *extractor.Extraction) []models.Chunk {
	text := strings.TrimSpace(ext.Text)
	if text == "" {
		return nil
	}

	budget := w.opts.ChunkSize * charsPerToken
	overlap := w.opts.ChunkOverlap * charsPerToken

	var chunks []models.Chunk
	emit := func(content string) {
		chunks = append(chunks, models.Chunk{
			Content:    content,
			TokenCount: estimateTokens(content),
			Metadata:   envelope(docID, ext, len(chunks)),
		})
	}

	var buf strings.Builder
	for _, para := range blankLineRe.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if buf.Len() > 0 && buf.Len()+2+len(para) > budget {
			content := buf.String()
			emit(content)
			buf.Reset()
			if tail := overlapTail(content, overlap); tail != "" {
				buf.WriteString(tail)
			}
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
	}
	if rest := strings.TrimSpace(buf.String()); rest != "" {
		emit(rest)
	}
	return chunks
}

// overlapTail returns the trailing words of content, at most n characters,
// snapped to a word boundary so the carried text reappears verbatim at the
// start of the next chunk.
func overlapTail(content string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(content) <= n {
		return content
	}
	tail := content[len(content)-n:]
	idx := strings.IndexAny(tail, " \n")
	if idx < 0 {
		// A single unbroken word longer than the overlap; nothing to carry.
		return ""
	}
	return strings.TrimSpace(tail[idx+1:])
}
