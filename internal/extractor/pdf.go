package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// paragraphGap is the vertical jump (in PDF text-space units) between rows
// that we read as a paragraph boundary rather than ordinary line wrap.
// Typical body line height is 10-14 units.
const paragraphGap = 24

func extractPDF(path string) (*Extraction, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf %q: %v", ErrExtract, path, err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]PageText, 0, numPages)
	var full strings.Builder

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, PageText{Page: i})
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return nil, fmt.Errorf("%w: pdf %q page %d: %v", ErrExtract, path, i, err)
		}
		text = Normalize(text)
		pages = append(pages, PageText{Page: i, Text: text})
		if text != "" {
			full.WriteString(text)
			full.WriteString("\n\n")
		}
	}

	log.Debug().Str("path", path).Int("pages", numPages).Msg("extracted pdf text")
	return &Extraction{
		Text:     strings.TrimSpace(full.String()),
		NumPages: numPages,
		Pages:    pages,
	}, nil
}

// pageText flattens one page's rows top to bottom. Rows are emitted on
// their own lines; a large jump in row position becomes a blank line so
// word-wrapped text is not merged with the next paragraph.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	prevPos := int64(-1)
	for _, row := range rows {
		var words []string
		for _, word := range row.Content {
			if word.S != "" {
				words = append(words, word.S)
			}
		}
		line := strings.TrimSpace(strings.Join(words, " "))
		if line == "" {
			continue
		}
		if prevPos >= 0 {
			if prevPos-row.Position > paragraphGap {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(line)
		prevPos = row.Position
	}
	return b.String(), nil
}
