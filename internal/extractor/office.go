package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

func extractDocx(path string) (*Extraction, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open docx %q: %v", ErrExtract, path, err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	// GetContent returns document XML; paragraph closes become newlines
	// before the remaining tags are stripped.
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = xmlTagRe.ReplaceAllString(content, "")
	return &Extraction{Text: Normalize(content), NumPages: 1}, nil
}

func extractXlsx(path string) (*Extraction, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx %q: %v", ErrExtract, path, err)
	}

	var b strings.Builder
	for _, sheet := range f.Sheets {
		b.WriteString(fmt.Sprintf("## Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			var cells []string
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			b.WriteString(strings.Join(cells, "\t"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return &Extraction{Text: Normalize(b.String()), NumPages: len(f.Sheets)}, nil
}

func extractOds(path string) (*Extraction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open ods %q: %v", ErrExtract, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var b strings.Builder
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		b.WriteString(fmt.Sprintf("## Sheet: %s\n", name))
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return &Extraction{Text: Normalize(b.String()), NumPages: len(sheets)}, nil
}
