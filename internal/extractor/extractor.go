// Package extractor pulls raw text (and page boundaries, for PDFs) out of
// uploaded documents ahead of chunking.
package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrExtract wraps every unreadable/corrupt/unsupported-file failure so
// callers can classify without string matching.
var ErrExtract = errors.New("extraction failed")

// PageText is the cleaned text of one PDF page.
type PageText struct {
	Page int
	Text string
}

// Extraction is the result of pulling text out of one document.
type Extraction struct {
	Text     string
	NumPages int
	// Pages is populated for page-oriented sources (PDF) only.
	Pages    []PageText
	Source   string
	FileType string
}

// DetectFileType maps a filename extension to one of the pipeline's file
// type tags. Unknown extensions are treated as plain text.
func DetectFileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "pdf"
	case ".md", ".markdown":
		return "markdown"
	case ".docx":
		return "docx"
	case ".xlsx":
		return "xlsx"
	case ".ods":
		return "ods"
	default:
		return "txt"
	}
}

// Extract reads the file at path and returns its text. PDF extractions are
// page-aligned; everything else is a flat text body.
func Extract(path, fileType string) (*Extraction, error) {
	var (
		ext *Extraction
		err error
	)
	switch fileType {
	case "pdf":
		ext, err = extractPDF(path)
	case "markdown", "txt":
		ext, err = extractText(path)
	case "docx":
		ext, err = extractDocx(path)
	case "xlsx":
		ext, err = extractXlsx(path)
	case "ods":
		ext, err = extractOds(path)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrExtract, fileType)
	}
	if err != nil {
		return nil, err
	}
	ext.Source = filepath.Base(path)
	ext.FileType = fileType
	return ext, nil
}
