package extractor

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

func extractText(path string) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", ErrExtract, path, err)
	}
	return &Extraction{Text: Normalize(string(data)), NumPages: 1}, nil
}

var (
	hspaceRe   = regexp.MustCompile(`[ \t\x{00A0}]+`)
	newlinesRe = regexp.MustCompile(`\n{3,}`)
)

// Normalize cleans extracted text: horizontal whitespace runs collapse to a
// single space (newlines untouched), every line is trimmed, and runs of 3+
// newlines collapse to exactly 2 (one paragraph boundary).
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = hspaceRe.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = newlinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
