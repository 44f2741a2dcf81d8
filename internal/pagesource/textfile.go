package pagesource

import (
	"fmt"
	"os"
	"strings"
)

// OpenText decodes a plain-text file. Form feeds separate pages; every
// line is body text, so structuring degrades to the unclassified bucket
// unless the text happens to carry no headings at all — which is exactly
// the graceful-degradation path.
func OpenText(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open text: %w", err)
	}

	var pages [][]pendingLine
	for _, page := range strings.Split(string(data), "\f") {
		var lines []pendingLine
		for _, line := range strings.Split(page, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			lines = append(lines, pendingLine{text: line, size: bodyFontSize})
		}
		if len(lines) > 0 {
			pages = append(pages, lines)
		}
	}
	return buildMemSource(pages), nil
}
