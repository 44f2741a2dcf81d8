// Package pagesource abstracts document decoding behind a narrow
// page-oriented interface. The core pipeline never touches the underlying
// file format: adapters turn PDF, DOCX, Markdown and plain text into
// positioned text runs.
package pagesource

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/layout"
)

// Source yields a document's pages as positioned text runs. Pages are
// 1-based. Implementations may lazily render pages; the pipeline consumes
// them strictly in order.
type Source interface {
	PageCount() int
	PageContent(ctx context.Context, page int) ([]layout.TextRun, error)
	Close() error
}

// SupportedExtensions lists the file extensions adapters exist for.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// ForFile opens the right adapter for a filename. An unopenable document
// is the one fatal condition of a run.
func ForFile(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return OpenPDF(path)
	case ".docx":
		return OpenDOCX(path)
	case ".md", ".markdown":
		return OpenMarkdown(path)
	case ".txt":
		return OpenText(path)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks a filename against the adapter set.
func IsSupportedExtension(path string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// memSource serves pages decoded eagerly at open time. Adapters for
// formats without native pagination (DOCX, Markdown, text) build one.
type memSource struct {
	pages [][]layout.TextRun
}

func (s *memSource) PageCount() int { return len(s.pages) }

func (s *memSource) PageContent(ctx context.Context, page int) ([]layout.TextRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 || page > len(s.pages) {
		return nil, fmt.Errorf("page %d out of range [1,%d]", page, len(s.pages))
	}
	return s.pages[page-1], nil
}

func (s *memSource) Close() error { return nil }

// synthetic layout constants for formats without real geometry. Body text
// sits at size 12; heading levels map to sizes that clear the 1.2× modal
// threshold (levels 5-6 intentionally fall below it).
const (
	bodyFontSize = 12.0
	topBaseline  = 800.0
	lineAdvance  = 20.0
)

var headingSizes = [...]float64{24, 20, 17, 15, 14, 13}

func headingSize(level int) float64 {
	if level < 1 || level > len(headingSizes) {
		return bodyFontSize
	}
	return headingSizes[level-1]
}

// pageBuilder accumulates synthetic runs top-down.
type pageBuilder struct {
	runs     []layout.TextRun
	baseline float64
}

func newPageBuilder() *pageBuilder {
	return &pageBuilder{baseline: topBaseline}
}

func (b *pageBuilder) addLine(text string, size float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.runs = append(b.runs, layout.TextRun{
		Text:      text,
		Transform: layout.Transform{size, 0, 0, size, 0, b.baseline},
	})
	b.baseline -= lineAdvance
}

func (b *pageBuilder) empty() bool { return len(b.runs) == 0 }
