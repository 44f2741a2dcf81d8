package pagesource

import (
	"context"
	"fmt"
	"os"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/layout"
)

// PDFSource renders pages on demand from a PDF file. Unlike the synthetic
// adapters, runs carry the document's real font sizes and positions.
type PDFSource struct {
	file   *os.File
	reader *pdflib.Reader
}

// OpenPDF opens a PDF document. Failure here is fatal for the run.
func OpenPDF(path string) (*PDFSource, error) {
	f, r, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &PDFSource{file: f, reader: r}, nil
}

func (s *PDFSource) PageCount() int { return s.reader.NumPage() }

// PageContent extracts one page's text runs. A malformed page returns an
// error for that page only; the document stays usable.
func (s *PDFSource) PageContent(ctx context.Context, page int) (runs []layout.TextRun, err error) {
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	if page < 1 || page > s.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1,%d]", page, s.reader.NumPage())
	}

	// The pdf library panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			runs = nil
			err = fmt.Errorf("render page %d: %v", page, r)
		}
	}()

	p := s.reader.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}

	for _, t := range p.Content().Text {
		if t.S == "" {
			continue
		}
		runs = append(runs, layout.TextRun{
			Text:      t.S,
			Transform: layout.Transform{t.FontSize, 0, 0, t.FontSize, t.X, t.Y},
		})
	}
	return runs, nil
}

func (s *PDFSource) Close() error { return s.file.Close() }
