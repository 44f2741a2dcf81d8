package pagesource

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// paragraphsPerPage slices a DOCX body into synthetic pages, since the
// format has no fixed pagination.
const paragraphsPerPage = 50

// OpenDOCX decodes a .docx file eagerly into synthetic pages. Heading
// styles become oversized runs so the layout analyzer flags them.
func OpenDOCX(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat docx: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var (
		pages     [][]pendingLine
		current   []pendingLine
		paraCount int
	)
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		size := headingSize(docxHeadingLevel(para))
		current = append(current, pendingLine{text: text, size: size})
		paraCount++
		if paraCount%paragraphsPerPage == 0 {
			pages = append(pages, current)
			current = nil
		}
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}

	return buildMemSource(pages), nil
}

type pendingLine struct {
	text string
	size float64
}

func buildMemSource(pages [][]pendingLine) *memSource {
	src := &memSource{}
	for _, lines := range pages {
		b := newPageBuilder()
		for _, l := range lines {
			b.addLine(l.text, l.size)
		}
		if !b.empty() {
			src.pages = append(src.pages, b.runs)
		}
	}
	return src
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	for level := 1; level <= 6; level++ {
		if style == fmt.Sprintf("heading%d", level) {
			return level
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				sb.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
