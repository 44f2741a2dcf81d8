package pagesource

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// OpenMarkdown decodes a Markdown file into synthetic pages. Headings map
// to oversized runs by level; thematic breaks (---) start a new page.
func OpenMarkdown(path string) (Source, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open markdown: %w", err)
	}
	return markdownSource(src), nil
}

func markdownSource(src []byte) *memSource {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var pages [][]pendingLine
	var current []pendingLine

	flushPage := func() {
		if len(current) > 0 {
			pages = append(pages, current)
			current = nil
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(nodeText(node, src))
			if title != "" {
				current = append(current, pendingLine{text: title, size: headingSize(node.Level)})
			}
		case *ast.ThematicBreak:
			flushPage()
		default:
			body := string(nodeText(n, src))
			if body != "" {
				current = append(current, pendingLine{text: body, size: bodyFontSize})
			}
		}
	}
	flushPage()

	return buildMemSource(pages)
}

// nodeText collects the raw text of a block node and its inline children.
func nodeText(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	if buf.Len() == 0 {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			buf.Write(nodeText(c, src))
		}
	}
	return bytes.TrimSpace(buf.Bytes())
}
