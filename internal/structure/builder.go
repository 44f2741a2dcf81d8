package structure

import (
	"regexp"
	"strings"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/layout"
)

var (
	// Chapter marker: chapter/unit keyword followed by a roman numeral
	// or digits, case-insensitive.
	chapterRe = regexp.MustCompile(`(?i)\b(cap[íi]tulo|unidade|chapter|unit)\s+([IVXLCDM]+|\d+)\b`)

	// Section marker: leading roman numeral or decimal numbering followed
	// by whitespace.
	sectionRe = regexp.MustCompile(`^\s*([IVXLCDM]+\.?|\d+(\.\d+)*\.?)\s+\S`)
)

// IsChapterHeading reports whether a heading line opens a chapter.
func IsChapterHeading(text string) bool { return chapterRe.MatchString(text) }

// IsSectionHeading reports whether a heading line opens a section.
func IsSectionHeading(text string) bool { return sectionRe.MatchString(text) }

// Builder accumulates a content tree from analyzed pages. Pages must be
// fed strictly in order: the current chapter/section context carries
// forward across pages.
type Builder struct {
	roots   []*ContentNode
	chapter *ContentNode
	section *ContentNode
	bucket  *ContentNode
}

func NewBuilder() *Builder {
	return &Builder{}
}

// AddPage folds a page's structural effects into the tree: heading
// candidates are evaluated in line order, then the page's remaining body
// text is appended to the most specific open context.
func (b *Builder) AddPage(page layout.Page) {
	for _, line := range page.HeadingCandidates() {
		switch {
		case IsChapterHeading(line.Text):
			b.openChapter(line.Text, page.Number)
		case IsSectionHeading(line.Text):
			b.openSection(line.Text, page.Number)
		}
	}

	body := stripControl(page.BodyText())
	if strings.TrimSpace(body) == "" {
		return
	}
	b.appendBlock(body, page.Number)
}

// Finish returns the final forest. The builder must not be reused.
func (b *Builder) Finish() []*ContentNode {
	roots := b.roots
	b.roots = nil
	b.chapter = nil
	b.section = nil
	b.bucket = nil
	return roots
}

func (b *Builder) openChapter(title string, page int) {
	node := &ContentNode{
		Kind:      KindChapter,
		Title:     strings.TrimSpace(title),
		FirstPage: page,
		LastPage:  page,
	}
	b.roots = append(b.roots, node)
	b.chapter = node
	b.section = nil
}

// openSection opens a section under the current chapter, or as a
// standalone top-level node when no chapter is open yet.
func (b *Builder) openSection(title string, page int) {
	node := &ContentNode{
		Kind:      KindSection,
		Title:     strings.TrimSpace(title),
		FirstPage: page,
		LastPage:  page,
	}
	if b.chapter != nil {
		b.chapter.Children = append(b.chapter.Children, node)
		b.chapter.LastPage = page
	} else {
		b.roots = append(b.roots, node)
	}
	b.section = node
}

func (b *Builder) appendBlock(text string, page int) {
	block := &ContentBlock{
		Type: TypeUnclassified,
		Text: text,
		Page: page,
	}
	target := b.target(page)
	target.Blocks = append(target.Blocks, block)
	target.LastPage = page
	if b.section != nil && b.chapter != nil {
		b.chapter.LastPage = page
	}
}

// target returns the most specific open context, lazily creating the
// shared unclassified bucket when no structure has appeared yet.
func (b *Builder) target(page int) *ContentNode {
	if b.section != nil {
		return b.section
	}
	if b.chapter != nil {
		return b.chapter
	}
	if b.bucket == nil {
		b.bucket = &ContentNode{
			Kind:      KindUnclassified,
			Title:     "Conteúdo não estruturado",
			FirstPage: page,
			LastPage:  page,
		}
		b.roots = append(b.roots, b.bucket)
	}
	return b.bucket
}

// stripControl removes control characters except newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
