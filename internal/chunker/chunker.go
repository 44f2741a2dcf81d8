// Package chunker slices aggregated text into fixed-size overlapping word
// windows with provenance for indexing.
package chunker

import (
	"strings"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/structure"
)

// Config controls chunking behavior. Overlap must be smaller than Size.
type Config struct {
	Size    int // window size in words
	Overlap int // words shared between consecutive windows
}

// DefaultConfig returns sensible defaults for textbook prose.
func DefaultConfig() Config {
	return Config{Size: 250, Overlap: 50}
}

func (c Config) normalized() Config {
	if c.Size <= 0 {
		c.Size = 250
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	if c.Overlap >= c.Size {
		c.Overlap = c.Size / 4
	}
	return c
}

// Chunk is one bounded text window plus its provenance.
type Chunk struct {
	Text         string
	Index        int // sequential within the source text
	ChapterTitle string
	SectionTitle string
	Page         int
	WordCount    int
	ContentID    *int64 // source content row, when known
}

// ChunkText splits a text body into overlapping word windows. Windows
// start at 0 and advance by Size−Overlap until the words run out, so
// consecutive windows share exactly Overlap words and the final window may
// be shorter. Empty input yields no chunks.
func ChunkText(text string, cfg Config) []Chunk {
	cfg = cfg.normalized()

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := cfg.Size - cfg.Overlap
	var chunks []Chunk
	for start := 0; start < len(words); start += step {
		end := start + cfg.Size
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]
		chunks = append(chunks, Chunk{
			Text:      strings.Join(window, " "),
			Index:     len(chunks),
			WordCount: len(window),
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}

// ChunkChapter aggregates a chapter node's text (its own blocks plus its
// sections') and chunks it with chapter/section/page provenance. The
// section title and page attached to a chunk are those of the block where
// the window starts.
func ChunkChapter(chapter *structure.ContentNode, cfg Config) []Chunk {
	type span struct {
		wordStart int
		section   string
		page      int
	}

	var (
		spans []span
		words []string
	)
	chapter.Walk(func(node *structure.ContentNode, block *structure.ContentBlock) {
		blockWords := strings.Fields(block.Text)
		if len(blockWords) == 0 {
			return
		}
		section := ""
		if node.Kind == structure.KindSection {
			section = node.Title
		}
		spans = append(spans, span{wordStart: len(words), section: section, page: block.Page})
		words = append(words, blockWords...)
	})

	chunks := ChunkText(strings.Join(words, " "), cfg)

	cfg = cfg.normalized()
	step := cfg.Size - cfg.Overlap
	for i := range chunks {
		start := i * step
		for _, sp := range spans {
			if sp.wordStart <= start {
				chunks[i].SectionTitle = sp.section
				chunks[i].Page = sp.page
			}
		}
		chunks[i].ChapterTitle = chapter.Title
	}
	return chunks
}
