package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/structure"
)

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunkText_ExactOverlap(t *testing.T) {
	cfg := Config{Size: 10, Overlap: 3}
	chunks := ChunkText(numberedWords(25), cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 0; i < len(chunks)-1; i++ {
		cur := strings.Fields(chunks[i].Text)
		next := strings.Fields(chunks[i+1].Text)
		tail := cur[len(cur)-cfg.Overlap:]
		head := next[:cfg.Overlap]
		for j := range tail {
			if tail[j] != head[j] {
				t.Errorf("chunks %d/%d: overlap word %d mismatch: %q vs %q",
					i, i+1, j, tail[j], head[j])
			}
		}
	}
}

func TestChunkText_DeoverlappedUnionReconstructsInput(t *testing.T) {
	for _, tc := range []struct{ n, size, overlap int }{
		{25, 10, 3},
		{100, 7, 2},
		{9, 10, 3},  // fits single window
		{10, 10, 9}, // step of 1
	} {
		cfg := Config{Size: tc.size, Overlap: tc.overlap}
		original := numberedWords(tc.n)
		chunks := ChunkText(original, cfg)

		var rebuilt []string
		for i, c := range chunks {
			words := strings.Fields(c.Text)
			if i == 0 {
				rebuilt = append(rebuilt, words...)
			} else {
				rebuilt = append(rebuilt, words[cfg.Overlap:]...)
			}
		}
		if got := strings.Join(rebuilt, " "); got != original {
			t.Errorf("n=%d size=%d overlap=%d: reconstruction mismatch", tc.n, tc.size, tc.overlap)
		}
	}
}

func TestChunkText_SequentialIndexAndWordCount(t *testing.T) {
	chunks := ChunkText(numberedWords(25), Config{Size: 10, Overlap: 3})
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.WordCount != len(strings.Fields(c.Text)) {
			t.Errorf("chunk %d: word count %d != actual %d", i, c.WordCount, len(strings.Fields(c.Text)))
		}
	}
	// All but the last are full windows.
	for i, c := range chunks[:len(chunks)-1] {
		if c.WordCount != 10 {
			t.Errorf("chunk %d: expected full window of 10 words, got %d", i, c.WordCount)
		}
	}
}

func TestChunkText_EmptyInput(t *testing.T) {
	if got := ChunkText("", Config{Size: 10, Overlap: 2}); got != nil {
		t.Errorf("expected no chunks for empty input, got %v", got)
	}
	if got := ChunkText("   \n\t  ", Config{Size: 10, Overlap: 2}); got != nil {
		t.Errorf("expected no chunks for whitespace input, got %v", got)
	}
}

func TestChunkText_ShortInputSingleChunk(t *testing.T) {
	chunks := ChunkText("apenas quatro palavras aqui", Config{Size: 250, Overlap: 50})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].WordCount != 4 {
		t.Errorf("expected 4 words, got %d", chunks[0].WordCount)
	}
}

func TestChunkText_InvalidOverlapNormalized(t *testing.T) {
	// Overlap >= Size would loop forever; the config must degrade instead.
	chunks := ChunkText(numberedWords(30), Config{Size: 10, Overlap: 10})
	if len(chunks) == 0 {
		t.Fatal("expected chunks despite invalid overlap")
	}
}

func TestChunkChapter_Provenance(t *testing.T) {
	chapter := &structure.ContentNode{
		Kind:  structure.KindChapter,
		Title: "Capítulo 1 Funções",
		Blocks: []*structure.ContentBlock{
			{Type: structure.TypeTeoria, Text: numberedWords(12), Page: 2},
		},
		Children: []*structure.ContentNode{
			{
				Kind:  structure.KindSection,
				Title: "1.1 Definição",
				Blocks: []*structure.ContentBlock{
					{Type: structure.TypeTeoria, Text: numberedWords(12), Page: 3},
				},
			},
		},
	}

	chunks := ChunkChapter(chapter, Config{Size: 10, Overlap: 2})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.ChapterTitle != "Capítulo 1 Funções" {
			t.Errorf("chunk %d: missing chapter title, got %q", c.Index, c.ChapterTitle)
		}
	}
	// First chunk starts in the chapter-level block.
	if chunks[0].SectionTitle != "" || chunks[0].Page != 2 {
		t.Errorf("first chunk provenance: section=%q page=%d", chunks[0].SectionTitle, chunks[0].Page)
	}
	// The last chunk starts inside the section's block.
	last := chunks[len(chunks)-1]
	if last.SectionTitle != "1.1 Definição" || last.Page != 3 {
		t.Errorf("last chunk provenance: section=%q page=%d", last.SectionTitle, last.Page)
	}
}

func TestChunkChapter_EmptyChapter(t *testing.T) {
	chapter := &structure.ContentNode{Kind: structure.KindChapter, Title: "Vazio"}
	if got := ChunkChapter(chapter, DefaultConfig()); len(got) != 0 {
		t.Errorf("expected no chunks, got %d", len(got))
	}
}
