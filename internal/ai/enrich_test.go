package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type scriptedGenerator struct {
	output string
	err    error
	prompt string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.output, g.err
}

func TestParseConceptList(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    []string
		wantErr bool
	}{
		{
			name:   "bare array",
			output: `["cinemática", "velocidade média"]`,
			want:   []string{"cinemática", "velocidade média"},
		},
		{
			name:   "array wrapped in prose",
			output: "Claro! Aqui estão os conceitos:\n[\"força\", \"massa\"]\nEspero ter ajudado.",
			want:   []string{"força", "massa"},
		},
		{
			name:   "empty array",
			output: "[]",
			want:   []string{},
		},
		{
			name:    "no array at all",
			output:  "Os conceitos principais são força e massa.",
			wantErr: true,
		},
		{
			name:    "brackets but invalid json",
			output:  "[força, massa]",
			wantErr: true,
		},
		{
			name:    "array of objects",
			output:  `[{"conceito": "força"}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseConceptList(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("concept %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestExtractConceptsMalformedOutputIsEmpty(t *testing.T) {
	gen := &scriptedGenerator{output: "sem JSON aqui"}
	got := ExtractConcepts(context.Background(), gen, slog.New(slog.DiscardHandler), "Capítulo 1", "corpo")
	if got != nil {
		t.Fatalf("expected nil concepts for malformed output, got %v", got)
	}
}

func TestExtractConceptsGeneratorErrorIsEmpty(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("model exploded")}
	got := ExtractConcepts(context.Background(), gen, slog.New(slog.DiscardHandler), "Capítulo 1", "corpo")
	if got != nil {
		t.Fatalf("expected nil concepts on generator error, got %v", got)
	}
}

func TestSummarizeTrimsAndForwardsTitle(t *testing.T) {
	gen := &scriptedGenerator{output: "  Resumo do capítulo.  \n"}
	sum, err := Summarize(context.Background(), gen, "Capítulo 2 Termologia", "corpo do capítulo")
	if err != nil {
		t.Fatal(err)
	}
	if sum != "Resumo do capítulo." {
		t.Errorf("expected trimmed summary, got %q", sum)
	}
	if !strings.Contains(gen.prompt, "Capítulo 2 Termologia") {
		t.Error("expected chapter title in prompt")
	}
	if !strings.Contains(gen.prompt, "corpo do capítulo") {
		t.Error("expected chapter body in prompt")
	}
}

func TestTruncateBoundsInput(t *testing.T) {
	long := strings.Repeat("a", maxEnrichInput+100)
	if got := truncate(long, maxEnrichInput); len(got) != maxEnrichInput {
		t.Errorf("expected %d bytes, got %d", maxEnrichInput, len(got))
	}
	if got := truncate("curto", maxEnrichInput); got != "curto" {
		t.Errorf("expected passthrough, got %q", got)
	}
}
