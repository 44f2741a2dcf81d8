package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// maxEnrichInput bounds how much chapter text goes into an enrichment
// prompt.
const maxEnrichInput = 6000

// Summarize asks the generation model for a short chapter summary.
func Summarize(ctx context.Context, g Generator, title, body string) (string, error) {
	prompt := fmt.Sprintf(
		"Resuma em até três frases o conteúdo do capítulo %q de um livro didático:\n\n%s\n\nResumo:",
		title, truncate(body, maxEnrichInput))
	out, err := g.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ExtractConcepts asks the model for the chapter's key concepts as a JSON
// array. Unparsable output is logged and replaced with an empty list —
// never an error.
func ExtractConcepts(ctx context.Context, g Generator, log *slog.Logger, title, body string) []string {
	prompt := fmt.Sprintf(
		"Liste os conceitos-chave do capítulo %q abaixo. "+
			"Responda somente com um array JSON de strings, por exemplo [\"conceito A\", \"conceito B\"].\n\n%s",
		title, truncate(body, maxEnrichInput))

	out, err := g.Generate(ctx, prompt)
	if err != nil {
		log.Warn("concept extraction failed", "chapter", title, "error", err)
		return nil
	}

	concepts, err := parseConceptList(out)
	if err != nil {
		log.Warn("malformed concept list from model", "chapter", title, "error", err)
		return nil
	}
	return concepts
}

// parseConceptList tolerates prose around the JSON array but nothing less
// than a valid array inside it.
func parseConceptList(out string) ([]string, error) {
	start := strings.Index(out, "[")
	end := strings.LastIndex(out, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array in model output")
	}
	var concepts []string
	if err := json.Unmarshal([]byte(out[start:end+1]), &concepts); err != nil {
		return nil, fmt.Errorf("decode concept array: %w", err)
	}
	return concepts, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
