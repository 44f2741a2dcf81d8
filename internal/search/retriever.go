// Package search ranks indexed chunks by vector similarity and grounds
// chat answers on the retrieved context.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/ai"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/store"
)

// CandidateLimit caps how many records one query fetches for scoring.
// The search is deliberately non-exhaustive: cost beats recall here.
const CandidateLimit = 100

// chatTopK is how many chunks ground a chat answer.
const chatTopK = 3

// CandidateStore is the read-only slice of the datastore the retriever
// uses. Records are never updated in place, so this path is safe under
// unlimited concurrent callers.
type CandidateStore interface {
	QueryEmbeddings(ctx context.Context, bookID *int64, limit int) ([]store.EmbeddingRecord, error)
	CountEmbeddings(ctx context.Context, bookID *int64) (int64, error)
	CountBooks(ctx context.Context) (int64, error)
	CountQuestions(ctx context.Context) (int64, error)
}

// Result is one ranked hit.
type Result struct {
	Record     store.EmbeddingRecord `json:"record"`
	Similarity float64               `json:"similarity"`
}

// Answer is a retrieval-grounded chat response.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Result `json:"sources"`
}

// Retriever embeds queries and scores candidates by cosine similarity.
type Retriever struct {
	store     CandidateStore
	embedder  ai.Embedder
	generator ai.Generator
	log       *slog.Logger
}

func NewRetriever(st CandidateStore, embedder ai.Embedder, generator ai.Generator, log *slog.Logger) *Retriever {
	return &Retriever{store: st, embedder: embedder, generator: generator, log: log}
}

// Search returns the top-K candidates for a query, sorted by descending
// similarity. bookID optionally scopes the candidate set.
func (r *Retriever) Search(ctx context.Context, query string, bookID *int64, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = 5
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := r.store.QueryEmbeddings(ctx, bookID, CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	results := make([]Result, 0, len(candidates))
	for _, rec := range candidates {
		results = append(results, Result{
			Record:     rec,
			Similarity: CosineSimilarity(queryVec, rec.Vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Chat answers a question grounded on the top retrieved chunks of a book.
func (r *Retriever) Chat(ctx context.Context, bookID int64, question string) (Answer, error) {
	sources, err := r.Search(ctx, question, &bookID, chatTopK)
	if err != nil {
		return Answer{}, err
	}

	prompt := buildChatPrompt(question, sources)
	text, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	return Answer{Text: strings.TrimSpace(text), Sources: sources}, nil
}

// buildChatPrompt assembles the grounding context and the user question.
func buildChatPrompt(question string, sources []Result) string {
	var sb strings.Builder
	sb.WriteString("Você é um assistente de estudos. Responda à pergunta do aluno ")
	sb.WriteString("usando apenas o contexto do livro didático abaixo. ")
	sb.WriteString("Se o contexto não contém a resposta, diga que não encontrou ")
	sb.WriteString("essa informação no material.\n\n")

	sb.WriteString("Contexto:\n")
	for i, src := range sources {
		sb.WriteString(fmt.Sprintf("[%d", i+1))
		if src.Record.ChapterTitle != "" {
			sb.WriteString(" - " + src.Record.ChapterTitle)
		}
		if src.Record.Page > 0 {
			sb.WriteString(fmt.Sprintf(", página %d", src.Record.Page))
		}
		sb.WriteString("]\n")
		sb.WriteString(src.Record.ChunkText)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Pergunta: " + question + "\n\nResposta: ")
	return sb.String()
}
