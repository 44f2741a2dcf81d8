package search

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/store"
)

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	v := []float64{0.3, -1.2, 4.5, 0.01}
	if got := CosineSimilarity(v, v); math.Abs(got-1) > 1e-9 {
		t.Errorf("cosine(v, v) = %v, want ~1", got)
	}
}

func TestCosineSimilarity_ZeroVectorIsZero(t *testing.T) {
	zero := []float64{0, 0, 0}
	v := []float64{1, 2, 3}
	if got := CosineSimilarity(zero, v); got != 0 {
		t.Errorf("cosine(0, v) = %v, want exactly 0", got)
	}
	if got := CosineSimilarity(v, zero); got != 0 {
		t.Errorf("cosine(v, 0) = %v, want exactly 0", got)
	}
	if got := CosineSimilarity(zero, zero); got != 0 {
		t.Errorf("cosine(0, 0) = %v, want exactly 0", got)
	}
}

func TestCosineSimilarity_LengthMismatchIsZero(t *testing.T) {
	if got := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}); got != 0 {
		t.Errorf("mismatched lengths should score 0, got %v", got)
	}
	if got := CosineSimilarity(nil, nil); got != 0 {
		t.Errorf("empty vectors should score 0, got %v", got)
	}
}

func TestCosineSimilarity_NeverNaN(t *testing.T) {
	cases := [][2][]float64{
		{{0, 0}, {0, 0}},
		{{1}, {0}},
		{nil, {1, 2}},
	}
	for _, c := range cases {
		if got := CosineSimilarity(c[0], c[1]); math.IsNaN(got) {
			t.Errorf("CosineSimilarity(%v, %v) is NaN", c[0], c[1])
		}
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	if got := CosineSimilarity([]float64{1, 0}, []float64{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: got %v, want 0", got)
	}
}

// fakeCandidateStore serves a fixed corpus.
type fakeCandidateStore struct {
	records []store.EmbeddingRecord
}

func (f *fakeCandidateStore) QueryEmbeddings(_ context.Context, bookID *int64, limit int) ([]store.EmbeddingRecord, error) {
	var out []store.EmbeddingRecord
	for _, rec := range f.records {
		if bookID != nil && rec.BookID != *bookID {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCandidateStore) CountEmbeddings(_ context.Context, _ *int64) (int64, error) {
	return int64(len(f.records)), nil
}
func (f *fakeCandidateStore) CountBooks(_ context.Context) (int64, error)     { return 1, nil }
func (f *fakeCandidateStore) CountQuestions(_ context.Context) (int64, error) { return 0, nil }

// unitEmbedder maps known texts to fixed vectors.
type unitEmbedder struct {
	vectors map[string][]float64
}

func (u *unitEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if v, ok := u.vectors[text]; ok {
		return v, nil
	}
	return []float64{1, 0, 0}, nil
}

type echoGenerator struct{ prompt string }

func (e *echoGenerator) Generate(_ context.Context, prompt string) (string, error) {
	e.prompt = prompt
	return "resposta gerada", nil
}

func corpus() *fakeCandidateStore {
	return &fakeCandidateStore{records: []store.EmbeddingRecord{
		{ID: 1, BookID: 1, ChunkText: "paralelo", Vector: []float64{1, 0, 0}},
		{ID: 2, BookID: 1, ChunkText: "quase", Vector: []float64{0.9, 0.1, 0}},
		{ID: 3, BookID: 1, ChunkText: "ortogonal", Vector: []float64{0, 1, 0}},
		{ID: 4, BookID: 2, ChunkText: "outro livro", Vector: []float64{1, 0, 0}},
		{ID: 5, BookID: 1, ChunkText: "degenerado", Vector: []float64{0, 0}},
	}}
}

func newTestRetriever(st CandidateStore, gen *echoGenerator) *Retriever {
	return NewRetriever(st, &unitEmbedder{}, gen, slog.New(slog.DiscardHandler))
}

func TestSearch_SortedDescendingAndBounded(t *testing.T) {
	r := newTestRetriever(corpus(), nil)

	results, err := r.Search(context.Background(), "consulta", nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Errorf("results not sorted: %v > %v at %d",
				results[i].Similarity, results[i-1].Similarity, i)
		}
	}
	if results[0].Record.ChunkText != "paralelo" && results[0].Record.ChunkText != "outro livro" {
		t.Errorf("expected a parallel vector first, got %q", results[0].Record.ChunkText)
	}
}

func TestSearch_TopKLargerThanCorpus(t *testing.T) {
	r := newTestRetriever(corpus(), nil)
	results, err := r.Search(context.Background(), "consulta", nil, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 5 {
		t.Errorf("expected all 5 corpus records, got %d", len(results))
	}
}

func TestSearch_BookScope(t *testing.T) {
	r := newTestRetriever(corpus(), nil)
	bookID := int64(2)
	results, err := r.Search(context.Background(), "consulta", &bookID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Record.BookID != 2 {
		t.Errorf("expected only book 2 records, got %+v", results)
	}
}

func TestSearch_DegenerateVectorScoresZero(t *testing.T) {
	r := newTestRetriever(corpus(), nil)
	results, err := r.Search(context.Background(), "consulta", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, res := range results {
		if res.Record.ChunkText == "degenerado" && res.Similarity != 0 {
			t.Errorf("length-mismatched record must score 0, got %v", res.Similarity)
		}
	}
}

func TestChat_GroundsPromptOnTopThree(t *testing.T) {
	gen := &echoGenerator{}
	r := newTestRetriever(corpus(), gen)

	answer, err := r.Chat(context.Background(), 1, "qual é a resposta?")
	if err != nil {
		t.Fatal(err)
	}
	if answer.Text != "resposta gerada" {
		t.Errorf("unexpected answer %q", answer.Text)
	}
	if len(answer.Sources) != 3 {
		t.Errorf("expected 3 grounding sources, got %d", len(answer.Sources))
	}
	if !strings.Contains(gen.prompt, "qual é a resposta?") {
		t.Error("prompt must carry the user question")
	}
	if !strings.Contains(gen.prompt, "paralelo") {
		t.Error("prompt must carry retrieved chunk text")
	}
}

func TestStats_ReportsModelHealth(t *testing.T) {
	r := newTestRetriever(corpus(), nil)
	st, err := r.Stats(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Embeddings != 5 || st.Books != 1 {
		t.Errorf("unexpected counts: %+v", st)
	}
	if !st.ModelHealthy {
		t.Error("nil health checker should report healthy")
	}
}
