package index

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/chunker"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/store"
)

type fakeStore struct {
	records map[string]store.EmbeddingRecord
	inserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]store.EmbeddingRecord{}}
}

func (f *fakeStore) FindEmbeddingByText(_ context.Context, text string) (*store.EmbeddingRecord, error) {
	if rec, ok := f.records[text]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (f *fakeStore) InsertEmbedding(_ context.Context, rec store.EmbeddingRecord) error {
	f.records[rec.ChunkText] = rec
	f.inserts++
	return nil
}

type fakeEmbedder struct {
	calls int
	fail  map[string]bool
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.calls++
	if f.fail[text] {
		return nil, errors.New("backend exploded")
	}
	return []float64{1, 0, 0}, nil
}

func testChunks(texts ...string) []chunker.Chunk {
	chunks := make([]chunker.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = chunker.Chunk{Text: t, Index: i, WordCount: 1}
	}
	return chunks
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestIndexChunks_GeneratesNewEmbeddings(t *testing.T) {
	st := newFakeStore()
	emb := &fakeEmbedder{}
	ix := New(st, emb, 0, discard())

	report := ix.IndexChunks(context.Background(), 1, testChunks("um", "dois", "três"))

	if report.Processed != 3 || report.Generated != 3 {
		t.Errorf("expected 3/3, got %d/%d", report.Processed, report.Generated)
	}
	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
	if st.inserts != 3 {
		t.Errorf("expected 3 inserts, got %d", st.inserts)
	}
}

func TestIndexChunks_ReindexIsIdempotent(t *testing.T) {
	st := newFakeStore()
	emb := &fakeEmbedder{}
	ix := New(st, emb, 0, discard())

	chunks := testChunks("um", "dois")
	ix.IndexChunks(context.Background(), 1, chunks)

	embedCallsAfterFirst := emb.calls
	report := ix.IndexChunks(context.Background(), 1, chunks)

	if report.Generated != 0 {
		t.Errorf("re-run must generate zero embeddings, got %d", report.Generated)
	}
	if report.Processed != 2 {
		t.Errorf("re-run should still process all chunks, got %d", report.Processed)
	}
	if emb.calls != embedCallsAfterFirst {
		t.Errorf("re-run must not call the embedder, calls went %d -> %d",
			embedCallsAfterFirst, emb.calls)
	}
}

func TestIndexChunks_FailureIsolatedPerChunk(t *testing.T) {
	st := newFakeStore()
	emb := &fakeEmbedder{fail: map[string]bool{"dois": true}}
	ix := New(st, emb, 0, discard())

	report := ix.IndexChunks(context.Background(), 1, testChunks("um", "dois", "três"))

	if report.Generated != 2 {
		t.Errorf("expected 2 generated despite one failure, got %d", report.Generated)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", report.Errors)
	}
	if _, ok := st.records["três"]; !ok {
		t.Error("chunk after the failing one must still be indexed")
	}
}

func TestIndexChunks_ThrottleCoversFailedCalls(t *testing.T) {
	const delay = 30 * time.Millisecond

	st := newFakeStore()
	emb := &fakeEmbedder{fail: map[string]bool{"um": true, "dois": true}}
	ix := New(st, emb, delay, discard())

	start := time.Now()
	ix.IndexChunks(context.Background(), 1, testChunks("um", "dois", "três"))
	elapsed := time.Since(start)

	// Chunks 1 and 2 failed at the backend but still count for pacing;
	// only the final chunk skips the wait.
	if elapsed < 2*delay {
		t.Errorf("expected at least %v of throttling, got %v", 2*delay, elapsed)
	}
}

func TestIndexChunks_EmptyBatch(t *testing.T) {
	ix := New(newFakeStore(), &fakeEmbedder{}, 0, discard())
	report := ix.IndexChunks(context.Background(), 1, nil)
	if report.Processed != 0 || report.Generated != 0 || len(report.Errors) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestIndexChunks_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := newFakeStore()
	ix := New(st, &fakeEmbedder{}, 0, discard())
	report := ix.IndexChunks(ctx, 1, testChunks("um", "dois"))

	if st.inserts != 0 {
		t.Errorf("expected no inserts after cancellation, got %d", st.inserts)
	}
	if len(report.Errors) == 0 {
		t.Error("expected a cancellation error in the report")
	}
}
