// Package index deduplicates and embeds chunks, persisting vectors with
// provenance.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/ai"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/chunker"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/store"
)

// EmbeddingStore is the slice of the datastore the indexer needs.
type EmbeddingStore interface {
	FindEmbeddingByText(ctx context.Context, chunkText string) (*store.EmbeddingRecord, error)
	InsertEmbedding(ctx context.Context, rec store.EmbeddingRecord) error
}

// Report aggregates one indexing batch.
type Report struct {
	Processed int      `json:"processed"`
	Generated int      `json:"generated"`
	Errors    []string `json:"errors"`
}

// Indexer embeds chunks and persists the vectors. Re-indexing an
// unchanged chunk set generates nothing: chunk text is the dedup key.
type Indexer struct {
	store    EmbeddingStore
	embedder ai.Embedder
	delay    time.Duration
	log      *slog.Logger
}

// New builds an indexer. delay throttles calls to the inference backend;
// zero disables throttling.
func New(st EmbeddingStore, embedder ai.Embedder, delay time.Duration, log *slog.Logger) *Indexer {
	return &Indexer{store: st, embedder: embedder, delay: delay, log: log}
}

// IndexChunks processes chunks sequentially with per-chunk error
// isolation: a failed chunk lands in the report's error list and the
// batch continues.
func (ix *Indexer) IndexChunks(ctx context.Context, bookID int64, chunks []chunker.Chunk) Report {
	var report Report

	for i, chunk := range chunks {
		select {
		case <-ctx.Done():
			report.Errors = append(report.Errors, fmt.Sprintf("chunk %d: %s", i, ctx.Err()))
			return report
		default:
		}

		report.Processed++

		existing, err := ix.store.FindEmbeddingByText(ctx, chunk.Text)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("chunk %d lookup: %s", i, err))
			continue
		}
		if existing != nil {
			continue
		}

		vector, err := ix.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			ix.log.Warn("embedding failed", "chunk", i, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("chunk %d embed: %s", i, err))
			// The backend was still called; the throttle applies even more
			// when it is failing.
			ix.throttle(ctx, i, len(chunks))
			continue
		}

		rec := store.EmbeddingRecord{
			BookID:       bookID,
			ContentID:    chunk.ContentID,
			ChunkText:    chunk.Text,
			Vector:       vector,
			ChapterTitle: chunk.ChapterTitle,
			Page:         chunk.Page,
			WordCount:    chunk.WordCount,
		}
		if err := ix.store.InsertEmbedding(ctx, rec); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("chunk %d insert: %s", i, err))
			ix.throttle(ctx, i, len(chunks))
			continue
		}
		report.Generated++

		ix.throttle(ctx, i, len(chunks))
	}

	return report
}

// throttle paces calls to the inference backend between chunks. The last
// chunk of a batch never waits.
func (ix *Indexer) throttle(ctx context.Context, i, total int) {
	if ix.delay > 0 && i < total-1 {
		select {
		case <-time.After(ix.delay):
		case <-ctx.Done():
		}
	}
}
