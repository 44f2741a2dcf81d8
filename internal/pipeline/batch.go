package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// BatchReport aggregates the outcome of a directory ingestion run.
type BatchReport struct {
	Submitted int
	Completed int64
	Partial   int64
	Failed    int64
	Questions int64
	Chunks    int64
	Elapsed   time.Duration
}

// BatchItem is one file scheduled for a batch run.
type BatchItem struct {
	Path  string
	Title string
}

func newBatchID() string { return uuid.NewString() }

// RunBatch processes files in waves of batchSize with a pause between
// waves, so a large shelf of books does not saturate the embedding model.
// Files inside a wave run concurrently.
func RunBatch(ctx context.Context, runner *Runner, items []BatchItem, batchSize int, pause time.Duration, log *slog.Logger) BatchReport {
	if batchSize < 1 {
		batchSize = 1
	}
	start := time.Now()

	var completed, partial, failed, questions, chunks int64
	for lo := 0; lo < len(items); lo += batchSize {
		if ctx.Err() != nil {
			break
		}
		hi := min(lo+batchSize, len(items))

		var wg sync.WaitGroup
		for _, item := range items[lo:hi] {
			wg.Add(1)
			go func() {
				defer wg.Done()
				job := NewJob(newBatchID(), item.Path, item.Path, item.Title)
				runner.Process(ctx, job)

				snap := job.Snapshot()
				switch snap.Status {
				case StatusCompleted:
					atomic.AddInt64(&completed, 1)
				case StatusPartial:
					atomic.AddInt64(&partial, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				atomic.AddInt64(&questions, int64(snap.Progress.Questions))
				atomic.AddInt64(&chunks, int64(snap.Progress.ChunksIndexed))
				log.Info("batch item finished",
					"file", item.Path,
					"status", snap.Status,
					"questions", snap.Progress.Questions,
					"chunks", snap.Progress.ChunksIndexed)
			}()
		}
		wg.Wait()

		if hi < len(items) && pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(pause):
			}
		}
	}

	return BatchReport{
		Submitted: len(items),
		Completed: atomic.LoadInt64(&completed),
		Partial:   atomic.LoadInt64(&partial),
		Failed:    atomic.LoadInt64(&failed),
		Questions: atomic.LoadInt64(&questions),
		Chunks:    atomic.LoadInt64(&chunks),
		Elapsed:   time.Since(start),
	}
}
