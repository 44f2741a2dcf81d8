package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/ai"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/chunker"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/classify"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/index"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/layout"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/pagesource"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/question"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/structure"
)

// Datastore is the slice of the store the runner persists into.
type Datastore interface {
	InsertBook(ctx context.Context, title, source string) (int64, error)
	InsertChapter(ctx context.Context, bookID int64, title, summary string, concepts []string, firstPage, lastPage int) (int64, error)
	InsertSection(ctx context.Context, bookID int64, chapterID *int64, title string, firstPage, lastPage int) (int64, error)
	InsertContent(ctx context.Context, bookID int64, chapterID, sectionID *int64, blockType, body string, page int) (int64, error)
	InsertQuestion(ctx context.Context, contentID int64, statement string, alternatives map[string]string, page int) (int64, error)
	InsertAnswerKey(ctx context.Context, questionID int64, letter string) error
}

// Runner processes one document end to end: structure, classify, extract,
// persist, chunk and index. Page order is strict — the builder carries
// chapter/section context across pages.
type Runner struct {
	store     Datastore
	indexer   *index.Indexer
	generator ai.Generator // nil disables AI enrichment
	chunkCfg  chunker.Config
	log       *slog.Logger
}

func NewRunner(st Datastore, ix *index.Indexer, gen ai.Generator, chunkCfg chunker.Config, log *slog.Logger) *Runner {
	return &Runner{
		store:     st,
		indexer:   ix,
		generator: gen,
		chunkCfg:  chunkCfg,
		log:       log,
	}
}

// Process runs the full ingestion for a job. It never panics out of a
// document: the one fatal condition is a document that cannot be opened,
// which fails the job with a captured message.
func (r *Runner) Process(ctx context.Context, job *Job) {
	log := r.log.With("job_id", job.ID, "file", job.Filename())

	src, err := pagesource.ForFile(job.Path())
	if err != nil {
		log.Error("cannot open document", "error", err)
		job.AddError(fmt.Sprintf("open: %s", err))
		job.SetStatus(StatusFailed, "open")
		return
	}
	defer src.Close()

	// Phase 1: sequential structuring. The next page is not analyzed
	// until the current one's structural effects are folded in.
	job.SetStatus(StatusStructuring, "structuring")
	total := src.PageCount()
	job.SetTotalPages(total)

	builder := structure.NewBuilder()
	for pageNum := 1; pageNum <= total; pageNum++ {
		runs, err := src.PageContent(ctx, pageNum)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				job.AddError(fmt.Sprintf("page %d: %s", pageNum, err))
				job.SetStatus(StatusFailed, "structuring")
				return
			}
			// One failed page does not abort the document.
			log.Warn("page render failed", "page", pageNum, "error", err)
			job.AddError(fmt.Sprintf("page %d: %s", pageNum, err))
			job.IncrPagesProcessed()
			continue
		}
		builder.AddPage(layout.AnalyzePage(pageNum, runs))
		job.IncrPagesProcessed()
	}
	roots := builder.Finish()
	log.Info("structured document", "pages", total, "roots", len(roots))

	// Phase 2: persist book, tree, questions.
	job.SetStatus(StatusPersisting, "persisting")
	bookID, err := r.store.InsertBook(ctx, job.Title, job.Filename())
	if err != nil {
		log.Error("book insert failed", "error", err)
		job.AddError(fmt.Sprintf("book: %s", err))
		job.SetStatus(StatusFailed, "persisting")
		return
	}
	job.SetBookID(bookID)

	for _, root := range roots {
		if err := r.persistNode(ctx, job, bookID, root); err != nil {
			log.Error("persist node failed", "node", root.Title, "error", err)
			job.AddError(fmt.Sprintf("node %q: %s", root.Title, err))
		}
	}

	// Phase 3: chunk and index per root node.
	job.SetStatus(StatusIndexing, "indexing")
	for _, root := range roots {
		chunks := chunker.ChunkChapter(root, r.chunkCfg)
		if len(chunks) == 0 {
			continue
		}
		report := r.indexer.IndexChunks(ctx, bookID, chunks)
		job.AddIndexed(report.Processed, report.Generated)
		for _, e := range report.Errors {
			job.AddError(e)
		}
	}

	switch {
	case job.ErrorCount() == 0:
		job.SetStatus(StatusCompleted, "done")
	case job.Snapshot().Progress.Blocks > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "done")
	}
}

// persistNode stores one root node and everything under it.
func (r *Runner) persistNode(ctx context.Context, job *Job, bookID int64, node *structure.ContentNode) error {
	switch node.Kind {
	case structure.KindChapter:
		summary, concepts := r.enrichChapter(ctx, node)
		chapterID, err := r.store.InsertChapter(ctx, bookID, node.Title, summary, concepts, node.FirstPage, node.LastPage)
		if err != nil {
			return err
		}
		job.AddStructure(1, 0, 0, 0)
		if err := r.persistBlocks(ctx, job, bookID, &chapterID, nil, node.Blocks); err != nil {
			return err
		}
		for _, child := range node.Children {
			sectionID, err := r.store.InsertSection(ctx, bookID, &chapterID, child.Title, child.FirstPage, child.LastPage)
			if err != nil {
				return err
			}
			job.AddStructure(0, 1, 0, 0)
			if err := r.persistBlocks(ctx, job, bookID, &chapterID, &sectionID, child.Blocks); err != nil {
				return err
			}
		}
		return nil

	case structure.KindSection:
		// Standalone section: no parent chapter existed.
		sectionID, err := r.store.InsertSection(ctx, bookID, nil, node.Title, node.FirstPage, node.LastPage)
		if err != nil {
			return err
		}
		job.AddStructure(0, 1, 0, 0)
		return r.persistBlocks(ctx, job, bookID, nil, &sectionID, node.Blocks)

	default:
		// Unclassified bucket: blocks hang directly off the book.
		return r.persistBlocks(ctx, job, bookID, nil, nil, node.Blocks)
	}
}

func (r *Runner) persistBlocks(ctx context.Context, job *Job, bookID int64, chapterID, sectionID *int64, blocks []*structure.ContentBlock) error {
	for _, block := range blocks {
		blockType := classify.Classify(block.Text)
		contentID, err := r.store.InsertContent(ctx, bookID, chapterID, sectionID, string(blockType), block.Text, block.Page)
		if err != nil {
			return err
		}
		job.AddStructure(0, 0, 1, 0)

		if !classify.IsQuestionType(blockType) {
			continue
		}
		q := question.Extract(block.Text)
		questionID, err := r.store.InsertQuestion(ctx, contentID, q.Statement, q.Alternatives, block.Page)
		if err != nil {
			job.AddError(fmt.Sprintf("question on page %d: %s", block.Page, err))
			continue
		}
		job.AddStructure(0, 0, 0, 1)

		// An answer-key row exists only when an explicit answer was found.
		if q.CorrectAnswer != "" {
			if err := r.store.InsertAnswerKey(ctx, questionID, q.CorrectAnswer); err != nil {
				job.AddError(fmt.Sprintf("answer key on page %d: %s", block.Page, err))
			}
		}
	}
	return nil
}

// enrichChapter generates an optional summary and concept list. A missing
// or failing model degrades to empty enrichment; structuring never fails
// because of it. Retryable model errors get the backoff treatment.
func (r *Runner) enrichChapter(ctx context.Context, node *structure.ContentNode) (string, []string) {
	if r.generator == nil {
		return "", nil
	}
	body := chapterText(node)
	if body == "" {
		return "", nil
	}

	var summary string
	var err error
	for attempt := range MaxRetries {
		summary, err = ai.Summarize(ctx, r.generator, node.Title, body)
		if err == nil || !ai.IsRetryable(err) {
			break
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return "", nil
		}
	}
	if err != nil {
		r.log.Warn("chapter summary skipped", "chapter", node.Title, "error", err)
		summary = ""
	}

	concepts := ai.ExtractConcepts(ctx, r.generator, r.log, node.Title, body)
	return summary, concepts
}

func chapterText(node *structure.ContentNode) string {
	var parts []string
	node.Walk(func(_ *structure.ContentNode, block *structure.ContentBlock) {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	})
	return strings.Join(parts, "\n")
}
