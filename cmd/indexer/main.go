package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/ai"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/chunker"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/config"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/index"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/pagesource"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/pipeline"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/store"
)

// Bulk ingestion: every supported document under -dir goes through the
// full pipeline, in waves sized by BATCH_SIZE.
func main() {
	dir := flag.String("dir", ".", "directory of books to ingest")
	flag.Parse()

	godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Initialize(ctx); err != nil {
		log.Error("schema initialization failed", "error", err)
		os.Exit(1)
	}

	client, err := ai.New(cfg.OllamaHost, cfg.EmbedModel, cfg.GenModel)
	if err != nil {
		log.Error("inference client setup failed", "error", err)
		os.Exit(1)
	}
	if err := client.Health(ctx); err != nil {
		log.Error("inference backend unreachable", "error", err)
		os.Exit(1)
	}

	items, err := collectBooks(*dir)
	if err != nil {
		log.Error("directory scan failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(items) == 0 {
		log.Info("no supported documents found", "dir", *dir)
		return
	}
	log.Info("starting batch ingestion", "dir", *dir, "files", len(items))

	chunkCfg := chunker.Config{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	indexer := index.New(st, client, cfg.EmbedDelay, log)
	runner := pipeline.NewRunner(st, indexer, client, chunkCfg, log)

	report := pipeline.RunBatch(ctx, runner, items, cfg.BatchSize, cfg.BatchPause, log)

	log.Info("batch ingestion finished",
		"submitted", report.Submitted,
		"completed", report.Completed,
		"partial", report.Partial,
		"failed", report.Failed,
		"questions", report.Questions,
		"chunks", report.Chunks,
		"elapsed", report.Elapsed.String(),
	)
	if report.Failed > 0 {
		os.Exit(1)
	}
}

// collectBooks walks dir for supported documents. The title defaults to
// the filename without extension.
func collectBooks(dir string) ([]pipeline.BatchItem, error) {
	var items []pipeline.BatchItem
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !pagesource.IsSupportedExtension(path) {
			return nil
		}
		base := filepath.Base(path)
		items = append(items, pipeline.BatchItem{
			Path:  path,
			Title: strings.TrimSuffix(base, filepath.Ext(base)),
		})
		return nil
	})
	return items, err
}
