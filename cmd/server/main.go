package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/ai"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/api"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/chunker"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/config"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/index"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/pipeline"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/search"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/store"
)

func main() {
	// Local .env is optional; real deployments set the environment.
	godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the database.
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

	// Initialize the inference client.
	client, err := ai.New(cfg.OllamaHost, cfg.EmbedModel, cfg.GenModel)
	if err != nil {
		log.Error("inference client setup failed", "error", err)
		os.Exit(1)
	}
	if err := client.Health(ctx); err != nil {
		// The pipeline degrades without the model; keep serving.
		log.Warn("inference backend unreachable at startup", "error", err)
	}

	// Optional retention purge at startup.
	if cfg.EmbeddingTTL > 0 {
		purged, err := st.PurgeEmbeddingsOlderThan(ctx, cfg.EmbeddingTTL)
		if err != nil {
			log.Warn("embedding purge failed", "error", err)
		} else if purged > 0 {
			log.Info("purged expired embeddings", "count", purged)
		}
	}

	// Initialize pipeline.
	chunkCfg := chunker.Config{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	indexer := index.New(st, client, cfg.EmbedDelay, log)
	runner := pipeline.NewRunner(st, indexer, client, chunkCfg, log)
	orch := pipeline.NewOrchestrator(cfg, runner, log)
	orch.Start(ctx)

	// Initialize retrieval and the HTTP server.
	retriever := search.NewRetriever(st, client, client, log)
	srv := api.NewServer(orch, retriever, client, st, client.Stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
