package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/ai"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/config"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/pipeline"
	"github.com/fabricioslv/seu-estudo-app-sub001/internal/search"
)

// EmbeddingJanitor removes embeddings past the retention window.
type EmbeddingJanitor interface {
	PurgeEmbeddingsOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Server is the HTTP API for the study platform.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	retriever    *search.Retriever
	health       search.HealthChecker
	janitor      EmbeddingJanitor
	modelStats   *ai.ModelStats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, retriever *search.Retriever, health search.HealthChecker, janitor EmbeddingJanitor, modelStats *ai.ModelStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		retriever:    retriever,
		health:       health,
		janitor:      janitor,
		modelStats:   modelStats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/books/ingest", s.handleIngest)
		r.Get("/api/books/ingest/{jobID}/status", s.handleIngestStatus)

		r.Get("/api/search", s.handleSearch)
		r.Post("/api/chat", s.handleChat)
		r.Get("/api/stats", s.handleStats)

		r.Delete("/api/embeddings/expired", s.handlePurgeEmbeddings)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
