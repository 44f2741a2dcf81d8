package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}

	var bookID *int64
	if v := r.URL.Query().Get("book_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, "book_id must be an integer", http.StatusBadRequest)
			return
		}
		bookID = &id
	}

	topK := 0
	if v := r.URL.Query().Get("k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			topK = n
		}
	}

	results, err := s.retriever.Search(r.Context(), query, bookID, topK)
	if err != nil {
		jsonError(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"query":   query,
		"results": results,
	})
}

type chatRequest struct {
	BookID   int64  `json:"book_id"`
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}
	if req.BookID <= 0 {
		jsonError(w, "book_id is required", http.StatusBadRequest)
		return
	}

	answer, err := s.retriever.Chat(r.Context(), req.BookID, req.Question)
	if err != nil {
		jsonError(w, "chat failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(answer)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.retriever.Stats(r.Context(), s.health)
	if err != nil {
		jsonError(w, "stats failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	payload := map[string]any{
		"stats":       stats,
		"queue_depth": s.orchestrator.QueueDepth(),
	}
	if s.modelStats != nil {
		payload["model_latency"] = s.modelStats.Snapshot()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) handlePurgeEmbeddings(w http.ResponseWriter, r *http.Request) {
	if s.cfg.EmbeddingTTL <= 0 {
		jsonError(w, "embedding retention is disabled", http.StatusConflict)
		return
	}

	purged, err := s.janitor.PurgeEmbeddingsOlderThan(r.Context(), s.cfg.EmbeddingTTL)
	if err != nil {
		jsonError(w, "purge failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"purged": purged})
}
