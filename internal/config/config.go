// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Postgres
	DatabaseURL string

	// API auth
	APIKey string

	// Ollama inference backend
	OllamaHost string
	EmbedModel string
	GenModel   string

	// Chunking (words)
	ChunkSize    int
	ChunkOverlap int

	// Indexing throttle between embedding calls
	EmbedDelay time.Duration

	// Ingestion workers
	WorkerCount  int
	MaxQueueSize int

	// Batch document processing
	BatchSize  int
	BatchPause time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Job state retention
	JobTTL time.Duration

	// Embedding retention; zero keeps records forever
	EmbeddingTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		APIKey:      os.Getenv("API_KEY"),

		OllamaHost: envOr("OLLAMA_HOST", "http://localhost:11434"),
		EmbedModel: envOr("EMBED_MODEL", "nomic-embed-text"),
		GenModel:   envOr("GEN_MODEL", "llama3.1"),

		ChunkSize:    envInt("CHUNK_SIZE", 250),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 50),

		EmbedDelay: envDuration("EMBED_DELAY", 200*time.Millisecond),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		BatchSize:  envInt("BATCH_SIZE", 4),
		BatchPause: envDuration("BATCH_PAUSE", 2*time.Second),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 104857600), // 100MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		EmbeddingTTL: envDuration("EMBEDDING_TTL", 0),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 250
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 104857600
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
