// Package ai wraps the Ollama inference backend behind narrow embedding
// and generation interfaces.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Generator produces free text from a prompt. The model is opaque.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client talks to an Ollama server for both embeddings and generation.
type Client struct {
	api        *api.Client
	embedModel string
	genModel   string
	timeout    time.Duration

	// Stats collects per-operation call latencies.
	Stats *ModelStats
}

// New builds a client for the given Ollama host URL.
func New(host, embedModel, genModel string) (*Client, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	return &Client{
		api:        api.NewClient(base, http.DefaultClient),
		embedModel: embedModel,
		genModel:   genModel,
		timeout:    60 * time.Second,
		Stats:      NewModelStats(time.Hour),
	}, nil
}

// Embed returns the embedding vector for a text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  c.embedModel,
		Prompt: text,
	})
	c.Stats.Record("embed", time.Since(start))
	if err != nil {
		return nil, classify("embed", err)
	}
	return resp.Embedding, nil
}

// Generate runs the generation model over a prompt and returns the
// accumulated response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream := false
	var sb strings.Builder
	start := time.Now()
	err := c.api.Generate(ctx, &api.GenerateRequest{
		Model:  c.genModel,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": 0.1,
		},
	}, func(resp api.GenerateResponse) error {
		_, err := sb.WriteString(resp.Response)
		return err
	})
	c.Stats.Record("generate", time.Since(start))
	if err != nil {
		return "", classify("generate", err)
	}
	return sb.String(), nil
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.api.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return nil
}

// EmbedModel returns the configured embedding model name.
func (c *Client) EmbedModel() string { return c.embedModel }

// GenModel returns the configured generation model name.
func (c *Client) GenModel() string { return c.genModel }

// classify maps transport failures to the typed errors the pipeline
// understands.
func classify(op string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"):
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "too many requests"):
		return &RetryableError{Op: op, Message: msg}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
