// internal/providers/ollama/provider.go
// Package ollama implements providers.Embedder and providers.Generator
// against the native Ollama HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/askdocs/askdocs/internal/appconfig"
	"github.com/askdocs/askdocs/internal/logging"
	"github.com/askdocs/askdocs/internal/providers"
)

// Embedder requests embedding vectors from an Ollama host.
type Embedder struct {
	client  *http.Client
	host    appconfig.Host
	model   string
	timeout time.Duration
}

// NewEmbedder constructs an Embedder for the given host and model.
func NewEmbedder(host appconfig.Host, model string, timeout time.Duration) *Embedder {
	return &Embedder{
		client:  &http.Client{Timeout: timeout, Transport: &http.Transport{ForceAttemptHTTP2: false}},
		host:    host,
		model:   model,
		timeout: timeout,
	}
}

// ModelName returns the configured embedding model identifier.
func (e *Embedder) ModelName() string { return e.model }

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed requests an embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(e.model) == "" {
		return nil, errors.New("ollama: embedding model is empty")
	}
	payload := map[string]any{
		"model":  e.model,
		"prompt": text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host.URL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr("embedding request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding request failed: %s: %s: %w", resp.Status, strings.TrimSpace(string(raw)), providers.ErrUnavailable)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	// A body that does not parse carries no usable vector, same as a blank one.
	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding response: %v: %w", err, providers.ErrEmptyResponse)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response: %w", providers.ErrEmptyResponse)
	}

	vector := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}

// EmbedBatch embeds each text in order. Ollama's embeddings endpoint takes a
// single prompt per call, so the batch is a sequential loop.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed batch item %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// EnsureReady issues a bare generate request so the model is loaded into
// memory before the first real call.
func (e *Embedder) EnsureReady(ctx context.Context) error {
	return warmup(ctx, e.client, e.host, e.model, e.timeout)
}

// Generator sends prompts to an Ollama host's /api/generate endpoint.
type Generator struct {
	client  *http.Client
	host    appconfig.Host
	model   string
	timeout time.Duration
}

// NewGenerator constructs a Generator. The timeout bounds a single
// generation call; a stalled model process cannot hang a query past it.
func NewGenerator(host appconfig.Host, model string, timeout time.Duration) *Generator {
	return &Generator{
		client:  &http.Client{Timeout: timeout, Transport: &http.Transport{ForceAttemptHTTP2: false}},
		host:    host,
		model:   model,
		timeout: timeout,
	}
}

// ModelName returns the configured generation model identifier.
func (g *Generator) ModelName() string { return g.model }

type generateResponse struct {
	Model         string `json:"model"`
	Response      string `json:"response"`
	Done          bool   `json:"done"`
	TotalDuration int64  `json:"total_duration"`
	EvalCount     int    `json:"eval_count"`
}

// Generate posts the prompt and returns the completion text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(g.model) == "" {
		return "", errors.New("ollama: generation model is empty")
	}
	payload := map[string]any{
		"model":  g.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": 0.0,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}
	logging.LogRequest("ASKDOCS->LLM", g.host.Name, g.model, body)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.host.URL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", wrapTransportErr("generate request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}
	logging.LogRequest("LLM->ASKDOCS", g.host.Name, g.model, raw)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate request failed: %s: %s: %w", resp.Status, strings.TrimSpace(string(raw)), providers.ErrUnavailable)
	}

	// A body that does not parse carries no usable completion, same as a blank one.
	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse generate response: %v: %w", err, providers.ErrEmptyResponse)
	}
	answer := strings.TrimSpace(parsed.Response)
	if answer == "" {
		return "", fmt.Errorf("generate response: %w", providers.ErrEmptyResponse)
	}
	return answer, nil
}

// EnsureReady triggers a lightweight generate request to make sure the model is loaded.
func (g *Generator) EnsureReady(ctx context.Context) error {
	return warmup(ctx, g.client, g.host, g.model, g.timeout)
}

func warmup(ctx context.Context, client *http.Client, host appconfig.Host, model string, timeout time.Duration) error {
	payload := map[string]any{"model": model}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, host.URL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return wrapTransportErr("warmup request", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: warmup returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// wrapTransportErr maps transport failures onto the providers error taxonomy.
func wrapTransportErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, providers.ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w", op, providers.ErrTimeout)
	}
	return fmt.Errorf("%s: %v: %w", op, err, providers.ErrUnavailable)
}
