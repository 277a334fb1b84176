// internal/providers/openaicompat/provider.go
// Package openaicompat implements providers.Embedder and providers.Generator
// against OpenAI-compatible servers (llama.cpp server, vLLM, LocalAI).
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/askdocs/askdocs/internal/appconfig"
	"github.com/askdocs/askdocs/internal/providers"
)

// Client wraps a go-openai client pointed at a local OpenAI-compatible host.
// The same client serves both embedding and generation calls.
type Client struct {
	api     *openai.Client
	host    appconfig.Host
	model   string
	timeout time.Duration
}

// New constructs a Client for the given host and model. Local servers
// usually ignore the API key, but go-openai requires one to be set.
func New(host appconfig.Host, model, apiKey string, timeout time.Duration) *Client {
	if strings.TrimSpace(apiKey) == "" {
		apiKey = "local"
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(host.URL, "/") + "/v1"
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		host:    host,
		model:   model,
		timeout: timeout,
	}
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string { return c.model }

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts in one request; the API preserves input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: texts,
	})
	if err != nil {
		return nil, wrapAPIErr("embeddings request", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, datum := range resp.Data {
		if len(datum.Embedding) == 0 {
			return nil, fmt.Errorf("embeddings response item %d: %w", i, providers.ErrEmptyResponse)
		}
		vectors[i] = datum.Embedding
	}
	return vectors, nil
}

// Generate sends the prompt as a single user message and returns the completion.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", wrapAPIErr("chat completion request", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: %w", providers.ErrEmptyResponse)
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("chat completion: %w", providers.ErrEmptyResponse)
	}
	return answer, nil
}

func wrapAPIErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, providers.ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w", op, providers.ErrTimeout)
	}
	return fmt.Errorf("%s: %v: %w", op, err, providers.ErrUnavailable)
}
