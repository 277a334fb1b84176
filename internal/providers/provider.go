// internal/providers/provider.go

// Package providers defines the interfaces for talking to local model runtimes.
// It abstracts over the native Ollama HTTP API and OpenAI-compatible servers
// so the pipeline can embed text and generate completions without caring
// which runtime is behind the URL.
package providers

import (
	"context"
	"errors"
)

// Failure kinds for generation and embedding calls. The pipeline matches
// these with errors.Is to decide retry behavior and user-facing messages.
var (
	// ErrUnavailable means the endpoint refused the connection or is unreachable.
	ErrUnavailable = errors.New("model endpoint unavailable")
	// ErrTimeout means the call exceeded its deadline.
	ErrTimeout = errors.New("model call timed out")
	// ErrEmptyResponse means the endpoint answered with no usable text.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Embedder maps text to a fixed-dimensional vector using a pretrained model.
// Implementations must be deterministic for a fixed model version and must
// return batch results in input order.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text, same order as the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// ModelName identifies the embedding model, recorded in the store so a
	// model mismatch can be detected instead of producing garbage scores.
	ModelName() string
}

// Generator sends a fully assembled prompt to a language model runtime and
// returns the completion text. No templating happens here; retries belong
// to the orchestrator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// Warmer is implemented by providers that can preload their model so the
// first real call does not pay the cold-start cost.
type Warmer interface {
	EnsureReady(ctx context.Context) error
}
