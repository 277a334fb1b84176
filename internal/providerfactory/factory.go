// internal/providerfactory/factory.go
// Package providerfactory builds Embedder and Generator instances from the
// application configuration, selecting the client by host type.
package providerfactory

import (
	"fmt"
	"os"

	"github.com/askdocs/askdocs/internal/appconfig"
	"github.com/askdocs/askdocs/internal/providers"
	"github.com/askdocs/askdocs/internal/providers/ollama"
	"github.com/askdocs/askdocs/internal/providers/openaicompat"
)

// apiKeyEnv is read for OpenAI-compatible hosts; local servers usually
// accept any value.
const apiKeyEnv = "OPENAI_API_KEY"

// NewEmbedder returns the embedding client for the configured embedding host.
func NewEmbedder(cfg *appconfig.Config) (providers.Embedder, error) {
	host, err := cfg.EmbeddingHostConfig()
	if err != nil {
		return nil, err
	}
	switch host.Type {
	case appconfig.HostTypeOpenAI:
		return openaicompat.New(host, cfg.EmbeddingModel, os.Getenv(apiKeyEnv), cfg.RequestTimeout()), nil
	case appconfig.HostTypeOllama, "":
		return ollama.NewEmbedder(host, cfg.EmbeddingModel, cfg.RequestTimeout()), nil
	default:
		return nil, fmt.Errorf("unsupported host type %q for embedding host %q", host.Type, host.Name)
	}
}

// NewGenerator returns the generation client for the configured generation
// host, bounded by the generation timeout.
func NewGenerator(cfg *appconfig.Config) (providers.Generator, error) {
	host, err := cfg.GenerationHostConfig()
	if err != nil {
		return nil, err
	}
	switch host.Type {
	case appconfig.HostTypeOpenAI:
		return openaicompat.New(host, cfg.GenerationModel, os.Getenv(apiKeyEnv), cfg.GenerationTimeout()), nil
	case appconfig.HostTypeOllama, "":
		return ollama.NewGenerator(host, cfg.GenerationModel, cfg.GenerationTimeout()), nil
	default:
		return nil, fmt.Errorf("unsupported host type %q for generation host %q", host.Type, host.Name)
	}
}
