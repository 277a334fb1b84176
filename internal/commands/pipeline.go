// internal/commands/pipeline.go
package askdocs

import (
	"fmt"

	"github.com/askdocs/askdocs/internal/providerfactory"
	"github.com/askdocs/askdocs/internal/rag"
)

// buildPipeline wires store, embedder, and generator from the loaded
// configuration into a ready pipeline.
func buildPipeline() (*rag.Pipeline, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}

	store, err := rag.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	embedder, err := providerfactory.NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	generator, err := providerfactory.NewGenerator(cfg)
	if err != nil {
		return nil, err
	}

	return rag.NewPipeline(cfg, embedder, generator, store), nil
}
