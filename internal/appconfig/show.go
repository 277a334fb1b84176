// internal/appconfig/show.go
package appconfig

import (
	"fmt"
	"io"
	"strings"
)

// ShowConfig writes the effective configuration to w in a readable key/value layout.
func ShowConfig(w io.Writer, configFile string, cfg *Config) {
	if cfg == nil {
		fmt.Fprintln(w, "no configuration loaded")
		return
	}
	if strings.TrimSpace(configFile) == "" {
		configFile = "(defaults only)"
	}
	fmt.Fprintf(w, "Config file:        %s\n", configFile)
	fmt.Fprintf(w, "Embedding model:    %s (host: %s)\n", cfg.EmbeddingModel, cfg.EmbeddingHost)
	fmt.Fprintf(w, "Generation model:   %s (host: %s)\n", cfg.GenerationModel, cfg.GenerationHost)
	fmt.Fprintf(w, "Chunk size:         %d words\n", cfg.ChunkSize)
	fmt.Fprintf(w, "Chunk overlap:      %d words\n", cfg.ChunkOverlap)
	fmt.Fprintf(w, "Top-k:              %d\n", cfg.TopK)
	fmt.Fprintf(w, "Context limit:      %d tokens\n", cfg.ContextTokenLimit)
	fmt.Fprintf(w, "Generation timeout: %s\n", cfg.GenerationTimeout())
	fmt.Fprintf(w, "Request timeout:    %s\n", cfg.RequestTimeout())
	fmt.Fprintf(w, "Docs path:          %s\n", cfg.DocsPath)
	fmt.Fprintf(w, "Store path:         %s\n", cfg.StorePath)
	fmt.Fprintf(w, "Allowed extensions: %s\n", strings.Join(cfg.AllowedExtensions, ", "))
	if len(cfg.ExcludeGlobs) > 0 {
		fmt.Fprintf(w, "Exclude globs:      %s\n", strings.Join(cfg.ExcludeGlobs, ", "))
	}
	fmt.Fprintf(w, "Log file:           %s\n", cfg.LogFilePath())
	fmt.Fprintf(w, "Debug:              %t\n", cfg.Debug)
	fmt.Fprintf(w, "JSON mode:          %t\n", cfg.JSONMode)
	fmt.Fprintln(w, "Hosts:")
	for _, host := range cfg.Hosts {
		hostType := host.Type
		if hostType == "" {
			hostType = HostTypeOllama
		}
		fmt.Fprintf(w, "  %-12s %s (%s)\n", host.Name, host.URL, hostType)
	}
}
