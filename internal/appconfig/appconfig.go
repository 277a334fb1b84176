// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for HTTP requests to model hosts.
	defaultRequestTimeout = 120 * time.Second
	// defaultGenerationTimeout bounds a single generation call.
	defaultGenerationTimeout = 30 * time.Second
	// defaultChunkSize is the chunk window in words.
	defaultChunkSize = 200
	// defaultChunkOverlap is the overlap between consecutive chunks in words.
	defaultChunkOverlap = 50
	// defaultTopK is the number of chunks retrieved per query.
	defaultTopK = 3
	// defaultContextTokenLimit caps the prompt context block.
	defaultContextTokenLimit = 1024
	// defaultAnswerMaxRunes caps the final answer text.
	defaultAnswerMaxRunes = 1000
)

// HostTypeOllama marks a host speaking the native Ollama HTTP API.
const HostTypeOllama = "ollama"

// HostTypeOpenAI marks a host speaking the OpenAI-compatible API
// (llama.cpp server, vLLM, LocalAI and friends).
const HostTypeOpenAI = "openai"

// Config represents the top-level application configuration.
type Config struct {
	Hosts             []Host   `json:"hosts" mapstructure:"hosts"`
	EmbeddingModel    string   `json:"embeddingModel" mapstructure:"embeddingModel"`
	EmbeddingHost     string   `json:"embeddingHost" mapstructure:"embeddingHost"`
	GenerationModel   string   `json:"generationModel" mapstructure:"generationModel"`
	GenerationHost    string   `json:"generationHost" mapstructure:"generationHost"`
	ChunkSize         int      `json:"chunkSize,omitempty" mapstructure:"chunkSize"`
	ChunkOverlap      int      `json:"chunkOverlap,omitempty" mapstructure:"chunkOverlap"`
	TopK              int      `json:"topK,omitempty" mapstructure:"topK"`
	ContextTokenLimit int      `json:"contextTokenLimit,omitempty" mapstructure:"contextTokenLimit"`
	GenerationSeconds int      `json:"generationTimeout,omitempty" mapstructure:"generationTimeout"`
	TimeoutSeconds    int      `json:"timeout,omitempty" mapstructure:"timeout"`
	DocsPath          string   `json:"docsPath,omitempty" mapstructure:"docsPath"`
	StorePath         string   `json:"storePath,omitempty" mapstructure:"storePath"`
	AllowedExtensions []string `json:"allowedExtensions,omitempty" mapstructure:"allowedExtensions"`
	ExcludeGlobs      []string `json:"excludeGlobs,omitempty" mapstructure:"excludeGlobs"`
	AnswerMaxRunes    int      `json:"answerMaxRunes,omitempty" mapstructure:"answerMaxRunes"`
	LogFile           string   `json:"logFile,omitempty" mapstructure:"logFile"`
	Debug             bool     `json:"debug" mapstructure:"debug"`
	JSONMode          bool     `json:"jsonMode" mapstructure:"jsonMode"`
	ConfigPath        string   `json:"-" mapstructure:"-"`
}

// Host represents a single host that can serve language models.
type Host struct {
	Name string `json:"name" mapstructure:"name"`
	URL  string `json:"url" mapstructure:"url"`
	Type string `json:"type" mapstructure:"type"`
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GenerationTimeout returns the timeout applied to a single generation call.
func (c Config) GenerationTimeout() time.Duration {
	if c.GenerationSeconds <= 0 {
		return defaultGenerationTimeout
	}
	return time.Duration(c.GenerationSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "askdocs.log"
}

// HostByName looks up a configured host by its name.
func (c Config) HostByName(name string) (Host, bool) {
	for _, host := range c.Hosts {
		if host.Name == name {
			return host, true
		}
	}
	return Host{}, false
}

// EmbeddingHostConfig resolves the host entry that serves the embedding model.
func (c Config) EmbeddingHostConfig() (Host, error) {
	if strings.TrimSpace(c.EmbeddingHost) == "" {
		return Host{}, errors.New("embeddingHost is required")
	}
	host, ok := c.HostByName(c.EmbeddingHost)
	if !ok {
		return Host{}, fmt.Errorf("embeddingHost %q not found in config hosts", c.EmbeddingHost)
	}
	return host, nil
}

// GenerationHostConfig resolves the host entry that serves the generation model.
func (c Config) GenerationHostConfig() (Host, error) {
	if strings.TrimSpace(c.GenerationHost) == "" {
		return Host{}, errors.New("generationHost is required")
	}
	host, ok := c.HostByName(c.GenerationHost)
	if !ok {
		return Host{}, fmt.Errorf("generationHost %q not found in config hosts", c.GenerationHost)
	}
	return host, nil
}

// ApplyDefaults fills zero-valued tunables with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = defaultChunkOverlap
	}
	if c.TopK <= 0 {
		c.TopK = defaultTopK
	}
	if c.ContextTokenLimit <= 0 {
		c.ContextTokenLimit = defaultContextTokenLimit
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}
	if c.GenerationSeconds <= 0 {
		c.GenerationSeconds = int(defaultGenerationTimeout.Seconds())
	}
	if c.AnswerMaxRunes <= 0 {
		c.AnswerMaxRunes = defaultAnswerMaxRunes
	}
	if strings.TrimSpace(c.DocsPath) == "" {
		c.DocsPath = "docs"
	}
	if strings.TrimSpace(c.StorePath) == "" {
		c.StorePath = "index/store.jsonl"
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{".md", ".txt", ".pdf"}
	}
}

// Validate checks the invariants the pipeline relies on.
func (c Config) Validate() error {
	if len(c.Hosts) == 0 {
		return errors.New("config must contain at least one host")
	}
	for _, host := range c.Hosts {
		if strings.TrimSpace(host.Name) == "" {
			return errors.New("every host needs a name")
		}
		if strings.TrimSpace(host.URL) == "" {
			return fmt.Errorf("host %q has no url", host.Name)
		}
		switch host.Type {
		case HostTypeOllama, HostTypeOpenAI, "":
		default:
			return fmt.Errorf("host %q has unknown type %q", host.Name, host.Type)
		}
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return errors.New("embeddingModel is required")
	}
	if strings.TrimSpace(c.GenerationModel) == "" {
		return errors.New("generationModel is required")
	}
	if _, err := c.EmbeddingHostConfig(); err != nil {
		return err
	}
	if _, err := c.GenerationHostConfig(); err != nil {
		return err
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunkOverlap (%d) must be smaller than chunkSize (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}
