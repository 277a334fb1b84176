// internal/rag/pipeline.go
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/askdocs/askdocs/internal/appconfig"
	"github.com/askdocs/askdocs/internal/logging"
	"github.com/askdocs/askdocs/internal/providers"
	"github.com/askdocs/askdocs/internal/util"
)

// queryState tracks where a single query is in the pipeline. Failures carry
// the state they happened in so callers can map them to distinct messages.
type queryState int

const (
	stateReceived queryState = iota
	stateEmbedding
	stateRetrieving
	statePromptBuilding
	stateGenerating
	stateCompleted
	stateFailed
)

func (s queryState) String() string {
	switch s {
	case stateReceived:
		return "received"
	case stateEmbedding:
		return "embedding"
	case stateRetrieving:
		return "retrieving"
	case statePromptBuilding:
		return "prompt-building"
	case stateGenerating:
		return "generating"
	case stateCompleted:
		return "completed"
	default:
		return "failed"
	}
}

// Answer is the result of a single query: the generated text, the source
// document ids cited in the prompt, and wall-clock latency.
type Answer struct {
	Text    string
	Sources []string
	Latency time.Duration
}

// Pipeline sequences embedder, store, prompt builder, and generator for
// queries, and loader, chunker, embedder, and store for indexing. The
// embedder and generator are process-wide shared resources handed in once;
// concurrent queries share them without synchronization since inference and
// similarity scoring are read-only.
type Pipeline struct {
	cfg       *appconfig.Config
	embedder  providers.Embedder
	generator providers.Generator
	store     *Store

	cacheMu sync.Mutex
	cache   map[string][]RetrievedChunk
}

// NewPipeline assembles a pipeline from its components.
func NewPipeline(cfg *appconfig.Config, embedder providers.Embedder, generator providers.Generator, store *Store) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		embedder:  embedder,
		generator: generator,
		store:     store,
		cache:     make(map[string][]RetrievedChunk),
	}
}

// Store exposes the underlying vector store.
func (p *Pipeline) Store() *Store { return p.store }

// Warm preloads the embedding and generation models on providers that
// support it, so the first query does not pay the model load time. Failures
// are logged, not fatal; the host may simply be down until later.
func (p *Pipeline) Warm(ctx context.Context) {
	for name, component := range map[string]any{"embedder": p.embedder, "generator": p.generator} {
		warmer, ok := component.(providers.Warmer)
		if !ok {
			continue
		}
		if err := warmer.EnsureReady(ctx); err != nil {
			logging.LogEvent("[warmup] %s not ready: %v", name, err)
		}
	}
}

// Ask runs the full query flow: embed the question, retrieve the top-k
// chunks, build the grounded prompt, and call the generator. Embedding and
// retrieval failures are deterministic and never retried; a generation
// timeout is retried exactly once before the failure is surfaced.
func (p *Pipeline) Ask(ctx context.Context, question string) (Answer, error) {
	start := time.Now()
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, errors.New("question is empty")
	}

	state := stateReceived
	fail := func(err error) (Answer, error) {
		logging.LogEvent("[ask] state=%s -> %s: %v", state, stateFailed, err)
		return Answer{}, fmt.Errorf("ask failed while %s: %w", state, err)
	}

	if stored := p.store.ModelName(); stored != "" && stored != p.embedder.ModelName() {
		return fail(fmt.Errorf("store was indexed with model %q, embedder is %q, re-index required: %w",
			stored, p.embedder.ModelName(), ErrDimensionMismatch))
	}

	state = stateEmbedding
	chunks, cached := p.cachedRetrieval(question)
	if !cached {
		queryVec, err := p.embedder.Embed(ctx, question)
		if err != nil {
			return fail(err)
		}

		state = stateRetrieving
		chunks, err = p.store.Retrieve(queryVec, p.cfg.TopK)
		if err != nil {
			return fail(err)
		}
		p.rememberRetrieval(question, chunks)
	}

	state = statePromptBuilding
	prompt, sources := BuildPrompt(question, chunks, p.cfg.ContextTokenLimit)

	state = stateGenerating
	text, err := p.generator.Generate(ctx, prompt)
	if err != nil && errors.Is(err, providers.ErrTimeout) {
		logging.LogEvent("[ask] generation timed out, retrying once")
		text, err = p.generator.Generate(ctx, prompt)
	}
	if err != nil {
		return fail(err)
	}

	state = stateCompleted
	answer := Answer{
		Text:    p.finishAnswer(text, sources),
		Sources: sources,
		Latency: time.Since(start),
	}
	logging.LogEvent("[ask] state=%s sources=%d latency=%s", state, len(answer.Sources), answer.Latency.Truncate(time.Millisecond))
	return answer, nil
}

// finishAnswer normalizes the raw completion: collapse duplicated lines,
// make sure a Sources line is present, and cap the length.
func (p *Pipeline) finishAnswer(raw string, sources []string) string {
	var lines []string
	prev := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == prev {
			continue
		}
		lines = append(lines, line)
		prev = line
	}
	text := strings.Join(lines, " ")

	if len(sources) > 0 && !strings.Contains(text, "Sources:") {
		text = text + "\n\nSources: " + strings.Join(sources, ", ")
	}

	if max := p.cfg.AnswerMaxRunes; max > 0 {
		text = util.TruncateRunes(text, max)
	}
	return text
}

func (p *Pipeline) cachedRetrieval(question string) ([]RetrievedChunk, bool) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	chunks, ok := p.cache[question]
	return chunks, ok
}

func (p *Pipeline) rememberRetrieval(question string, chunks []RetrievedChunk) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.cache[question] = chunks
}

// invalidateCache drops all cached retrievals; called after indexing changes
// the store contents.
func (p *Pipeline) invalidateCache() {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.cache = make(map[string][]RetrievedChunk)
}

// DocumentReport records the indexing outcome for a single document.
type DocumentReport struct {
	Doc    string
	Chunks int
	Err    error
}

// Report summarizes an indexing run.
type Report struct {
	Docs []DocumentReport
}

// Indexed returns the number of successfully indexed documents.
func (r Report) Indexed() int {
	n := 0
	for _, doc := range r.Docs {
		if doc.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of documents that could not be indexed.
func (r Report) Failed() int {
	return len(r.Docs) - r.Indexed()
}

// IndexDocuments walks the configured docs directory and runs each file
// through load -> chunk -> embed -> store. Per-document failures are
// isolated: a bad document is reported and skipped, the rest still index.
// Store-level failures (I/O, model drift) abort the run since every later
// document would hit the same wall. The progress callback receives status
// lines; pass nil to log them only.
func (p *Pipeline) IndexDocuments(ctx context.Context, progress func(format string, args ...any)) (Report, error) {
	status := func(format string, args ...any) {
		logging.LogEvent(format, args...)
		if progress != nil {
			progress(format, args...)
		}
	}

	if stored := p.store.ModelName(); stored != "" && stored != p.embedder.ModelName() {
		return Report{}, fmt.Errorf("store was indexed with model %q, embedder is %q, delete %s to re-index: %w",
			stored, p.embedder.ModelName(), p.cfg.StorePath, ErrDimensionMismatch)
	}

	files, err := DiscoverFiles(p.cfg.DocsPath, p.cfg.AllowedExtensions, p.cfg.ExcludeGlobs)
	if err != nil {
		return Report{}, fmt.Errorf("discover corpus files: %w", err)
	}
	if len(files) == 0 {
		return Report{}, fmt.Errorf("no corpus files found under %s", p.cfg.DocsPath)
	}
	status("[index] discovered %d corpus files under %s", len(files), p.cfg.DocsPath)

	var report Report
	for _, path := range files {
		doc, err := p.indexOne(ctx, path, status)
		report.Docs = append(report.Docs, doc)
		if err != nil {
			return report, err
		}
	}

	p.invalidateCache()
	status("[index] done: %d indexed, %d failed, %d records in store", report.Indexed(), report.Failed(), p.store.Count())
	return report, nil
}

// indexOne runs the Loaded -> Chunked -> Embedded -> Stored states for one
// file. The returned error is non-nil only for fatal store-level failures;
// document-level problems live in the report entry.
func (p *Pipeline) indexOne(ctx context.Context, path string, status func(string, ...any)) (DocumentReport, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		status("[index] skipping %s: %v", path, err)
		return DocumentReport{Doc: path, Err: err}, nil
	}
	status("[index] loaded %s (%d bytes)", doc.Name, len(doc.Text))

	chunks := ChunkText(doc.Text, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		err := fmt.Errorf("document %s produced no chunks: %w", doc.Name, ErrChunking)
		status("[index] skipping %s: %v", doc.Name, err)
		return DocumentReport{Doc: doc.Name, Err: err}, nil
	}
	status("[index] chunked %s into %d chunks", doc.Name, len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		status("[index] embedding failed for %s: %v", doc.Name, err)
		return DocumentReport{Doc: doc.Name, Err: err}, nil
	}
	status("[index] embedded %s (%d vectors)", doc.Name, len(vectors))

	records := make([]Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = Record{
			ChunkID:   fmt.Sprintf("%s:%d", doc.Name, chunk.Position),
			Doc:       doc.Name,
			Position:  chunk.Position,
			Text:      chunk.Text,
			Embedding: vectors[i],
		}
	}

	if err := p.store.UpsertDocument(doc.Name, p.embedder.ModelName(), records); err != nil {
		if errors.Is(err, ErrStoreIO) || errors.Is(err, ErrDimensionMismatch) {
			return DocumentReport{Doc: doc.Name, Err: err}, err
		}
		status("[index] store rejected %s: %v", doc.Name, err)
		return DocumentReport{Doc: doc.Name, Err: err}, nil
	}
	status("[index] stored %s", doc.Name)

	return DocumentReport{Doc: doc.Name, Chunks: len(chunks)}, nil
}
