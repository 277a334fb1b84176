// internal/rag/pipeline_test.go
package rag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/askdocs/askdocs/internal/appconfig"
	"github.com/askdocs/askdocs/internal/providers"
)

// fakeEmbedder maps a fixed vocabulary onto vector dimensions so retrieval
// outcomes are fully deterministic: texts sharing words get similar vectors.
type fakeEmbedder struct {
	vocab []string
	calls int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vocab: []string{
		"return", "returns", "policy", "accepted", "30", "days",
		"shipping", "ships", "business", "warranty", "covers", "defects",
	}}
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	vec := make([]float32, len(e.vocab))
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,?!")
		for i, known := range e.vocab {
			if word == known {
				vec[i]++
			}
		}
	}
	return vec, nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *fakeEmbedder) ModelName() string { return "fake-embed" }

// fakeGenerator scripts the outcome of each Generate call in order, repeating
// the last entry once the script runs out.
type fakeGenerator struct {
	script  []any // string or error
	calls   int
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	step := g.calls - 1
	if step >= len(g.script) {
		step = len(g.script) - 1
	}
	switch v := g.script[step].(type) {
	case error:
		return "", v
	case string:
		return v, nil
	default:
		return "", errors.New("unscripted call")
	}
}

func (g *fakeGenerator) ModelName() string { return "fake-gen" }

func pipelineConfig(t *testing.T) *appconfig.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &appconfig.Config{
		DocsPath:  filepath.Join(dir, "docs"),
		StorePath: filepath.Join(dir, "store.jsonl"),
		TopK:      3,
	}
	cfg.ApplyDefaults()
	if err := os.MkdirAll(cfg.DocsPath, 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func writeDoc(t *testing.T, cfg *appconfig.Config, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(cfg.DocsPath, name), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestPipeline(t *testing.T, cfg *appconfig.Config, gen *fakeGenerator) (*Pipeline, *fakeEmbedder) {
	t.Helper()
	store, err := Open(cfg.StorePath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	embedder := newFakeEmbedder()
	return NewPipeline(cfg, embedder, gen, store), embedder
}

func TestAskRetrievesMatchingDocument(t *testing.T) {
	cfg := pipelineConfig(t)
	writeDoc(t, cfg, "returns.md", "Returns are accepted within 30 days of purchase with the original receipt. The return policy excludes clearance items.")
	writeDoc(t, cfg, "shipping.md", "Standard shipping ships within 3 business days. Expedited shipping ships next business day.")
	writeDoc(t, cfg, "warranty.md", "The warranty covers manufacturing defects for one year. The warranty covers parts and labor.")

	gen := &fakeGenerator{script: []any{"Returns are accepted within 30 days.\nSources: returns.md"}}
	pipeline, _ := newTestPipeline(t, cfg, gen)

	if _, err := pipeline.IndexDocuments(context.Background(), nil); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}

	answer, err := pipeline.Ask(context.Background(), "What is the return policy?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(answer.Sources) == 0 || answer.Sources[0] != "returns.md" {
		t.Fatalf("expected returns.md as top source, got %v", answer.Sources)
	}
	if !strings.Contains(answer.Text, "Returns are accepted within 30 days.") {
		t.Fatalf("unexpected answer text: %q", answer.Text)
	}
	if answer.Latency <= 0 {
		t.Fatal("latency must be positive")
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "[doc:returns.md]") {
		t.Fatal("generator prompt missing the retrieved context")
	}
}

func TestAskEmptyStoreStillGenerates(t *testing.T) {
	cfg := pipelineConfig(t)
	gen := &fakeGenerator{script: []any{"I couldn't find the answer in the documents."}}
	pipeline, _ := newTestPipeline(t, cfg, gen)

	answer, err := pipeline.Ask(context.Background(), "What is the return policy?")
	if err != nil {
		t.Fatalf("Ask on empty store must not fail: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("generator should be called exactly once, got %d", gen.calls)
	}
	if !strings.Contains(gen.prompts[0], noContextNotice) {
		t.Fatal("prompt should carry the no-context notice")
	}
	if len(answer.Sources) != 0 {
		t.Fatalf("no sources expected on an empty store, got %v", answer.Sources)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	cfg := pipelineConfig(t)
	pipeline, _ := newTestPipeline(t, cfg, &fakeGenerator{script: []any{"x"}})
	if _, err := pipeline.Ask(context.Background(), "   "); err == nil {
		t.Fatal("blank question should be rejected")
	}
}

func TestAskSurfacesGeneratorUnavailable(t *testing.T) {
	cfg := pipelineConfig(t)
	gen := &fakeGenerator{script: []any{providers.ErrUnavailable}}
	pipeline, _ := newTestPipeline(t, cfg, gen)

	_, err := pipeline.Ask(context.Background(), "anything?")
	if !errors.Is(err, providers.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "generating") {
		t.Fatalf("error should name the generating stage: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("unavailable host must not be retried, got %d calls", gen.calls)
	}
}

func TestAskRetriesTimeoutOnce(t *testing.T) {
	cfg := pipelineConfig(t)
	gen := &fakeGenerator{script: []any{providers.ErrTimeout, "recovered answer"}}
	pipeline, _ := newTestPipeline(t, cfg, gen)

	answer, err := pipeline.Ask(context.Background(), "anything?")
	if err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("expected exactly 2 generator calls, got %d", gen.calls)
	}
	if !strings.Contains(answer.Text, "recovered answer") {
		t.Fatalf("unexpected answer: %q", answer.Text)
	}
}

func TestAskTimeoutRetriedOnlyOnce(t *testing.T) {
	cfg := pipelineConfig(t)
	gen := &fakeGenerator{script: []any{providers.ErrTimeout, providers.ErrTimeout}}
	pipeline, _ := newTestPipeline(t, cfg, gen)

	_, err := pipeline.Ask(context.Background(), "anything?")
	if !errors.Is(err, providers.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("timeout is retried exactly once, got %d calls", gen.calls)
	}
}

func TestAskEmptyResponseNotRetried(t *testing.T) {
	cfg := pipelineConfig(t)
	gen := &fakeGenerator{script: []any{providers.ErrEmptyResponse}}
	pipeline, _ := newTestPipeline(t, cfg, gen)

	_, err := pipeline.Ask(context.Background(), "anything?")
	if !errors.Is(err, providers.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("empty response must not be retried, got %d calls", gen.calls)
	}
}

func TestAskAppendsSourcesLine(t *testing.T) {
	cfg := pipelineConfig(t)
	writeDoc(t, cfg, "returns.md", "Returns are accepted within 30 days. The return policy requires a receipt.")

	// The model forgot the Sources line; the pipeline appends it.
	gen := &fakeGenerator{script: []any{"Returns are accepted within 30 days."}}
	pipeline, _ := newTestPipeline(t, cfg, gen)

	if _, err := pipeline.IndexDocuments(context.Background(), nil); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}
	answer, err := pipeline.Ask(context.Background(), "What is the return policy?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(answer.Text, "Sources: returns.md") {
		t.Fatalf("Sources line not appended: %q", answer.Text)
	}
}

func TestAskUsesRetrievalCache(t *testing.T) {
	cfg := pipelineConfig(t)
	writeDoc(t, cfg, "returns.md", "Returns are accepted within 30 days. The return policy requires a receipt.")

	gen := &fakeGenerator{script: []any{"answer"}}
	pipeline, embedder := newTestPipeline(t, cfg, gen)

	if _, err := pipeline.IndexDocuments(context.Background(), nil); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}
	embedsAfterIndex := embedder.calls

	if _, err := pipeline.Ask(context.Background(), "What is the return policy?"); err != nil {
		t.Fatalf("first ask: %v", err)
	}
	if _, err := pipeline.Ask(context.Background(), "What is the return policy?"); err != nil {
		t.Fatalf("second ask: %v", err)
	}
	if embedder.calls != embedsAfterIndex+1 {
		t.Fatalf("repeated question should hit the retrieval cache, embed calls went %d -> %d",
			embedsAfterIndex, embedder.calls)
	}

	// Re-indexing invalidates the cache, so the next ask embeds again.
	if _, err := pipeline.IndexDocuments(context.Background(), nil); err != nil {
		t.Fatalf("re-index: %v", err)
	}
	before := embedder.calls
	if _, err := pipeline.Ask(context.Background(), "What is the return policy?"); err != nil {
		t.Fatalf("ask after re-index: %v", err)
	}
	if embedder.calls != before+1 {
		t.Fatal("re-index should invalidate the retrieval cache")
	}
}

func TestAskRejectsModelMismatchWithStore(t *testing.T) {
	cfg := pipelineConfig(t)
	store, err := Open(cfg.StorePath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.UpsertDocument("a.md", "other-model", testRecords("a.md", 1, 4)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	pipeline := NewPipeline(cfg, newFakeEmbedder(), &fakeGenerator{script: []any{"x"}}, store)
	if _, err := pipeline.Ask(context.Background(), "anything?"); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch for model drift, got %v", err)
	}
}

func TestIndexDocumentsIsolatesBadDocuments(t *testing.T) {
	cfg := pipelineConfig(t)
	writeDoc(t, cfg, "good.md", "Returns are accepted within 30 days of purchase with the original receipt.")
	writeDoc(t, cfg, "empty.md", "")

	pipeline, _ := newTestPipeline(t, cfg, &fakeGenerator{script: []any{"x"}})
	report, err := pipeline.IndexDocuments(context.Background(), nil)
	if err != nil {
		t.Fatalf("per-document failure must not abort the run: %v", err)
	}
	if report.Indexed() != 1 || report.Failed() != 1 {
		t.Fatalf("expected 1 indexed and 1 failed, got %d/%d", report.Indexed(), report.Failed())
	}
	if pipeline.Store().Count() == 0 {
		t.Fatal("good document should be in the store")
	}
}

func TestIndexDocumentsEmptyCorpus(t *testing.T) {
	cfg := pipelineConfig(t)
	pipeline, _ := newTestPipeline(t, cfg, &fakeGenerator{script: []any{"x"}})
	if _, err := pipeline.IndexDocuments(context.Background(), nil); err == nil {
		t.Fatal("empty docs directory should be an error")
	}
}

func TestIndexDocumentsReplacesOnReindex(t *testing.T) {
	cfg := pipelineConfig(t)
	writeDoc(t, cfg, "returns.md", "Returns are accepted within 30 days of purchase with the original receipt.")

	pipeline, _ := newTestPipeline(t, cfg, &fakeGenerator{script: []any{"x"}})
	if _, err := pipeline.IndexDocuments(context.Background(), nil); err != nil {
		t.Fatalf("first index: %v", err)
	}
	first := pipeline.Store().Count()

	if _, err := pipeline.IndexDocuments(context.Background(), nil); err != nil {
		t.Fatalf("re-index: %v", err)
	}
	if pipeline.Store().Count() != first {
		t.Fatalf("re-index must replace records, count went %d -> %d", first, pipeline.Store().Count())
	}
}
