// internal/logging/logging_test.go
package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "askdocs.log")

	if err := Init(path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	LogEvent("indexing %d documents", 3)
	LogRequest("askdocs->llm", "local", "phi3:mini", map[string]string{"prompt": "hi"})
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	log.SetOutput(os.Stderr)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "indexing 3 documents") {
		t.Fatalf("event missing from log: %q", content)
	}
	if !strings.Contains(content, "[ASKDOCS->LLM] host=local model=phi3:mini") {
		t.Fatalf("request line missing from log: %q", content)
	}
}

func TestFormatPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"nil", nil, "null"},
		{"blank string", "   ", `""`},
		{"string", "hello", "hello"},
		{"bytes", []byte(`{"a":1}`), `{"a":1}`},
		{"empty bytes", []byte{}, "[]"},
		{"struct", struct {
			N int `json:"n"`
		}{N: 2}, `{"n":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPayload(tt.payload); got != tt.want {
				t.Fatalf("formatPayload(%v) = %q, want %q", tt.payload, got, tt.want)
			}
		})
	}
}
