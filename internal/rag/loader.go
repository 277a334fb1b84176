// internal/rag/loader.go
package rag

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is a named unit of source text, immutable once indexed.
type Document struct {
	Name string
	Path string
	Text string
}

// DiscoverFiles walks root and returns the files eligible for indexing,
// filtered by extension allow-list and exclusion globs.
func DiscoverFiles(root string, allowed []string, exclude []string) ([]string, error) {
	var files []string
	allowedMap := make(map[string]struct{}, len(allowed))
	for _, ext := range allowed {
		allowedMap[strings.ToLower(ext)] = struct{}{}
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if shouldExclude(path, exclude) && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if shouldExclude(path, exclude) {
			return nil
		}

		if len(allowedMap) > 0 {
			ext := strings.ToLower(filepath.Ext(path))
			if _, ok := allowedMap[ext]; !ok {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func shouldExclude(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		pattern = filepath.ToSlash(pattern)
		if strings.Contains(pattern, "**") {
			trimmed := strings.ReplaceAll(pattern, "**", "")
			if trimmed != "" && strings.Contains(normalized, trimmed) {
				return true
			}
		}
		if ok, _ := filepath.Match(pattern, normalized); ok {
			return true
		}
	}
	return false
}

// LoadDocument reads one corpus file. PDF files go through text extraction;
// everything else is read as plain text. Unreadable or empty documents wrap
// ErrChunking so the indexer can skip them and keep going.
func LoadDocument(path string) (Document, error) {
	name := filepath.Base(path)

	var text string
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		extracted, err := extractPDFText(path)
		if err != nil {
			return Document{}, fmt.Errorf("extract pdf %s: %v: %w", name, err, ErrChunking)
		}
		text = extracted
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Document{}, fmt.Errorf("read %s: %v: %w", name, err, ErrChunking)
		}
		text = string(raw)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Document{}, fmt.Errorf("document %s is empty: %w", name, ErrChunking)
	}

	return Document{Name: name, Path: path, Text: text}, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
