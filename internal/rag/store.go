// internal/rag/store.go
package rag

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is the persistent vector store: a single JSONL file holding a header
// line (embedding model identity and dimension) followed by one record per
// line. The whole file is held in memory; writes replace a document's
// records and atomically swap the file on disk, so concurrent readers see
// either the old snapshot or the new one, never a partial state.
type Store struct {
	path string

	mu      sync.RWMutex
	records []Record
	model   string
	dim     int
}

type storeHeader struct {
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

// Open loads the store file at path. A missing file yields an empty store
// bound to that path; the file is created on the first upsert.
func Open(path string) (*Store, error) {
	store := &Store{path: path}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("open store %s: %v: %w", path, err, ErrStoreIO)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 8*1024*1024)

	seen := make(map[string]struct{})
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if lineNo == 1 {
			var header storeHeader
			if err := json.Unmarshal([]byte(line), &header); err != nil {
				return nil, fmt.Errorf("parse store header: %v: %w", err, ErrStoreIO)
			}
			store.model = header.Model
			store.dim = header.Dimension
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("parse store line %d: %v: %w", lineNo, err, ErrStoreIO)
		}
		if store.dim > 0 && len(record.Embedding) != store.dim {
			return nil, fmt.Errorf("record %s has dimension %d, store has %d: %w",
				record.ChunkID, len(record.Embedding), store.dim, ErrDimensionMismatch)
		}
		if _, dup := seen[record.ChunkID]; dup {
			return nil, fmt.Errorf("duplicate chunk id %s in store: %w", record.ChunkID, ErrStoreIO)
		}
		seen[record.ChunkID] = struct{}{}
		store.records = append(store.records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read store %s: %v: %w", path, err, ErrStoreIO)
	}

	return store, nil
}

// ModelName returns the embedding model the stored vectors were produced
// with, or "" for an empty store.
func (s *Store) ModelName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Dimension returns the embedding dimensionality of the store, or 0 when empty.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// AllRecords returns a copy of every stored record, used by the brute-force
// retriever.
func (s *Store) AllRecords() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// UpsertDocument atomically replaces every record belonging to docID with
// the given set, produced by the named embedding model. Records for other
// documents are untouched. The first upsert fixes the store's model and
// dimension; later upserts with a different model or dimension fail with
// ErrDimensionMismatch and demand a full re-index.
func (s *Store) UpsertDocument(docID, model string, records []Record) error {
	if strings.TrimSpace(docID) == "" {
		return errors.New("document id is empty")
	}

	dim := 0
	for _, record := range records {
		if record.Doc != docID {
			return fmt.Errorf("record %s belongs to document %q, not %q", record.ChunkID, record.Doc, docID)
		}
		if dim == 0 {
			dim = len(record.Embedding)
		}
		if len(record.Embedding) == 0 || len(record.Embedding) != dim {
			return fmt.Errorf("record %s has inconsistent dimension %d: %w", record.ChunkID, len(record.Embedding), ErrDimensionMismatch)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) > 0 || s.dim > 0 {
		if s.model != "" && model != s.model {
			return fmt.Errorf("store was built with model %q, got %q: %w", s.model, model, ErrDimensionMismatch)
		}
		if dim > 0 && s.dim > 0 && dim != s.dim {
			return fmt.Errorf("store has dimension %d, got %d: %w", s.dim, dim, ErrDimensionMismatch)
		}
	}

	next := make([]Record, 0, len(s.records)+len(records))
	for _, record := range s.records {
		if record.Doc != docID {
			next = append(next, record)
		}
	}
	next = append(next, records...)

	seen := make(map[string]struct{}, len(next))
	for _, record := range next {
		if _, dup := seen[record.ChunkID]; dup {
			return fmt.Errorf("duplicate chunk id %s: %w", record.ChunkID, ErrStoreIO)
		}
		seen[record.ChunkID] = struct{}{}
	}

	prevRecords, prevModel, prevDim := s.records, s.model, s.dim
	s.records = next
	if model != "" {
		s.model = model
	}
	if dim > 0 {
		s.dim = dim
	}

	if err := s.persistLocked(); err != nil {
		s.records, s.model, s.dim = prevRecords, prevModel, prevDim
		return err
	}
	return nil
}

// DeleteDocument removes all records for docID; it is a no-op when the
// document is absent.
func (s *Store) DeleteDocument(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.records[:0:0]
	for _, record := range s.records {
		if record.Doc != docID {
			next = append(next, record)
		}
	}
	if len(next) == len(s.records) {
		return nil
	}

	prev := s.records
	s.records = next
	if err := s.persistLocked(); err != nil {
		s.records = prev
		return err
	}
	return nil
}

// persistLocked writes the full snapshot to a temp file and renames it over
// the store path. Callers hold the write lock.
func (s *Store) persistLocked() error {
	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory: %v: %w", err, ErrStoreIO)
		}
	}

	tmp, err := os.CreateTemp(dir, ".store-*.jsonl")
	if err != nil {
		return fmt.Errorf("create store temp file: %v: %w", err, ErrStoreIO)
	}
	tmpPath := tmp.Name()

	writer := bufio.NewWriter(tmp)
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)

	write := func() error {
		if err := encoder.Encode(storeHeader{Model: s.model, Dimension: s.dim}); err != nil {
			return err
		}
		for _, record := range s.records {
			if err := encoder.Encode(record); err != nil {
				return err
			}
		}
		if err := writer.Flush(); err != nil {
			return err
		}
		return tmp.Sync()
	}

	if err := write(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write store snapshot: %v: %w", err, ErrStoreIO)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close store snapshot: %v: %w", err, ErrStoreIO)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("swap store snapshot: %v: %w", err, ErrStoreIO)
	}
	return nil
}
