// internal/rag/retriever.go
package rag

import (
	"fmt"
	"math"
	"sort"
)

// Retrieve ranks every stored record by cosine similarity against queryVec
// and returns the top k, highest first. Ties keep insertion order so results
// are deterministic. Fewer than k records returns all of them; an empty
// store returns an empty result. The scan is exact brute force, O(N·D) per
// query; corpora here are a handful of documents, small enough that an
// approximate index would buy nothing.
func (s *Store) Retrieve(queryVec []float32, k int) ([]RetrievedChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	s.mu.RLock()
	records := s.records
	dim := s.dim
	s.mu.RUnlock()

	if len(records) == 0 {
		return nil, nil
	}
	if dim > 0 && len(queryVec) != dim {
		return nil, fmt.Errorf("query has dimension %d, store has %d: %w", len(queryVec), dim, ErrDimensionMismatch)
	}

	scored := scoreRecords(records, queryVec)
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// scoreRecords computes cosine similarity for every record and sorts by
// descending score. SliceStable preserves insertion order between equal
// scores.
func scoreRecords(records []Record, queryVec []float32) []RetrievedChunk {
	queryNorm := vectorNorm(queryVec)
	scored := make([]RetrievedChunk, 0, len(records))
	for _, record := range records {
		if len(record.Embedding) != len(queryVec) {
			continue
		}
		scored = append(scored, RetrievedChunk{
			Record: record,
			Score:  cosineSimilarity(queryVec, record.Embedding, queryNorm),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// cosineSimilarity returns dot(a,b)/(|a||b|) in [-1, 1], or 0 when either
// vector has zero norm.
func cosineSimilarity(a, b []float32, normA float64) float64 {
	if normA == 0 {
		return 0
	}
	normB := vectorNorm(b)
	if normB == 0 {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}

func vectorNorm(v []float32) float64 {
	sum := 0.0
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	return math.Sqrt(sum)
}
