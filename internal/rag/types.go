// internal/rag/types.go
// Package rag implements the retrieval engine and orchestration pipeline:
// document chunking, the persistent vector store, brute-force cosine
// retrieval, grounded prompt construction, and the query/index state
// machines that tie them to a model runtime.
package rag

// Chunk is a retrieval-sized span of a document's text.
type Chunk struct {
	Position int
	Text     string
	Tokens   int
}

// Record is a persisted store entry: one chunk of one document plus its
// embedding vector.
type Record struct {
	ChunkID   string    `json:"chunk_id"`
	Doc       string    `json:"doc"`
	Position  int       `json:"position"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// RetrievedChunk is a record plus its similarity score against a query.
type RetrievedChunk struct {
	Record Record
	Score  float64
}
