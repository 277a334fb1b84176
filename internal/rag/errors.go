// internal/rag/errors.go
package rag

import "errors"

var (
	// ErrChunking marks a document that could not be read or yielded no
	// usable text. Indexing skips the document and continues.
	ErrChunking = errors.New("document could not be chunked")

	// ErrDimensionMismatch marks embeddings whose dimensionality (or model)
	// does not match the store. The store must be re-indexed; proceeding
	// would silently produce garbage similarity scores.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStoreIO marks a persistence failure. Fatal for both indexing and
	// querying.
	ErrStoreIO = errors.New("vector store I/O failure")
)
