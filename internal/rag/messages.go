// internal/rag/messages.go
package rag

import (
	"errors"

	"github.com/askdocs/askdocs/internal/providers"
)

// UserMessage maps a pipeline failure to the text shown to the person who
// asked. Each error kind gets its own message so "the model is down" and
// "the index is stale" are distinguishable without reading logs.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, providers.ErrTimeout):
		return "The model took too long to answer. Please try again."
	case errors.Is(err, providers.ErrUnavailable):
		return "The model runtime is unreachable. Is it running? Please try again later."
	case errors.Is(err, providers.ErrEmptyResponse):
		return "The model returned an empty answer. Please try rephrasing your question."
	case errors.Is(err, ErrDimensionMismatch):
		return "The document index was built with a different embedding model. Re-run indexing."
	case errors.Is(err, ErrStoreIO):
		return "The document index could not be read. Re-run indexing."
	case err != nil:
		return "Sorry, an internal error occurred."
	default:
		return ""
	}
}
