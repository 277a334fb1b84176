// internal/rag/messages_test.go
package rag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/askdocs/askdocs/internal/providers"
)

func TestUserMessageDistinguishesErrorKinds(t *testing.T) {
	kinds := []error{
		providers.ErrTimeout,
		providers.ErrUnavailable,
		providers.ErrEmptyResponse,
		ErrDimensionMismatch,
		ErrStoreIO,
		errors.New("something else"),
	}

	seen := make(map[string]error)
	for _, kind := range kinds {
		wrapped := fmt.Errorf("ask failed while generating: %w", kind)
		msg := UserMessage(wrapped)
		if msg == "" {
			t.Errorf("no message for %v", kind)
			continue
		}
		if prior, dup := seen[msg]; dup {
			t.Errorf("%v and %v map to the same message %q", prior, kind, msg)
		}
		seen[msg] = kind
	}

	if UserMessage(nil) != "" {
		t.Fatal("nil error should map to an empty message")
	}
}
