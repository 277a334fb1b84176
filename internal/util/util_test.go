// internal/util/util_test.go
package util

import (
	"strings"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"short text untouched", "hello world", 50, "hello world"},
		{"zero max untouched", "hello world", 0, "hello world"},
		{"cuts at word boundary", "the quick brown fox", 12, "the quick…"},
		{"unicode aware", "héllo wörld wíde", 12, "héllo wörld…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.text, tt.max); got != tt.want {
				t.Fatalf("TruncateRunes(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestWrapToWidth(t *testing.T) {
	got := WrapToWidth("one two three four five", 9)
	for i, line := range strings.Split(got, "\n") {
		if len([]rune(line)) > 9 {
			t.Fatalf("line %d exceeds width: %q", i, line)
		}
	}
	if !strings.Contains(got, "one two") {
		t.Fatalf("unexpected wrap result: %q", got)
	}

	if WrapToWidth("untouched", 0) != "untouched" {
		t.Fatal("width 0 should leave text untouched")
	}

	long := WrapToWidth("abcdefghij", 4)
	for _, line := range strings.Split(long, "\n") {
		if len([]rune(line)) > 4 {
			t.Fatalf("long word not broken: %q", long)
		}
	}
}
