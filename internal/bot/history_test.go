// internal/bot/history_test.go
package bot

import (
	"fmt"
	"testing"
)

func TestHistoryLastQuestions(t *testing.T) {
	h := newHistory()
	h.append(1, "user", "first?")
	h.append(1, "bot", "an answer")
	h.append(1, "user", "second?")
	h.append(2, "user", "other user?")

	questions := h.lastQuestions(1, 3)
	if len(questions) != 2 || questions[0] != "first?" || questions[1] != "second?" {
		t.Fatalf("unexpected questions: %v", questions)
	}

	if got := h.lastQuestions(2, 3); len(got) != 1 || got[0] != "other user?" {
		t.Fatalf("user histories must be isolated, got %v", got)
	}
	if got := h.lastQuestions(99, 3); len(got) != 0 {
		t.Fatalf("unknown user should have no history, got %v", got)
	}
}

func TestHistoryKeepsMostRecent(t *testing.T) {
	h := newHistory()
	h.append(1, "user", "old?")
	h.append(1, "user", "mid?")
	h.append(1, "user", "new?")

	questions := h.lastQuestions(1, 2)
	if len(questions) != 2 || questions[0] != "mid?" || questions[1] != "new?" {
		t.Fatalf("expected the two most recent questions oldest first, got %v", questions)
	}
}

func TestHistoryTrimsRing(t *testing.T) {
	h := newHistory()
	for i := 0; i < historyLimit+5; i++ {
		h.append(1, "user", fmt.Sprintf("q%d", i))
	}

	questions := h.lastQuestions(1, 0)
	if len(questions) != historyLimit {
		t.Fatalf("expected ring trimmed to %d, got %d", historyLimit, len(questions))
	}
	if questions[0] != "q5" {
		t.Fatalf("oldest surviving entry should be q5, got %q", questions[0])
	}
}
