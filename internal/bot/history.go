// internal/bot/history.go
package bot

import "sync"

// historyLimit caps how many entries are kept per user.
const historyLimit = 10

type entry struct {
	role string // "user" or "bot"
	text string
}

// history keeps a short per-user exchange log, used by /summarize. It is
// in-memory only; it does not survive a restart and is not part of the
// retrieval core.
type history struct {
	mu    sync.Mutex
	users map[int64][]entry
}

func newHistory() *history {
	return &history{users: make(map[int64][]entry)}
}

// append records one exchange entry, trimming the ring to historyLimit.
func (h *history) append(userID int64, role, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := append(h.users[userID], entry{role: role, text: text})
	if len(entries) > historyLimit {
		entries = entries[len(entries)-historyLimit:]
	}
	h.users[userID] = entries
}

// lastQuestions returns up to n of the user's most recent questions, oldest
// first.
func (h *history) lastQuestions(userID int64, n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var questions []string
	for _, e := range h.users[userID] {
		if e.role == "user" {
			questions = append(questions, e.text)
		}
	}
	if n > 0 && len(questions) > n {
		questions = questions[len(questions)-n:]
	}
	return questions
}
