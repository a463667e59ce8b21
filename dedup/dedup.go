// Package dedup flags generated stories that are too similar to earlier ones.
//
// Detection is advisory. A match is reported to the caller, who decides what
// to do with it; nothing here blocks a story from being used.
//
// Information Hiding:
//   - Tokenization and word-set construction
//   - Locking around the shared history
package dedup

import (
	"strings"
	"sync"
)

// DefaultThreshold is the similarity at or above which two stories count as
// duplicates.
const DefaultThreshold = 0.75

// Result describes the outcome of a duplicate check.
type Result struct {
	IsDuplicate bool
	// Score is the similarity of the matching entry. Nil when nothing matched.
	Score *float64
	// Index of the matching history entry, -1 when nothing matched.
	Index int
}

// Similarity returns the Jaccard similarity of the lower-cased word sets of
// a and b. Two empty texts have similarity 0.
func Similarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	union := len(setA)
	inter := 0
	for w := range setB {
		if _, ok := setA[w]; ok {
			inter++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Check compares candidate against history in order and reports the first
// entry whose similarity reaches threshold. History is not modified.
func Check(candidate string, history []string, threshold float64) Result {
	for i, prev := range history {
		score := Similarity(candidate, prev)
		if score >= threshold {
			return Result{IsDuplicate: true, Score: &score, Index: i}
		}
	}
	return Result{Index: -1}
}

func wordSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// History is the list of previously generated texts for one process.
// Safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	entries []string
	limit   int
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithLimit caps the number of retained entries; the oldest are dropped
// first. Zero means unbounded.
func WithLimit(n int) HistoryOption {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// NewHistory creates an empty history.
func NewHistory(opts ...HistoryOption) *History {
	h := &History{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Append records text. Surrounding whitespace is trimmed; blank text is ignored.
func (h *History) Append(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, text)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = append([]string(nil), h.entries[len(h.entries)-h.limit:]...)
	}
}

// Snapshot returns a copy of the current entries, oldest first.
func (h *History) Snapshot() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Reset clears the history.
func (h *History) Reset() {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
}
