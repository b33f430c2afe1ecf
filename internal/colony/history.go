package colony

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultHistorySize is the number of results kept by NewHistory(0).
const DefaultHistorySize = 10

// ErrNotFound is returned when a result ID is not in the history.
var ErrNotFound = errors.New("result not found")

// History keeps the most recent analysis results, newest first.
//
// History is safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	limit   int
	results []*Result
}

// NewHistory creates a history holding at most limit results. A limit of
// zero or less selects DefaultHistorySize.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &History{
		limit:   limit,
		results: make([]*Result, 0, limit),
	}
}

// Add records r as the newest result, dropping the oldest beyond the limit.
func (h *History) Add(r *Result) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.results = append([]*Result{r}, h.results...)
	if len(h.results) > h.limit {
		h.results[h.limit] = nil
		h.results = h.results[:h.limit]
	}
}

// List returns the stored results, newest first.
func (h *History) List() []*Result {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Result, len(h.results))
	copy(out, h.results)
	return out
}

// Get returns the result with the given ID.
func (h *History) Get(id string) (*Result, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, r := range h.results {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Latest returns the newest result.
func (h *History) Latest() (*Result, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.results) == 0 {
		return nil, fmt.Errorf("%w: history is empty", ErrNotFound)
	}
	return h.results[0], nil
}

// Len returns the number of stored results.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.results)
}

// Clear drops all results.
func (h *History) Clear() {
	h.mu.Lock()
	h.results = make([]*Result, 0, h.limit)
	h.mu.Unlock()
}
