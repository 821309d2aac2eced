// Package sequence tags in-flight requests so that only the response to the
// most recently issued request for a target is applied.
package sequence

import "sync"

// Tracker hands out monotonically increasing tickets per target.
// The zero value is ready to use.
type Tracker struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// Next issues a new ticket for target. Every earlier ticket for the same
// target becomes stale.
func (t *Tracker) Next(target string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		t.latest = make(map[string]uint64)
	}
	t.latest[target]++
	return t.latest[target]
}

// IsLatest reports whether ticket is the most recent one issued for target.
func (t *Tracker) IsLatest(target string, ticket uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ticket != 0 && t.latest[target] == ticket
}

// Latest returns the most recent ticket for target, or 0 if none was issued.
func (t *Tracker) Latest(target string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[target]
}
