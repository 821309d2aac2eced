// Package session keeps the open views of the discovery service, keyed by a
// random id and expired after a period of inactivity.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atul950/NearBuy-ed/services/discovery/internal/metrics"
)

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Store is a registry of live sessions of one kind.
type Store[T any] struct {
	kind   string
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	items map[uuid.UUID]*entry[T]
}

// NewStore creates a store whose sessions expire after ttl without access.
func NewStore[T any](kind string, ttl time.Duration, logger *slog.Logger) *Store[T] {
	return &Store[T]{
		kind:   kind,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		items:  make(map[uuid.UUID]*entry[T]),
	}
}

// Add registers v and returns its id.
func (s *Store[T]) Add(v T) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = &entry[T]{value: v, lastSeen: s.now()}
	metrics.SetLiveSessions(s.kind, len(s.items))
	return id
}

// Get returns the session with the given id and marks it as used.
func (s *Store[T]) Get(id uuid.UUID) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastSeen = s.now()
	return e.value, true
}

// Delete removes a session. It reports whether the session existed.
func (s *Store[T]) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	delete(s.items, id)
	metrics.SetLiveSessions(s.kind, len(s.items))
	return ok
}

// Len returns the number of live sessions.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep removes sessions idle for longer than the ttl and returns how many
// were removed.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.items {
		if e.lastSeen.Before(cutoff) {
			delete(s.items, id)
			removed++
		}
	}
	metrics.SetLiveSessions(s.kind, len(s.items))
	return removed
}

// Run sweeps the store every interval until ctx is canceled.
func (s *Store[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired idle sessions",
					slog.String("kind", s.kind),
					slog.Int("removed", n),
				)
			}
		}
	}
}
