package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(ttl time.Duration) (*Store[string], *clock) {
	c := &clock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	s := NewStore[string]("test", ttl, newTestLogger())
	s.now = c.Now
	return s, c
}

func TestStore_AddGetDelete(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	id := s.Add("search view")
	v, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "search view", v)
	assert.Equal(t, 1, s.Len())

	assert.True(t, s.Delete(id))
	assert.False(t, s.Delete(id))
	_, ok = s.Get(id)
	assert.False(t, ok)

	_, ok = s.Get(uuid.New())
	assert.False(t, ok)
}

func TestStore_SweepExpiresIdleSessions(t *testing.T) {
	s, c := newTestStore(10 * time.Minute)

	idle := s.Add("idle")
	busy := s.Add("busy")

	c.Advance(6 * time.Minute)
	_, _ = s.Get(busy)
	c.Advance(6 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	_, ok := s.Get(idle)
	assert.False(t, ok)
	_, ok = s.Get(busy)
	assert.True(t, ok)
}

func TestStore_RunStopsOnCancel(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
