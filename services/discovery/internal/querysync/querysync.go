// Package querysync keeps a search view's filter state and its shareable
// location consistent and re-runs the search whenever either changes.
package querysync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/filter"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/metrics"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/sequence"
)

const target = "search"

// Searcher runs a catalog search.
type Searcher interface {
	Search(ctx context.Context, state filter.State) ([]domain.Listing, error)
}

// Publisher is told about every location the session publishes. It is
// called with the session locked and must not block.
type Publisher interface {
	Publish(ctx context.Context, location filter.Query)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, location filter.Query)

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, location filter.Query) { f(ctx, location) }

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	State    filter.State     `json:"state"`
	Location filter.Query     `json:"-"`
	Listings []domain.Listing `json:"-"`
	Failure  *domain.Failure  `json:"failure"`
	Loading  bool             `json:"loading"`
}

// Outcome reports what became of the search triggered by a call.
type Outcome struct {
	Snapshot Snapshot
	Ticket   uint64
	// Stale is set when a newer search was issued before this one returned;
	// its result was dropped.
	Stale bool
	// Err is the failure of this search, if it was applied.
	Err error
}

// Session owns one search view. The zero value is not usable; use New.
type Session struct {
	searcher  Searcher
	publisher Publisher
	logger    *slog.Logger
	tracker   sequence.Tracker

	mu       sync.Mutex
	state    filter.State
	location filter.Query
	listings []domain.Listing
	failure  error
	loading  bool
}

// New creates a session with the all-unset state. publisher may be nil.
func New(searcher Searcher, publisher Publisher, logger *slog.Logger) *Session {
	if publisher == nil {
		publisher = PublisherFunc(func(context.Context, filter.Query) {})
	}
	return &Session{
		searcher:  searcher,
		publisher: publisher,
		logger:    logger,
		location:  filter.Query{},
		listings:  []domain.Listing{},
	}
}

// SetFilter replaces one filter, publishes the new location and runs one
// search. An unknown key is rejected before anything changes.
func (s *Session) SetFilter(ctx context.Context, key, value string) (Outcome, error) {
	s.mu.Lock()
	next, err := s.state.With(key, value)
	if err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}
	ticket := s.commitLocked(ctx, next, true)
	s.mu.Unlock()

	return s.fetch(ctx, ticket, next), nil
}

// Clear resets every filter, publishes the empty location and runs one
// search.
func (s *Session) Clear(ctx context.Context) Outcome {
	s.mu.Lock()
	next := filter.Clear()
	ticket := s.commitLocked(ctx, next, true)
	s.mu.Unlock()

	return s.fetch(ctx, ticket, next)
}

// Navigate adopts a location observed from outside, such as an opened link,
// and runs one search. The location is not published back.
func (s *Session) Navigate(ctx context.Context, raw string) (Outcome, error) {
	q, err := filter.ParseQuery(raw)
	if err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	next := filter.Decode(q)
	ticket := s.commitLocked(ctx, next, false)
	s.mu.Unlock()

	return s.fetch(ctx, ticket, next), nil
}

// Refresh re-runs the search for the current state.
func (s *Session) Refresh(ctx context.Context) Outcome {
	s.mu.Lock()
	current := s.state
	ticket := s.tracker.Next(target)
	s.loading = true
	s.mu.Unlock()

	return s.fetch(ctx, ticket, current)
}

// Snapshot returns a copy of the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	loc := make(filter.Query, len(s.location))
	for k, v := range s.location {
		loc[k] = v
	}
	return Snapshot{
		State:    s.state,
		Location: loc,
		Listings: append([]domain.Listing{}, s.listings...),
		Failure:  domain.NewFailure(s.failure),
		Loading:  s.loading,
	}
}

// commitLocked installs next as the current state and issues the ticket for
// the search that follows. s.mu must be held.
func (s *Session) commitLocked(ctx context.Context, next filter.State, publish bool) uint64 {
	s.state = next
	s.location = filter.Encode(next)
	if publish {
		s.publisher.Publish(ctx, s.location)
	}
	s.loading = true
	return s.tracker.Next(target)
}

// fetch runs the search for ticket outside the lock and applies its result
// only if no newer search was issued meanwhile.
func (s *Session) fetch(ctx context.Context, ticket uint64, state filter.State) Outcome {
	listings, err := s.searcher.Search(ctx, state)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tracker.IsLatest(target, ticket) {
		metrics.StaleDiscarded(target)
		s.logger.DebugContext(ctx, "discarded stale search response",
			slog.Uint64("ticket", ticket),
			slog.Uint64("latest", s.tracker.Latest(target)),
		)
		return Outcome{Snapshot: s.snapshotLocked(), Ticket: ticket, Stale: true}
	}

	s.loading = false
	if err != nil {
		s.listings = []domain.Listing{}
		s.failure = err
		s.logger.WarnContext(ctx, "search failed",
			slog.String("location", s.location.String()),
			slog.String("error", err.Error()),
		)
		return Outcome{Snapshot: s.snapshotLocked(), Ticket: ticket, Err: err}
	}

	if listings == nil {
		listings = []domain.Listing{}
	}
	s.listings = listings
	s.failure = nil
	return Outcome{Snapshot: s.snapshotLocked(), Ticket: ticket}
}
