package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/atul950/NearBuy-ed/pkg/logger"
	"github.com/atul950/NearBuy-ed/pkg/pagination"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/filter"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/querysync"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/view"
)

// Render controls how result cards are laid out and paged.
type Render struct {
	Mode view.Mode
	Page pagination.Params
}

// DefaultRender is the grid layout, first page.
func DefaultRender() Render {
	return Render{Mode: view.Grid, Page: pagination.DefaultParams()}
}

// SearchView is what a search session shows.
type SearchView struct {
	SessionID uuid.UUID                    `json:"session_id"`
	State     filter.State                 `json:"state"`
	Location  string                       `json:"location"`
	Mode      view.Mode                    `json:"mode"`
	Cards     pagination.Result[view.Card] `json:"cards"`
	Failure   *domain.Failure              `json:"failure"`
	Loading   bool                         `json:"loading"`
	// Stale reports that the search started by this call was overtaken by a
	// newer one; the view shows the state left by the newer call.
	Stale bool `json:"stale,omitempty"`
}

// OpenSearch starts a search session at location, runs its first search and
// registers it.
func (s *DiscoveryService) OpenSearch(ctx context.Context, location string, r Render) (*SearchView, error) {
	sess := querysync.New(s.catalog, s.locationLogger(), s.logger)
	out, err := sess.Navigate(ctx, location)
	if err != nil {
		return nil, err
	}

	id := s.searches.Add(sess)
	ctx = logger.WithSessionID(ctx, id.String())
	s.logger.DebugContext(ctx, "search session opened",
		slog.String("session_id", id.String()),
		slog.String("location", out.Snapshot.Location.String()),
	)
	s.recordSearch(ctx, out)
	return renderSearch(id, out, r), nil
}

// GetSearch returns the current view of a search session.
func (s *DiscoveryService) GetSearch(id uuid.UUID, r Render) (*SearchView, error) {
	sess, ok := s.searches.Get(id)
	if !ok {
		return nil, sessionNotFound("search", id)
	}
	return renderSearch(id, querysync.Outcome{Snapshot: sess.Snapshot()}, r), nil
}

// SetSearchFilter changes one filter of a search session.
func (s *DiscoveryService) SetSearchFilter(ctx context.Context, id uuid.UUID, key, value string, r Render) (*SearchView, error) {
	sess, ok := s.searches.Get(id)
	if !ok {
		return nil, sessionNotFound("search", id)
	}
	ctx = logger.WithSessionID(ctx, id.String())
	out, err := sess.SetFilter(ctx, key, value)
	if err != nil {
		return nil, err
	}
	s.recordSearch(ctx, out)
	return renderSearch(id, out, r), nil
}

// NavigateSearch moves a search session to a location opened from outside.
func (s *DiscoveryService) NavigateSearch(ctx context.Context, id uuid.UUID, location string, r Render) (*SearchView, error) {
	sess, ok := s.searches.Get(id)
	if !ok {
		return nil, sessionNotFound("search", id)
	}
	ctx = logger.WithSessionID(ctx, id.String())
	out, err := sess.Navigate(ctx, location)
	if err != nil {
		return nil, err
	}
	s.recordSearch(ctx, out)
	return renderSearch(id, out, r), nil
}

// ClearSearch resets every filter of a search session.
func (s *DiscoveryService) ClearSearch(ctx context.Context, id uuid.UUID, r Render) (*SearchView, error) {
	sess, ok := s.searches.Get(id)
	if !ok {
		return nil, sessionNotFound("search", id)
	}
	ctx = logger.WithSessionID(ctx, id.String())
	out := sess.Clear(ctx)
	s.recordSearch(ctx, out)
	return renderSearch(id, out, r), nil
}

// RefreshSearch re-runs the current search of a session.
func (s *DiscoveryService) RefreshSearch(ctx context.Context, id uuid.UUID, r Render) (*SearchView, error) {
	sess, ok := s.searches.Get(id)
	if !ok {
		return nil, sessionNotFound("search", id)
	}
	out := sess.Refresh(logger.WithSessionID(ctx, id.String()))
	return renderSearch(id, out, r), nil
}

// CloseSearch removes a search session.
func (s *DiscoveryService) CloseSearch(id uuid.UUID) error {
	if !s.searches.Delete(id) {
		return sessionNotFound("search", id)
	}
	return nil
}

func (s *DiscoveryService) locationLogger() querysync.Publisher {
	return querysync.PublisherFunc(func(ctx context.Context, location filter.Query) {
		logger.WithContext(ctx, s.logger).DebugContext(ctx, "search location published",
			slog.String("location", location.String()),
		)
	})
}

func renderSearch(id uuid.UUID, out querysync.Outcome, r Render) *SearchView {
	snap := out.Snapshot
	cards := view.Project(snap.Listings, r.Mode, view.ListingCard)
	return &SearchView{
		SessionID: id,
		State:     snap.State,
		Location:  snap.Location.String(),
		Mode:      view.ParseMode(string(r.Mode)),
		Cards:     pagination.Paginate(cards, r.Page),
		Failure:   snap.Failure,
		Loading:   snap.Loading,
		Stale:     out.Stale,
	}
}
