// Package service coordinates the discovery views: it owns the live
// sessions, records applied searches and announces them.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/pkg/logger"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/catalog"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/productview"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/querysync"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/review"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/session"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/shopview"
)

// HistoryRepository stores applied searches of authenticated shoppers.
type HistoryRepository interface {
	Record(ctx context.Context, rec *domain.SearchRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// EventPublisher announces discovery events.
type EventPublisher interface {
	PublishSearchPerformed(ctx context.Context, rec domain.SearchRecord) error
	PublishReviewSubmitted(ctx context.Context, productID domain.ID, userID string, rating int) error
}

// CategorySource lists catalog categories, usually through a cache.
type CategorySource interface {
	Categories(ctx context.Context) ([]domain.Category, error)
}

// Dependencies are the collaborators of a DiscoveryService. History and
// Events are optional; Categories defaults to the catalog.
type Dependencies struct {
	Catalog    catalog.Catalog
	Categories CategorySource
	History    HistoryRepository
	Events     EventPublisher
	SessionTTL time.Duration
}

// DiscoveryService implements the business logic behind the discovery API.
type DiscoveryService struct {
	catalog    catalog.Catalog
	categories CategorySource
	history    HistoryRepository
	events     EventPublisher
	ledger     *review.Ledger
	logger     *slog.Logger
	now        func() time.Time

	searches *session.Store[*querysync.Session]
	products *session.Store[*productview.Session]
	shops    *session.Store[*shopview.Session]
}

// NewDiscoveryService creates a new discovery service.
func NewDiscoveryService(deps Dependencies, logger *slog.Logger) *DiscoveryService {
	categories := deps.Categories
	if categories == nil {
		categories = deps.Catalog
	}
	return &DiscoveryService{
		catalog:    deps.Catalog,
		categories: categories,
		history:    deps.History,
		events:     deps.Events,
		ledger:     review.NewLedger(deps.Catalog, logger),
		logger:     logger,
		now:        time.Now,
		searches:   session.NewStore[*querysync.Session]("search", deps.SessionTTL, logger),
		products:   session.NewStore[*productview.Session]("product", deps.SessionTTL, logger),
		shops:      session.NewStore[*shopview.Session]("shop", deps.SessionTTL, logger),
	}
}

// RunSweepers expires idle sessions every interval until ctx is canceled.
func (s *DiscoveryService) RunSweepers(ctx context.Context, interval time.Duration) {
	go s.searches.Run(ctx, interval)
	go s.products.Run(ctx, interval)
	go s.shops.Run(ctx, interval)
}

// Categories lists every product category.
func (s *DiscoveryService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.Categories(ctx)
}

// History returns the most recent searches of the current user.
func (s *DiscoveryService) History(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.SearchRecord{}, nil
	}
	return s.history.ListByUser(ctx, userID, limit)
}

// ClearHistory removes every stored search of the current user.
func (s *DiscoveryService) ClearHistory(ctx context.Context) (int64, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return 0, err
	}
	if s.history == nil {
		return 0, nil
	}
	return s.history.DeleteByUser(ctx, userID)
}

// recordSearch stores and announces an applied search. Stale and failed
// searches are ignored. Storage and broker errors are logged only.
func (s *DiscoveryService) recordSearch(ctx context.Context, out querysync.Outcome) {
	if out.Stale || out.Err != nil {
		return
	}

	state := out.Snapshot.State
	rec := domain.SearchRecord{
		ID:          uuid.New(),
		Location:    out.Snapshot.Location.String(),
		Query:       state.Query,
		Category:    state.Category,
		City:        state.City,
		ResultCount: len(out.Snapshot.Listings),
		SearchedAt:  s.now().UTC(),
	}
	if user := userFromContext(ctx); user != "" {
		rec.UserID = user
		if s.history != nil {
			if err := s.history.Record(ctx, &rec); err != nil {
				logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to record search",
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if s.events != nil {
		if err := s.events.PublishSearchPerformed(ctx, rec); err != nil {
			logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to publish search event",
				slog.String("error", err.Error()),
			)
		}
	}
}

func sessionNotFound(kind string, id uuid.UUID) error {
	return apperrors.NotFound(kind+" session", id.String())
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
