// Package productview holds the state of one open product page: the product,
// its offers with the selected shop, and its reviews.
package productview

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/auth"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/metrics"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/offers"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/review"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/sequence"
)

// Source loads a product aggregate.
type Source interface {
	Product(ctx context.Context, id domain.ID) (*domain.ProductAggregate, error)
}

// Snapshot is a point-in-time copy of a product view.
type Snapshot struct {
	ProductID domain.ID              `json:"product_id"`
	Product   *domain.ProductSummary `json:"product"`
	Shops     []offers.ShopOffers    `json:"shops"`
	Selected  *domain.Offer          `json:"selected"`
	Stats     offers.Stats           `json:"stats"`
	Reviews   []domain.Review        `json:"reviews"`
	Rating    review.Summary         `json:"rating"`
	Failure   *domain.Failure        `json:"failure"`
	Loading   bool                   `json:"loading"`
}

// Outcome reports what became of the fetch triggered by a call.
type Outcome struct {
	Snapshot Snapshot
	Stale    bool
	Err      error
}

// Session owns one product view.
type Session struct {
	productID domain.ID
	source    Source
	ledger    *review.Ledger
	logger    *slog.Logger
	tracker   sequence.Tracker

	mu      sync.Mutex
	product *domain.ProductAggregate
	offers  *offers.Aggregator
	failure error
	loading bool
}

// New creates a session for productID. Nothing is fetched until Load.
func New(productID domain.ID, source Source, ledger *review.Ledger, logger *slog.Logger) *Session {
	return &Session{
		productID: productID,
		source:    source,
		ledger:    ledger,
		logger:    logger.With(slog.String("product_id", productID.String())),
		offers:    offers.New(nil),
	}
}

// ProductID returns the product this session shows.
func (s *Session) ProductID() domain.ID { return s.productID }

// Load fetches the product. A newer Load issued before this one returns
// wins; the older response is dropped. Every applied aggregate resets the
// selection to the first offer.
func (s *Session) Load(ctx context.Context) Outcome {
	target := "product:" + s.productID.String()

	s.mu.Lock()
	ticket := s.tracker.Next(target)
	s.loading = true
	s.mu.Unlock()

	agg, err := s.source.Product(ctx, s.productID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tracker.IsLatest(target, ticket) {
		metrics.StaleDiscarded("product")
		s.logger.DebugContext(ctx, "discarded stale product response", slog.Uint64("ticket", ticket))
		return Outcome{Snapshot: s.snapshotLocked(), Stale: true}
	}

	s.loading = false
	if err != nil {
		s.failure = err
		// A missing product is terminal; other failures keep what was shown.
		if errors.Is(err, apperrors.ErrNotFound) {
			s.product = nil
			s.offers.Reset(nil)
		}
		return Outcome{Snapshot: s.snapshotLocked(), Err: err}
	}

	s.product = agg
	s.offers.Reset(agg.Offers)
	s.failure = nil
	return Outcome{Snapshot: s.snapshotLocked()}
}

// Select highlights the offer of shopID. It returns false, leaving the
// selection unchanged, when that shop has no current offer.
func (s *Session) Select(shopID domain.ID) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.offers.Select(shopID)
	return s.snapshotLocked(), ok
}

// SubmitReview sends a review and, once accepted, re-fetches the product so
// the review list and rating come from the catalog. Validation and
// authorization failures are returned without any request.
func (s *Session) SubmitReview(ctx context.Context, user *auth.User, rating int, text string) (Outcome, error) {
	err := s.ledger.Submit(ctx, user, s.productID, rating, text)
	metrics.ReviewSubmitted(err)
	if err != nil {
		return Outcome{Snapshot: s.Snapshot()}, err
	}
	return s.Load(ctx), nil
}

// Snapshot returns a copy of the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ProductID: s.productID,
		Shops:     s.offers.Shops(),
		Stats:     s.offers.Stats(),
		Reviews:   []domain.Review{},
		Rating:    review.Summarize(nil),
		Failure:   domain.NewFailure(s.failure),
		Loading:   s.loading,
	}
	if s.product != nil {
		summary := s.product.ProductSummary
		snap.Product = &summary
		snap.Reviews = append(snap.Reviews, s.product.Reviews...)
		snap.Rating = review.Summarize(s.product.Reviews)
	}
	if sel, ok := s.offers.Selected(); ok {
		snap.Selected = &sel
	}
	return snap
}
