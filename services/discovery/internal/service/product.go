package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/atul950/NearBuy-ed/pkg/logger"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/auth"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/productview"
)

// ProductView is what a product session shows.
type ProductView struct {
	SessionID uuid.UUID `json:"session_id"`
	productview.Snapshot
	// Selection is only set by SelectOffer: false when the requested shop
	// had no offer and the selection was left unchanged.
	Selection *bool `json:"selection_applied,omitempty"`
	Stale     bool  `json:"stale,omitempty"`
}

// OpenProduct loads productID into a new session. A product that does not
// exist yields NOT_FOUND and no session; any other load failure is kept in
// the session's view.
func (s *DiscoveryService) OpenProduct(ctx context.Context, productID domain.ID) (*ProductView, error) {
	sess := productview.New(productID, s.catalog, s.ledger, s.logger)
	out := sess.Load(ctx)
	if out.Err != nil && isNotFound(out.Err) {
		return nil, out.Err
	}

	id := s.products.Add(sess)
	s.logger.DebugContext(logger.WithSessionID(ctx, id.String()), "product session opened",
		slog.String("session_id", id.String()),
		slog.String("product_id", productID.String()),
	)
	return productView(id, out.Snapshot, out.Stale), nil
}

// GetProduct returns the current view of a product session.
func (s *DiscoveryService) GetProduct(id uuid.UUID) (*ProductView, error) {
	sess, ok := s.products.Get(id)
	if !ok {
		return nil, sessionNotFound("product", id)
	}
	return productView(id, sess.Snapshot(), false), nil
}

// SelectOffer highlights the offer of shopID. A shop without an offer leaves
// the selection as it was.
func (s *DiscoveryService) SelectOffer(id uuid.UUID, shopID domain.ID) (*ProductView, error) {
	sess, ok := s.products.Get(id)
	if !ok {
		return nil, sessionNotFound("product", id)
	}
	snap, applied := sess.Select(shopID)
	v := productView(id, snap, false)
	v.Selection = &applied
	return v, nil
}

// RefreshProduct re-fetches the product of a session.
func (s *DiscoveryService) RefreshProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	sess, ok := s.products.Get(id)
	if !ok {
		return nil, sessionNotFound("product", id)
	}
	out := sess.Load(logger.WithSessionID(ctx, id.String()))
	return productView(id, out.Snapshot, out.Stale), nil
}

// SubmitReview posts a review for the product of a session as the current
// user and returns the re-fetched view.
func (s *DiscoveryService) SubmitReview(ctx context.Context, id uuid.UUID, rating int, text string) (*ProductView, error) {
	sess, ok := s.products.Get(id)
	if !ok {
		return nil, sessionNotFound("product", id)
	}
	ctx = logger.WithSessionID(ctx, id.String())
	user := auth.UserFromContext(ctx)

	out, err := sess.SubmitReview(ctx, user, rating, text)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishReviewSubmitted(ctx, sess.ProductID(), user.ID, rating); err != nil {
			logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to publish review event",
				slog.String("error", err.Error()),
			)
		}
	}
	return productView(id, out.Snapshot, out.Stale), nil
}

// CloseProduct removes a product session.
func (s *DiscoveryService) CloseProduct(id uuid.UUID) error {
	if !s.products.Delete(id) {
		return sessionNotFound("product", id)
	}
	return nil
}

func productView(id uuid.UUID, snap productview.Snapshot, stale bool) *ProductView {
	return &ProductView{SessionID: id, Snapshot: snap, Stale: stale}
}
