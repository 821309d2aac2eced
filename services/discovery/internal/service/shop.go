package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/atul950/NearBuy-ed/pkg/logger"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/shopview"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/view"
)

// ShopView is what a shop session shows.
type ShopView struct {
	SessionID uuid.UUID `json:"session_id"`
	shopview.Snapshot
	Stale bool `json:"stale,omitempty"`
}

// OpenShop loads shopID into a new session. A shop that does not exist
// yields NOT_FOUND and no session.
func (s *DiscoveryService) OpenShop(ctx context.Context, shopID domain.ID, query string, mode view.Mode) (*ShopView, error) {
	sess := shopview.New(shopID, s.catalog, s.logger)
	out := sess.Load(ctx)
	if out.Err != nil && isNotFound(out.Err) {
		return nil, out.Err
	}

	id := s.shops.Add(sess)
	s.logger.DebugContext(logger.WithSessionID(ctx, id.String()), "shop session opened",
		slog.String("session_id", id.String()),
		slog.String("shop_id", shopID.String()),
	)
	return &ShopView{SessionID: id, Snapshot: sess.Snapshot(query, mode), Stale: out.Stale}, nil
}

// GetShop renders a shop session, narrowing its products to query.
func (s *DiscoveryService) GetShop(id uuid.UUID, query string, mode view.Mode) (*ShopView, error) {
	sess, ok := s.shops.Get(id)
	if !ok {
		return nil, sessionNotFound("shop", id)
	}
	return &ShopView{SessionID: id, Snapshot: sess.Snapshot(query, mode)}, nil
}

// RefreshShop re-fetches the shop of a session.
func (s *DiscoveryService) RefreshShop(ctx context.Context, id uuid.UUID, query string, mode view.Mode) (*ShopView, error) {
	sess, ok := s.shops.Get(id)
	if !ok {
		return nil, sessionNotFound("shop", id)
	}
	out := sess.Load(logger.WithSessionID(ctx, id.String()))
	return &ShopView{SessionID: id, Snapshot: sess.Snapshot(query, mode), Stale: out.Stale}, nil
}

// CloseShop removes a shop session.
func (s *DiscoveryService) CloseShop(id uuid.UUID) error {
	if !s.shops.Delete(id) {
		return sessionNotFound("shop", id)
	}
	return nil
}
