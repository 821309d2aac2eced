// Package shopview holds the state of one open shop page.
package shopview

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/metrics"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/sequence"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/view"
)

// Source loads a shop.
type Source interface {
	Shop(ctx context.Context, id domain.ID) (*domain.Shop, error)
}

// ShopInfo is the shop without its product list.
type ShopInfo struct {
	ShopID    domain.ID      `json:"shop_id"`
	ShopName  string         `json:"shop_name"`
	ShopImage string         `json:"shop_image,omitempty"`
	OwnerName string         `json:"owner_name"`
	Phone     string         `json:"phone"`
	Address   domain.Address `json:"address"`
}

// Snapshot is a rendered shop view.
type Snapshot struct {
	ShopID        domain.ID       `json:"shop_id"`
	Shop          *ShopInfo       `json:"shop"`
	Timings       []DayHours      `json:"timings"`
	Query         string          `json:"q"`
	Mode          view.Mode       `json:"mode"`
	Products      []view.Card     `json:"products"`
	TotalProducts int             `json:"total_products"`
	Failure       *domain.Failure `json:"failure"`
	Loading       bool            `json:"loading"`
}

// Outcome reports what became of the fetch triggered by a call.
type Outcome struct {
	Stale bool
	Err   error
}

// Session owns one shop view.
type Session struct {
	shopID  domain.ID
	source  Source
	logger  *slog.Logger
	tracker sequence.Tracker

	mu      sync.Mutex
	shop    *domain.Shop
	failure error
	loading bool
}

// New creates a session for shopID. Nothing is fetched until Load.
func New(shopID domain.ID, source Source, logger *slog.Logger) *Session {
	return &Session{
		shopID: shopID,
		source: source,
		logger: logger.With(slog.String("shop_id", shopID.String())),
	}
}

// ShopID returns the shop this session shows.
func (s *Session) ShopID() domain.ID { return s.shopID }

// Load fetches the shop. Only the response to the latest Load is applied.
func (s *Session) Load(ctx context.Context) Outcome {
	target := "shop:" + s.shopID.String()

	s.mu.Lock()
	ticket := s.tracker.Next(target)
	s.loading = true
	s.mu.Unlock()

	shop, err := s.source.Shop(ctx, s.shopID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tracker.IsLatest(target, ticket) {
		metrics.StaleDiscarded("shop")
		s.logger.DebugContext(ctx, "discarded stale shop response", slog.Uint64("ticket", ticket))
		return Outcome{Stale: true}
	}

	s.loading = false
	if err != nil {
		s.failure = err
		if errors.Is(err, apperrors.ErrNotFound) {
			s.shop = nil
		}
		return Outcome{Err: err}
	}
	s.shop = shop
	s.failure = nil
	return Outcome{}
}

// Snapshot renders the shop with its products narrowed to those whose name
// or brand contains query, ignoring case.
func (s *Session) Snapshot(query string, mode view.Mode) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ShopID:   s.shopID,
		Timings:  FormatTimings(nil),
		Query:    query,
		Mode:     view.ParseMode(string(mode)),
		Products: []view.Card{},
		Failure:  domain.NewFailure(s.failure),
		Loading:  s.loading,
	}
	if s.shop == nil {
		return snap
	}

	snap.Shop = &ShopInfo{
		ShopID:    s.shop.ShopID,
		ShopName:  s.shop.ShopName,
		ShopImage: s.shop.ShopImage,
		OwnerName: s.shop.OwnerName,
		Phone:     s.shop.Phone,
		Address:   s.shop.Address,
	}
	snap.Timings = FormatTimings(s.shop.Timings)
	snap.TotalProducts = len(s.shop.Products)
	snap.Products = view.Project(FilterProducts(s.shop.Products, query), snap.Mode, view.ShopProductCard)
	return snap
}

// FilterProducts keeps the products whose name or brand contains query,
// ignoring case. An empty query keeps everything.
func FilterProducts(products []domain.ShopProduct, query string) []domain.ShopProduct {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.ShopProduct, 0, len(products))
	for _, p := range products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.ProductName), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) {
			out = append(out, p)
		}
	}
	return out
}
