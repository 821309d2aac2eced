// Package memory is an in-process Catalog backend used for local development
// and tests. It follows the Catalog Service's rules: substring filters, and
// only in-stock offers are ever returned.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/catalog"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/filter"
)

// Product is a catalog product as stored by the backend.
type Product struct {
	ID          domain.ID
	Name        string
	Brand       string
	Description string
	Color       string
	CategoryID  domain.ID
	CreatedAt   time.Time
}

type stockEntry struct {
	productID domain.ID
	shopID    domain.ID
	price     decimal.Decimal
	stock     int
}

type storedReview struct {
	productID domain.ID
	review    domain.Review
}

// ReviewerFunc resolves a bearer token to the display name of its holder.
type ReviewerFunc func(token string) (string, error)

// Option configures a Catalog.
type Option func(*Catalog)

// WithReviewer sets how review tokens are resolved. Without it every token
// is accepted and reviews are signed "shopper".
func WithReviewer(fn ReviewerFunc) Option {
	return func(c *Catalog) { c.reviewer = fn }
}

// WithClock overrides the time source used to stamp reviews.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// Catalog is an in-memory implementation of catalog.Catalog.
// Thread-safe via sync.RWMutex.
type Catalog struct {
	mu         sync.RWMutex
	categories []domain.Category
	products   map[domain.ID]Product
	shops      map[domain.ID]domain.Shop
	stock      []stockEntry
	reviews    []storedReview

	reviewer ReviewerFunc
	now      func() time.Time
}

var _ catalog.Catalog = (*Catalog)(nil)

// New creates an empty in-memory catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		products: make(map[domain.ID]Product),
		shops:    make(map[domain.ID]domain.Shop),
		reviewer: func(string) (string, error) { return "shopper", nil },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddCategory stores a category.
func (c *Catalog) AddCategory(cat domain.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = append(c.categories, cat)
}

// AddProduct stores or replaces a product.
func (c *Catalog) AddProduct(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

// AddShop stores or replaces a shop. Its Products field is ignored; use
// SetStock to list products in a shop.
func (c *Catalog) AddShop(s domain.Shop) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.Products = nil
	c.shops[s.ShopID] = s
}

// SetStock records the price and stock of a product in a shop.
func (c *Catalog) SetStock(productID, shopID domain.ID, price decimal.Decimal, stock int) error {
	if price.IsNegative() || stock < 0 {
		return apperrors.InvalidInput("price and stock must not be negative")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.products[productID]; !ok {
		return apperrors.NotFound("product", productID.String())
	}
	if _, ok := c.shops[shopID]; !ok {
		return apperrors.NotFound("shop", shopID.String())
	}
	for i, e := range c.stock {
		if e.productID == productID && e.shopID == shopID {
			c.stock[i].price, c.stock[i].stock = price, stock
			return nil
		}
	}
	c.stock = append(c.stock, stockEntry{productID: productID, shopID: shopID, price: price, stock: stock})
	return nil
}

// Search implements catalog.Catalog.
func (c *Catalog) Search(_ context.Context, state filter.State) ([]domain.Listing, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}
	minPrice, maxPrice, _ := state.PriceRange()

	c.mu.RLock()
	defer c.mu.RUnlock()

	type row struct {
		listing domain.Listing
		created time.Time
	}
	rows := make([]row, 0)
	for _, e := range c.stock {
		if e.stock <= 0 {
			continue
		}
		p := c.products[e.productID]
		shop := c.shops[e.shopID]
		category := c.categoryName(p.CategoryID)

		if !containsFold(p.Name, state.Query) ||
			!containsFold(shop.Address.City, state.City) ||
			!containsFold(category, state.Category) {
			continue
		}
		if minPrice.Valid && e.price.LessThan(minPrice.Decimal) {
			continue
		}
		if maxPrice.Valid && e.price.GreaterThan(maxPrice.Decimal) {
			continue
		}

		rows = append(rows, row{
			listing: domain.Listing{
				ProductSummary: summary(p, category),
				Offer:          offer(e, shop),
			},
			created: p.CreatedAt,
		})
	}

	switch state.Sort() {
	case filter.SortPriceAsc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].listing.Offer.Price.LessThan(rows[j].listing.Offer.Price) })
	case filter.SortPriceDesc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].listing.Offer.Price.GreaterThan(rows[j].listing.Offer.Price) })
	case filter.SortNewest:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].created.After(rows[j].created) })
	}

	listings := make([]domain.Listing, len(rows))
	for i, r := range rows {
		listings[i] = r.listing
	}
	return listings, nil
}

// Product implements catalog.Catalog. A product without stock anywhere is
// reported as not found.
func (c *Catalog) Product(_ context.Context, id domain.ID) (*domain.ProductAggregate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id.String())
	}

	agg := &domain.ProductAggregate{
		ProductSummary: summary(p, c.categoryName(p.CategoryID)),
		Offers:         make([]domain.Offer, 0),
		Reviews:        make([]domain.Review, 0),
	}
	for _, e := range c.stock {
		if e.productID == id && e.stock > 0 {
			agg.Offers = append(agg.Offers, offer(e, c.shops[e.shopID]))
		}
	}
	if len(agg.Offers) == 0 {
		return nil, apperrors.NotFound("product", id.String())
	}
	for _, r := range c.reviews {
		if r.productID == id {
			agg.Reviews = append(agg.Reviews, r.review)
		}
	}
	return agg, nil
}

// Shop implements catalog.Catalog.
func (c *Catalog) Shop(_ context.Context, id domain.ID) (*domain.Shop, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.shops[id]
	if !ok {
		return nil, apperrors.NotFound("shop", id.String())
	}
	s.Timings = append([]domain.Timing{}, s.Timings...)
	s.Products = make([]domain.ShopProduct, 0)
	for _, e := range c.stock {
		if e.shopID != id || e.stock <= 0 {
			continue
		}
		p := c.products[e.productID]
		s.Products = append(s.Products, domain.ShopProduct{
			ProductID:   p.ID,
			ProductName: p.Name,
			Brand:       p.Brand,
			Category:    c.categoryName(p.CategoryID),
			Price:       e.price,
			Stock:       e.stock,
		})
	}
	return &s, nil
}

// Categories implements catalog.Catalog.
func (c *Catalog) Categories(_ context.Context) ([]domain.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Category{}, c.categories...), nil
}

// SubmitReview implements catalog.Catalog.
func (c *Catalog) SubmitReview(_ context.Context, token string, productID domain.ID, rating int, text string) error {
	name, err := c.reviewer(token)
	if err != nil {
		return apperrors.Unauthorized(fmt.Sprintf("invalid token: %v", err))
	}
	if rating < 1 || rating > 5 {
		return apperrors.InvalidInput("rating must be between 1 and 5")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.products[productID]; !ok {
		return apperrors.NotFound("product", productID.String())
	}
	c.reviews = append(c.reviews, storedReview{
		productID: productID,
		review: domain.Review{
			UserName:  name,
			Rating:    rating,
			Text:      text,
			CreatedAt: c.now().UTC(),
		},
	})
	return nil
}

func (c *Catalog) categoryName(id domain.ID) string {
	for _, cat := range c.categories {
		if cat.CategoryID == id {
			return cat.CategoryName
		}
	}
	return ""
}

func summary(p Product, category string) domain.ProductSummary {
	return domain.ProductSummary{
		ProductID:   p.ID,
		ProductName: p.Name,
		Brand:       p.Brand,
		Description: p.Description,
		Color:       p.Color,
		Category:    category,
	}
}

func offer(e stockEntry, s domain.Shop) domain.Offer {
	return domain.Offer{
		ProductID: e.productID,
		ShopID:    s.ShopID,
		ShopName:  s.ShopName,
		ShopImage: s.ShopImage,
		Price:     e.price,
		Stock:     e.stock,
		Area:      s.Address.Area,
		City:      s.Address.City,
		Landmark:  s.Address.Landmark,
	}
}

// containsFold reports whether needle occurs in haystack ignoring case. An
// empty needle matches everything.
func containsFold(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
