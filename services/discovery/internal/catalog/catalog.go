// Package catalog reads products, shops and categories from the Catalog
// Service and forwards review writes to it.
package catalog

import (
	"context"

	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/filter"
)

// ServiceName identifies the catalog in errors, logs and metrics.
const ServiceName = "catalog-service"

// Catalog is the read and review-write surface of the Catalog Service.
// Failures are returned as *errors.AppError: a missing product or shop is
// NOT_FOUND, anything the transport or payload gets wrong is
// TRANSPORT_FAILURE. Implementations do not retry.
type Catalog interface {
	// Search returns matching rows. An empty slice is a successful result.
	// The state is validated first and an invalid state never reaches the
	// network.
	Search(ctx context.Context, state filter.State) ([]domain.Listing, error)

	// Product returns a product with its in-stock offers and reviews.
	Product(ctx context.Context, id domain.ID) (*domain.ProductAggregate, error)

	// Shop returns a shop with its address, timings and in-stock products.
	Shop(ctx context.Context, id domain.ID) (*domain.Shop, error)

	// Categories lists every product category.
	Categories(ctx context.Context) ([]domain.Category, error)

	// SubmitReview records a review as the holder of token.
	SubmitReview(ctx context.Context, token string, productID domain.ID, rating int, text string) error
}
