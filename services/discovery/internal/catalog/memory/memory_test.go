package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/filter"
)

func newSeeded(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	c := New(opts...)
	require.NoError(t, Seed(c))
	return c
}

func productIDs(listings []domain.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.ProductID.String() + "@" + l.Offer.ShopID.String()
	}
	return out
}

func TestSearch_InStockOnly(t *testing.T) {
	c := newSeeded(t)

	listings, err := c.Search(context.Background(), filter.State{Query: "dal"})

	require.NoError(t, err)
	assert.Equal(t, []string{"2@1"}, productIDs(listings))
}

func TestSearch_Filters(t *testing.T) {
	c := newSeeded(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		state filter.State
		want  []string
	}{
		{"all", filter.State{}, []string{"1@1", "1@3", "2@1", "3@2", "4@1", "4@3"}},
		{"case-insensitive name", filter.State{Query: "RICE"}, []string{"1@1", "1@3"}},
		{"city substring", filter.State{City: "nag"}, []string{"1@3", "4@3"}},
		{"category", filter.State{Category: "electro"}, []string{"3@2"}},
		{"price window", filter.State{MinPrice: "60", MaxPrice: "650"}, []string{"1@1", "1@3", "2@1", "4@1"}},
		{"no match", filter.State{Query: "laptop"}, []string{}},
		{"price asc", filter.State{Category: "Groceries", SortBy: filter.SortPriceAsc}, []string{"2@1", "1@3", "1@1"}},
		{"price desc", filter.State{Query: "notebook", SortBy: filter.SortPriceDesc}, []string{"4@1", "4@3"}},
		{"newest", filter.State{City: "Pune", SortBy: filter.SortNewest}, []string{"4@1", "3@2", "2@1", "1@1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listings, err := c.Search(ctx, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, productIDs(listings))
		})
	}
}

func TestSearch_InvalidState(t *testing.T) {
	c := newSeeded(t)

	_, err := c.Search(context.Background(), filter.State{MinPrice: "10", MaxPrice: "1"})

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestProduct(t *testing.T) {
	c := newSeeded(t)

	agg, err := c.Product(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, "Groceries", agg.Category)
	require.Len(t, agg.Offers, 2)
	assert.Equal(t, domain.ID("1"), agg.Offers[0].ShopID)
	assert.Equal(t, "Kothrud", agg.Offers[0].Area)
	assert.Empty(t, agg.Reviews)
}

func TestProduct_NotFoundWhenUnknownOrOutOfStock(t *testing.T) {
	c := newSeeded(t)
	require.NoError(t, c.SetStock("3", "2", decimal.NewFromInt(1299), 0))

	for _, id := range []domain.ID{"99", "3"} {
		_, err := c.Product(context.Background(), id)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound), "product %s", id)
	}
}

func TestShop(t *testing.T) {
	c := newSeeded(t)

	shop, err := c.Shop(context.Background(), "3")

	require.NoError(t, err)
	assert.Equal(t, "Nagpur", shop.Address.City)
	assert.Len(t, shop.Timings, 7)
	require.Len(t, shop.Products, 2, "out-of-stock dal is hidden")
	assert.Equal(t, "Basmati Rice 5kg", shop.Products[0].ProductName)

	_, err = c.Shop(context.Background(), "42")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCategories(t *testing.T) {
	cats, err := newSeeded(t).Categories(context.Background())

	require.NoError(t, err)
	assert.Len(t, cats, 3)
}

func TestSubmitReview(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newSeeded(t,
		WithClock(func() time.Time { return at }),
		WithReviewer(func(token string) (string, error) {
			if token != "good" {
				return "", errors.New("bad signature")
			}
			return "Asha", nil
		}),
	)
	ctx := context.Background()

	require.NoError(t, c.SubmitReview(ctx, "good", "1", 4, "fragrant"))

	agg, err := c.Product(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Review{{UserName: "Asha", Rating: 4, Text: "fragrant", CreatedAt: at}}, agg.Reviews)

	assert.True(t, errors.Is(c.SubmitReview(ctx, "bad", "1", 4, ""), apperrors.ErrUnauthorized))
	assert.True(t, errors.Is(c.SubmitReview(ctx, "good", "1", 9, ""), apperrors.ErrInvalidInput))
	assert.True(t, errors.Is(c.SubmitReview(ctx, "good", "77", 3, ""), apperrors.ErrNotFound))
}

func TestSetStock_Validation(t *testing.T) {
	c := newSeeded(t)

	assert.True(t, errors.Is(c.SetStock("1", "1", decimal.NewFromInt(-1), 1), apperrors.ErrInvalidInput))
	assert.True(t, errors.Is(c.SetStock("99", "1", decimal.NewFromInt(1), 1), apperrors.ErrNotFound))
	assert.True(t, errors.Is(c.SetStock("1", "99", decimal.NewFromInt(1), 1), apperrors.ErrNotFound))
}
