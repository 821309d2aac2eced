package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/pkg/middleware"
	"github.com/atul950/NearBuy-ed/pkg/pagination"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/catalog/memory"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/filter"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/view"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type fakeHistory struct {
	mu      sync.Mutex
	records []domain.SearchRecord
	err     error
}

func (f *fakeHistory) Record(_ context.Context, rec *domain.SearchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeHistory) ListByUser(_ context.Context, userID string, _ int) ([]domain.SearchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.SearchRecord{}
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistory) DeleteByUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	var n int64
	for _, r := range f.records {
		if r.UserID == userID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return n, nil
}

type reviewEvent struct {
	productID domain.ID
	userID    string
	rating    int
}

type fakeEvents struct {
	mu       sync.Mutex
	searches []domain.SearchRecord
	reviews  []reviewEvent
	err      error
}

func (f *fakeEvents) PublishSearchPerformed(_ context.Context, rec domain.SearchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.searches = append(f.searches, rec)
	return nil
}

func (f *fakeEvents) PublishReviewSubmitted(_ context.Context, productID domain.ID, userID string, rating int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reviews = append(f.reviews, reviewEvent{productID, userID, rating})
	return nil
}

type fixture struct {
	svc     *DiscoveryService
	history *fakeHistory
	events  *fakeEvents
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cat := memory.New()
	require.NoError(t, memory.Seed(cat))

	f := fixture{history: &fakeHistory{}, events: &fakeEvents{}}
	f.svc = NewDiscoveryService(Dependencies{
		Catalog:    cat,
		History:    f.history,
		Events:     f.events,
		SessionTTL: time.Hour,
	}, newTestLogger())
	f.svc.now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func asUser(id string) context.Context {
	return middleware.WithClaims(context.Background(), &middleware.Claims{
		UserID: id,
		Name:   "Asha",
		Token:  "token-" + id,
	})
}

func TestOpenSearch_RecordsAndAnnounces(t *testing.T) {
	f := newFixture(t)

	v, err := f.svc.OpenSearch(asUser("42"), "?q=rice", DefaultRender())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, v.SessionID)
	assert.Equal(t, "rice", v.State.Query)
	assert.Equal(t, "q=rice", v.Location)
	assert.Equal(t, 2, v.Cards.TotalCount)
	assert.Nil(t, v.Failure)
	assert.False(t, v.Loading)

	require.Len(t, f.history.records, 1)
	rec := f.history.records[0]
	assert.Equal(t, "42", rec.UserID)
	assert.Equal(t, "rice", rec.Query)
	assert.Equal(t, 2, rec.ResultCount)
	assert.Equal(t, "q=rice", rec.Location)
	require.Len(t, f.events.searches, 1)
	assert.Equal(t, "42", f.events.searches[0].UserID)
}

func TestOpenSearch_AnonymousIsAnnouncedButNotStored(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.OpenSearch(context.Background(), "city=Pune", DefaultRender())
	require.NoError(t, err)

	assert.Empty(t, f.history.records)
	require.Len(t, f.events.searches, 1)
	assert.Empty(t, f.events.searches[0].UserID)
	assert.Equal(t, "Pune", f.events.searches[0].City)
}

func TestOpenSearch_MalformedLocation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.OpenSearch(context.Background(), "q=%zz", DefaultRender())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, 0, f.svc.searches.Len())
}

func TestOpenSearch_HistoryErrorDoesNotFailSearch(t *testing.T) {
	f := newFixture(t)
	f.history.err = errors.New("db down")
	f.events.err = errors.New("broker down")

	v, err := f.svc.OpenSearch(asUser("42"), "q=rice", DefaultRender())
	require.NoError(t, err)
	assert.Equal(t, 2, v.Cards.TotalCount)
}

func TestSetSearchFilter(t *testing.T) {
	f := newFixture(t)
	ctx := asUser("42")
	v, err := f.svc.OpenSearch(ctx, "", DefaultRender())
	require.NoError(t, err)

	v, err = f.svc.SetSearchFilter(ctx, v.SessionID, filter.KeyCity, "Nagpur", DefaultRender())
	require.NoError(t, err)
	assert.Equal(t, "city=Nagpur", v.Location)
	assert.Equal(t, 2, v.Cards.TotalCount)

	v, err = f.svc.SetSearchFilter(ctx, v.SessionID, filter.KeySortBy, filter.SortPriceAsc, DefaultRender())
	require.NoError(t, err)
	require.Len(t, v.Cards.Items, 2)
	assert.Equal(t, "55.00", v.Cards.Items[0].Price)
	assert.Len(t, f.history.records, 3)
}

func TestSetSearchFilter_UnknownKeyChangesNothing(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.OpenSearch(context.Background(), "q=rice", DefaultRender())
	require.NoError(t, err)

	_, err = f.svc.SetSearchFilter(context.Background(), v.SessionID, "colour", "red", DefaultRender())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	got, err := f.svc.GetSearch(v.SessionID, DefaultRender())
	require.NoError(t, err)
	assert.Equal(t, "q=rice", got.Location)
}

func TestSetSearchFilter_InvertedPriceRangeIsReportedInView(t *testing.T) {
	f := newFixture(t)
	ctx := asUser("42")
	v, err := f.svc.OpenSearch(ctx, "min_price=500", DefaultRender())
	require.NoError(t, err)
	recorded := len(f.history.records)

	v, err = f.svc.SetSearchFilter(ctx, v.SessionID, filter.KeyMaxPrice, "100", DefaultRender())
	require.NoError(t, err)

	require.NotNil(t, v.Failure)
	assert.Equal(t, "INVALID_INPUT", v.Failure.Kind)
	assert.Equal(t, "100", v.State.MaxPrice)
	assert.Empty(t, v.Cards.Items)
	assert.Len(t, f.history.records, recorded)
}

func TestClearSearch(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.OpenSearch(context.Background(), "q=rice&city=Pune", DefaultRender())
	require.NoError(t, err)

	v, err = f.svc.ClearSearch(context.Background(), v.SessionID, DefaultRender())
	require.NoError(t, err)
	assert.True(t, v.State.IsZero())
	assert.Empty(t, v.Location)
	assert.Equal(t, 6, v.Cards.TotalCount)
}

func TestNavigateAndRefreshSearch(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.OpenSearch(context.Background(), "", DefaultRender())
	require.NoError(t, err)

	v, err = f.svc.NavigateSearch(context.Background(), v.SessionID, "?category=Electronics", DefaultRender())
	require.NoError(t, err)
	assert.Equal(t, "Electronics", v.State.Category)
	assert.Equal(t, 1, v.Cards.TotalCount)

	v, err = f.svc.RefreshSearch(context.Background(), v.SessionID, DefaultRender())
	require.NoError(t, err)
	assert.Equal(t, 1, v.Cards.TotalCount)
	assert.Len(t, f.events.searches, 2)
}

func TestGetSearch_PaginatesAndLaysOutCards(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.OpenSearch(context.Background(), "city=Pune", DefaultRender())
	require.NoError(t, err)
	require.Equal(t, 4, v.Cards.TotalCount)

	r := Render{Mode: view.List, Page: pagination.Params{Page: 2, PerPage: 3, Offset: 3}}
	got, err := f.svc.GetSearch(v.SessionID, r)
	require.NoError(t, err)

	assert.Equal(t, view.List, got.Mode)
	assert.Len(t, got.Cards.Items, 1)
	assert.Equal(t, 2, got.Cards.TotalPages)
	assert.True(t, got.Cards.HasPrev)
	assert.False(t, got.Cards.HasNext)
	assert.Equal(t, view.List, got.Cards.Items[0].Layout)
	assert.NotEmpty(t, got.Cards.Items[0].Description)
}

func TestSearchSession_NotFoundAndClose(t *testing.T) {
	f := newFixture(t)
	missing := uuid.New()

	_, err := f.svc.GetSearch(missing, DefaultRender())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.SetSearchFilter(context.Background(), missing, filter.KeyQuery, "x", DefaultRender())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	v, err := f.svc.OpenSearch(context.Background(), "", DefaultRender())
	require.NoError(t, err)
	require.NoError(t, f.svc.CloseSearch(v.SessionID))
	assert.ErrorIs(t, f.svc.CloseSearch(v.SessionID), apperrors.ErrNotFound)
}

func TestOpenProduct(t *testing.T) {
	f := newFixture(t)

	v, err := f.svc.OpenProduct(context.Background(), "1")
	require.NoError(t, err)

	require.NotNil(t, v.Product)
	assert.Equal(t, "Basmati Rice 5kg", v.Product.ProductName)
	require.NotNil(t, v.Selected)
	assert.Equal(t, domain.ID("1"), v.Selected.ShopID)
	assert.Len(t, v.Shops, 2)
	assert.Equal(t, 2, v.Stats.OfferCount)
	assert.Nil(t, v.Selection)
}

func TestOpenProduct_NotFoundRegistersNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.OpenProduct(context.Background(), "999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, f.svc.products.Len())
}

func TestSelectOffer(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.OpenProduct(context.Background(), "1")
	require.NoError(t, err)

	v, err = f.svc.SelectOffer(v.SessionID, "3")
	require.NoError(t, err)
	require.NotNil(t, v.Selection)
	assert.True(t, *v.Selection)
	assert.Equal(t, domain.ID("3"), v.Selected.ShopID)

	v, err = f.svc.SelectOffer(v.SessionID, "2")
	require.NoError(t, err)
	require.NotNil(t, v.Selection)
	assert.False(t, *v.Selection)

	v, err = f.svc.GetProduct(v.SessionID)
	require.NoError(t, err)
	assert.Nil(t, v.Selection)
	assert.Equal(t, domain.ID("3"), v.Selected.ShopID)
}

func TestSubmitReview(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.OpenProduct(context.Background(), "1")
	require.NoError(t, err)

	v, err = f.svc.SubmitReview(asUser("42"), v.SessionID, 4, "good rice")
	require.NoError(t, err)

	require.Len(t, v.Reviews, 1)
	assert.Equal(t, 4, v.Reviews[0].Rating)
	assert.InDelta(t, 4.0, v.Rating.AverageRating, 0.001)
	require.Len(t, f.events.reviews, 1)
	assert.Equal(t, reviewEvent{"1", "42", 4}, f.events.reviews[0])
}

func TestSubmitReview_Rejections(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.OpenProduct(context.Background(), "1")
	require.NoError(t, err)

	_, err = f.svc.SubmitReview(context.Background(), v.SessionID, 4, "anon")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.svc.SubmitReview(asUser("42"), v.SessionID, 6, "too good")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	got, err := f.svc.GetProduct(v.SessionID)
	require.NoError(t, err)
	assert.Empty(t, got.Reviews)
	assert.Empty(t, f.events.reviews)
}

func TestRefreshAndCloseProduct(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.OpenProduct(context.Background(), "2")
	require.NoError(t, err)

	v, err = f.svc.RefreshProduct(context.Background(), v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Stats.OfferCount)

	require.NoError(t, f.svc.CloseProduct(v.SessionID))
	_, err = f.svc.GetProduct(v.SessionID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestShopSessions(t *testing.T) {
	f := newFixture(t)

	v, err := f.svc.OpenShop(context.Background(), "1", "", view.Grid)
	require.NoError(t, err)
	require.NotNil(t, v.Shop)
	assert.Equal(t, "Sharma Kirana Store", v.Shop.ShopName)
	assert.Equal(t, 3, v.TotalProducts)
	assert.Len(t, v.Products, 3)
	assert.Len(t, v.Timings, 7)

	v, err = f.svc.GetShop(v.SessionID, "DAL", view.List)
	require.NoError(t, err)
	require.Len(t, v.Products, 1)
	assert.Equal(t, "Toor Dal 1kg", v.Products[0].Title)
	assert.Equal(t, view.List, v.Mode)

	v, err = f.svc.RefreshShop(context.Background(), v.SessionID, "", view.Grid)
	require.NoError(t, err)
	assert.Len(t, v.Products, 3)

	require.NoError(t, f.svc.CloseShop(v.SessionID))
	assert.ErrorIs(t, f.svc.CloseShop(v.SessionID), apperrors.ErrNotFound)
}

func TestOpenShop_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.OpenShop(context.Background(), "99", "", view.Grid)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, f.svc.shops.Len())
}

func TestCategories_DefaultsToCatalog(t *testing.T) {
	f := newFixture(t)

	cats, err := f.svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 3)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	ctx := asUser("42")
	_, err := f.svc.OpenSearch(ctx, "q=rice", DefaultRender())
	require.NoError(t, err)
	_, err = f.svc.OpenSearch(asUser("7"), "q=dal", DefaultRender())
	require.NoError(t, err)

	_, err = f.svc.History(context.Background(), 10)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	records, err := f.svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rice", records[0].Query)

	n, err := f.svc.ClearHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	records, err = f.svc.History(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistory_DisabledReturnsEmpty(t *testing.T) {
	cat := memory.New()
	require.NoError(t, memory.Seed(cat))
	svc := NewDiscoveryService(Dependencies{Catalog: cat, SessionTTL: time.Hour}, newTestLogger())

	records, err := svc.History(asUser("42"), 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	n, err := svc.ClearHistory(asUser("42"))
	require.NoError(t, err)
	assert.Zero(t, n)
}
