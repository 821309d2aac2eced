package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/pkg/httpclient"
	"github.com/atul950/NearBuy-ed/pkg/tracing"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/filter"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/metrics"
)

// maxBodyBytes caps how much of a catalog response is decoded.
const maxBodyBytes = 8 << 20

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the Catalog Service over HTTP. Retries and circuit
// breaking belong to the HTTPDoer it is given.
type Client struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
	tracer  trace.Tracer
}

var _ Catalog = (*Client)(nil)

// NewClient creates a catalog client for the service at baseURL.
func NewClient(doer HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		tracer:  tracing.Tracer("github.com/atul950/NearBuy-ed/services/discovery/catalog"),
	}
}

// Search implements Catalog.
func (c *Client) Search(ctx context.Context, state filter.State) (listings []domain.Listing, err error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	ctx, finish := c.observe(ctx, "search", attribute.String("catalog.query", filter.Encode(state).String()))
	defer func() { finish(err) }()

	var payload searchPayload
	if err := c.getJSON(ctx, "/api/products/search", filter.Encode(state).Values(), &payload); err != nil {
		return nil, err
	}
	listings, err = payload.listings()
	if err != nil {
		return nil, malformed(err)
	}

	c.logger.DebugContext(ctx, "catalog search completed",
		slog.Int("results", len(listings)),
		slog.String("sort", state.Sort()),
	)
	return listings, nil
}

// Product implements Catalog.
func (c *Client) Product(ctx context.Context, id domain.ID) (agg *domain.ProductAggregate, err error) {
	ctx, finish := c.observe(ctx, "product", attribute.String("catalog.product_id", id.String()))
	defer func() { finish(err) }()

	var payload productPayload
	if err := c.getJSON(ctx, "/api/products/"+url.PathEscape(id.String()), nil, &payload); err != nil {
		return nil, err
	}
	if agg, err = payload.aggregate(); err != nil {
		return nil, malformed(err)
	}
	return agg, nil
}

// Shop implements Catalog.
func (c *Client) Shop(ctx context.Context, id domain.ID) (shop *domain.Shop, err error) {
	ctx, finish := c.observe(ctx, "shop", attribute.String("catalog.shop_id", id.String()))
	defer func() { finish(err) }()

	var payload shopPayload
	if err := c.getJSON(ctx, "/api/shops/"+url.PathEscape(id.String()), nil, &payload); err != nil {
		return nil, err
	}
	if shop, err = payload.shop(); err != nil {
		return nil, malformed(err)
	}
	return shop, nil
}

// Categories implements Catalog.
func (c *Client) Categories(ctx context.Context) (categories []domain.Category, err error) {
	ctx, finish := c.observe(ctx, "categories")
	defer func() { finish(err) }()

	var payload categoriesPayload
	if err := c.getJSON(ctx, "/api/products/categories", nil, &payload); err != nil {
		return nil, err
	}
	for i, cat := range payload.Categories {
		if cat.CategoryID == "" {
			return nil, malformed(fmt.Errorf("category %d has no id", i))
		}
	}
	if payload.Categories == nil {
		payload.Categories = []domain.Category{}
	}
	return payload.Categories, nil
}

// SubmitReview implements Catalog.
func (c *Client) SubmitReview(ctx context.Context, token string, productID domain.ID, rating int, text string) (err error) {
	ctx, finish := c.observe(ctx, "submit_review", attribute.String("catalog.product_id", productID.String()))
	defer func() { finish(err) }()

	body, err := json.Marshal(reviewRequest{ProductID: wireID(productID), Rating: rating, Text: text})
	if err != nil {
		return apperrors.Internal(fmt.Errorf("encode review: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/reviews", bytes.NewReader(body))
	if err != nil {
		return apperrors.Internal(fmt.Errorf("create review request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
	return nil
}

// Ping checks that the catalog answers requests.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Categories(ctx)
	return err
}

// observe starts a span for a catalog operation and returns the function
// that records its outcome.
func (c *Client) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "catalog."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error) {
		metrics.ObserveCatalog(op, start, err)
		if err != nil {
			c.logger.WarnContext(ctx, "catalog request failed",
				slog.String("operation", op),
				slog.String("kind", apperrors.Kind(err)),
				slog.String("error", err.Error()),
			)
		}
		tracing.End(span, err)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return malformed(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

// send executes req and maps every non-2xx outcome to an AppError. On
// success the caller owns the response body.
func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.TransportFailure(ServiceName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, ServiceName)
	}
	return resp, nil
}

func malformed(err error) error {
	return apperrors.TransportFailure(ServiceName, fmt.Errorf("malformed payload: %w", err))
}

// wireID sends numeric ids as JSON numbers, which the catalog expects.
func wireID(id domain.ID) any {
	if n, err := strconv.ParseInt(id.String(), 10, 64); err == nil {
		return n
	}
	return id.String()
}
