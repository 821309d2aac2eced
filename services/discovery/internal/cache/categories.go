// Package cache keeps slow-changing catalog data in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
)

const categoriesKey = "discovery:categories"

// CategoryLister lists catalog categories.
type CategoryLister interface {
	Categories(ctx context.Context) ([]domain.Category, error)
}

// Categories is a read-through Redis cache in front of a CategoryLister.
// Redis failures are logged and the source is used directly.
type Categories struct {
	client *redis.Client
	source CategoryLister
	ttl    time.Duration
	logger *slog.Logger
}

// NewCategories creates a category cache. A nil client disables caching.
func NewCategories(client *redis.Client, source CategoryLister, ttl time.Duration, logger *slog.Logger) *Categories {
	return &Categories{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

// Categories returns the cached categories, loading them from the source on
// a miss.
func (c *Categories) Categories(ctx context.Context) ([]domain.Category, error) {
	if c.client == nil {
		return c.source.Categories(ctx)
	}

	cached, err := c.get(ctx)
	switch {
	case err == nil:
		return cached, nil
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "category cache read failed", slog.String("error", err.Error()))
	}

	categories, err := c.source.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.set(ctx, categories); err != nil {
		c.logger.WarnContext(ctx, "category cache write failed", slog.String("error", err.Error()))
	}
	return categories, nil
}

// Invalidate drops the cached categories.
func (c *Categories) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, categoriesKey).Err(); err != nil {
		return fmt.Errorf("redis del categories: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *Categories) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Categories) get(ctx context.Context) ([]domain.Category, error) {
	data, err := c.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		return nil, err
	}
	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	return categories, nil
}

func (c *Categories) set(ctx context.Context, categories []domain.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	if err := c.client.Set(ctx, categoriesKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set categories: %w", err)
	}
	return nil
}
