// Package event publishes discovery domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/atul950/NearBuy-ed/pkg/kafka"
	"github.com/atul950/NearBuy-ed/pkg/logger"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
)

// Kafka topics for discovery events.
const (
	TopicSearchPerformed = "discovery.search.performed"
	TopicReviewSubmitted = "discovery.review.submitted"
)

// Aggregate types.
const (
	AggregateTypeSearch  = "search"
	AggregateTypeProduct = "product"
)

// SourceDiscoveryService identifies events originating from this service.
const SourceDiscoveryService = "discovery-service"

// SearchPerformedData is the payload of a search.performed event.
type SearchPerformedData struct {
	UserID      string `json:"user_id,omitempty"`
	Location    string `json:"location"`
	Query       string `json:"query,omitempty"`
	Category    string `json:"category,omitempty"`
	City        string `json:"city,omitempty"`
	ResultCount int    `json:"result_count"`
}

// ReviewSubmittedData is the payload of a review.submitted event.
type ReviewSubmittedData struct {
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes discovery events.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates an event producer. *pkgkafka.Producer satisfies the
// publisher it needs.
func NewProducer(kafka publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishSearchPerformed publishes a search.performed event keyed by the
// shopper, or by the location for anonymous searches.
func (p *Producer) PublishSearchPerformed(ctx context.Context, rec domain.SearchRecord) error {
	data := SearchPerformedData{
		UserID:      rec.UserID,
		Location:    rec.Location,
		Query:       rec.Query,
		Category:    rec.Category,
		City:        rec.City,
		ResultCount: rec.ResultCount,
	}
	key := rec.UserID
	if key == "" {
		key = rec.Location
	}

	event, err := pkgkafka.NewEvent(TopicSearchPerformed, key, AggregateTypeSearch, SourceDiscoveryService, data)
	if err != nil {
		return fmt.Errorf("create search.performed event: %w", err)
	}
	return p.publish(ctx, TopicSearchPerformed, event)
}

// PublishReviewSubmitted publishes a review.submitted event keyed by product.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, productID domain.ID, userID string, rating int) error {
	data := ReviewSubmittedData{
		ProductID: productID.String(),
		UserID:    userID,
		Rating:    rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewSubmitted, productID.String(), AggregateTypeProduct, SourceDiscoveryService, data)
	if err != nil {
		return fmt.Errorf("create review.submitted event: %w", err)
	}
	return p.publish(ctx, TopicReviewSubmitted, event)
}

func (p *Producer) publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if id := logger.SessionIDFromContext(ctx); id != "" {
		event.WithMetadata("session_id", id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", event.EventType, err)
	}

	p.logger.DebugContext(ctx, "discovery event published",
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}
