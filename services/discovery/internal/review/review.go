// Package review derives rating figures from a product's reviews and submits
// new reviews to the catalog.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/auth"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// AverageRating returns the mean rating, or 0 when there are no reviews.
func AverageRating(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// Summary contains aggregate review statistics for a product.
type Summary struct {
	AverageRating float64     `json:"average_rating"`
	TotalCount    int         `json:"total_count"`
	Distribution  map[int]int `json:"distribution"`
}

// Summarize returns the rating summary of reviews. The average is rounded
// to one decimal.
func Summarize(reviews []domain.Review) Summary {
	s := Summary{
		AverageRating: math.Round(AverageRating(reviews)*10) / 10,
		TotalCount:    len(reviews),
		Distribution:  make(map[int]int, MaxRating),
	}
	for star := MinRating; star <= MaxRating; star++ {
		s.Distribution[star] = 0
	}
	for _, r := range reviews {
		s.Distribution[r.Rating]++
	}
	return s
}

// Submitter sends a review to the catalog on behalf of the token holder.
type Submitter interface {
	SubmitReview(ctx context.Context, token string, productID domain.ID, rating int, text string) error
}

// Ledger guards review writes. It never keeps reviews itself: after a
// successful Submit the caller re-fetches the product to observe the review.
type Ledger struct {
	submitter Submitter
	logger    *slog.Logger
}

// NewLedger creates a new review ledger.
func NewLedger(submitter Submitter, logger *slog.Logger) *Ledger {
	return &Ledger{submitter: submitter, logger: logger}
}

// Submit validates and forwards a review. A rating outside [1,5] fails with
// a validation error and a missing user with an unauthorized error; in both
// cases nothing is sent.
func (l *Ledger) Submit(ctx context.Context, user *auth.User, productID domain.ID, rating int, text string) error {
	if productID == "" {
		return apperrors.InvalidInput("product_id is required")
	}
	if rating < MinRating || rating > MaxRating {
		return apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	if user == nil {
		return apperrors.Unauthorized("login required to submit a review")
	}

	if err := l.submitter.SubmitReview(ctx, user.Token, productID, rating, text); err != nil {
		return fmt.Errorf("submit review: %w", err)
	}

	l.logger.InfoContext(ctx, "review submitted",
		slog.String("product_id", productID.String()),
		slog.String("user_id", user.ID),
		slog.Int("rating", rating),
	)
	return nil
}
