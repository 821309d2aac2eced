package domain

import (
	"time"

	"github.com/google/uuid"
)

// SearchRecord is one applied search of an authenticated shopper.
type SearchRecord struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Location    string    `json:"location"`
	Query       string    `json:"query,omitempty"`
	Category    string    `json:"category,omitempty"`
	City        string    `json:"city,omitempty"`
	ResultCount int       `json:"result_count"`
	SearchedAt  time.Time `json:"searched_at"`
}
