// Package auth exposes the current shopper as an opaque capability.
package auth

import (
	"context"

	"github.com/atul950/NearBuy-ed/pkg/middleware"
)

// User is the authenticated shopper. Token is the bearer credential that is
// forwarded to the catalog when the user writes data.
type User struct {
	ID    string
	Name  string
	Email string
	Token string
}

// DisplayName returns the name shown next to the user's reviews.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// UserFromContext returns the user authenticated for the request, or nil for
// anonymous requests.
func UserFromContext(ctx context.Context) *User {
	c := middleware.ClaimsFromContext(ctx)
	if c == nil {
		return nil
	}
	return &User{ID: c.UserID, Name: c.Name, Email: c.Email, Token: c.Token}
}
