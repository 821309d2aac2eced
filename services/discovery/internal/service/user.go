package service

import (
	"context"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/auth"
)

func userFromContext(ctx context.Context) string {
	if u := auth.UserFromContext(ctx); u != nil {
		return u.ID
	}
	return ""
}

func currentUserID(ctx context.Context) (string, error) {
	id := userFromContext(ctx)
	if id == "" {
		return "", apperrors.Unauthorized("login required")
	}
	return id, nil
}
