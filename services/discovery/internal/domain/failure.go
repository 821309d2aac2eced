package domain

import (
	"errors"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
)

// Failure is an error kept as part of a view's state.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewFailure describes err, or returns nil for a nil error.
func NewFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	f := &Failure{Kind: apperrors.Kind(err), Message: err.Error()}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		f.Message = appErr.Message
	}
	return f
}
