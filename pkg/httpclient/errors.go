package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
)

// downstreamError accepts both error shapes seen from upstream services:
// {"error":{"code":"...","message":"..."}} and {"error":"message"}.
type downstreamError struct {
	Error json.RawMessage `json:"error"`
}

type structuredError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into an AppError. The body is consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.TransportFailure(serviceName,
			fmt.Errorf("status %d, read body: %w", resp.StatusCode, err))
	}

	code, message := decodeErrorBody(body)
	return mapDownstreamError(resp.StatusCode, code, message, serviceName)
}

func decodeErrorBody(body []byte) (code, message string) {
	var envelope downstreamError
	if json.Unmarshal(body, &envelope) != nil || len(envelope.Error) == 0 {
		return "", string(body)
	}

	var structured structuredError
	if json.Unmarshal(envelope.Error, &structured) == nil && structured.Message != "" {
		return structured.Code, structured.Message
	}

	var plain string
	if json.Unmarshal(envelope.Error, &plain) == nil {
		return "", plain
	}
	return "", string(body)
}

func mapDownstreamError(status int, code, message, serviceName string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: qualifiedMsg,
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case status >= 500:
		return apperrors.TransportFailure(serviceName,
			fmt.Errorf("status %d (%s): %s", status, code, message))
	default:
		return apperrors.TransportFailure(serviceName,
			fmt.Errorf("unexpected status %d: %s", status, message))
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
