package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atul950/NearBuy-ed/pkg/httputil"
	"github.com/atul950/NearBuy-ed/pkg/pagination"
	"github.com/atul950/NearBuy-ed/pkg/validator"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/service"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/view"
)

const maxBodyBytes = 64 << 10

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// decodeBody reads and validates a JSON body into dst. It writes the error
// response itself and reports whether the handler may continue. An empty
// body leaves dst at its zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return false
	}

	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

// sessionID parses the {id} path parameter.
func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return httputil.ParseUUID(w, chi.URLParam(r, "id"))
}

// renderFromRequest reads the layout mode and page from the query string.
func renderFromRequest(r *http.Request) service.Render {
	return service.Render{
		Mode: view.ParseMode(r.URL.Query().Get("mode")),
		Page: pagination.FromRequest(r),
	}
}
