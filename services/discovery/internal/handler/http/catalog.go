package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/atul950/NearBuy-ed/pkg/httputil"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/service"
)

// CatalogHandler serves categories and the current user's search history.
type CatalogHandler struct {
	service *service.DiscoveryService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.DiscoveryService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// Categories handles GET /api/v1/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, categories)
}

// History handles GET /api/v1/history
func (h *CatalogHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "limit must be a non-negative integer"},
			})
			return
		}
		limit = n
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, records)
}

// ClearHistory handles DELETE /api/v1/history
func (h *CatalogHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.ClearHistory(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
