package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atul950/NearBuy-ed/pkg/httputil"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/service"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/view"
)

// ShopHandler handles HTTP requests for shop sessions.
type ShopHandler struct {
	service *service.DiscoveryService
	logger  *slog.Logger
}

// NewShopHandler creates a new shop HTTP handler.
func NewShopHandler(svc *service.DiscoveryService, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{
		service: svc,
		logger:  logger,
	}
}

func shopQuery(r *http.Request) (string, view.Mode) {
	q := r.URL.Query()
	return q.Get("q"), view.ParseMode(q.Get("mode"))
}

// Open handles POST /api/v1/shops/{shopID}/sessions
func (h *ShopHandler) Open(w http.ResponseWriter, r *http.Request) {
	query, mode := shopQuery(r)

	result, err := h.service.OpenShop(r.Context(), domain.ID(chi.URLParam(r, "shopID")), query, mode)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/v1/shops/sessions/"+result.SessionID.String())
	httputil.WriteData(w, http.StatusCreated, result)
}

// Get handles GET /api/v1/shops/sessions/{id}
func (h *ShopHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	query, mode := shopQuery(r)

	result, err := h.service.GetShop(id, query, mode)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// Refresh handles POST /api/v1/shops/sessions/{id}/refresh
func (h *ShopHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	query, mode := shopQuery(r)

	result, err := h.service.RefreshShop(r.Context(), id, query, mode)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// Close handles DELETE /api/v1/shops/sessions/{id}
func (h *ShopHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.CloseShop(id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"id": id.String(), "status": "closed"})
}
