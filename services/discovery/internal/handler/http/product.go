package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atul950/NearBuy-ed/pkg/httputil"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/service"
)

// ProductHandler handles HTTP requests for product sessions.
type ProductHandler struct {
	service *service.DiscoveryService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.DiscoveryService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// SelectOfferRequest is the JSON request body for highlighting a shop's offer.
type SelectOfferRequest struct {
	ShopID domain.ID `json:"shop_id" validate:"required"`
}

// SubmitReviewRequest is the JSON request body for posting a review.
type SubmitReviewRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Text   string `json:"review_text" validate:"max=2000"`
}

// --- Handlers ---

// Open handles POST /api/v1/products/{productID}/sessions
func (h *ProductHandler) Open(w http.ResponseWriter, r *http.Request) {
	productID := domain.ID(chi.URLParam(r, "productID"))

	result, err := h.service.OpenProduct(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/v1/products/sessions/"+result.SessionID.String())
	httputil.WriteData(w, http.StatusCreated, result)
}

// Get handles GET /api/v1/products/sessions/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetProduct(id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// Select handles PUT /api/v1/products/sessions/{id}/selection
func (h *ProductHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req SelectOfferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.SelectOffer(id, req.ShopID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// Refresh handles POST /api/v1/products/sessions/{id}/refresh
func (h *ProductHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.service.RefreshProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// SubmitReview handles POST /api/v1/products/sessions/{id}/reviews
func (h *ProductHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req SubmitReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.SubmitReview(r.Context(), id, req.Rating, req.Text)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, result)
}

// Close handles DELETE /api/v1/products/sessions/{id}
func (h *ProductHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.CloseProduct(id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"id": id.String(), "status": "closed"})
}
