package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atul950/NearBuy-ed/pkg/httputil"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/service"
)

// SearchHandler handles HTTP requests for search sessions.
type SearchHandler struct {
	service *service.DiscoveryService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.DiscoveryService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// LocationRequest carries a shareable location such as "?q=rice&city=Pune".
type LocationRequest struct {
	Location string `json:"location" validate:"max=2048"`
}

// SetFilterRequest is the JSON request body for changing one filter.
type SetFilterRequest struct {
	Value string `json:"value" validate:"max=256"`
}

// --- Handlers ---

// Open handles POST /api/v1/search/sessions
func (h *SearchHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.OpenSearch(r.Context(), req.Location, renderFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/v1/search/sessions/"+result.SessionID.String())
	httputil.WriteData(w, http.StatusCreated, result)
}

// Get handles GET /api/v1/search/sessions/{id}
func (h *SearchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetSearch(id, renderFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// SetFilter handles PUT /api/v1/search/sessions/{id}/filters/{field}
func (h *SearchHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req SetFilterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.SetSearchFilter(r.Context(), id, chi.URLParam(r, "field"), req.Value, renderFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// Navigate handles PUT /api/v1/search/sessions/{id}/location
func (h *SearchHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req LocationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.NavigateSearch(r.Context(), id, req.Location, renderFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// Clear handles DELETE /api/v1/search/sessions/{id}/filters
func (h *SearchHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.service.ClearSearch(r.Context(), id, renderFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// Refresh handles POST /api/v1/search/sessions/{id}/refresh
func (h *SearchHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.service.RefreshSearch(r.Context(), id, renderFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// Close handles DELETE /api/v1/search/sessions/{id}
func (h *SearchHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.CloseSearch(id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"id": id.String(), "status": "closed"})
}
