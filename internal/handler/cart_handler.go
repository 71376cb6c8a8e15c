package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CartHandler handles cart page requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests. ?fastCargo=true adds the shipping fee.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	fastCargo := false
	if raw := r.URL.Query().Get("fastCargo"); raw != "" {
		var err error
		fastCargo, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid fastCargo parameter", h.logger)
			return
		}
	}

	cartView, err := h.service.View(r.Context(), middleware.SessionID(r.Context()), fastCargo)
	if err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cartView)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	cartView, err := h.service.AddItem(r.Context(), middleware.SessionID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cartView)
}

// RemoveItem handles DELETE /api/cart/items/{key} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartView, err := h.service.RemoveItem(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cartView)
}

// SelectItem handles POST /api/cart/items/{key}/select requests.
func (h *CartHandler) SelectItem(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SelectItem(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
