package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests, optionally filtered by ?category=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products := h.service.List(r.Context(), r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Selected handles GET /api/products/selected requests.
func (h *ProductHandler) Selected(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Selected(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}
