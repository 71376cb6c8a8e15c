package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout page requests.
type CheckoutHandler struct {
	service   service.CheckoutService
	loginPage string
	logger    zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler. Unauthenticated
// requests are pointed at loginPage.
func NewCheckoutHandler(service service.CheckoutService, loginPage string, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:   service,
		loginPage: loginPage,
		logger:    logger.With().Str("handler", "checkout").Logger(),
	}
}

// Summary handles GET /api/checkout requests.
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.loginPage, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Submit handles POST /api/checkout requests.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.loginPage, h.logger)
		return
	}

	result, err := h.service.Submit(r.Context(), middleware.SessionID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err, h.loginPage, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
