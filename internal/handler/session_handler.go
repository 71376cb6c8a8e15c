package handler

import (
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/view"

	"github.com/rs/zerolog"
)

// SignInResponse is returned once a sign-in has been reconciled.
type SignInResponse struct {
	User *model.User    `json:"user"`
	Cart *view.CartView `json:"cart"`
}

// SessionHandler turns sign-in and sign-out requests into auth state changes.
type SessionHandler struct {
	auth   service.AuthService
	cart   service.CartService
	logger zerolog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(auth service.AuthService, cart service.CartService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		auth:   auth,
		cart:   cart,
		logger: logger.With().Str("handler", "session").Logger(),
	}
}

// SignIn handles POST /api/auth/session requests carrying a Bearer identity token.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r.Context())

	user, err := h.auth.SignIn(r.Context(), sessionID, bearerToken(r))
	if err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	cartView, err := h.cart.View(r.Context(), sessionID, false)
	if err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, SignInResponse{User: user, Cart: cartView})
}

// SignOut handles DELETE /api/auth/session requests.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r.Context())

	if err := h.auth.SignOut(r.Context(), sessionID); err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	cartView, err := h.cart.View(r.Context(), sessionID, false)
	if err != nil {
		writeServiceError(w, err, "", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cartView)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
