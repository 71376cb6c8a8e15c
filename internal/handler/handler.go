package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error onto an HTTP response.
// loginPage is sent as the redirect of an auth-required failure.
func writeServiceError(w http.ResponseWriter, err error, loginPage string, logger zerolog.Logger) {
	if errors.Is(err, auth.ErrMissingToken) || errors.Is(err, auth.ErrInvalidToken) {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, err.Error(), logger)
		return
	}

	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("unexpected service error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "internal server error",
		})
		return
	}

	status := statusFor(domainErr.Code)
	resp := model.ErrorResponse{Error: domainErr.Code, Message: domainErr.Message}
	if domainErr.Code == model.ErrCodeAuthRequired {
		resp.Redirect = loginPage
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("code", domainErr.Code).Int("status", status).Msg("handler error")
	} else {
		logger.Debug().Str("code", domainErr.Code).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, resp)
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON,
		model.ErrCodeEmptyCart,
		model.ErrCodeMissingField,
		model.ErrCodeMissingPayment,
		model.ErrCodeInvalidPayment,
		model.ErrCodeInvalidQuantity:
		return http.StatusBadRequest
	case model.ErrCodeItemNotFound, model.ErrCodeProductNotFound:
		return http.StatusNotFound
	case model.ErrCodeAuthRequired, model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeSubmissionInProgress:
		return http.StatusConflict
	case model.ErrCodeOrderFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body")
	}
	return nil
}
