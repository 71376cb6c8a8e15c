package service

import (
	"context"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	verifier auth.TokenVerifier
	listener *auth.Listener
	logger   zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(verifier auth.TokenVerifier, listener *auth.Listener, logger zerolog.Logger) AuthService {
	return &authService{
		verifier: verifier,
		listener: listener,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// SignIn verifies token and notifies the listener. It returns after reconciliation.
func (s *authService) SignIn(ctx context.Context, sessionID, token string) (*model.User, error) {
	user, err := s.verifier.Verify(ctx, token)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("identity token rejected")
		return nil, err
	}

	if err := s.listener.Notify(ctx, sessionID, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("session_id", sessionID).Str("user_id", user.UID).Msg("signed in")
	return user, nil
}

// SignOut notifies the listener of a sign-out.
func (s *authService) SignOut(ctx context.Context, sessionID string) error {
	return s.listener.Notify(ctx, sessionID, nil)
}
