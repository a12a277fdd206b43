package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"driver-sync/internal/core/logger"
	"driver-sync/internal/features/session/domain"
	"driver-sync/internal/features/session/ports"

	"go.uber.org/zap"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	gateway ports.AuthGateway
	manager *Manager
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(gateway ports.AuthGateway, manager *Manager) *AuthServiceImpl {
	return &AuthServiceImpl{gateway: gateway, manager: manager}
}

// Login authenticates and persists the resulting session.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.manager.SaveLogin(ctx, *result); err != nil {
		return nil, err
	}

	p := result.User.Profile()
	logger.Named("session").Info("Driver logged in", zap.String("user_id", p.UserID))
	return &p, nil
}

// Logout asks the server to revoke the token, then clears the local session
// whatever the server said.
func (s *AuthServiceImpl) Logout(ctx context.Context) error {
	if err := s.gateway.Logout(ctx); err != nil {
		logger.Named("session").Warn("Server logout failed; clearing local session anyway", zap.Error(err))
	}
	return s.manager.Clear(ctx)
}

// UpdateProfile sends the changes and caches the profile the server returns.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Profile, error) {
	loggedIn, err := s.manager.IsLoggedIn(ctx)
	if err != nil {
		return nil, err
	}
	if !loggedIn {
		return nil, domain.ErrNotLoggedIn
	}

	user, err := s.gateway.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}

	p := user.Profile()
	if p.UserID == "" {
		current, err := s.manager.Profile(ctx)
		if err != nil {
			return nil, err
		}
		p.UserID = current.UserID
	}
	if err := s.manager.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Claims returns the unverified claims of the stored token.
func (s *AuthServiceImpl) Claims(ctx context.Context) (domain.Claims, error) {
	token, ok, err := s.manager.GetToken(ctx)
	if err != nil {
		return domain.Claims{}, err
	}
	if !ok {
		return domain.Claims{}, domain.ErrNotLoggedIn
	}
	return domain.ParseClaims(token)
}

// Status reports the session for the bridge.
func (s *AuthServiceImpl) Status(ctx context.Context) (*domain.Status, error) {
	loggedIn, err := s.manager.IsLoggedIn(ctx)
	if err != nil {
		return nil, err
	}
	status := &domain.Status{LoggedIn: loggedIn}
	if !loggedIn {
		return status, nil
	}

	p, err := s.manager.Profile(ctx)
	if err != nil {
		return nil, err
	}
	status.Profile = &p

	claims, err := s.Claims(ctx)
	switch {
	case err == nil:
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			status.ExpiresAt = &exp
		}
	case errors.Is(err, domain.ErrOpaqueToken):
	default:
		return nil, fmt.Errorf("session: failed to read token claims: %w", err)
	}
	return status, nil
}
