package adapters

import (
	"context"
	"errors"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/core/logger"
	"driver-sync/internal/features/session/ports"

	"go.uber.org/zap"
)

// RefreshTokenSource exposes the stored refresh token.
type RefreshTokenSource interface {
	StoredRefreshToken(ctx context.Context) (string, error)
}

// RefreshClient is the transport's refresh hook. It returns "" when there is
// nothing to refresh with or the server refuses; connectivity and storage
// failures are returned as errors.
type RefreshClient struct {
	gateway ports.AuthGateway
	source  RefreshTokenSource
}

// NewRefreshClient creates a RefreshClient.
func NewRefreshClient(gateway ports.AuthGateway, source RefreshTokenSource) *RefreshClient {
	return &RefreshClient{gateway: gateway, source: source}
}

// RefreshToken implements transport.Refresher.
func (r *RefreshClient) RefreshToken(ctx context.Context) (string, error) {
	refreshToken, err := r.source.StoredRefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if refreshToken == "" {
		return "", nil
	}

	token, err := r.gateway.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, apierror.ErrAuth) || errors.Is(err, apierror.ErrValidation) {
			logger.Named("session").Info("Token refresh refused", zap.String("reason", apierror.MessageOf(err)))
			return "", nil
		}
		return "", err
	}
	return token, nil
}
