package ports

import (
	"context"

	"driver-sync/internal/features/session/domain"
)

// Store persists session values.
type Store interface {
	// Load returns every stored value; an uninitialized store is empty, not an error.
	Load(ctx context.Context) (domain.Values, error)
	// Save replaces the stored values atomically.
	Save(ctx context.Context, values domain.Values) error
	// Clear removes every stored value.
	Clear(ctx context.Context) error
	// Close releases the underlying resources.
	Close() error
}

// AuthGateway is the server side of authentication.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// AuthService is what the bridge handler drives.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.Profile, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Profile, error)
	Status(ctx context.Context) (*domain.Status, error)
}
