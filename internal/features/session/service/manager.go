package service

import (
	"context"
	"fmt"
	"sync"

	"driver-sync/internal/core/logger"
	"driver-sync/internal/features/session/domain"
	"driver-sync/internal/features/session/ports"

	"go.uber.org/zap"
)

// Manager is the single writer of the persisted session. Reads go to the
// store every time so another process writing the same file is observed.
type Manager struct {
	mu    sync.Mutex
	store ports.Store
}

// NewManager creates a Manager over store.
func NewManager(store ports.Store) *Manager {
	return &Manager{store: store}
}

// GetToken returns the bearer token; ok is false when none is stored.
func (m *Manager) GetToken(ctx context.Context) (string, bool, error) {
	values, err := m.store.Load(ctx)
	if err != nil {
		return "", false, err
	}
	token := values[domain.KeyAccessToken]
	return token, token != "", nil
}

// SetToken replaces the bearer token, leaving the rest of the session intact.
func (m *Manager) SetToken(ctx context.Context, token string) error {
	return m.update(ctx, func(v domain.Values) {
		v[domain.KeyAccessToken] = token
	})
}

// Token implements transport.TokenSource.
func (m *Manager) Token(ctx context.Context) (string, bool, error) {
	return m.GetToken(ctx)
}

// StoreToken implements transport.TokenSource.
func (m *Manager) StoreToken(ctx context.Context, token string) error {
	return m.SetToken(ctx, token)
}

// StoredRefreshToken returns the refresh token saved at login, or "".
func (m *Manager) StoredRefreshToken(ctx context.Context) (string, error) {
	values, err := m.store.Load(ctx)
	if err != nil {
		return "", err
	}
	return values[domain.KeyRefreshToken], nil
}

// Session returns the current authentication state.
func (m *Manager) Session(ctx context.Context) (domain.Session, error) {
	values, err := m.store.Load(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	token := values[domain.KeyAccessToken]
	return domain.Session{
		AccessToken: token,
		LoggedIn:    token != "" && values.Bool(domain.KeyLoggedIn),
	}, nil
}

// IsLoggedIn reports whether a usable session is stored. A storage failure
// is returned as an error, never as "logged out".
func (m *Manager) IsLoggedIn(ctx context.Context) (bool, error) {
	s, err := m.Session(ctx)
	if err != nil {
		return false, err
	}
	return s.LoggedIn, nil
}

// Profile returns the cached driver profile.
func (m *Manager) Profile(ctx context.Context) (domain.Profile, error) {
	values, err := m.store.Load(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		UserID:    values[domain.KeyUserID],
		Name:      values[domain.KeyName],
		Email:     values[domain.KeyEmail],
		AvatarURL: values[domain.KeyAvatarURL],
		Online:    values.Bool(domain.KeyOnline),
	}, nil
}

// SaveLogin stores every field of a login in one write.
func (m *Manager) SaveLogin(ctx context.Context, result domain.LoginResult) error {
	return m.update(ctx, func(v domain.Values) {
		v[domain.KeyAccessToken] = result.Token
		v[domain.KeyRefreshToken] = result.RefreshToken
		setProfile(v, result.User.Profile())
		v.SetBool(domain.KeyLoggedIn, true)
	})
}

// SaveProfile stores the identity fields returned by a profile update.
func (m *Manager) SaveProfile(ctx context.Context, p domain.Profile) error {
	return m.update(ctx, func(v domain.Values) {
		setProfile(v, p)
	})
}

func setProfile(v domain.Values, p domain.Profile) {
	v[domain.KeyUserID] = p.UserID
	v[domain.KeyName] = p.Name
	v[domain.KeyEmail] = p.Email
	v[domain.KeyAvatarURL] = p.AvatarURL
	v.SetBool(domain.KeyOnline, p.Online)
}

// SetDeviceToken records the push registration token.
func (m *Manager) SetDeviceToken(ctx context.Context, token string) error {
	return m.update(ctx, func(v domain.Values) {
		v[domain.KeyDeviceToken] = token
	})
}

// DeviceToken returns the push registration token, or "".
func (m *Manager) DeviceToken(ctx context.Context) (string, error) {
	values, err := m.store.Load(ctx)
	if err != nil {
		return "", err
	}
	return values[domain.KeyDeviceToken], nil
}

// Clear erases the session. The device token belongs to the device, not the
// driver, and survives.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	device := values[domain.KeyDeviceToken]
	if device == "" {
		return m.store.Clear(ctx)
	}
	return m.store.Save(ctx, domain.Values{domain.KeyDeviceToken: device})
}

// ClearOnUnauthorized is the transport's unauthorized hook.
func (m *Manager) ClearOnUnauthorized(ctx context.Context) {
	if err := m.Clear(ctx); err != nil {
		logger.Named("session").Error("Failed to clear rejected session", zap.Error(err))
		return
	}
	logger.Named("session").Info("Session cleared after the server rejected the token")
}

func (m *Manager) update(ctx context.Context, fn func(domain.Values)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	next := values.Clone()
	fn(next)
	if err := m.store.Save(ctx, next); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}
