package domain

import (
	"errors"
	"strconv"
	"time"

	"driver-sync/internal/core/flex"

	"github.com/golang-jwt/jwt/v5"
)

// Key names one persisted session value.
type Key string

const (
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyUserID       Key = "user_id"
	KeyOnline       Key = "online"
	KeyName         Key = "name"
	KeyEmail        Key = "email"
	KeyAvatarURL    Key = "avatar_url"
	KeyLoggedIn     Key = "logged_in"
	KeyDeviceToken  Key = "device_token"
)

// Values is the persisted key/value view of a session.
type Values map[Key]string

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Bool reads a boolean stored as "true"/"false".
func (v Values) Bool(k Key) bool {
	b, _ := strconv.ParseBool(v[k])
	return b
}

// SetBool stores a boolean.
func (v Values) SetBool(k Key, b bool) {
	v[k] = strconv.FormatBool(b)
}

var (
	// ErrInvalidCredentials is returned when login is called without email or password.
	ErrInvalidCredentials = errors.New("email and password are required")
	// ErrNotLoggedIn is returned by operations that need a session.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrOpaqueToken is returned when the bearer token is not a JWT.
	ErrOpaqueToken = errors.New("token carries no readable claims")
)

// Session is the authentication state the rest of the client reads.
type Session struct {
	AccessToken string `json:"-"`
	LoggedIn    bool   `json:"logged_in"`
}

// Profile is the cached identity of the logged-in driver.
type Profile struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Online    bool   `json:"online"`
}

// User is the driver as the server returns it.
type User struct {
	ID        flex.ID   `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	Online    flex.Flag `json:"online"`
}

// Profile converts a server user into the cached profile.
func (u User) Profile() Profile {
	return Profile{
		UserID:    u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Online:    bool(u.Online),
	}
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// ProfileUpdate carries the editable profile fields. Photo is optional.
type ProfileUpdate struct {
	Name          string
	Email         string
	Phone         string
	Photo         []byte
	PhotoFilename string
}

// Status is what the bridge reports for GET /session.
type Status struct {
	LoggedIn  bool       `json:"logged_in"`
	Profile   *Profile   `json:"profile,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Claims are the display-only fields read from a bearer token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Expired reports whether the token carried an expiry that has passed at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims reads the claims of token without verifying its signature.
// The server is the only authority on validity; these are for display.
func ParseClaims(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, ErrOpaqueToken
	}
	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	return c, nil
}
