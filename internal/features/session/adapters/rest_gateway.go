package adapters

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"driver-sync/internal/core/transport"
	"driver-sync/internal/features/session/domain"
)

// RESTGateway implements ports.AuthGateway against the backend's auth endpoints.
type RESTGateway struct {
	api transport.Sender
}

// NewRESTGateway creates a gateway sending through api.
func NewRESTGateway(api transport.Sender) *RESTGateway {
	return &RESTGateway{api: api}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts the credentials without an Authorization header.
func (g *RESTGateway) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	req, err := transport.JSON(http.MethodPost, "login", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	req.Unauthenticated = true

	resp, err := g.api.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	var result domain.LoginResult
	if err := transport.DecodeData(resp, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	return &result, nil
}

// Logout tells the server to revoke the current token.
func (g *RESTGateway) Logout(ctx context.Context) error {
	resp, err := g.api.Send(ctx, transport.Request{Method: http.MethodPost, Path: "logout", SkipRefresh: true})
	if err != nil {
		return err
	}
	return transport.CheckStatus(resp)
}

// UpdateProfile sends the profile as multipart form data, with the photo in
// the profile_pic file field when present.
func (g *RESTGateway) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	body, contentType, err := profileForm(update)
	if err != nil {
		return nil, err
	}

	resp, err := g.api.Send(ctx, transport.Request{
		Method:      http.MethodPost,
		Path:        "update-profile",
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := transport.DecodeData(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func profileForm(update domain.ProfileUpdate) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", update.Name},
		{"email", update.Email},
		{"phone", update.Phone},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}

	if len(update.Photo) > 0 {
		name := filepath.Base(update.PhotoFilename)
		if update.PhotoFilename == "" {
			name = "profile.jpg"
		}
		part, err := w.CreateFormFile("profile_pic", name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create photo part: %w", err)
		}
		if _, err := part.Write(update.Photo); err != nil {
			return nil, "", fmt.Errorf("failed to write photo: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// Refresh exchanges refreshToken for a new access token. The call itself is
// never refreshed.
func (g *RESTGateway) Refresh(ctx context.Context, refreshToken string) (string, error) {
	req, err := transport.JSON(http.MethodPost, "refresh-token", refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}
	req.SkipRefresh = true

	resp, err := g.api.Send(ctx, req)
	if err != nil {
		return "", err
	}
	var out refreshResponse
	if err := transport.DecodeData(resp, &out); err != nil {
		return "", err
	}
	if out.Token != "" {
		return out.Token, nil
	}
	return out.AccessToken, nil
}
