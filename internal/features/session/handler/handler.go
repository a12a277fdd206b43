package handler

import (
	"errors"
	"io"
	"net/http"

	"driver-sync/internal/core/server"
	"driver-sync/internal/features/session/domain"
	"driver-sync/internal/features/session/ports"

	"github.com/gofiber/fiber/v2"
)

// maxPhotoBytes caps the profile photo accepted by the bridge.
const maxPhotoBytes = 5 << 20

// SessionHandler handles HTTP requests for the driver session.
type SessionHandler struct {
	service ports.AuthService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service ports.AuthService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Register mounts the session routes on r.
func (h *SessionHandler) Register(r fiber.Router) {
	r.Get("/session", h.GetStatus)
	r.Post("/session/login", h.Login)
	r.Post("/session/logout", h.Logout)
	r.Put("/session/profile", h.UpdateProfile)
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /session/login.
// @Summary Log in
// @Description Authenticates the driver and persists the session.
// @Tags Session
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} server.Envelope{data=domain.Profile}
// @Failure 400 {object} server.ErrorBody
// @Failure 401 {object} server.ErrorBody
// @Failure 422 {object} server.ErrorBody
// @Failure 503 {object} server.ErrorBody
// @Router /session/login [post]
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Respond(c, http.StatusBadRequest, "Invalid request body", "")
	}

	profile, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return server.Respond(c, http.StatusBadRequest, err.Error(), "")
		}
		return server.WriteError(c, err)
	}
	return server.OK(c, "Logged in", profile)
}

// Logout handles POST /session/logout.
// @Summary Log out
// @Description Revokes the token on the server (best effort) and clears the local session.
// @Tags Session
// @Produce json
// @Success 200 {object} server.Envelope
// @Failure 500 {object} server.ErrorBody
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext()); err != nil {
		return server.WriteError(c, err)
	}
	return server.OK(c, "Logged out", nil)
}

// GetStatus handles GET /session.
// @Summary Session status
// @Description Reports whether a session exists, the cached profile and the token expiry.
// @Tags Session
// @Produce json
// @Success 200 {object} server.Envelope{data=domain.Status}
// @Failure 500 {object} server.ErrorBody
// @Router /session [get]
func (h *SessionHandler) GetStatus(c *fiber.Ctx) error {
	status, err := h.service.Status(c.UserContext())
	if err != nil {
		return server.WriteError(c, err)
	}
	return server.OK(c, "", status)
}

// UpdateProfile handles PUT /session/profile.
// @Summary Update the driver profile
// @Description Multipart form with name, email, phone and an optional profile_pic file.
// @Tags Session
// @Accept mpfd
// @Produce json
// @Param name formData string false "Name"
// @Param email formData string false "Email"
// @Param phone formData string false "Phone"
// @Param profile_pic formData file false "Profile photo"
// @Success 200 {object} server.Envelope{data=domain.Profile}
// @Failure 400 {object} server.ErrorBody
// @Failure 401 {object} server.ErrorBody
// @Failure 422 {object} server.ErrorBody
// @Router /session/profile [put]
func (h *SessionHandler) UpdateProfile(c *fiber.Ctx) error {
	update := domain.ProfileUpdate{
		Name:  c.FormValue("name"),
		Email: c.FormValue("email"),
		Phone: c.FormValue("phone"),
	}

	if fh, err := c.FormFile("profile_pic"); err == nil {
		if fh.Size > maxPhotoBytes {
			return server.Respond(c, http.StatusBadRequest, "Profile photo is too large", "")
		}
		f, err := fh.Open()
		if err != nil {
			return server.Respond(c, http.StatusBadRequest, "Unreadable profile photo", "")
		}
		defer f.Close()
		photo, err := io.ReadAll(f)
		if err != nil {
			return server.Respond(c, http.StatusBadRequest, "Unreadable profile photo", "")
		}
		update.Photo = photo
		update.PhotoFilename = fh.Filename
	}

	profile, err := h.service.UpdateProfile(c.UserContext(), update)
	if err != nil {
		if errors.Is(err, domain.ErrNotLoggedIn) {
			return server.Respond(c, http.StatusUnauthorized, err.Error(), "auth")
		}
		return server.WriteError(c, err)
	}
	return server.OK(c, "Profile updated", profile)
}
