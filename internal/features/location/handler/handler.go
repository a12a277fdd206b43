package handler

import (
	"errors"
	"net/http"

	"driver-sync/internal/core/server"
	"driver-sync/internal/features/location/domain"
	"driver-sync/internal/features/location/ports"

	"github.com/gofiber/fiber/v2"
)

// LocationHandler feeds device positions to the sampler.
type LocationHandler struct {
	fixes    ports.FixRecorder
	reporter ports.ReporterState
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(fixes ports.FixRecorder, reporter ports.ReporterState) *LocationHandler {
	return &LocationHandler{fixes: fixes, reporter: reporter}
}

// Register mounts the location endpoints on r.
func (h *LocationHandler) Register(r fiber.Router) {
	r.Post("/location/fix", h.RecordFix)
	r.Get("/location/status", h.Status)
}

// RecordFix handles POST /location/fix.
// @Summary Record the device position
// @Description The sampler forwards the latest recorded fix on its next tick.
// @Tags Location
// @Accept json
// @Produce json
// @Param body body domain.Fix true "Position"
// @Success 200 {object} server.Envelope
// @Failure 400 {object} server.ErrorBody
// @Failure 403 {object} server.ErrorBody
// @Router /location/fix [post]
func (h *LocationHandler) RecordFix(c *fiber.Ctx) error {
	if h.reporter.Denied() {
		return server.Respond(c, http.StatusForbidden, domain.ErrPermissionDenied.Error(), "")
	}
	var fix domain.Fix
	if err := c.BodyParser(&fix); err != nil {
		return server.Respond(c, http.StatusBadRequest, "Invalid request body", "")
	}
	if err := h.fixes.Record(fix); err != nil {
		if errors.Is(err, domain.ErrInvalidFix) {
			return server.Respond(c, http.StatusBadRequest, err.Error(), "")
		}
		return server.WriteError(c, err)
	}
	return server.OK(c, "Fix recorded", nil)
}

// Status handles GET /location/status.
// @Summary Sampler status
// @Tags Location
// @Produce json
// @Success 200 {object} server.Envelope{data=domain.Status}
// @Router /location/status [get]
func (h *LocationHandler) Status(c *fiber.Ctx) error {
	status := domain.Status{
		Running:          h.reporter.Running(),
		PermissionDenied: h.reporter.Denied(),
	}
	if fix, ok := h.fixes.Latest(); ok {
		status.LastFix = &fix
	}
	return server.OK(c, "", status)
}
