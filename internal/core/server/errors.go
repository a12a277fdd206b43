package server

import (
	"net/http"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RayIDHeader carries the request id assigned by the requestid middleware.
const RayIDHeader = "X-Ray-ID"

// ErrorBody is the JSON shape of every bridge error.
type ErrorBody struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	RayID   string `json:"ray_id,omitempty"`
}

// StatusFor maps a classified error to the bridge status code.
func StatusFor(err error) int {
	switch apierror.KindOf(err) {
	case apierror.KindAuth:
		return http.StatusUnauthorized
	case apierror.KindValidation:
		return http.StatusUnprocessableEntity
	case apierror.KindConnectivity:
		return http.StatusServiceUnavailable
	case apierror.KindServer:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError answers with the classified status of err.
func WriteError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Get().Error("Request failed",
			zap.String("path", c.Path()),
			zap.String("ray_id", c.GetRespHeader(RayIDHeader)),
			zap.Error(err))
	}
	return Respond(c, status, apierror.MessageOf(err), string(apierror.KindOf(err)))
}

// Respond writes an ErrorBody with an explicit status.
func Respond(c *fiber.Ctx, status int, message, kind string) error {
	return c.Status(status).JSON(ErrorBody{
		Message: message,
		Kind:    kind,
		RayID:   c.GetRespHeader(RayIDHeader),
	})
}

// Envelope is the success shape, mirroring the backend's.
type Envelope struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK writes data in an Envelope with status 200.
func OK(c *fiber.Ctx, message string, data any) error {
	return c.Status(http.StatusOK).JSON(Envelope{Message: message, Data: data})
}
