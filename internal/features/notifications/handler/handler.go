package handler

import (
	"errors"
	"net/http"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/core/feed"
	"driver-sync/internal/core/server"
	"driver-sync/internal/features/notifications/domain"
	"driver-sync/internal/features/notifications/ports"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles HTTP requests for notifications and push messages.
type NotificationHandler struct {
	service ports.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Register mounts the notification endpoints on r.
func (h *NotificationHandler) Register(r fiber.Router) {
	r.Get("/notifications", h.List)
	r.Post("/notifications/next", h.Next)
	r.Post("/notifications/read-all", h.MarkAllAsRead)
	r.Post("/notifications/:id/read", h.MarkAsRead)
	r.Post("/push", h.Push)
}

// ListResponse is a notification feed with the unread badge count.
type ListResponse struct {
	feed.State[domain.Notification]
	UnreadCount int `json:"unread_count"`
}

func (h *NotificationHandler) writeFeed(c *fiber.Ctx, state feed.State[domain.Notification], err error) error {
	if err != nil && errors.Is(err, apierror.ErrAuth) {
		return server.WriteError(c, err)
	}
	return server.OK(c, state.Err, ListResponse{State: state, UnreadCount: h.service.UnreadCount()})
}

// List handles GET /notifications.
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Param filter query string false "all or unread"
// @Param refresh query bool false "Reload page 1"
// @Success 200 {object} server.Envelope{data=ListResponse}
// @Failure 401 {object} server.ErrorBody
// @Router /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	filter := domain.ParseFilter(c.Query("filter"))
	state, err := h.service.List(c.UserContext(), filter, c.QueryBool("refresh"))
	return h.writeFeed(c, state, err)
}

// Next handles POST /notifications/next.
// @Summary Next page of notifications
// @Tags Notifications
// @Produce json
// @Param filter query string false "all or unread"
// @Success 200 {object} server.Envelope{data=ListResponse}
// @Router /notifications/next [post]
func (h *NotificationHandler) Next(c *fiber.Ctx) error {
	filter := domain.ParseFilter(c.Query("filter"))
	state, err := h.service.Next(c.UserContext(), filter)
	return h.writeFeed(c, state, err)
}

// MarkAllAsRead handles POST /notifications/read-all.
// @Summary Mark every notification as read
// @Tags Notifications
// @Produce json
// @Success 200 {object} server.Envelope
// @Failure 503 {object} server.ErrorBody
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	if err := h.service.MarkAllAsRead(c.UserContext()); err != nil {
		return server.WriteError(c, err)
	}
	return server.OK(c, "All notifications marked as read", nil)
}

// MarkAsRead handles POST /notifications/:id/read.
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} server.Envelope
// @Failure 422 {object} server.ErrorBody
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	if err := h.service.MarkAsRead(c.UserContext(), c.Params("id")); err != nil {
		return server.WriteError(c, err)
	}
	return server.OK(c, "Notification marked as read", nil)
}

// PushRequest is a push message as received by the device.
type PushRequest struct {
	domain.PushMessage
	DeviceToken string `json:"device_token"`
}

// Push handles POST /push.
// @Summary Handle a push message
// @Description Registers the device token when a session exists and returns the route to open.
// @Tags Notifications
// @Accept json
// @Produce json
// @Param body body PushRequest true "Push message"
// @Success 200 {object} server.Envelope{data=domain.PushResult}
// @Failure 400 {object} server.ErrorBody
// @Router /push [post]
func (h *NotificationHandler) Push(c *fiber.Ctx) error {
	var req PushRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Respond(c, http.StatusBadRequest, "Invalid request body", "")
	}
	res, err := h.service.HandlePush(c.UserContext(), req.PushMessage, req.DeviceToken)
	if err != nil {
		return server.WriteError(c, err)
	}
	return server.OK(c, "", res)
}
