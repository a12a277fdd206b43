package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/core/feed"
	"driver-sync/internal/core/server"
	"driver-sync/internal/features/routes/domain"
	"driver-sync/internal/features/routes/ports"

	"github.com/gofiber/fiber/v2"
)

// RouteHandler handles HTTP requests for routes.
type RouteHandler struct {
	lifecycle ports.LifecycleService
	feeds     ports.FeedService
	offline   ports.OfflineReader
}

// NewRouteHandler creates a new RouteHandler. offline may be nil.
func NewRouteHandler(lifecycle ports.LifecycleService, feeds ports.FeedService, offline ports.OfflineReader) *RouteHandler {
	return &RouteHandler{lifecycle: lifecycle, feeds: feeds, offline: offline}
}

// Register mounts the route endpoints on r.
func (h *RouteHandler) Register(r fiber.Router) {
	g := r.Group("/routes")
	g.Get("/available", h.GetAvailable)
	g.Post("/available/next", h.NextAvailable)
	g.Get("/accepted", h.GetAccepted)
	g.Post("/accepted/next", h.NextAccepted)
	g.Get("/:id", h.GetRoute)
	g.Post("/:id/accept", h.Accept)
	g.Post("/:id/start", h.Start)
	g.Post("/:id/complete", h.Complete)
	g.Post("/:id/cancel", h.Cancel)
	g.Post("/:id/waypoints/:wid/delivered", h.MarkDelivered)
	g.Post("/:id/waypoints/:wid/failed", h.MarkFailed)
}

// writeFeed answers with the feed state even when the fetch failed; the
// error is carried in the state and the previous items stay visible.
func writeFeed(c *fiber.Ctx, state feed.State[domain.Route], err error) error {
	if err != nil && errors.Is(err, apierror.ErrAuth) {
		return server.WriteError(c, err)
	}
	return server.OK(c, state.Err, state)
}

// GetAvailable handles GET /routes/available.
// @Summary Available routes
// @Description Loads page 1 of routes open for acceptance when the filter changed or refresh=true; otherwise returns the loaded pages.
// @Tags Routes
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param radius query number false "Radius in km"
// @Param lat query number false "Latitude"
// @Param lng query number false "Longitude"
// @Param refresh query bool false "Reload page 1"
// @Success 200 {object} server.Envelope{data=feed.State[domain.Route]}
// @Failure 400 {object} server.ErrorBody
// @Failure 401 {object} server.ErrorBody
// @Router /routes/available [get]
func (h *RouteHandler) GetAvailable(c *fiber.Ctx) error {
	q := domain.AvailableQuery{Date: c.Query("date")}
	for name, dst := range map[string]*float64{"radius": &q.Radius, "lat": &q.Lat, "lng": &q.Lng} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return server.Respond(c, http.StatusBadRequest, "Invalid "+name, "")
		}
		*dst = v
	}

	state, err := h.feeds.Available(c.UserContext(), q, c.QueryBool("refresh"))
	return writeFeed(c, state, err)
}

// NextAvailable handles POST /routes/available/next.
// @Summary Next page of available routes
// @Tags Routes
// @Produce json
// @Success 200 {object} server.Envelope{data=feed.State[domain.Route]}
// @Router /routes/available/next [post]
func (h *RouteHandler) NextAvailable(c *fiber.Ctx) error {
	state, err := h.feeds.NextAvailable(c.UserContext())
	return writeFeed(c, state, err)
}

// GetAccepted handles GET /routes/accepted.
// @Summary Accepted routes
// @Tags Routes
// @Produce json
// @Param refresh query bool false "Reload page 1"
// @Success 200 {object} server.Envelope{data=feed.State[domain.Route]}
// @Router /routes/accepted [get]
func (h *RouteHandler) GetAccepted(c *fiber.Ctx) error {
	state, err := h.feeds.Accepted(c.UserContext(), c.QueryBool("refresh"))
	return writeFeed(c, state, err)
}

// NextAccepted handles POST /routes/accepted/next.
// @Summary Next page of accepted routes
// @Tags Routes
// @Produce json
// @Success 200 {object} server.Envelope{data=feed.State[domain.Route]}
// @Router /routes/accepted/next [post]
func (h *RouteHandler) NextAccepted(c *fiber.Ctx) error {
	state, err := h.feeds.NextAccepted(c.UserContext())
	return writeFeed(c, state, err)
}

// GetRoute handles GET /routes/:id.
// @Summary Route details
// @Description Fetches the route from the server. When offline, answers with the last confirmed copy, or the mirrored document, and message "offline copy".
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} server.Envelope{data=domain.Route}
// @Failure 404 {object} server.ErrorBody
// @Failure 503 {object} server.ErrorBody
// @Router /routes/{id} [get]
func (h *RouteHandler) GetRoute(c *fiber.Ctx) error {
	id := c.Params("id")
	route, err := h.lifecycle.Refresh(c.UserContext(), id)
	if err == nil {
		return server.OK(c, "", route)
	}
	if errors.Is(err, domain.ErrRouteNotFound) {
		return server.Respond(c, http.StatusNotFound, err.Error(), "")
	}
	if errors.Is(err, domain.ErrTransitionInFlight) {
		return server.Respond(c, http.StatusConflict, err.Error(), "")
	}
	if !errors.Is(err, apierror.ErrConnectivity) {
		return server.WriteError(c, err)
	}

	if local, ok := h.lifecycle.Route(id); ok {
		return server.OK(c, "offline copy", local)
	}
	if h.offline != nil {
		if doc, mirrorErr := h.offline.Get(c.UserContext(), id); mirrorErr == nil {
			return server.OK(c, "offline copy", doc)
		}
	}
	return server.WriteError(c, err)
}

func (h *RouteHandler) runTransition(c *fiber.Ctx, message string, op func(ctx context.Context, id string) (*domain.Route, error)) error {
	route, err := op(c.UserContext(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransitionInFlight), errors.Is(err, domain.ErrIllegalTransition):
			return server.Respond(c, http.StatusConflict, err.Error(), "")
		case errors.Is(err, domain.ErrInvalidDeliveredType), errors.Is(err, domain.ErrMissingFailureReason):
			return server.Respond(c, http.StatusBadRequest, err.Error(), "")
		}
		return server.WriteError(c, err)
	}
	return server.OK(c, message, route)
}

// Accept handles POST /routes/:id/accept.
// @Summary Accept a route
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} server.Envelope{data=domain.Route}
// @Failure 409 {object} server.ErrorBody
// @Failure 422 {object} server.ErrorBody
// @Failure 503 {object} server.ErrorBody
// @Router /routes/{id}/accept [post]
func (h *RouteHandler) Accept(c *fiber.Ctx) error {
	return h.runTransition(c, "Route accepted", h.lifecycle.Accept)
}

// Start handles POST /routes/:id/start.
// @Summary Start a route
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} server.Envelope{data=domain.Route}
// @Failure 409 {object} server.ErrorBody
// @Router /routes/{id}/start [post]
func (h *RouteHandler) Start(c *fiber.Ctx) error {
	return h.runTransition(c, "Route started", h.lifecycle.Start)
}

// Complete handles POST /routes/:id/complete.
// @Summary Complete a route
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} server.Envelope{data=domain.Route}
// @Failure 409 {object} server.ErrorBody
// @Router /routes/{id}/complete [post]
func (h *RouteHandler) Complete(c *fiber.Ctx) error {
	return h.runTransition(c, "Route completed", h.lifecycle.Complete)
}

// Cancel handles POST /routes/:id/cancel.
// @Summary Cancel a route
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} server.Envelope{data=domain.Route}
// @Failure 409 {object} server.ErrorBody
// @Router /routes/{id}/cancel [post]
func (h *RouteHandler) Cancel(c *fiber.Ctx) error {
	return h.runTransition(c, "Route cancelled", h.lifecycle.Cancel)
}

// DeliveredRequest is the body of a delivered waypoint.
type DeliveredRequest struct {
	Type domain.DeliveredType `json:"type"`
}

// MarkDelivered handles POST /routes/:id/waypoints/:wid/delivered.
// @Summary Mark a waypoint delivered
// @Tags Routes
// @Accept json
// @Produce json
// @Param id path string true "Route ID"
// @Param wid path string true "Waypoint ID"
// @Param body body DeliveredRequest true "Delivered type"
// @Success 200 {object} server.Envelope{data=domain.Route}
// @Failure 400 {object} server.ErrorBody
// @Failure 422 {object} server.ErrorBody
// @Router /routes/{id}/waypoints/{wid}/delivered [post]
func (h *RouteHandler) MarkDelivered(c *fiber.Ctx) error {
	var req DeliveredRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Respond(c, http.StatusBadRequest, "Invalid request body", "")
	}
	wid := c.Params("wid")
	return h.runTransition(c, "Waypoint delivered", func(ctx context.Context, id string) (*domain.Route, error) {
		return h.lifecycle.MarkDelivered(ctx, id, wid, req.Type)
	})
}

// FailedRequest is the body of a failed waypoint.
type FailedRequest struct {
	ReasonID string `json:"reason_id"`
	Photo    string `json:"photo"`
}

// MarkFailed handles POST /routes/:id/waypoints/:wid/failed.
// @Summary Mark a waypoint failed
// @Tags Routes
// @Accept json
// @Produce json
// @Param id path string true "Route ID"
// @Param wid path string true "Waypoint ID"
// @Param body body FailedRequest true "Failure reason and optional photo reference"
// @Success 200 {object} server.Envelope{data=domain.Route}
// @Failure 400 {object} server.ErrorBody
// @Failure 422 {object} server.ErrorBody
// @Router /routes/{id}/waypoints/{wid}/failed [post]
func (h *RouteHandler) MarkFailed(c *fiber.Ctx) error {
	var req FailedRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Respond(c, http.StatusBadRequest, "Invalid request body", "")
	}
	wid := c.Params("wid")
	return h.runTransition(c, "Waypoint marked as failed", func(ctx context.Context, id string) (*domain.Route, error) {
		return h.lifecycle.MarkFailed(ctx, id, wid, req.ReasonID, req.Photo)
	})
}
