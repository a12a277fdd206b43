package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"driver-sync/internal/core/transport"
	"driver-sync/internal/features/routes/domain"
)

// RESTGateway implements ports.RouteGateway.
type RESTGateway struct {
	api transport.Sender
}

// NewRESTGateway creates a gateway sending through api.
func NewRESTGateway(api transport.Sender) *RESTGateway {
	return &RESTGateway{api: api}
}

func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("perpage", strconv.Itoa(perPage))
	return q
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Available fetches one page of routes open for acceptance.
func (g *RESTGateway) Available(ctx context.Context, page, perPage int, q domain.AvailableQuery) ([]domain.Route, error) {
	query := pageQuery(page, perPage)
	if q.Date != "" {
		query.Set("date", q.Date)
	}
	if q.HasArea() {
		query.Set("radius", formatFloat(q.Radius))
		query.Set("lat", formatFloat(q.Lat))
		query.Set("lng", formatFloat(q.Lng))
	}
	return g.list(ctx, "available-routes", query)
}

// Accepted fetches one page of the driver's accepted routes.
func (g *RESTGateway) Accepted(ctx context.Context, page, perPage int) ([]domain.Route, error) {
	return g.list(ctx, "accepted-routes", pageQuery(page, perPage))
}

func (g *RESTGateway) list(ctx context.Context, path string, query url.Values) ([]domain.Route, error) {
	resp, err := g.api.Send(ctx, transport.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}
	var routes []domain.Route
	if err := transport.DecodeList(resp, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// Details fetches the authoritative state of one route.
func (g *RESTGateway) Details(ctx context.Context, routeID string) (*domain.Route, error) {
	resp, err := g.api.Send(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "route-details/" + url.PathEscape(routeID),
	})
	if err != nil {
		return nil, err
	}
	route, err := decodeRoute(resp)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, domain.ErrRouteNotFound
	}
	return route, nil
}

type routeAction struct {
	RouteID string `json:"route_id"`
}

// Accept claims a route for the driver.
func (g *RESTGateway) Accept(ctx context.Context, routeID string) (*domain.Route, error) {
	return g.action(ctx, "accept-route", routeAction{RouteID: routeID})
}

// Start puts an accepted route in transit.
func (g *RESTGateway) Start(ctx context.Context, routeID string) (*domain.Route, error) {
	return g.action(ctx, "start-route", routeAction{RouteID: routeID})
}

// Complete closes a route after its last waypoint.
func (g *RESTGateway) Complete(ctx context.Context, routeID string) (*domain.Route, error) {
	return g.action(ctx, "complete-route", routeAction{RouteID: routeID})
}

// Cancel gives a route back.
func (g *RESTGateway) Cancel(ctx context.Context, routeID string) (*domain.Route, error) {
	return g.action(ctx, "cancel-route", routeAction{RouteID: routeID})
}

type resolutionBody struct {
	RouteID         string `json:"route_id"`
	WaypointID      string `json:"waypoint_id"`
	Status          string `json:"status"`
	Type            string `json:"type,omitempty"`
	FailureReasonID string `json:"failure_reason_id,omitempty"`
	Photo           string `json:"photo,omitempty"`
	EndTime         string `json:"end_time"`
}

// ResolveWaypoint records the end of a delivery attempt with its time.
func (g *RESTGateway) ResolveWaypoint(ctx context.Context, res domain.Resolution) (*domain.Route, error) {
	return g.action(ctx, "route-mark-end-delivery-with-time", resolutionBody{
		RouteID:         res.RouteID,
		WaypointID:      res.WaypointID,
		Status:          string(res.Status),
		Type:            string(res.DeliveredType),
		FailureReasonID: res.FailureReasonID,
		Photo:           res.PhotoRef,
		EndTime:         res.EndTime.UTC().Format(time.DateTime),
	})
}

func (g *RESTGateway) action(ctx context.Context, path string, payload any) (*domain.Route, error) {
	req, err := transport.JSON(http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	resp, err := g.api.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeRoute(resp)
}

// decodeRoute returns nil when the response carried no route object, which
// some endpoints do (a bare message, or data without an id).
func decodeRoute(resp *transport.Response) (*domain.Route, error) {
	var raw json.RawMessage
	if err := transport.DecodeData(resp, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}

	// Some endpoints wrap the route as {"route": {...}}.
	var wrapped struct {
		Route json.RawMessage `json:"route"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(bytes.TrimSpace(wrapped.Route)) > 0 && wrapped.Route[0] == '{' {
		raw = wrapped.Route
	}

	var route domain.Route
	if err := json.Unmarshal(raw, &route); err != nil {
		return nil, fmt.Errorf("failed to decode route: %w", err)
	}
	if route.ID == "" {
		return nil, nil
	}
	return &route, nil
}
