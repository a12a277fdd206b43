package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"driver-sync/internal/core/flex"
)

// RouteStatus is the server-assigned state of a route.
type RouteStatus string

const (
	StatusAvailable RouteStatus = "available"
	StatusAccepted  RouteStatus = "accepted"
	StatusInTransit RouteStatus = "in_transit"
	StatusCompleted RouteStatus = "completed"
	StatusCancelled RouteStatus = "cancelled"
)

// UnmarshalJSON normalizes "In Transit", "in-transit" and "canceled" spellings.
// Unknown values are kept verbatim; the client never substitutes its own.
func (s *RouteStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("route status: %w", err)
	}
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	if norm == "canceled" {
		norm = string(StatusCancelled)
	}
	*s = RouteStatus(norm)
	return nil
}

var transitions = map[RouteStatus][]RouteStatus{
	StatusAvailable: {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusCompleted},
}

// CanTransition reports whether a route may move from one status to another.
func CanTransition(from, to RouteStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s RouteStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var (
	// ErrIllegalTransition is returned when a route action is impossible from its current status.
	ErrIllegalTransition = errors.New("illegal route transition")
	// ErrTransitionInFlight is returned when another operation on the same route is running.
	ErrTransitionInFlight = errors.New("another operation on this route is in progress")
	// ErrRouteNotFound is returned for routes the client has never seen.
	ErrRouteNotFound = errors.New("route not found")
	// ErrInvalidDeliveredType is returned for a delivered type outside the known set.
	ErrInvalidDeliveredType = errors.New("invalid delivered type")
	// ErrMissingFailureReason is returned when a failed delivery has no reason.
	ErrMissingFailureReason = errors.New("failure reason is required")
)

// Place is an origin or destination.
type Place struct {
	Address string      `json:"address"`
	Lat     flex.Amount `json:"lat"`
	Lng     flex.Amount `json:"lng"`
}

// Client is the customer a route is delivered for.
type Client struct {
	ID    flex.ID `json:"id"`
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email string  `json:"email"`
}

// Route is a delivery route as confirmed by the server.
type Route struct {
	ID          flex.ID     `json:"id"`
	Status      RouteStatus `json:"status"`
	Origin      Place       `json:"origin"`
	Destination Place       `json:"destination"`
	Waypoints   []Waypoint  `json:"waypoints"`
	Client      *Client     `json:"client,omitempty"`
	Price       flex.Amount `json:"price"`
	DriverPrice flex.Amount `json:"driver_price"`
	Distance    flex.Amount `json:"distance"`
	Date        string      `json:"date"`
	CreatedAt   flex.Time   `json:"created_at"`
	UpdatedAt   flex.Time   `json:"updated_at"`
}

// Waypoint returns the waypoint with id.
func (r *Route) Waypoint(id string) (*Waypoint, bool) {
	for i := range r.Waypoints {
		if r.Waypoints[i].ID.String() == id {
			return &r.Waypoints[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy.
func (r Route) Clone() Route {
	out := r
	out.Waypoints = append([]Waypoint(nil), r.Waypoints...)
	for i := range out.Waypoints {
		if dt := r.Waypoints[i].DeliveredType; dt != nil {
			v := *dt
			out.Waypoints[i].DeliveredType = &v
		}
	}
	if r.Client != nil {
		c := *r.Client
		out.Client = &c
	}
	return out
}

// AvailableQuery filters the available routes feed.
type AvailableQuery struct {
	Date   string  `json:"date"`
	Radius float64 `json:"radius,omitempty"`
	Lat    float64 `json:"lat,omitempty"`
	Lng    float64 `json:"lng,omitempty"`
}

// HasArea reports whether the query restricts results to a radius around a point.
func (q AvailableQuery) HasArea() bool {
	return q.Radius > 0
}

// AcceptedQuery is the (parameterless) query of the accepted routes feed.
type AcceptedQuery struct{}
