package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"driver-sync/internal/core/flex"
)

// WaypointStatus is the delivery state of a waypoint.
type WaypointStatus string

const (
	WaypointPending   WaypointStatus = "pending"
	WaypointDelivered WaypointStatus = "delivered"
	WaypointFailed    WaypointStatus = "failed"
)

// UnmarshalJSON lowercases the value; empty means pending.
func (s *WaypointStatus) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("waypoint status: %w", err)
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		*s = WaypointPending
		return nil
	}
	*s = WaypointStatus(strings.ToLower(strings.TrimSpace(*raw)))
	return nil
}

// IsTerminal reports whether the waypoint was resolved.
func (s WaypointStatus) IsTerminal() bool {
	return s == WaypointDelivered || s == WaypointFailed
}

// DeliveredType says who or where received a delivery.
type DeliveredType string

const (
	DeliveredRecipient  DeliveredType = "recipient"
	DeliveredThirdParty DeliveredType = "third_party"
	DeliveredMailbox    DeliveredType = "mailbox"
	DeliveredSafePlace  DeliveredType = "safe_place"
	DeliveredOther      DeliveredType = "other"
)

// Valid reports whether t is a known delivered type.
func (t DeliveredType) Valid() bool {
	switch t {
	case DeliveredRecipient, DeliveredThirdParty, DeliveredMailbox, DeliveredSafePlace, DeliveredOther:
		return true
	}
	return false
}

// Waypoint is one stop of a route. Order is the server's and is never changed.
type Waypoint struct {
	ID              flex.ID        `json:"id"`
	RouteID         flex.ID        `json:"route_id"`
	Order           int            `json:"order"`
	Status          WaypointStatus `json:"delivery_status"`
	DeliveredType   *DeliveredType `json:"delivered_type,omitempty"`
	FailureReasonID string         `json:"failure_reason_id,omitempty"`
	PhotoURL        string         `json:"photo_url,omitempty"`
	EndTime         flex.Time      `json:"end_time"`
	Address         string         `json:"address"`
	Lat             flex.Amount    `json:"lat"`
	Lng             flex.Amount    `json:"lng"`
	RecipientName   string         `json:"recipient_name"`
}

// Resolution is a request to close a waypoint.
type Resolution struct {
	RouteID         string
	WaypointID      string
	Status          WaypointStatus
	DeliveredType   DeliveredType
	FailureReasonID string
	PhotoRef        string
	EndTime         time.Time
}
