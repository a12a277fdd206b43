package domain

import (
	"time"

	"driver-sync/internal/core/flex"
)

// MirrorDocument is the flattened projection of a route kept in the offline
// mirror. AcceptedAt exists only here; the server has no such field.
type MirrorDocument struct {
	RouteID            string           `json:"route_id"`
	Status             RouteStatus      `json:"status"`
	OriginAddress      string           `json:"origin_address"`
	OriginLat          flex.Amount      `json:"origin_lat"`
	OriginLng          flex.Amount      `json:"origin_lng"`
	DestinationAddress string           `json:"destination_address"`
	DestinationLat     flex.Amount      `json:"destination_lat"`
	DestinationLng     flex.Amount      `json:"destination_lng"`
	Price              flex.Amount      `json:"price"`
	DriverPrice        flex.Amount      `json:"driver_price"`
	Distance           flex.Amount      `json:"distance"`
	Date               string           `json:"date"`
	Waypoints          []MirrorWaypoint `json:"waypoints"`
	Client             *Client          `json:"client,omitempty"`
	AcceptedAt         *time.Time       `json:"accepted_at,omitempty"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// MirrorWaypoint is a waypoint inside a MirrorDocument.
type MirrorWaypoint struct {
	ID              string         `json:"id"`
	Order           int            `json:"order"`
	Status          WaypointStatus `json:"delivery_status"`
	DeliveredType   *DeliveredType `json:"delivered_type,omitempty"`
	FailureReasonID string         `json:"failure_reason_id,omitempty"`
	EndTime         *time.Time     `json:"end_time,omitempty"`
	Address         string         `json:"address"`
	RecipientName   string         `json:"recipient_name"`
}

// NewMirrorDocument flattens r. acceptedAt is stamped by the caller on accept.
func NewMirrorDocument(r Route, acceptedAt *time.Time, now time.Time) MirrorDocument {
	doc := MirrorDocument{
		RouteID:            r.ID.String(),
		Status:             r.Status,
		OriginAddress:      r.Origin.Address,
		OriginLat:          r.Origin.Lat,
		OriginLng:          r.Origin.Lng,
		DestinationAddress: r.Destination.Address,
		DestinationLat:     r.Destination.Lat,
		DestinationLng:     r.Destination.Lng,
		Price:              r.Price,
		DriverPrice:        r.DriverPrice,
		Distance:           r.Distance,
		Date:               r.Date,
		Waypoints:          mirrorWaypoints(r.Waypoints),
		AcceptedAt:         acceptedAt,
		UpdatedAt:          now.UTC(),
	}
	if r.Client != nil {
		c := *r.Client
		doc.Client = &c
	}
	return doc
}

// MirrorFields is the partial update written after a lifecycle change.
func MirrorFields(r Route, now time.Time) map[string]any {
	return map[string]any{
		"status":     r.Status,
		"waypoints":  mirrorWaypoints(r.Waypoints),
		"updated_at": now.UTC(),
	}
}

func mirrorWaypoints(wps []Waypoint) []MirrorWaypoint {
	out := make([]MirrorWaypoint, 0, len(wps))
	for _, wp := range wps {
		status := wp.Status
		if status == "" {
			status = WaypointPending
		}
		out = append(out, MirrorWaypoint{
			ID:              wp.ID.String(),
			Order:           wp.Order,
			Status:          status,
			DeliveredType:   wp.DeliveredType,
			FailureReasonID: wp.FailureReasonID,
			EndTime:         wp.EndTime.Ptr(),
			Address:         wp.Address,
			RecipientName:   wp.RecipientName,
		})
	}
	return out
}
