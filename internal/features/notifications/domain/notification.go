package domain

import (
	"encoding/json"
	"time"

	"driver-sync/internal/core/flex"
)

// Filter selects which notifications a feed lists.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterUnread Filter = "unread"
)

// ParseFilter maps a query value to a Filter; anything else lists all.
func ParseFilter(s string) Filter {
	if Filter(s) == FilterUnread {
		return FilterUnread
	}
	return FilterAll
}

// Notification is a message addressed to the driver.
type Notification struct {
	ID           flex.ID   `json:"id"`
	NotifiableID flex.ID   `json:"notifiable_id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	RouteID      flex.ID   `json:"route_id,omitempty"`
	ReadAt       flex.Time `json:"read_at"`
	CreatedAt    flex.Time `json:"created_at"`
}

// Read reports whether the notification has been acknowledged.
func (n Notification) Read() bool {
	return !n.ReadAt.IsZero()
}

// MarkRead stamps the notification as read at t unless it already is.
func (n *Notification) MarkRead(t time.Time) {
	if n.Read() {
		return
	}
	n.ReadAt = flex.Time{Time: t}
}

// UnmarshalJSON also reads title, body and route_id from a nested "data"
// object, where database notifications keep their payload.
func (n *Notification) UnmarshalJSON(b []byte) error {
	type plain Notification
	var raw struct {
		plain
		Data *struct {
			Title   string  `json:"title"`
			Body    string  `json:"body"`
			RouteID flex.ID `json:"route_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = Notification(raw.plain)
	if d := raw.Data; d != nil {
		if n.Title == "" {
			n.Title = d.Title
		}
		if n.Body == "" {
			n.Body = d.Body
		}
		if n.RouteID == "" {
			n.RouteID = d.RouteID
		}
	}
	return nil
}

// PushMessage is a remote notification delivered to the device.
type PushMessage struct {
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	RouteID      flex.ID `json:"route_id"`
	NotifiableID flex.ID `json:"notifiable_id"`
}

// PushResult tells the caller what to open and whether the device is registered.
type PushResult struct {
	// RouteID is the route to open, or "".
	RouteID string `json:"route_id"`
	// Registered is true when the device token was sent to the server.
	Registered bool `json:"registered"`
}
