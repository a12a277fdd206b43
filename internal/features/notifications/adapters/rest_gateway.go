package adapters

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"driver-sync/internal/core/transport"
	"driver-sync/internal/features/notifications/domain"
)

// RESTGateway implements ports.NotificationGateway.
type RESTGateway struct {
	api transport.Sender
}

// NewRESTGateway creates a gateway sending through api.
func NewRESTGateway(api transport.Sender) *RESTGateway {
	return &RESTGateway{api: api}
}

var listPaths = map[domain.Filter]string{
	domain.FilterAll:    "all-notifications",
	domain.FilterUnread: "total-unreadnotifications",
}

// List fetches one page of notifications.
func (g *RESTGateway) List(ctx context.Context, filter domain.Filter, page, perPage int) ([]domain.Notification, error) {
	path, ok := listPaths[filter]
	if !ok {
		path = listPaths[domain.FilterAll]
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("perpage", strconv.Itoa(perPage))

	resp, err := g.api.Send(ctx, transport.Request{Method: http.MethodGet, Path: path, Query: q})
	if err != nil {
		return nil, err
	}
	var out []domain.Notification
	if err := transport.DecodeList(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAllAsRead acknowledges every notification.
func (g *RESTGateway) MarkAllAsRead(ctx context.Context) error {
	return g.post(ctx, "mark-all-as-read", nil)
}

// MarkAsRead acknowledges one notification.
func (g *RESTGateway) MarkAsRead(ctx context.Context, id string) error {
	return g.post(ctx, "mark-as-read/"+url.PathEscape(id), nil)
}

// RegisterDevice sends the push token of this device.
func (g *RESTGateway) RegisterDevice(ctx context.Context, deviceToken string) error {
	return g.post(ctx, "update-device-token", map[string]string{"device_token": deviceToken})
}

func (g *RESTGateway) post(ctx context.Context, path string, payload any) error {
	req := transport.Request{Method: http.MethodPost, Path: path}
	if payload != nil {
		var err error
		if req, err = transport.JSON(http.MethodPost, path, payload); err != nil {
			return err
		}
	}
	resp, err := g.api.Send(ctx, req)
	if err != nil {
		return err
	}
	return transport.CheckStatus(resp)
}
