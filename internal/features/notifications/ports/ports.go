package ports

import (
	"context"

	"driver-sync/internal/core/feed"
	"driver-sync/internal/features/notifications/domain"
)

// NotificationGateway is the server side of notifications.
type NotificationGateway interface {
	List(ctx context.Context, filter domain.Filter, page, perPage int) ([]domain.Notification, error)
	MarkAllAsRead(ctx context.Context) error
	MarkAsRead(ctx context.Context, id string) error
	RegisterDevice(ctx context.Context, deviceToken string) error
}

// SessionState is the part of the session that push handling needs.
type SessionState interface {
	IsLoggedIn(ctx context.Context) (bool, error)
	DeviceToken(ctx context.Context) (string, error)
	SetDeviceToken(ctx context.Context, token string) error
}

// NotificationService is what the bridge handler drives.
type NotificationService interface {
	List(ctx context.Context, filter domain.Filter, refresh bool) (feed.State[domain.Notification], error)
	Next(ctx context.Context, filter domain.Filter) (feed.State[domain.Notification], error)
	MarkAllAsRead(ctx context.Context) error
	MarkAsRead(ctx context.Context, id string) error
	UnreadCount() int
	HandlePush(ctx context.Context, msg domain.PushMessage, deviceToken string) (*domain.PushResult, error)
}
