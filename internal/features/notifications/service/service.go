package service

import (
	"context"
	"time"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/core/feed"
	"driver-sync/internal/core/logger"
	"driver-sync/internal/features/notifications/domain"
	"driver-sync/internal/features/notifications/ports"

	"go.uber.org/zap"
)

type notificationFeed = feed.Feed[domain.Notification, domain.Filter]

// Service keeps the "all" and "unread" notification lists and registers the
// device for push delivery.
type Service struct {
	gateway ports.NotificationGateway
	session ports.SessionState
	feeds   map[domain.Filter]*notificationFeed
	now     func() time.Time
	log     *zap.Logger
}

// NewService creates a Service with one feed per filter.
func NewService(gateway ports.NotificationGateway, session ports.SessionState, pageSize int, keepStale bool) *Service {
	s := &Service{
		gateway: gateway,
		session: session,
		feeds:   map[domain.Filter]*notificationFeed{},
		now:     time.Now,
		log:     logger.Named("notifications"),
	}
	fetch := func(ctx context.Context, page, perPage int, filter domain.Filter) ([]domain.Notification, error) {
		return gateway.List(ctx, filter, page, perPage)
	}
	for _, filter := range []domain.Filter{domain.FilterAll, domain.FilterUnread} {
		s.feeds[filter] = feed.New(fetch, pageSize, filter,
			feed.WithName(string(filter)+"_notifications"), feed.WithKeepStaleOnRefresh(keepStale))
	}
	return s
}

func (s *Service) feedFor(filter domain.Filter) *notificationFeed {
	if f, ok := s.feeds[filter]; ok {
		return f
	}
	return s.feeds[domain.FilterAll]
}

// All returns the current state of the full list.
func (s *Service) All() feed.State[domain.Notification] {
	return s.feeds[domain.FilterAll].Snapshot()
}

// Unread returns the current state of the unread list.
func (s *Service) Unread() feed.State[domain.Notification] {
	return s.feeds[domain.FilterUnread].Snapshot()
}

// List loads page 1 of filter on first use or when refresh is set.
func (s *Service) List(ctx context.Context, filter domain.Filter, refresh bool) (feed.State[domain.Notification], error) {
	f := s.feedFor(filter)
	var err error
	if refresh {
		err = f.Refresh(ctx)
	} else {
		err = f.SetQuery(ctx, f.Query())
	}
	return f.Snapshot(), err
}

// Next loads the next page of filter.
func (s *Service) Next(ctx context.Context, filter domain.Filter) (feed.State[domain.Notification], error) {
	f := s.feedFor(filter)
	_, err := f.LoadNext(ctx)
	return f.Snapshot(), err
}

// MarkAllAsRead acknowledges everything on the server, then stamps every
// loaded item. Nothing changes locally if the server refuses.
func (s *Service) MarkAllAsRead(ctx context.Context) error {
	if err := s.gateway.MarkAllAsRead(ctx); err != nil {
		return err
	}
	now := s.now()
	for _, f := range s.feeds {
		f.Apply(func(n *domain.Notification) { n.MarkRead(now) })
	}
	return nil
}

// MarkAsRead acknowledges one notification.
func (s *Service) MarkAsRead(ctx context.Context, id string) error {
	if id == "" {
		return apierror.Validation("notification id is required")
	}
	if err := s.gateway.MarkAsRead(ctx, id); err != nil {
		return err
	}
	now := s.now()
	for _, f := range s.feeds {
		f.Apply(func(n *domain.Notification) {
			if n.ID.String() == id {
				n.MarkRead(now)
			}
		})
	}
	return nil
}

// UnreadCount counts the loaded notifications not yet read.
func (s *Service) UnreadCount() int {
	seen := map[string]bool{}
	count := 0
	for _, state := range []feed.State[domain.Notification]{s.Unread(), s.All()} {
		for _, n := range state.Items {
			id := n.ID.String()
			if seen[id] {
				continue
			}
			seen[id] = true
			if !n.Read() {
				count++
			}
		}
	}
	return count
}

// HandlePush returns the route a push message points at. With a live session
// the device token is also registered on the server; a failed registration is
// logged and does not lose the hint.
func (s *Service) HandlePush(ctx context.Context, msg domain.PushMessage, deviceToken string) (*domain.PushResult, error) {
	result := &domain.PushResult{RouteID: msg.RouteID.String()}

	loggedIn, err := s.session.IsLoggedIn(ctx)
	if err != nil {
		return nil, err
	}
	if !loggedIn {
		return result, nil
	}

	if deviceToken == "" {
		if deviceToken, err = s.session.DeviceToken(ctx); err != nil {
			return nil, err
		}
	}
	if deviceToken == "" {
		return result, nil
	}

	if err := s.gateway.RegisterDevice(ctx, deviceToken); err != nil {
		s.log.Warn("Device registration failed", zap.Error(err))
		return result, nil
	}
	if err := s.session.SetDeviceToken(ctx, deviceToken); err != nil {
		return nil, err
	}
	result.Registered = true
	return result, nil
}
