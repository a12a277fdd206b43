package ports

import (
	"context"

	"driver-sync/internal/core/feed"
	"driver-sync/internal/features/routes/domain"
)

// RouteGateway is the server side of routes. Mutating calls return the route
// as the server now sees it, or nil when the response carried no route.
type RouteGateway interface {
	Available(ctx context.Context, page, perPage int, q domain.AvailableQuery) ([]domain.Route, error)
	Accepted(ctx context.Context, page, perPage int) ([]domain.Route, error)
	Details(ctx context.Context, routeID string) (*domain.Route, error)
	Accept(ctx context.Context, routeID string) (*domain.Route, error)
	Start(ctx context.Context, routeID string) (*domain.Route, error)
	Complete(ctx context.Context, routeID string) (*domain.Route, error)
	Cancel(ctx context.Context, routeID string) (*domain.Route, error)
	ResolveWaypoint(ctx context.Context, res domain.Resolution) (*domain.Route, error)
}

// Mirror is the offline document store.
type Mirror interface {
	Save(ctx context.Context, routeID string, doc domain.MirrorDocument) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, routeID string, fields map[string]any) error
	Delete(ctx context.Context, routeID string) error
	Get(ctx context.Context, routeID string) (*domain.MirrorDocument, error)
}

// MirrorQueue accepts mirror writes without blocking or failing the caller.
type MirrorQueue interface {
	Save(routeID string, doc domain.MirrorDocument)
	Update(routeID string, fields map[string]any)
	Delete(routeID string)
}

// LifecycleService drives route and waypoint transitions.
type LifecycleService interface {
	Route(routeID string) (domain.Route, bool)
	Refresh(ctx context.Context, routeID string) (*domain.Route, error)
	Accept(ctx context.Context, routeID string) (*domain.Route, error)
	Start(ctx context.Context, routeID string) (*domain.Route, error)
	Complete(ctx context.Context, routeID string) (*domain.Route, error)
	Cancel(ctx context.Context, routeID string) (*domain.Route, error)
	MarkDelivered(ctx context.Context, routeID, waypointID string, deliveredType domain.DeliveredType) (*domain.Route, error)
	MarkFailed(ctx context.Context, routeID, waypointID, reasonID, photoRef string) (*domain.Route, error)
}

// FeedService exposes the route lists.
type FeedService interface {
	Available(ctx context.Context, q domain.AvailableQuery, refresh bool) (feed.State[domain.Route], error)
	NextAvailable(ctx context.Context) (feed.State[domain.Route], error)
	Accepted(ctx context.Context, refresh bool) (feed.State[domain.Route], error)
	NextAccepted(ctx context.Context) (feed.State[domain.Route], error)
}

// OfflineReader reads the last mirrored copy of a route.
type OfflineReader interface {
	Get(ctx context.Context, routeID string) (*domain.MirrorDocument, error)
}
