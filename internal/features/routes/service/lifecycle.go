package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"driver-sync/internal/core/logger"
	"driver-sync/internal/core/metrics"
	"driver-sync/internal/features/routes/domain"
	"driver-sync/internal/features/routes/ports"

	"go.uber.org/zap"
)

type mirrorAction int

const (
	mirrorSave mirrorAction = iota
	mirrorUpdate
	mirrorDelete
)

// Lifecycle drives route transitions. A route's status only changes to what
// the server returned; a failed call leaves the last confirmed route in place.
// One operation per route runs at a time; a concurrent one is rejected.
type Lifecycle struct {
	gateway ports.RouteGateway
	mirror  ports.MirrorQueue
	now     func() time.Time
	log     *zap.Logger

	mu        sync.Mutex
	seq       uint64
	routes    map[string]trackedRoute
	inFlight  map[string]struct{}
	observers []func(domain.Route)
}

// trackedRoute is the last known copy of a route. confirmed is the sequence
// number of the transition or refresh that produced it, 0 for feed copies.
type trackedRoute struct {
	route     domain.Route
	confirmed uint64
}

// NewLifecycle creates a Lifecycle.
func NewLifecycle(gateway ports.RouteGateway, mirror ports.MirrorQueue) *Lifecycle {
	return &Lifecycle{
		gateway: gateway,
		mirror:  mirror,
		now:     time.Now,
		log:     logger.Named("lifecycle"),
		routes:   map[string]trackedRoute{},
		inFlight: map[string]struct{}{},
	}
}

// OnTransition registers fn to run after every confirmed transition.
func (l *Lifecycle) OnTransition(fn func(domain.Route)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

// Track records routes as their last known state.
func (l *Lifecycle) Track(routes ...domain.Route) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range routes {
		l.routes[r.ID.String()] = trackedRoute{route: r.Clone()}
	}
}

// Mark returns a position to pass to TrackSince once a fetch started now returns.
func (l *Lifecycle) Mark() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// TrackSince records routes fetched after mark. A route confirmed after mark
// keeps its confirmed copy, which replaces the fetched one in the result.
func (l *Lifecycle) TrackSince(mark uint64, routes []domain.Route) []domain.Route {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Route, len(routes))
	for i, r := range routes {
		id := r.ID.String()
		if t, ok := l.routes[id]; ok && t.confirmed > mark {
			out[i] = t.route.Clone()
			continue
		}
		l.routes[id] = trackedRoute{route: r.Clone()}
		out[i] = r
	}
	return out
}

func (l *Lifecycle) confirm(route domain.Route) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.routes[route.ID.String()] = trackedRoute{route: route.Clone(), confirmed: l.seq}
}

// Route returns the last confirmed state of a route.
func (l *Lifecycle) Route(routeID string) (domain.Route, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.routes[routeID]
	if !ok {
		return domain.Route{}, false
	}
	return t.route.Clone(), true
}

// Refresh adopts the server's current view of a route.
func (l *Lifecycle) Refresh(ctx context.Context, routeID string) (*domain.Route, error) {
	unlock, err := l.lock(routeID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	route, err := l.gateway.Details(ctx, routeID)
	if err != nil {
		return nil, err
	}
	l.confirm(*route)
	out := route.Clone()
	return &out, nil
}

// Accept claims a route. The mirror gets a new document stamped accepted_at.
func (l *Lifecycle) Accept(ctx context.Context, routeID string) (*domain.Route, error) {
	return l.transition(ctx, routeID, "accept", domain.StatusAccepted, mirrorSave, func(ctx context.Context) (*domain.Route, error) {
		return l.gateway.Accept(ctx, routeID)
	})
}

// Start puts an accepted route in transit.
func (l *Lifecycle) Start(ctx context.Context, routeID string) (*domain.Route, error) {
	return l.transition(ctx, routeID, "start", domain.StatusInTransit, mirrorUpdate, func(ctx context.Context) (*domain.Route, error) {
		return l.gateway.Start(ctx, routeID)
	})
}

// Complete closes a route in transit.
func (l *Lifecycle) Complete(ctx context.Context, routeID string) (*domain.Route, error) {
	return l.transition(ctx, routeID, "complete", domain.StatusCompleted, mirrorUpdate, func(ctx context.Context) (*domain.Route, error) {
		return l.gateway.Complete(ctx, routeID)
	})
}

// Cancel gives back an available or accepted route and drops its mirror document.
func (l *Lifecycle) Cancel(ctx context.Context, routeID string) (*domain.Route, error) {
	return l.transition(ctx, routeID, "cancel", domain.StatusCancelled, mirrorDelete, func(ctx context.Context) (*domain.Route, error) {
		return l.gateway.Cancel(ctx, routeID)
	})
}

// MarkDelivered resolves a waypoint as delivered. Whether the waypoint is
// still pending is for the server to decide; its refusal is returned as is.
func (l *Lifecycle) MarkDelivered(ctx context.Context, routeID, waypointID string, deliveredType domain.DeliveredType) (*domain.Route, error) {
	if !deliveredType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDeliveredType, deliveredType)
	}
	res := domain.Resolution{
		RouteID:       routeID,
		WaypointID:    waypointID,
		Status:        domain.WaypointDelivered,
		DeliveredType: deliveredType,
		EndTime:       l.now(),
	}
	return l.transition(ctx, routeID, "waypoint_delivered", "", mirrorUpdate, func(ctx context.Context) (*domain.Route, error) {
		return l.gateway.ResolveWaypoint(ctx, res)
	})
}

// MarkFailed resolves a waypoint as failed with a reason and optional photo.
func (l *Lifecycle) MarkFailed(ctx context.Context, routeID, waypointID, reasonID, photoRef string) (*domain.Route, error) {
	if strings.TrimSpace(reasonID) == "" {
		return nil, domain.ErrMissingFailureReason
	}
	res := domain.Resolution{
		RouteID:         routeID,
		WaypointID:      waypointID,
		Status:          domain.WaypointFailed,
		FailureReasonID: reasonID,
		PhotoRef:        photoRef,
		EndTime:         l.now(),
	}
	return l.transition(ctx, routeID, "waypoint_failed", "", mirrorUpdate, func(ctx context.Context) (*domain.Route, error) {
		return l.gateway.ResolveWaypoint(ctx, res)
	})
}

// transition runs one server-confirmed operation. target is checked against
// the last confirmed status when the route is known; waypoint operations pass "".
func (l *Lifecycle) transition(ctx context.Context, routeID, action string, target domain.RouteStatus, write mirrorAction, call func(context.Context) (*domain.Route, error)) (*domain.Route, error) {
	unlock, err := l.lock(routeID)
	if err != nil {
		metrics.Transitions.WithLabelValues(action, "in_flight").Inc()
		return nil, err
	}
	defer unlock()

	if target != "" {
		if current, ok := l.Route(routeID); ok && !domain.CanTransition(current.Status, target) {
			metrics.Transitions.WithLabelValues(action, "illegal").Inc()
			return nil, fmt.Errorf("%w: cannot %s a route that is %s", domain.ErrIllegalTransition, action, current.Status)
		}
	}

	route, err := call(ctx)
	if err != nil {
		metrics.Transitions.WithLabelValues(action, "error").Inc()
		l.log.Info("Transition failed", zap.String("action", action), zap.String("route_id", routeID), zap.Error(err))
		return nil, err
	}
	if route == nil {
		// The response carried no route; ask for the confirmed state.
		route, err = l.gateway.Details(ctx, routeID)
		if err != nil {
			metrics.Transitions.WithLabelValues(action, "error").Inc()
			return nil, fmt.Errorf("%s confirmed but route state unavailable: %w", action, err)
		}
	}

	l.confirm(*route)
	metrics.Transitions.WithLabelValues(action, "ok").Inc()
	l.log.Info("Route transition confirmed",
		zap.String("action", action),
		zap.String("route_id", routeID),
		zap.String("status", string(route.Status)))

	l.writeMirror(write, routeID, route.Clone())
	l.notify(route.Clone())

	out := route.Clone()
	return &out, nil
}

func (l *Lifecycle) writeMirror(write mirrorAction, routeID string, route domain.Route) {
	now := l.now()
	switch write {
	case mirrorSave:
		l.mirror.Save(routeID, domain.NewMirrorDocument(route, &now, now))
	case mirrorUpdate:
		l.mirror.Update(routeID, domain.MirrorFields(route, now))
	case mirrorDelete:
		l.mirror.Delete(routeID)
	}
}

func (l *Lifecycle) notify(route domain.Route) {
	l.mu.Lock()
	observers := make([]func(domain.Route), len(l.observers))
	copy(observers, l.observers)
	l.mu.Unlock()
	for _, fn := range observers {
		fn(route)
	}
}

// lock marks the route busy or fails with ErrTransitionInFlight. The entry
// is removed on unlock.
func (l *Lifecycle) lock(routeID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.inFlight[routeID]; busy {
		return nil, domain.ErrTransitionInFlight
	}
	l.inFlight[routeID] = struct{}{}
	return func() {
		l.mu.Lock()
		delete(l.inFlight, routeID)
		l.mu.Unlock()
	}, nil
}
