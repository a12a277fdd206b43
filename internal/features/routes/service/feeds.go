package service

import (
	"context"

	"driver-sync/internal/core/feed"
	"driver-sync/internal/features/routes/domain"
	"driver-sync/internal/features/routes/ports"
)

// Feeds holds the available and accepted route lists. Every page loaded is
// tracked by the lifecycle, and confirmed transitions are reflected in the
// items already on screen.
type Feeds struct {
	available *feed.Feed[domain.Route, domain.AvailableQuery]
	accepted  *feed.Feed[domain.Route, domain.AcceptedQuery]
}

// NewFeeds builds both feeds over gateway.
func NewFeeds(gateway ports.RouteGateway, lifecycle *Lifecycle, pageSize int, keepStale bool) *Feeds {
	fetchAvailable := func(ctx context.Context, page, perPage int, q domain.AvailableQuery) ([]domain.Route, error) {
		mark := lifecycle.Mark()
		routes, err := gateway.Available(ctx, page, perPage, q)
		if err != nil {
			return nil, err
		}
		return lifecycle.TrackSince(mark, routes), nil
	}
	fetchAccepted := func(ctx context.Context, page, perPage int, _ domain.AcceptedQuery) ([]domain.Route, error) {
		mark := lifecycle.Mark()
		routes, err := gateway.Accepted(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		return lifecycle.TrackSince(mark, routes), nil
	}

	f := &Feeds{
		available: feed.New(fetchAvailable, pageSize, domain.AvailableQuery{},
			feed.WithName("available_routes"), feed.WithKeepStaleOnRefresh(keepStale)),
		accepted: feed.New(fetchAccepted, pageSize, domain.AcceptedQuery{},
			feed.WithName("accepted_routes"), feed.WithKeepStaleOnRefresh(keepStale)),
	}
	lifecycle.OnTransition(f.reflect)
	return f
}

// reflect replaces a transitioned route in both lists without reordering them.
func (f *Feeds) reflect(route domain.Route) {
	id := route.ID
	replace := func(item *domain.Route) {
		if item.ID == id {
			*item = route.Clone()
		}
	}
	f.available.Apply(replace)
	f.accepted.Apply(replace)
}

// Available loads page 1 for q when the query changed, when nothing is loaded
// yet, or when refresh is set.
func (f *Feeds) Available(ctx context.Context, q domain.AvailableQuery, refresh bool) (feed.State[domain.Route], error) {
	var err error
	if refresh && f.available.Query() == q {
		err = f.available.Refresh(ctx)
	} else {
		err = f.available.SetQuery(ctx, q)
	}
	return f.available.Snapshot(), err
}

// NextAvailable loads the next page of available routes.
func (f *Feeds) NextAvailable(ctx context.Context) (feed.State[domain.Route], error) {
	_, err := f.available.LoadNext(ctx)
	return f.available.Snapshot(), err
}

// Accepted loads page 1 of the accepted routes on first use or when refresh is set.
func (f *Feeds) Accepted(ctx context.Context, refresh bool) (feed.State[domain.Route], error) {
	var err error
	if refresh {
		err = f.accepted.Refresh(ctx)
	} else {
		err = f.accepted.SetQuery(ctx, domain.AcceptedQuery{})
	}
	return f.accepted.Snapshot(), err
}

// NextAccepted loads the next page of accepted routes.
func (f *Feeds) NextAccepted(ctx context.Context) (feed.State[domain.Route], error) {
	_, err := f.accepted.LoadNext(ctx)
	return f.accepted.Snapshot(), err
}
