// Package feed implements incremental page loading for list screens.
//
// A Feed owns one query's items and cursor. Page 1 replaces the items, later
// pages append, and a page with zero items marks the feed exhausted. A short
// but non-empty page does not: exhaustion is only ever declared by an empty
// page. Calls on one Feed are serialized; different feeds are independent.
package feed

import (
	"context"
	"sync"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/core/metrics"
)

// FetchFunc loads one page for a query.
type FetchFunc[T any, Q comparable] func(ctx context.Context, page, pageSize int, query Q) ([]T, error)

// Cursor is the pagination bookkeeping of a feed.
type Cursor struct {
	// Page is the last page applied; 0 until page 1 of the current query arrives.
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	// Exhausted stays true until page 1 is loaded again.
	Exhausted bool `json:"no_more_available"`
	Loading   bool `json:"loading"`
}

// State is the observable state of a feed.
type State[T any] struct {
	Items  []T    `json:"items"`
	Cursor Cursor `json:"cursor"`
	// Empty is set when page 1 came back with no items.
	Empty bool `json:"empty"`
	// Err is the message of the last failed fetch, cleared by page 1.
	Err string `json:"error,omitempty"`
}

type options struct {
	name      string
	keepStale bool
}

// Option configures a Feed.
type Option func(*options)

// WithName labels the feed in metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithKeepStaleOnRefresh keeps the current items visible during Refresh
// until the new page 1 arrives.
func WithKeepStaleOnRefresh(keep bool) Option {
	return func(o *options) { o.keepStale = keep }
}

// Feed is the incremental loading state machine for one query.
type Feed[T any, Q comparable] struct {
	fetch FetchFunc[T, Q]
	opts  options

	// runMu serializes fetches; mu guards the fields below.
	runMu sync.Mutex
	mu    sync.Mutex
	query Q
	state State[T]
	// loaded is the query whose page 1 was last applied; valid when hasLoaded.
	loaded    Q
	hasLoaded bool
}

// New creates a Feed for query. Nothing is fetched until Load, Refresh or LoadNext.
func New[T any, Q comparable](fetch FetchFunc[T, Q], pageSize int, query Q, opts ...Option) *Feed[T, Q] {
	o := options{name: "feed"}
	for _, opt := range opts {
		opt(&o)
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Feed[T, Q]{
		fetch: fetch,
		opts:  o,
		query: query,
		state: State[T]{Cursor: Cursor{PageSize: pageSize}},
	}
}

// Load fetches page. Page 1 resets the feed first.
func (f *Feed[T, Q]) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	f.runMu.Lock()
	defer f.runMu.Unlock()
	return f.load(ctx, page, false)
}

// Refresh reloads page 1, keeping stale items visible if configured to.
func (f *Feed[T, Q]) Refresh(ctx context.Context) error {
	f.runMu.Lock()
	defer f.runMu.Unlock()
	return f.load(ctx, 1, f.opts.keepStale)
}

// LoadNext fetches the page after the last applied one. It is a no-op, and
// returns false, while a fetch is running, once the feed is exhausted, or when
// page 1 came back empty.
func (f *Feed[T, Q]) LoadNext(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if !f.canAdvance() {
		f.mu.Unlock()
		return false, nil
	}
	f.state.Cursor.Loading = true
	f.mu.Unlock()

	f.runMu.Lock()
	defer f.runMu.Unlock()

	// A queued Load may have reset the cursor while we waited.
	f.mu.Lock()
	if f.state.Cursor.Exhausted || f.state.Empty {
		f.state.Cursor.Loading = false
		f.mu.Unlock()
		return false, nil
	}
	next := f.state.Cursor.Page + 1
	f.mu.Unlock()

	return true, f.load(ctx, next, false)
}

// SetQuery switches the feed to query and reloads page 1 unless page 1 of
// this same query is already applied.
func (f *Feed[T, Q]) SetQuery(ctx context.Context, query Q) error {
	f.runMu.Lock()
	defer f.runMu.Unlock()

	f.mu.Lock()
	unchanged := f.hasLoaded && f.loaded == query
	f.query = query
	f.mu.Unlock()

	if unchanged {
		return nil
	}
	return f.load(ctx, 1, false)
}

// Query returns the current query.
func (f *Feed[T, Q]) Query() Q {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// Snapshot returns a copy of the current state.
func (f *Feed[T, Q]) Snapshot() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	s.Items = append([]T(nil), f.state.Items...)
	return s
}

// Apply runs fn on every loaded item in place, keeping their order. It is
// used to mirror server-acknowledged changes (e.g. read markers) locally.
func (f *Feed[T, Q]) Apply(fn func(item *T)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.state.Items {
		fn(&f.state.Items[i])
	}
}

func (f *Feed[T, Q]) canAdvance() bool {
	c := f.state.Cursor
	return !c.Loading && !c.Exhausted && !f.state.Empty
}

// load must be called with runMu held.
func (f *Feed[T, Q]) load(ctx context.Context, page int, keepStale bool) error {
	f.mu.Lock()
	if page == 1 {
		if !keepStale {
			f.state.Items = nil
			f.state.Cursor.Page = 0
			f.hasLoaded = false
		}
		f.state.Err = ""
		f.state.Empty = false
		f.state.Cursor.Exhausted = false
	}
	f.state.Cursor.Loading = true
	query := f.query
	size := f.state.Cursor.PageSize
	f.mu.Unlock()

	items, err := f.fetch(ctx, page, size, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Cursor.Loading = false

	if err != nil {
		metrics.FeedFetches.WithLabelValues(f.opts.name, "error").Inc()
		f.state.Err = apierror.MessageOf(err)
		return err
	}

	if len(items) == 0 {
		metrics.FeedFetches.WithLabelValues(f.opts.name, "empty").Inc()
		if page == 1 {
			f.state.Items = nil
			f.state.Empty = true
			f.state.Cursor.Page = 1
			f.loaded, f.hasLoaded = query, true
		} else {
			f.state.Cursor.Exhausted = true
		}
		return nil
	}

	metrics.FeedFetches.WithLabelValues(f.opts.name, "ok").Inc()
	if page == 1 {
		f.state.Items = append([]T(nil), items...)
		f.loaded, f.hasLoaded = query, true
	} else {
		f.state.Items = append(f.state.Items, items...)
	}
	f.state.Empty = false
	f.state.Cursor.Page = page
	return nil
}
