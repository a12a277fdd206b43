package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "driver_sync_http_requests_total",
		Help: "Outbound REST requests by status class (2xx..5xx, error).",
	}, []string{"class"})

	Refreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "driver_sync_token_refresh_total",
		Help: "Token refresh outcomes (refreshed, reused, empty, error).",
	}, []string{"outcome"})

	Retries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "driver_sync_http_retries_total",
		Help: "Requests replayed after a successful token refresh.",
	})

	FeedFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "driver_sync_feed_fetches_total",
		Help: "Page fetches per feed by result (ok, empty, error).",
	}, []string{"feed", "result"})

	Transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "driver_sync_lifecycle_transitions_total",
		Help: "Route lifecycle operations by action and result.",
	}, []string{"action", "result"})

	MirrorWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "driver_sync_mirror_writes_total",
		Help: "Offline mirror writes by op (save, update, delete) and result (ok, error, dropped).",
	}, []string{"op", "result"})

	LocationSamples = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "driver_sync_location_samples_total",
		Help: "Location samples by result (sent, throttled, no_fix, sink_error).",
	}, []string{"result"})
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call twice.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			Requests, Refreshes, Retries,
			FeedFetches, Transitions,
			MirrorWrites, LocationSamples,
		)
	})
}
