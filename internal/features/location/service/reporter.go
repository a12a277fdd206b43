package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"driver-sync/internal/core/logger"
	"driver-sync/internal/core/metrics"
	"driver-sync/internal/features/location/domain"
	"driver-sync/internal/features/location/ports"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Reporter samples the position on a fixed interval and forwards every sample
// to a sink. A refused permission at Start is final for the process.
type Reporter struct {
	provider ports.Provider
	sink     ports.Sink
	auth     ports.Authorizer
	interval time.Duration
	limiter  *rate.Limiter
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	denied bool
}

// NewReporter creates a stopped Reporter. interval is raised to minInterval
// when shorter, and samples are never forwarded closer than minInterval.
func NewReporter(provider ports.Provider, sink ports.Sink, auth ports.Authorizer, interval, minInterval time.Duration) *Reporter {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	if interval < minInterval {
		interval = minInterval
	}
	return &Reporter{
		provider: provider,
		sink:     sink,
		auth:     auth,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(minInterval), 1),
		log:      logger.Named("location"),
	}
}

// Interval returns the effective sampling interval.
func (r *Reporter) Interval() time.Duration {
	return r.interval
}

// Start begins sampling until Stop is called or ctx is done. Starting a
// running reporter is a no-op.
func (r *Reporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.denied {
		return domain.ErrPermissionDenied
	}
	if r.cancel != nil {
		return nil
	}
	if !r.auth.Authorized(ctx) {
		r.denied = true
		r.log.Warn("Location permission not granted; sampling disabled")
		return domain.ErrPermissionDenied
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	go r.run(runCtx, done)

	r.log.Info("Location sampling started", zap.Duration("interval", r.interval))
	return nil
}

// Stop halts sampling and waits for the loop to exit.
func (r *Reporter) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the sampling loop is active.
func (r *Reporter) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Denied reports whether the permission was refused.
func (r *Reporter) Denied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.denied
}

func (r *Reporter) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		r.mu.Lock()
		if r.done == done {
			r.cancel()
			r.cancel, r.done = nil, nil
		}
		r.mu.Unlock()
		r.log.Info("Location sampling stopped")
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sample(ctx)
		}
	}
}

func (r *Reporter) sample(ctx context.Context) {
	if !r.limiter.Allow() {
		metrics.LocationSamples.WithLabelValues("throttled").Inc()
		return
	}

	s, err := r.provider.Current(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoFix) {
			r.log.Warn("Location provider failed", zap.Error(err))
		}
		metrics.LocationSamples.WithLabelValues("no_fix").Inc()
		return
	}

	if err := r.sink.Report(ctx, s); err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.LocationSamples.WithLabelValues("sink_error").Inc()
		r.log.Warn("Location sample not delivered", zap.String("sample_id", s.ID), zap.Error(err))
		return
	}
	metrics.LocationSamples.WithLabelValues("sent").Inc()
}
