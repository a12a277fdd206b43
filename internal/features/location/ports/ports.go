package ports

import (
	"context"

	"driver-sync/internal/features/location/domain"
)

// Provider yields the current position.
type Provider interface {
	Current(ctx context.Context) (domain.Sample, error)
}

// Sink receives every forwarded sample.
type Sink interface {
	Report(ctx context.Context, sample domain.Sample) error
}

// Authorizer reports whether location access is granted.
type Authorizer interface {
	Authorized(ctx context.Context) bool
}

// FixRecorder accepts positions pushed by the device.
type FixRecorder interface {
	Record(fix domain.Fix) error
	Latest() (domain.Fix, bool)
}

// ReporterState is the sampler as seen by the bridge.
type ReporterState interface {
	Running() bool
	Denied() bool
}
