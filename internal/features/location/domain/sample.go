package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPermissionDenied is returned by Start once location access was
	// refused; it holds for the rest of the process.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrNoFix means no position has been recorded yet.
	ErrNoFix = errors.New("no location fix available")
	// ErrInvalidFix is returned for coordinates outside the valid range.
	ErrInvalidFix = errors.New("invalid location fix")
)

// Fix is a position reported by the device.
type Fix struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Accuracy   float64   `json:"accuracy"`
	Heading    float64   `json:"heading"`
	Speed      float64   `json:"speed"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Validate checks the coordinate ranges.
func (f Fix) Validate() error {
	if f.Lat < -90 || f.Lat > 90 || f.Lng < -180 || f.Lng > 180 {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidFix, f.Lat, f.Lng)
	}
	if f.Accuracy < 0 {
		return fmt.Errorf("%w: negative accuracy", ErrInvalidFix)
	}
	return nil
}

// Sample is one fix as sent to the server.
type Sample struct {
	ID string `json:"id"`
	Fix
}

// Status describes the sampler for the bridge.
type Status struct {
	Running          bool `json:"running"`
	PermissionDenied bool `json:"permission_denied"`
	LastFix          *Fix `json:"last_fix,omitempty"`
}
