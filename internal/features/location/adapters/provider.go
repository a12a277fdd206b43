package adapters

import (
	"context"
	"sync"
	"time"

	"driver-sync/internal/features/location/domain"

	"github.com/google/uuid"
)

// LatestFixProvider serves the most recent fix recorded by the device. Each
// sample gets a fresh id so the server can deduplicate retries.
type LatestFixProvider struct {
	mu     sync.RWMutex
	latest *domain.Fix
	now    func() time.Time
}

// NewLatestFixProvider creates an empty provider.
func NewLatestFixProvider() *LatestFixProvider {
	return &LatestFixProvider{now: time.Now}
}

// Record stores fix as the current position. A fix without a timestamp is
// stamped with the current time.
func (p *LatestFixProvider) Record(fix domain.Fix) error {
	if err := fix.Validate(); err != nil {
		return err
	}
	if fix.RecordedAt.IsZero() {
		fix.RecordedAt = p.now()
	}
	fix.RecordedAt = fix.RecordedAt.UTC()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest = &fix
	return nil
}

// Latest returns the current position, if any.
func (p *LatestFixProvider) Latest() (domain.Fix, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return domain.Fix{}, false
	}
	return *p.latest, true
}

// Current implements ports.Provider.
func (p *LatestFixProvider) Current(ctx context.Context) (domain.Sample, error) {
	fix, ok := p.Latest()
	if !ok {
		return domain.Sample{}, domain.ErrNoFix
	}
	return domain.Sample{ID: uuid.NewString(), Fix: fix}, nil
}

// StaticAuthorizer answers with a fixed permission.
type StaticAuthorizer struct {
	granted bool
}

// NewStaticAuthorizer creates an authorizer whose answer never changes.
func NewStaticAuthorizer(granted bool) StaticAuthorizer {
	return StaticAuthorizer{granted: granted}
}

// Authorized implements ports.Authorizer.
func (a StaticAuthorizer) Authorized(ctx context.Context) bool {
	return a.granted
}
