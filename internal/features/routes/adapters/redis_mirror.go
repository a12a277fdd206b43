package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"driver-sync/internal/core/cache"
	"driver-sync/internal/features/routes/domain"
)

// ErrMirrorDocumentMissing is returned when Update targets a route that was never saved.
var ErrMirrorDocumentMissing = errors.New("mirror document does not exist")

// RedisMirror implements ports.Mirror as JSON documents in the cache.
type RedisMirror struct {
	cache  cache.Cache
	prefix string
}

// NewRedisMirror stores documents under prefix+routeID.
func NewRedisMirror(c cache.Cache, prefix string) *RedisMirror {
	return &RedisMirror{cache: c, prefix: prefix}
}

func (m *RedisMirror) key(routeID string) string {
	return m.prefix + routeID
}

// Save writes the whole document, replacing any previous one.
func (m *RedisMirror) Save(ctx context.Context, routeID string, doc domain.MirrorDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("mirror: failed to marshal route %s: %w", routeID, err)
	}
	if err := m.cache.Set(ctx, m.key(routeID), data, 0); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
}

// Update merges fields into the stored document. Top-level keys are replaced.
func (m *RedisMirror) Update(ctx context.Context, routeID string, fields map[string]any) error {
	data, err := m.cache.Get(ctx, m.key(routeID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return fmt.Errorf("mirror: route %s: %w", routeID, ErrMirrorDocumentMissing)
	}
	if err != nil {
		return fmt.Errorf("mirror: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("mirror: corrupt document for route %s: %w", routeID, err)
	}
	for k, v := range fields {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("mirror: failed to marshal field %s: %w", k, err)
		}
		doc[k] = encoded
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("mirror: failed to marshal route %s: %w", routeID, err)
	}
	if err := m.cache.Set(ctx, m.key(routeID), merged, 0); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
}

// Delete removes the document.
func (m *RedisMirror) Delete(ctx context.Context, routeID string) error {
	if err := m.cache.Delete(ctx, m.key(routeID)); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
}

// Get returns the stored document.
func (m *RedisMirror) Get(ctx context.Context, routeID string) (*domain.MirrorDocument, error) {
	data, err := m.cache.Get(ctx, m.key(routeID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("mirror: route %s: %w", routeID, ErrMirrorDocumentMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("mirror: %w", err)
	}
	var doc domain.MirrorDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mirror: corrupt document for route %s: %w", routeID, err)
	}
	return &doc, nil
}
