package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/features/session/domain"

	"github.com/natefinch/atomic"
)

// FileStore keeps the session in a JSON file replaced atomically on every save.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements ports.Store.
func (s *FileStore) Load(ctx context.Context) (domain.Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Values{}, nil
	}
	if err != nil {
		return nil, apierror.Storage("failed to read session", err)
	}

	values := domain.Values{}
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, apierror.Storage("session file is corrupt", err)
	}
	return values, nil
}

// Save implements ports.Store.
func (s *FileStore) Save(ctx context.Context, values domain.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return apierror.Storage("failed to encode session", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return apierror.Storage("failed to write session", err)
	}
	return nil
}

// Clear implements ports.Store.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apierror.Storage("failed to clear session", err)
	}
	return nil
}

// Close implements ports.Store.
func (s *FileStore) Close() error {
	return nil
}
