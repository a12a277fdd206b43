package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/features/session/domain"
	"driver-sync/internal/features/session/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeContract(t *testing.T, newStore func(t *testing.T) ports.Store) {
	ctx := context.Background()

	t.Run("EmptyWhenUninitialized", func(t *testing.T) {
		s := newStore(t)
		values, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("SaveReplacesAll", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, domain.Values{
			domain.KeyAccessToken: "tok-1",
			domain.KeyName:        "Ana",
		}))
		require.NoError(t, s.Save(ctx, domain.Values{
			domain.KeyAccessToken: "tok-2",
			domain.KeyLoggedIn:    "true",
		}))

		values, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.Values{
			domain.KeyAccessToken: "tok-2",
			domain.KeyLoggedIn:    "true",
		}, values)
	})

	t.Run("Clear", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, domain.Values{domain.KeyAccessToken: "tok"}))
		require.NoError(t, s.Clear(ctx))
		require.NoError(t, s.Clear(ctx))

		values, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, values)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContract(t, func(t *testing.T) ports.Store {
		s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "session.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, domain.Values{domain.KeyAccessToken: "persisted"}))
	require.NoError(t, s.Close())

	s, err = OpenSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	values, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", values[domain.KeyAccessToken])
}

func TestFileStore(t *testing.T) {
	storeContract(t, func(t *testing.T) ports.Store {
		return NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	})
}

func TestFileStore_CorruptFileIsStorageError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorIs(t, err, apierror.ErrStorage)
}

func TestFileStore_UnwritableDirIsStorageError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "session.json")
	err := NewFileStore(path).Save(context.Background(), domain.Values{domain.KeyAccessToken: "x"})
	assert.ErrorIs(t, err, apierror.ErrStorage)
}
