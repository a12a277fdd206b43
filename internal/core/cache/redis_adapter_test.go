package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter, mr
}

func TestRedisAdapter_GetSet(t *testing.T) {
	adapter, _ := newAdapter(t)
	ctx := context.Background()

	err := adapter.Set(ctx, "route_mirror:42", []byte(`{"route_id":"42"}`), 0)
	assert.NoError(t, err)

	got, err := adapter.Get(ctx, "route_mirror:42")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"route_id":"42"}`), got)
}

func TestRedisAdapter_GetMiss(t *testing.T) {
	adapter, _ := newAdapter(t)

	_, err := adapter.Get(context.Background(), "route_mirror:missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisAdapter_Delete(t *testing.T) {
	adapter, _ := newAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "k", []byte("v"), 0))
	assert.NoError(t, adapter.Delete(ctx, "k"))
	assert.NoError(t, adapter.Delete(ctx, "k"))

	_, err := adapter.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisAdapter_TTL(t *testing.T) {
	adapter, mr := newAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "ttl_test", []byte("expires_soon"), time.Second))
	_, err := adapter.Get(ctx, "ttl_test")
	assert.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = adapter.Get(ctx, "ttl_test")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisAdapter_Unreachable(t *testing.T) {
	adapter, mr := newAdapter(t)
	require.NoError(t, adapter.Ping(context.Background()))

	mr.Close()

	err := adapter.Set(context.Background(), "k", []byte("v"), 0)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisAdapter_InvalidURL(t *testing.T) {
	_, err := NewRedisAdapter("invalid://url")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}
