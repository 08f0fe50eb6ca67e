package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedis(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedisGetSetRoundTrip(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "k", []byte(`{"lat":40.7}`), time.Hour))

	val, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"lat":40.7}`), val)
}

func TestRedisTTLExpiry(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))

	mr.FastForward(time.Minute - time.Second)
	_, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "entry must survive until its TTL")

	mr.FastForward(2 * time.Second)
	_, ok, err = r.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry must expire after its TTL")
}
