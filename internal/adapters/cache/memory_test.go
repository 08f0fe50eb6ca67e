package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTTLBoundary(t *testing.T) {
	m := NewMemory(0)

	base := time.Now()
	now := base
	m.now = func() time.Time { return now }

	ctx := context.Background()
	ttl := 24 * time.Hour
	require.NoError(t, m.Set(ctx, "k", []byte("v"), ttl))

	// One second before expiry: hit.
	now = base.Add(ttl - time.Second)
	val, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	// One second after expiry: miss.
	now = base.Add(ttl + time.Second)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("old"), time.Hour))
	require.NoError(t, m.Set(ctx, "k", []byte("new"), time.Hour))

	val, ok, _ := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), val)
}

func TestMemorySweepDropsExpired(t *testing.T) {
	m := NewMemory(0)

	base := time.Now()
	now := base
	m.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Hour))

	now = base.Add(30 * time.Minute)

	// Run one sweep pass by hand.
	m.mu.Lock()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()

	assert.Equal(t, 1, m.Len())
	_, ok, _ := m.Get(ctx, "b")
	assert.True(t, ok)
}
