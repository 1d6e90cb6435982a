package lockstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.SetIfAbsent(ctx, "k1", "v1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetIfAbsent(ctx, "k1", "v2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	val, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", val)
}

func TestMemoryStore_Get_NotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.SetIfAbsent(ctx, "k1", "v1", time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = s.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	// expiry frees the key for a fresh acquire
	ok, err := s.SetIfAbsent(ctx, "k1", "v2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_DeleteIfEquals(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.SetIfAbsent(ctx, "k1", "owner-a", time.Minute)
	require.NoError(t, err)

	deleted, err := s.DeleteIfEquals(ctx, "k1", "owner-b")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.DeleteIfEquals(ctx, "k1", "owner-a")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = s.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.SetIfAbsent(ctx, "k1", "v1", time.Minute)
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, deleted, "expected Delete to report the key was removed")

	deleted, err = s.Delete(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, deleted, "expected Delete on an absent key to report nothing was removed")
}

func TestMemoryStore_IncrDecr(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	n, err := s.Decr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)

	n, err = s.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestMemoryStore_Scan(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, _ = s.SetIfAbsent(ctx, "lock:event:1:seat:A1", "u1", time.Minute)
	_, _ = s.SetIfAbsent(ctx, "lock:event:1:seat:A2", "u1", time.Minute)
	_, _ = s.SetIfAbsent(ctx, "lock:event:2:seat:A1", "u2", time.Minute)

	keys, err := s.Scan(ctx, "lock:event:1:seat:*")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ttl, err := s.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, -2*time.Second, ttl)

	_, _ = s.SetIfAbsent(ctx, "no-expiry", "v", 0)
	ttl, err = s.TTL(ctx, "no-expiry")
	require.NoError(t, err)
	assert.Equal(t, -1*time.Second, ttl)

	_, _ = s.SetIfAbsent(ctx, "with-expiry", "v", time.Minute)
	ttl, err = s.TTL(ctx, "with-expiry")
	require.NoError(t, err)
	assert.Greater(t, ttl, 55*time.Second)
}
