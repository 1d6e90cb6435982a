package reservation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/lockstore"
)

func TestTatkalCounter_TryReserve(t *testing.T) {
	ctx := context.Background()
	counter := NewTatkalCounter(lockstore.NewMemoryStore())

	require.NoError(t, counter.Initialize(ctx, "1", 2))

	ok, err := counter.TryReserve(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = counter.TryReserve(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok, "last seat still wins")

	ok, err = counter.TryReserve(ctx, "1")
	require.NoError(t, err)
	assert.False(t, ok, "sold out")

	remaining, err := counter.Remaining(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining, "a losing decrement is compensated back to zero, never negative")
}

func TestTatkalCounter_Release(t *testing.T) {
	ctx := context.Background()
	counter := NewTatkalCounter(lockstore.NewMemoryStore())
	require.NoError(t, counter.Initialize(ctx, "1", 1))

	ok, err := counter.TryReserve(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, counter.Release(ctx, "1"))

	remaining, err := counter.Remaining(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestTatkalCounter_IsSoldOut(t *testing.T) {
	ctx := context.Background()
	counter := NewTatkalCounter(lockstore.NewMemoryStore())

	soldOut, err := counter.IsSoldOut(ctx, "99")
	require.NoError(t, err)
	assert.True(t, soldOut, "uninitialized inventory reads as sold out")

	require.NoError(t, counter.Initialize(ctx, "1", 1))
	soldOut, err = counter.IsSoldOut(ctx, "1")
	require.NoError(t, err)
	assert.False(t, soldOut)

	_, err = counter.TryReserve(ctx, "1")
	require.NoError(t, err)
	soldOut, err = counter.IsSoldOut(ctx, "1")
	require.NoError(t, err)
	assert.True(t, soldOut)
}

func TestTatkalCounter_Reset(t *testing.T) {
	ctx := context.Background()
	counter := NewTatkalCounter(lockstore.NewMemoryStore())
	require.NoError(t, counter.Initialize(ctx, "1", 1))
	_, err := counter.TryReserve(ctx, "1")
	require.NoError(t, err)

	require.NoError(t, counter.Reset(ctx, "1", 10))

	remaining, err := counter.Remaining(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)
}

func TestTatkalCounter_Delete(t *testing.T) {
	ctx := context.Background()
	counter := NewTatkalCounter(lockstore.NewMemoryStore())
	require.NoError(t, counter.Initialize(ctx, "1", 1))

	deleted, err := counter.Delete(ctx, "1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = counter.Remaining(ctx, "1")
	assert.ErrorIs(t, err, lockstore.ErrNotFound)
}
