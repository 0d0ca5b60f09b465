package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratyek/grocery-app/internal/domain/cart"
)

func TestMemoryCartStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCartStore(time.Hour)

	lines, err := s.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.NotNil(t, lines)

	saved := []cart.Line{{ProductID: 1, Name: "Apples", Price: decimal.NewFromInt(200), Quantity: 2}}
	require.NoError(t, s.Save(ctx, "sid-1", saved))

	// mutating the caller's slice must not leak into the store
	saved[0].Quantity = 99

	lines, err = s.Load(ctx, "sid-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].Quantity)

	other, err := s.Load(ctx, "sid-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, s.Delete(ctx, "sid-1"))
	lines, err = s.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestMemoryCartStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryCartStore(time.Hour)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "sid", []cart.Line{{ProductID: 1, Quantity: 1}}))

	now = now.Add(59 * time.Minute)
	lines, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	now = now.Add(time.Minute)
	lines, err = s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestMemoryIdempotency_Acquire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryIdempotency()
	s.now = func() time.Time { return now }

	ok, err := s.Acquire(ctx, "order:1:abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Acquire(ctx, "order:1:abc", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Acquire(ctx, "order:2:abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Hour)
	ok, err = s.Acquire(ctx, "order:1:abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryIdempotency_Release(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIdempotency()

	ok, err := s.Acquire(ctx, "order:1:abc", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Release(ctx, "order:1:abc"))
	require.NoError(t, s.Release(ctx, "order:1:missing"))

	ok, err = s.Acquire(ctx, "order:1:abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCartStore_SaveSweepsAbandonedCarts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryCartStore(time.Hour)
	s.now = func() time.Time { return now }

	for _, sid := range []string{"a", "b", "c"} {
		require.NoError(t, s.Save(ctx, sid, []cart.Line{{ProductID: 1, Quantity: 1}}))
	}
	assert.Len(t, s.entries, 3)

	now = now.Add(2 * time.Hour)
	require.NoError(t, s.Save(ctx, "d", []cart.Line{{ProductID: 2, Quantity: 1}}))
	assert.Len(t, s.entries, 1)
	assert.Contains(t, s.entries, "d")
}

func TestMemoryCartStore_NoTTLNeverSweeps(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryCartStore(0)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "a", []cart.Line{{ProductID: 1, Quantity: 1}}))
	now = now.Add(48 * time.Hour)
	require.NoError(t, s.Save(ctx, "b", []cart.Line{{ProductID: 1, Quantity: 1}}))
	assert.Len(t, s.entries, 2)
}

func TestMemoryIdempotency_AcquireSweepsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryIdempotency()
	s.now = func() time.Time { return now }

	for _, key := range []string{"order:1:a", "order:1:b", "order:2:a"} {
		ok, err := s.Acquire(ctx, key, time.Hour)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Len(t, s.seen, 3)

	now = now.Add(25 * time.Hour)
	ok, err := s.Acquire(ctx, "order:3:a", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, s.seen, 1)
}
