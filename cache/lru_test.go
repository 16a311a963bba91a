package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_GetPopulatesOnMiss(t *testing.T) {
	c := NewLRUCache[int, string](2)
	calls := 0
	load := func(ctx context.Context, k int) (string, error) {
		calls++
		return "v", nil
	}

	v, err := c.Get(context.Background(), 1, load)
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	v, err = c.Get(context.Background(), 1, load)
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, calls, "second get should hit the cache, not reinvoke the loader")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int, int](2)
	noErr := func(v int) Loader[int, int] {
		return func(context.Context, int) (int, error) { return v, nil }
	}

	_, _ = c.Get(context.Background(), 1, noErr(1))
	_, _ = c.Get(context.Background(), 2, noErr(2))
	_, _ = c.Get(context.Background(), 1, noErr(1)) // touch 1, 2 becomes LRU
	_, _ = c.Get(context.Background(), 3, noErr(3)) // evicts 2

	calls := 0
	_, _ = c.Get(context.Background(), 2, func(context.Context, int) (int, error) {
		calls++
		return 2, nil
	})
	assert.Equal(t, 1, calls, "entry 2 should have been evicted")

	// Reloading 2 into the full cache evicts 1, the second eviction.
	assert.Equal(t, int64(2), c.Stats().Evictions)
}

func TestLRUCache_LoadErrorNotCached(t *testing.T) {
	c := NewLRUCache[int, int](2)
	boom := errors.New("boom")

	_, err := c.Get(context.Background(), 1, func(context.Context, int) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	calls := 0
	_, _ = c.Get(context.Background(), 1, func(context.Context, int) (int, error) {
		calls++
		return 5, nil
	})
	assert.Equal(t, 1, calls, "a failed load must not poison the cache")
}
