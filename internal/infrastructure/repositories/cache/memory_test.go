package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, c.Set(ctx, "ticker:BTC", `{"id":"BTC"}`, time.Minute))
	got, err := c.Get(ctx, "ticker:BTC")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"BTC"}`, got)

	require.NoError(t, c.Delete(ctx, "ticker:BTC"))
	_, err = c.Get(ctx, "ticker:BTC")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", "v", time.Second))
	require.NoError(t, c.Set(ctx, "forever", "v", 0))

	now = now.Add(2 * time.Second)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrKeyExpired)
	assert.Equal(t, 1, c.Size(), "expired key is removed on read")

	got, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestMemoryCache_SetPurgesExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), "v", time.Second))
	}
	now = now.Add(time.Minute)
	require.NoError(t, c.Set(ctx, "fresh", "v", time.Minute))

	assert.Equal(t, 1, c.Size())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			_ = c.Set(ctx, key, "v", time.Minute)
			_, _ = c.Get(ctx, key)
			if i%5 == 0 {
				_ = c.Delete(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Size(), 4)
}
