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

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewInMemoryIdempotencyStore()
	store.now = func() time.Time { return now }

	t.Run("marks new event as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "event-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		processed, err := store.IsProcessed(ctx, "event-1")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("returns false for already processed event", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "event-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("allows reprocessing after expiration", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "event-2", time.Minute)
		require.NoError(t, err)

		now = now.Add(2 * time.Minute)
		processed, err := store.IsProcessed(ctx, "event-2")
		require.NoError(t, err)
		assert.False(t, processed)

		isNew, err := store.MarkProcessed(ctx, "event-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_SweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewInMemoryIdempotencyStore()
	store.now = func() time.Time { return now }

	for i := 0; i < sweepEvery-1; i++ {
		_, err := store.MarkProcessed(ctx, fmt.Sprintf("old-%d", i), time.Second)
		require.NoError(t, err)
	}
	now = now.Add(time.Minute)
	_, err := store.MarkProcessed(ctx, "fresh", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, err := store.MarkProcessed(ctx, "same-event", time.Hour)
			assert.NoError(t, err)
			if isNew {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestNewIdempotencyStore_WithoutRedis(t *testing.T) {
	store := NewIdempotencyStore(nil, nil)
	_, ok := store.(*InMemoryIdempotencyStore)
	assert.True(t, ok)
}
