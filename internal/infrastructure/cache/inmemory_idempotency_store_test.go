package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gridledger/billing/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryIdempotencyStore_Reserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "pay-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Reserve(ctx, "pay-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired claim can be retaken", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "pay-2", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)

		time.Sleep(20 * time.Millisecond)

		ok, err = store.Reserve(ctx, "pay-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("released claim can be retaken", func(t *testing.T) {
		ok, _ := store.Reserve(ctx, "pay-3", time.Hour)
		require.True(t, ok)
		require.NoError(t, store.Release(ctx, "pay-3"))

		ok, err := store.Reserve(ctx, "pay-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, _ = store.Reserve(ctx, "short-1", time.Minute)
	_, _ = store.Reserve(ctx, "short-2", time.Minute)
	_, _ = store.Reserve(ctx, "long", time.Hour)
	require.Equal(t, 3, store.Len())

	store.sweep(time.Now().Add(2 * time.Minute))

	assert.Equal(t, 1, store.Len())
	ok, err := store.Reserve(ctx, "long", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryIdempotencyStore_ConcurrentReserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	const callers = 100
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := store.Reserve(ctx, "same-key", time.Hour); err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestNewIdempotencyStore_RedisDisabled(t *testing.T) {
	store, err := NewIdempotencyStore(config.RedisConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}
