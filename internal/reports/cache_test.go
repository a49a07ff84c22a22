package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestCacheBumpInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return map[string]int{"value": loads}, nil
	}

	key, err := cache.BuildKey(ctx, "reports", "daily", "2025-03-10")
	require.NoError(t, err)

	var out map[string]int
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 1, loads)

	// Same key serves the cached payload.
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 1, loads)
	require.Equal(t, 1, out["value"])

	// Bump rotates the version so the next key misses.
	require.NoError(t, cache.Bump(ctx))
	bumped, err := cache.BuildKey(ctx, "reports", "daily", "2025-03-10")
	require.NoError(t, err)
	require.NotEqual(t, key, bumped)

	require.NoError(t, cache.FetchJSON(ctx, bumped, &out, loader))
	require.Equal(t, 2, loads)
	require.Equal(t, 2, out["value"])
}

func TestCacheNilClientPassesThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return map[string]int{"value": loads}, nil
	}

	key, err := cache.BuildKey(ctx, "reports", "inventory")
	require.NoError(t, err)
	require.Equal(t, "reports:inventory", key)

	var out map[string]int
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 2, loads)

	require.NoError(t, cache.Bump(ctx))
}
