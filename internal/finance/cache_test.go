package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Hour)
}

func TestCacheFetchJSONPopulatesOnMiss(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return map[string]float64{"01-2024": 42}, nil
	}

	key, err := cache.ResultKey(ctx, "100", "2024")
	require.NoError(t, err)

	var first map[string]float64
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	var second map[string]float64
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestCacheBumpChangesKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.ResultKey(ctx, "100", "2024")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.ResultKey(ctx, "100", "2024")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestCacheFetchJSONPropagatesLoaderError(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	wantErr := errors.New("fetch failed")
	var dest map[string]float64
	err := cache.FetchJSON(ctx, "dre:x:y:1", &dest, func(context.Context) (interface{}, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestNilCacheFallsBackToLoader(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.ResultKey(ctx, "100", ProjectionTag)
	require.NoError(t, err)
	assert.Equal(t, "dre:100:AREALIZAR", key)

	calls := 0
	var dest []string
	require.NoError(t, cache.FetchJSON(ctx, key, &dest, func(context.Context) (interface{}, error) {
		calls++
		return []string{"a"}, nil
	}))
	require.NoError(t, cache.FetchJSON(ctx, key, &dest, func(context.Context) (interface{}, error) {
		calls++
		return []string{"a"}, nil
	}))
	assert.Equal(t, 2, calls)
	require.NoError(t, cache.Bump(ctx))
}
