package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTieredCache(t *testing.T) (*TieredProductCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l1 := NewInMemoryProductCache()
	t.Cleanup(func() { _ = l1.Close() })
	l2 := NewRedisProductCacheWithClient(client)

	return NewTieredProductCache(l1, l2, nil), mr
}

func TestTieredProductCache_SetAndGet(t *testing.T) {
	cache, _ := newTieredCache(t)
	ctx := context.Background()

	product := newCachedProduct(t, "TIER-001")
	require.NoError(t, cache.Set(ctx, product, time.Minute))

	got, err := cache.Get(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, product.SKU, got.SKU)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.L1Hits)
}

func TestTieredProductCache_L2FallbackPopulatesL1(t *testing.T) {
	cache, _ := newTieredCache(t)
	ctx := context.Background()

	product := newCachedProduct(t, "TIER-002")
	require.NoError(t, cache.l2Cache.Set(ctx, product, time.Minute))

	// First read misses L1 and falls back to L2
	got, err := cache.Get(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.L1Misses)
	assert.Equal(t, int64(1), stats.L2Hits)

	// Second read is served from L1
	got, err = cache.Get(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), cache.Stats().L1Hits)
}

func TestTieredProductCache_Miss(t *testing.T) {
	cache, _ := newTieredCache(t)

	got, err := cache.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.L2Misses)
	assert.Equal(t, int64(1), stats.TotalMisses)
}

func TestTieredProductCache_DeleteRemovesBothTiers(t *testing.T) {
	cache, _ := newTieredCache(t)
	ctx := context.Background()

	product := newCachedProduct(t, "TIER-003")
	require.NoError(t, cache.Set(ctx, product, time.Minute))
	require.NoError(t, cache.Delete(ctx, product.ID))

	got, err := cache.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = cache.l2Cache.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTieredProductCache_InvalidateAll(t *testing.T) {
	cache, _ := newTieredCache(t)
	ctx := context.Background()

	p1 := newCachedProduct(t, "TIER-004")
	p2 := newCachedProduct(t, "TIER-005")
	require.NoError(t, cache.Set(ctx, p1, time.Minute))
	require.NoError(t, cache.Set(ctx, p2, time.Minute))

	require.NoError(t, cache.InvalidateAll(ctx))

	got, err := cache.Get(ctx, p1.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = cache.Get(ctx, p2.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTieredProductCache_L2TTLExpiry(t *testing.T) {
	cache, mr := newTieredCache(t)
	ctx := context.Background()

	product := newCachedProduct(t, "TIER-006")
	require.NoError(t, cache.l2Cache.Set(ctx, product, time.Minute))

	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
