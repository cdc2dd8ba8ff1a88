package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/auth"
)

func TestInMemoryTokenBlacklist_AddToBlacklist(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	err := blacklist.AddToBlacklist(ctx, "test-jti-1", 1*time.Hour)
	require.NoError(t, err)

	isBlacklisted, err := blacklist.IsBlacklisted(ctx, "test-jti-1")
	require.NoError(t, err)
	assert.True(t, isBlacklisted)

	isBlacklisted, err = blacklist.IsBlacklisted(ctx, "test-jti-2")
	require.NoError(t, err)
	assert.False(t, isBlacklisted)
}

func TestInMemoryTokenBlacklist_ExpirationCleanup(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	err := blacklist.AddToBlacklist(ctx, "test-jti-expire", 1*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	isBlacklisted, err := blacklist.IsBlacklisted(ctx, "test-jti-expire")
	require.NoError(t, err)
	assert.False(t, isBlacklisted)
}

func TestInMemoryTokenBlacklist_UserTokenInvalidation(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	issuedBefore := time.Now().Add(-1 * time.Minute)

	err := blacklist.AddUserTokensToBlacklist(ctx, "user-1", 1*time.Hour)
	require.NoError(t, err)

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.True(t, invalidated)

	issuedAfter := time.Now().Add(1 * time.Minute)
	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-1", issuedAfter)
	require.NoError(t, err)
	assert.False(t, invalidated)

	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-2", issuedBefore)
	require.NoError(t, err)
	assert.False(t, invalidated)
}

func TestInMemoryTokenBlacklist_SweepExpired(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "expired-1", 1*time.Millisecond))
	require.NoError(t, blacklist.AddToBlacklist(ctx, "expired-2", 1*time.Millisecond))
	require.NoError(t, blacklist.AddToBlacklist(ctx, "live", 1*time.Hour))

	time.Sleep(10 * time.Millisecond)

	removed, err := blacklist.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	isBlacklisted, err := blacklist.IsBlacklisted(ctx, "live")
	require.NoError(t, err)
	assert.True(t, isBlacklisted)
}

func newRedisBlacklist(t *testing.T) (*auth.RedisTokenBlacklist, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return auth.NewRedisTokenBlacklistWithClient(client), mr
}

func TestRedisTokenBlacklist_AddToBlacklist(t *testing.T) {
	blacklist, _ := newRedisBlacklist(t)
	ctx := context.Background()

	err := blacklist.AddToBlacklist(ctx, "redis-jti-1", 1*time.Hour)
	require.NoError(t, err)

	isBlacklisted, err := blacklist.IsBlacklisted(ctx, "redis-jti-1")
	require.NoError(t, err)
	assert.True(t, isBlacklisted)

	isBlacklisted, err = blacklist.IsBlacklisted(ctx, "unknown-jti")
	require.NoError(t, err)
	assert.False(t, isBlacklisted)
}

func TestRedisTokenBlacklist_TTLExpiry(t *testing.T) {
	blacklist, mr := newRedisBlacklist(t)
	ctx := context.Background()

	err := blacklist.AddToBlacklist(ctx, "redis-jti-ttl", 1*time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	isBlacklisted, err := blacklist.IsBlacklisted(ctx, "redis-jti-ttl")
	require.NoError(t, err)
	assert.False(t, isBlacklisted)
}

func TestRedisTokenBlacklist_UserTokenInvalidation(t *testing.T) {
	blacklist, _ := newRedisBlacklist(t)
	ctx := context.Background()

	issuedBefore := time.Now().Add(-1 * time.Minute)

	err := blacklist.AddUserTokensToBlacklist(ctx, "user-1", 1*time.Hour)
	require.NoError(t, err)

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.True(t, invalidated)

	issuedAfter := time.Now().Add(1 * time.Minute)
	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-1", issuedAfter)
	require.NoError(t, err)
	assert.False(t, invalidated)
}

func TestRedisTokenBlacklist_SweepExpiredIsNoop(t *testing.T) {
	blacklist, _ := newRedisBlacklist(t)

	removed, err := blacklist.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
