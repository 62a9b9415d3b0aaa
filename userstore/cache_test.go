package userstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authcore "github.com/veloraweb/authcore"
)

type countingStore struct {
	users map[string]*authcore.UserRecord
	calls int
}

func (s *countingStore) GetByEmail(_ context.Context, email string) (*authcore.UserRecord, error) {
	s.calls++
	return s.users[email], nil
}

func newCacheFixture(t *testing.T) (*Cache, *countingStore, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	next := &countingStore{users: map[string]*authcore.UserRecord{
		"alice@example.com": {
			ID:     "user-1",
			Email:  "alice@example.com",
			Role:   authcore.RoleUser,
			Active: true,
		},
	}}
	return NewCache(next, client, time.Minute, nil), next, srv
}

func TestCacheReadThrough(t *testing.T) {
	cache, next, _ := newCacheFixture(t)
	ctx := context.Background()

	user, err := cache.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 1, next.calls)

	// Second read is served from Redis.
	user, err = cache.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, 1, next.calls)
}

func TestCacheMissIsNotCached(t *testing.T) {
	cache, next, _ := newCacheFixture(t)
	ctx := context.Background()

	user, err := cache.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = cache.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCacheInvalidate(t *testing.T) {
	cache, next, _ := newCacheFixture(t)
	ctx := context.Background()

	_, err := cache.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx, "alice@example.com"))

	_, err = cache.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCacheExpiry(t *testing.T) {
	cache, next, srv := newCacheFixture(t)
	ctx := context.Background()

	_, err := cache.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	srv.FastForward(2 * time.Minute)

	_, err = cache.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCacheCorruptEntryFallsThrough(t *testing.T) {
	cache, next, srv := newCacheFixture(t)
	ctx := context.Background()

	require.NoError(t, srv.Set(cacheKey("alice@example.com"), "{not json"))

	user, err := cache.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 1, next.calls)
}

func TestCacheServesDeactivatedFromStoreAfterInvalidate(t *testing.T) {
	cache, next, _ := newCacheFixture(t)
	ctx := context.Background()

	_, err := cache.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	next.users["alice@example.com"].Active = false
	require.NoError(t, cache.Invalidate(ctx, "alice@example.com"))

	user, err := cache.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.False(t, user.Active)
}
