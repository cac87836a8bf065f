package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_TakeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)

	require.NoError(t, s.Put(ctx, OAuthStatePrefix+"abc", "sid-1", time.Minute))

	val, err := s.Take(ctx, OAuthStatePrefix+"abc")
	require.NoError(t, err)
	assert.Equal(t, "sid-1", val)

	_, err = s.Take(ctx, OAuthStatePrefix+"abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	require.NoError(t, s.Put(ctx, RevokedTokenPrefix+"jti", "1", time.Minute))
	ok, err := s.Exists(ctx, RevokedTokenPrefix+"jti")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = s.Exists(ctx, RevokedTokenPrefix+"jti")
	require.NoError(t, err)
	assert.False(t, ok)
}
