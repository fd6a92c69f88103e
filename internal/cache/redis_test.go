package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisStore spins up a miniredis server and returns the store plus
// the server for TTL manipulation.
func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStoreWithClient(client), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "daily_bonus_claimed:p1:2024-03-17", "3", 48*time.Hour))

	value, err := s.Get(ctx, "daily_bonus_claimed:p1:2024-03-17")
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}

func TestRedisStore_GetMissing(t *testing.T) {
	s, _ := newTestRedisStore(t)

	_, err := s.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisStore_TTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "1", 48*time.Hour))
	assert.Equal(t, 48*time.Hour, mr.TTL("k"))

	// Still readable just inside the window, gone just past it.
	mr.FastForward(47 * time.Hour)
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisStore_SetIfAbsent(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	ok, err := s.SetIfAbsent(ctx, "k", "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetIfAbsent(ctx, "k", "2", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	value, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestRedisStore_Delete(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "1", time.Hour))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStoreWithClient(client)

	mr.Close()

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	err = s.Set(context.Background(), "k", "1", time.Hour)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.SetIfAbsent(context.Background(), "k", "1", time.Hour)
	assert.ErrorIs(t, err, ErrUnavailable)
}
