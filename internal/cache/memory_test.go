package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryStore(t *testing.T) (*MemoryStore, *time.Time) {
	t.Helper()

	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	t.Cleanup(func() { _ = s.Close() })

	return s, &now
}

func TestMemoryStore_SetGet(t *testing.T) {
	s, _ := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "7", time.Hour))

	value, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "7", value)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s, _ := newTestMemoryStore(t)

	_, err := s.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s, now := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "1", 48*time.Hour))

	*now = now.Add(47 * time.Hour)
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	*now = now.Add(2 * time.Hour)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStore_SetIfAbsent(t *testing.T) {
	s, _ := newTestMemoryStore(t)
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

func TestMemoryStore_SetIfAbsentAfterExpiry(t *testing.T) {
	s, now := newTestMemoryStore(t)
	ctx := context.Background()

	ok, err := s.SetIfAbsent(ctx, "k", "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	*now = now.Add(2 * time.Hour)

	ok, err = s.SetIfAbsent(ctx, "k", "2", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	value, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func TestMemoryStore_Delete(t *testing.T) {
	s, _ := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "1", time.Hour))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStore_RemoveExpired(t *testing.T) {
	s, now := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "old", "1", time.Minute))
	require.NoError(t, s.Set(ctx, "fresh", "2", time.Hour))

	*now = now.Add(30 * time.Minute)
	s.removeExpired()

	s.mu.RLock()
	_, oldExists := s.entries["old"]
	_, freshExists := s.entries["fresh"]
	s.mu.RUnlock()

	assert.False(t, oldExists)
	assert.True(t, freshExists)
}
