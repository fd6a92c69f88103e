package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-bonus-api/internal/cache"
)

// testClock lets tests fix "now" and move it forward day by day.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestBonus(t *testing.T) (*BonusService, *testClock) {
	t.Helper()

	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	clock := &testClock{now: time.Date(2024, 3, 17, 15, 0, 0, 0, time.UTC)}
	svc := NewBonusService(store, 0)
	svc.now = clock.Now

	return svc, clock
}

func TestClaimKey_Format(t *testing.T) {
	svc, _ := newTestBonus(t)
	playerID := uuid.MustParse("a3bb189e-8bf9-3888-9912-ace4e6543002")

	key := svc.claimKey(playerID, 0)
	assert.Equal(t, "daily_bonus_claimed:a3bb189e-8bf9-3888-9912-ace4e6543002:2024-03-17", key)

	yesterday := svc.claimKey(playerID, -1)
	assert.Equal(t, "daily_bonus_claimed:a3bb189e-8bf9-3888-9912-ace4e6543002:2024-03-16", yesterday)
}

func TestClaimKey_DistinctPlayersAndOffsets(t *testing.T) {
	svc, _ := newTestBonus(t)

	p1 := uuid.New()
	p2 := uuid.New()

	assert.NotEqual(t, svc.claimKey(p1, 0), svc.claimKey(p2, 0))
	assert.NotEqual(t, svc.claimKey(p1, 0), svc.claimKey(p1, -1))
}

func TestClaimKey_MidnightBoundary(t *testing.T) {
	svc, clock := newTestBonus(t)
	playerID := uuid.New()

	// Just past UTC midnight: yesterday must be the previous calendar date.
	clock.now = time.Date(2024, 3, 17, 0, 30, 0, 0, time.UTC)

	assert.Contains(t, svc.claimKey(playerID, 0), ":2024-03-17")
	assert.Contains(t, svc.claimKey(playerID, -1), ":2024-03-16")
}

func TestCheckStreak_NeverClaimed(t *testing.T) {
	svc, _ := newTestBonus(t)

	streak, err := svc.CheckStreak(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestCheckAvailability_FreshPlayer(t *testing.T) {
	svc, _ := newTestBonus(t)

	available, err := svc.CheckAvailability(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, available)
}

func TestClaim_FirstClaim(t *testing.T) {
	svc, _ := newTestBonus(t)
	ctx := context.Background()
	playerID := uuid.New()

	streak, err := svc.Claim(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	available, err := svc.CheckAvailability(ctx, playerID)
	require.NoError(t, err)
	assert.False(t, available)

	// Round trip: the streak written by claim is exactly what a check reads.
	got, err := svc.CheckStreak(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestClaim_TwiceSameDay(t *testing.T) {
	svc, _ := newTestBonus(t)
	ctx := context.Background()
	playerID := uuid.New()

	streak, err := svc.Claim(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	_, err = svc.Claim(ctx, playerID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestClaim_ConsecutiveDays(t *testing.T) {
	svc, clock := newTestBonus(t)
	ctx := context.Background()
	playerID := uuid.New()

	streak, err := svc.Claim(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	clock.Advance(24 * time.Hour)

	// Yesterday's record carries the streak before today's claim.
	carried, err := svc.CheckStreak(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 1, carried)

	streak, err = svc.Claim(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)

	clock.Advance(24 * time.Hour)

	streak, err = svc.Claim(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestClaim_GapDayResetsStreak(t *testing.T) {
	svc, clock := newTestBonus(t)
	ctx := context.Background()
	playerID := uuid.New()

	streak, err := svc.Claim(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	clock.Advance(24 * time.Hour)
	streak, err = svc.Claim(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)

	// Skip a whole UTC day. The lookup window only covers yesterday, so the
	// stale record two days back cannot carry the streak.
	clock.Advance(48 * time.Hour)

	carried, err := svc.CheckStreak(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 0, carried)

	streak, err = svc.Claim(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestStatus_FreshPlayerScenario(t *testing.T) {
	svc, clock := newTestBonus(t)
	ctx := context.Background()
	playerID := uuid.New()

	status, err := svc.Status(ctx, playerID)
	require.NoError(t, err)
	assert.True(t, status.Available)
	assert.Equal(t, 0, status.Streak)

	streak, err := svc.Claim(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	status, err = svc.Status(ctx, playerID)
	require.NoError(t, err)
	assert.False(t, status.Available)
	assert.Equal(t, 1, status.Streak)

	// Next UTC day: available again, riding the carried streak.
	clock.Advance(24 * time.Hour)

	status, err = svc.Status(ctx, playerID)
	require.NoError(t, err)
	assert.True(t, status.Available)
	assert.Equal(t, 1, status.Streak)

	streak, err = svc.Claim(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestClaim_IndependentPlayers(t *testing.T) {
	svc, _ := newTestBonus(t)
	ctx := context.Background()

	p1 := uuid.New()
	p2 := uuid.New()

	streak, err := svc.Claim(ctx, p1)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	available, err := svc.CheckAvailability(ctx, p2)
	require.NoError(t, err)
	assert.True(t, available)
}

// brokenStore simulates an unreachable cache.
type brokenStore struct {
	err error
}

func (s *brokenStore) Get(ctx context.Context, key string) (string, error) {
	return "", s.err
}

func (s *brokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.err
}

func (s *brokenStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return false, s.err
}

func (s *brokenStore) Delete(ctx context.Context, key string) error {
	return s.err
}

func TestStoreErrorsPropagate(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewBonusService(&brokenStore{err: storeErr}, 0)
	ctx := context.Background()
	playerID := uuid.New()

	_, err := svc.CheckAvailability(ctx, playerID)
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.CheckStreak(ctx, playerID)
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.Claim(ctx, playerID)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrAlreadyClaimed)
}

// missThenTakenStore reports the key absent on read but already taken on the
// conditional write, the window a concurrent claim slips through.
type missThenTakenStore struct{}

func (s *missThenTakenStore) Get(ctx context.Context, key string) (string, error) {
	return "", cache.ErrCacheMiss
}

func (s *missThenTakenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}

func (s *missThenTakenStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return false, nil
}

func (s *missThenTakenStore) Delete(ctx context.Context, key string) error {
	return nil
}

func TestClaim_LostRaceYieldsConflict(t *testing.T) {
	svc := NewBonusService(&missThenTakenStore{}, 0)

	_, err := svc.Claim(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestClaim_MalformedStoredStreak(t *testing.T) {
	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	clock := &testClock{now: time.Date(2024, 3, 17, 15, 0, 0, 0, time.UTC)}
	svc := NewBonusService(store, 0)
	svc.now = clock.Now

	playerID := uuid.New()
	require.NoError(t, store.Set(context.Background(), svc.claimKey(playerID, 0), "not-a-number", time.Hour))

	_, err := svc.CheckStreak(context.Background(), playerID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyClaimed)
}
