// Package service holds the business logic of the daily bonus API.
//
// Daily bonuses can be claimed one time by each player, each UTC day. Every
// consecutive-day claim extends that player's streak; the streak ends whenever
// a player lets a UTC day pass without claiming.
//
// A claim writes one cache entry keyed by player and UTC date whose value is
// the streak reached by that claim. The entry lives for 48 hours: long enough
// to still be readable as "yesterday" at any point during "today", never long
// enough to answer about two days prior. Streak continuation therefore needs
// no durable storage at all - only yesterday's record matters, and an expired
// or absent yesterday means the streak restarts at 1.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"daily-bonus-api/internal/cache"
	"daily-bonus-api/internal/model"

	"github.com/google/uuid"
)

const (
	// claimKeyPrefix scopes all claim records in the shared cache.
	claimKeyPrefix = "daily_bonus_claimed:"

	// DefaultClaimTTL keeps a claim record readable as "yesterday" from any
	// point during "today".
	DefaultClaimTTL = 48 * time.Hour
)

// ErrAlreadyClaimed indicates the player has already claimed today's bonus.
// A normal, expected outcome; callers should not retry.
var ErrAlreadyClaimed = errors.New("daily bonus already claimed for this UTC day")

// BonusService implements the daily bonus state machine on top of a TTL'd
// key-value store. It holds no mutable state of its own; every request safely
// runs on its own goroutine.
type BonusService struct {
	store cache.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewBonusService creates a bonus service backed by the given store.
func NewBonusService(store cache.Store, ttl time.Duration) *BonusService {
	if ttl == 0 {
		ttl = DefaultClaimTTL
	}
	return &BonusService{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// claimKey derives the cache key for a player's claim record, dayOffset days
// from now. The date component is the current UTC instant advanced by
// 24h * dayOffset and truncated to the calendar date.
func (s *BonusService) claimKey(playerID uuid.UUID, dayOffset int) string {
	date := s.now().UTC().Add(time.Duration(dayOffset) * 24 * time.Hour)
	return claimKeyPrefix + playerID.String() + ":" + date.Format("2006-01-02")
}

// ClaimDate returns the UTC calendar date a claim made now would be recorded
// under, formatted YYYY-MM-DD.
func (s *BonusService) ClaimDate() string {
	return s.now().UTC().Format("2006-01-02")
}

// getStreak reads the streak stored under key. Returns (0, false, nil) on a
// cache miss; a non-miss store error is surfaced untouched.
func (s *BonusService) getStreak(ctx context.Context, key string) (int, bool, error) {
	value, err := s.store.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	streak, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("malformed streak value %q for key %s: %w", value, key, err)
	}
	return streak, true, nil
}

// CheckAvailability reports whether the player can still claim today's bonus.
// Read-only.
func (s *BonusService) CheckAvailability(ctx context.Context, playerID uuid.UUID) (bool, error) {
	_, claimed, err := s.getStreak(ctx, s.claimKey(playerID, 0))
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

// CheckStreak returns the streak the player currently holds: today's streak if
// already claimed, otherwise the carried streak from yesterday, otherwise 0.
// Read-only; never creates or modifies records.
func (s *BonusService) CheckStreak(ctx context.Context, playerID uuid.UUID) (int, error) {
	streak, claimed, err := s.getStreak(ctx, s.claimKey(playerID, 0))
	if err != nil {
		return 0, err
	}
	if claimed {
		return streak, nil
	}

	carried, _, err := s.getStreak(ctx, s.claimKey(playerID, -1))
	if err != nil {
		return 0, err
	}
	return carried, nil
}

// Status reports availability and current streak in a single projection,
// serving the combined check endpoint.
func (s *BonusService) Status(ctx context.Context, playerID uuid.UUID) (model.BonusStatus, error) {
	streak, claimed, err := s.getStreak(ctx, s.claimKey(playerID, 0))
	if err != nil {
		return model.BonusStatus{}, err
	}
	if claimed {
		return model.BonusStatus{Available: false, Streak: streak}, nil
	}

	carried, _, err := s.getStreak(ctx, s.claimKey(playerID, -1))
	if err != nil {
		return model.BonusStatus{}, err
	}
	return model.BonusStatus{Available: true, Streak: carried}, nil
}

// Claim marks today's bonus as claimed and returns the resulting streak.
// The write is conditional (set-if-absent on today's key), so two concurrent
// claims for the same player resolve to exactly one success; the loser
// receives ErrAlreadyClaimed. Once the write lands the claim is permanent -
// there is no rollback, regardless of what downstream payout does.
func (s *BonusService) Claim(ctx context.Context, playerID uuid.UUID) (int, error) {
	today := s.claimKey(playerID, 0)

	_, claimed, err := s.getStreak(ctx, today)
	if err != nil {
		return 0, err
	}
	if claimed {
		return 0, ErrAlreadyClaimed
	}

	carried, _, err := s.getStreak(ctx, s.claimKey(playerID, -1))
	if err != nil {
		return 0, err
	}

	streak := carried + 1
	ok, err := s.store.SetIfAbsent(ctx, today, strconv.Itoa(streak), s.ttl)
	if err != nil {
		return 0, err
	}
	if !ok {
		// Lost the race to a concurrent claim for the same player.
		return 0, ErrAlreadyClaimed
	}

	return streak, nil
}
