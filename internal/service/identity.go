package service

import (
	"context"
	"errors"
	"log"
	"time"

	"daily-bonus-api/internal/cache"

	"github.com/google/uuid"
)

const (
	// identityKeyPrefix scopes cached token resolutions in the shared cache.
	identityKeyPrefix = "authn_token:"

	// DefaultIdentityTTL bounds how long a positive token resolution is
	// reused before the player service is consulted again.
	DefaultIdentityTTL = 1 * time.Minute
)

// PlayerVerifier resolves a bearer token to a player id.
type PlayerVerifier interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// IdentityService resolves bearer tokens via the player service, memoizing
// positive resolutions in the cache for a short TTL so that back-to-back
// requests do not hammer the player service. Only successful resolutions are
// cached; failures always propagate.
type IdentityService struct {
	verifier PlayerVerifier
	store    cache.Store
	ttl      time.Duration
}

// NewIdentityService creates an identity service. store may be nil to disable
// memoization entirely.
func NewIdentityService(verifier PlayerVerifier, store cache.Store, ttl time.Duration) *IdentityService {
	if ttl == 0 {
		ttl = DefaultIdentityTTL
	}
	return &IdentityService{
		verifier: verifier,
		store:    store,
		ttl:      ttl,
	}
}

// Resolve returns the player id authenticated by token. Cache trouble is
// logged and degrades to a direct verifier call; it never produces a false
// authentication and never turns into a 5xx on its own.
func (s *IdentityService) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	key := identityKeyPrefix + token

	if s.store != nil {
		value, err := s.store.Get(ctx, key)
		if err == nil {
			if id, parseErr := uuid.Parse(value); parseErr == nil {
				return id, nil
			}
			// Unparseable cached id; drop it and re-resolve.
			_ = s.store.Delete(ctx, key)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("[IdentityService] Cache lookup failed, resolving directly: %v", err)
		}
	}

	id, err := s.verifier.Authenticate(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}

	if s.store != nil {
		if err := s.store.Set(ctx, key, id.String(), s.ttl); err != nil {
			log.Printf("[IdentityService] Failed to cache resolution: %v", err)
		}
	}

	return id, nil
}
