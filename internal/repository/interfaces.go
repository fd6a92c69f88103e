package repository

import (
	"context"
	"time"

	"daily-bonus-api/internal/model"
)

// ClaimLogRepository defines claim audit log data access methods. The log is
// operational only: the bonus engine never reads it, and a failed insert must
// never fail a claim.
type ClaimLogRepository interface {
	// InsertClaim records a successful claim.
	InsertClaim(ctx context.Context, event *model.ClaimEvent) error

	// ListClaims returns claim events newest-first with the total count.
	ListClaims(ctx context.Context, limit, offset int) ([]model.ClaimEvent, int64, error)

	// DeleteOlderThan removes events older than the threshold and returns the
	// number deleted.
	DeleteOlderThan(ctx context.Context, threshold time.Duration) (int64, error)

	// GetStats returns statistics about the claim log.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}
