package model

import (
	"time"

	"github.com/google/uuid"
)

// BonusStatus describes a player's daily bonus standing at a point in time.
// Available is true when today's bonus has not yet been claimed. Streak is the
// streak the player holds: today's streak once claimed, otherwise the carried
// streak from yesterday (0 when there is nothing to carry).
type BonusStatus struct {
	Available bool `json:"available"`
	Streak    int  `json:"streak"`
}

// ClaimEvent is the audit record written after a successful claim. It is an
// operational log only; the bonus engine never reads it back.
type ClaimEvent struct {
	ID           int64     `json:"id"`
	RequestID    string    `json:"request_id"`
	PlayerID     uuid.UUID `json:"player_id"`
	ClaimDate    string    `json:"claim_date"` // UTC calendar date, YYYY-MM-DD
	Streak       int       `json:"streak"`
	Amount       int       `json:"amount"`
	PayoutStatus string    `json:"payout_status"` // "success" or "failed"
	CreatedAt    time.Time `json:"created_at"`
}

// Payout status values recorded on claim events.
const (
	PayoutStatusSuccess = "success"
	PayoutStatusFailed  = "failed"
)
