package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"daily-bonus-api/internal/client"
	"daily-bonus-api/internal/middleware"
	"daily-bonus-api/internal/model"
	"daily-bonus-api/internal/repository"
	"daily-bonus-api/internal/service"
	"daily-bonus-api/pkg/apierror"
	"daily-bonus-api/pkg/response"

	"github.com/google/uuid"
)

// PayoutIssuer credits a reward amount to the player identified by token.
type PayoutIssuer interface {
	Payout(ctx context.Context, token string, amount int, reason string) error
}

// BonusHandler handles the daily bonus HTTP endpoints.
type BonusHandler struct {
	bonus      *service.BonusService
	payout     PayoutIssuer
	claims     repository.ClaimLogRepository // optional audit log, may be nil
	multiplier int
}

// NewBonusHandler creates a new bonus handler.
func NewBonusHandler(bonus *service.BonusService, payout PayoutIssuer, claims repository.ClaimLogRepository, multiplier int) *BonusHandler {
	if multiplier <= 0 {
		multiplier = 128
	}
	return &BonusHandler{
		bonus:      bonus,
		payout:     payout,
		claims:     claims,
		multiplier: multiplier,
	}
}

// ClaimResponse is the body of a successful claim.
type ClaimResponse struct {
	Streak int `json:"streak"`
	Amount int `json:"amount"`
}

// StreakResponse is the body of a streak check.
type StreakResponse struct {
	Streak int `json:"streak"`
}

// Status handles GET /api/v1/daily - availability plus current streak.
func (h *BonusHandler) Status(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized(""))
		return
	}

	status, err := h.bonus.Status(r.Context(), playerID)
	if err != nil {
		log.Printf("[BonusHandler] Status check failed for %s: %v", playerID, err)
		response.Error(w, apierror.ServiceUnavailable("Daily bonus storage is unavailable"))
		return
	}

	response.OK(w, status)
}

// Streak handles GET /api/v1/daily/streak - the streak the player is riding.
func (h *BonusHandler) Streak(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized(""))
		return
	}

	streak, err := h.bonus.CheckStreak(r.Context(), playerID)
	if err != nil {
		log.Printf("[BonusHandler] Streak check failed for %s: %v", playerID, err)
		response.Error(w, apierror.ServiceUnavailable("Daily bonus storage is unavailable"))
		return
	}

	response.OK(w, StreakResponse{Streak: streak})
}

// Claim handles POST /api/v1/daily. On success the reward payout is issued
// through the currency service with the player's own bearer token. The claim
// record stands even when payout fails; re-claiming the same UTC day yields a
// conflict, so a failed payout needs operator attention, not a retry.
func (h *BonusHandler) Claim(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized(""))
		return
	}

	streak, err := h.bonus.Claim(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyClaimed) {
			response.Error(w, apierror.Conflict("You cannot claim the daily bonus twice in a single UTC day"))
			return
		}
		log.Printf("[BonusHandler] Claim failed for %s: %v", playerID, err)
		response.Error(w, apierror.ServiceUnavailable("Daily bonus storage is unavailable"))
		return
	}

	amount := h.multiplier * streak
	reason := "DAILY_BONUS DATE=" + h.bonus.ClaimDate()

	payoutErr := h.payout.Payout(r.Context(), middleware.GetBearerToken(r.Context()), amount, reason)

	h.recordClaim(r, playerID, streak, amount, payoutErr)

	if payoutErr != nil {
		log.Printf("[BonusHandler] Payout failed for %s (streak %d, amount %d): %v",
			playerID, streak, amount, payoutErr)
		switch {
		case errors.Is(payoutErr, client.ErrUnauthorized):
			response.Error(w, apierror.Unauthorized("Token authentication failed"))
		case errors.Is(payoutErr, client.ErrRequestFailed):
			response.Error(w, apierror.ServiceUnavailable("Could not reach the currency service"))
		default:
			response.Error(w, apierror.InternalError("Internal server error with payout service"))
		}
		return
	}

	response.OK(w, ClaimResponse{Streak: streak, Amount: amount})
}

// recordClaim writes the audit event. Best-effort: a logging failure never
// affects the claim outcome.
func (h *BonusHandler) recordClaim(r *http.Request, playerID uuid.UUID, streak, amount int, payoutErr error) {
	if h.claims == nil {
		return
	}

	status := model.PayoutStatusSuccess
	if payoutErr != nil {
		status = model.PayoutStatusFailed
	}

	event := &model.ClaimEvent{
		RequestID:    middleware.GetRequestID(r.Context()),
		PlayerID:     playerID,
		ClaimDate:    h.bonus.ClaimDate(),
		Streak:       streak,
		Amount:       amount,
		PayoutStatus: status,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.claims.InsertClaim(r.Context(), event); err != nil {
		log.Printf("[BonusHandler] Failed to record claim event: %v", err)
	}
}
