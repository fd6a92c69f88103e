package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"daily-bonus-api/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteClaimLogRepository implements ClaimLogRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteClaimLogRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteClaimLogRepository creates a new SQLite claim log repository.
// dbPath is the path to the SQLite database file (e.g., "./data/claims.db")
func NewSQLiteClaimLogRepository(dbPath string) (*SQLiteClaimLogRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteClaimLogRepository] Initialized with database: %s", dbPath)
	return &SQLiteClaimLogRepository{db: db}, nil
}

// createSQLiteTables creates the claim log table.
func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS daily_bonus_claims (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL DEFAULT '',
		player_id TEXT NOT NULL,
		claim_date TEXT NOT NULL,
		streak INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		payout_status TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_claims_player ON daily_bonus_claims(player_id);
	CREATE INDEX IF NOT EXISTS idx_claims_created_at ON daily_bonus_claims(created_at);
	`
	_, err := db.Exec(query)
	return err
}

// InsertClaim records a successful claim.
func (r *SQLiteClaimLogRepository) InsertClaim(ctx context.Context, event *model.ClaimEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO daily_bonus_claims (request_id, player_id, claim_date, streak, amount, payout_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		event.RequestID, event.PlayerID.String(), event.ClaimDate,
		event.Streak, event.Amount, event.PayoutStatus, event.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert claim event: %w", err)
	}
	return nil
}

// ListClaims returns claim events newest-first with the total count.
func (r *SQLiteClaimLogRepository) ListClaims(ctx context.Context, limit, offset int) ([]model.ClaimEvent, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, request_id, player_id, claim_date, streak, amount, payout_status, created_at
		FROM daily_bonus_claims
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list claim events: %w", err)
	}
	defer rows.Close()

	events, err := scanClaimEvents(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_bonus_claims").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count claim events: %w", err)
	}

	return events, total, nil
}

// DeleteOlderThan removes events older than the threshold.
func (r *SQLiteClaimLogRepository) DeleteOlderThan(ctx context.Context, threshold time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-threshold)

	result, err := r.db.ExecContext(ctx, `DELETE FROM daily_bonus_claims WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old claim events: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Printf("[SQLiteClaimLogRepository] Pruned %d claim events (threshold: %v)", deleted, threshold)
	}

	return deleted, nil
}

// GetStats returns statistics about the claim log.
func (r *SQLiteClaimLogRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_bonus_claims").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_claims"] = count

	var lastClaim sql.NullTime
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(created_at) FROM daily_bonus_claims").Scan(&lastClaim); err == nil && lastClaim.Valid {
		stats["last_claim"] = lastClaim.Time
	}

	var failedPayouts int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM daily_bonus_claims WHERE payout_status = ?", model.PayoutStatusFailed).Scan(&failedPayouts); err == nil {
		stats["failed_payouts"] = failedPayouts
	}

	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteClaimLogRepository) Close() error {
	return r.db.Close()
}

// scanClaimEvents drains rows into claim events, shared by all SQL backends.
func scanClaimEvents(rows *sql.Rows) ([]model.ClaimEvent, error) {
	events := []model.ClaimEvent{}
	for rows.Next() {
		var e model.ClaimEvent
		var playerID string
		if err := rows.Scan(&e.ID, &e.RequestID, &playerID, &e.ClaimDate,
			&e.Streak, &e.Amount, &e.PayoutStatus, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan claim event: %w", err)
		}
		parsed, err := uuid.Parse(playerID)
		if err != nil {
			return nil, fmt.Errorf("malformed player id %q in claim log: %w", playerID, err)
		}
		e.PlayerID = parsed
		events = append(events, e)
	}
	return events, rows.Err()
}

// Ensure SQLiteClaimLogRepository implements ClaimLogRepository
var _ ClaimLogRepository = (*SQLiteClaimLogRepository)(nil)
