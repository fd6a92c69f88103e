package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"daily-bonus-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLClaimLogRepository implements ClaimLogRepository using MySQL.
type MySQLClaimLogRepository struct {
	db *sql.DB
}

// NewMySQLClaimLogRepository creates a new MySQL claim log repository.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLClaimLogRepository(dsn string) (*MySQLClaimLogRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLClaimLogRepository] Initialized")
	return &MySQLClaimLogRepository{db: db}, nil
}

// createMySQLTables creates the claim log table.
func createMySQLTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS daily_bonus_claims (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		request_id VARCHAR(64) NOT NULL DEFAULT '',
		player_id CHAR(36) NOT NULL,
		claim_date CHAR(10) NOT NULL,
		streak INT NOT NULL,
		amount INT NOT NULL,
		payout_status VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL,
		INDEX idx_claims_player (player_id),
		INDEX idx_claims_created_at (created_at)
	)`
	_, err := db.Exec(query)
	return err
}

// InsertClaim records a successful claim.
func (r *MySQLClaimLogRepository) InsertClaim(ctx context.Context, event *model.ClaimEvent) error {
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
func (r *MySQLClaimLogRepository) ListClaims(ctx context.Context, limit, offset int) ([]model.ClaimEvent, int64, error) {
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
func (r *MySQLClaimLogRepository) DeleteOlderThan(ctx context.Context, threshold time.Duration) (int64, error) {
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
		log.Printf("[MySQLClaimLogRepository] Pruned %d claim events (threshold: %v)", deleted, threshold)
	}

	return deleted, nil
}

// GetStats returns statistics about the claim log.
func (r *MySQLClaimLogRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
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
func (r *MySQLClaimLogRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLClaimLogRepository implements ClaimLogRepository
var _ ClaimLogRepository = (*MySQLClaimLogRepository)(nil)
