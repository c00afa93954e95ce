package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenasul/courtbet/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ResultRepository persists the write-once settlement and refund audit records.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// CreateResult inserts the single MatchResult row inside the settlement
// transaction. The unique index on match_id backs the write-once guarantee.
func (r *ResultRepository) CreateResult(ctx context.Context, tx *sqlx.Tx, res *domain.MatchResult) error {
	query := `
		INSERT INTO match_results
			(id, match_id, winner_name, score, total_winnings, settled, created_at)
		VALUES
			(:id, :match_id, :winner_name, :score, :total_winnings, :settled, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, res); err != nil {
		return fmt.Errorf("result_repo.CreateResult: %w", err)
	}
	return nil
}

// GetResultByMatch fetches the settlement record for a match.
func (r *ResultRepository) GetResultByMatch(ctx context.Context, matchID uuid.UUID) (*domain.MatchResult, error) {
	var res domain.MatchResult
	err := r.db.GetContext(ctx, &res, `SELECT * FROM match_results WHERE match_id = $1`, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("result_repo.GetResultByMatch: %w", err)
	}
	return &res, nil
}

// CreateRefund appends one refund audit row inside the cancellation
// transaction. Written for every processed bet, success or failure.
func (r *ResultRepository) CreateRefund(ctx context.Context, tx *sqlx.Tx, ref *domain.Refund) error {
	query := `
		INSERT INTO refunds
			(id, bet_id, user_id, amount, external_refund_id, status, failure_reason, created_at)
		VALUES
			(:id, :bet_id, :user_id, :amount, :external_refund_id, :status, :failure_reason, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, ref); err != nil {
		return fmt.Errorf("result_repo.CreateRefund: %w", err)
	}
	return nil
}

// ListRefundsByMatch returns the refund audit trail for a cancelled match,
// used for manual reconciliation of failed gateway refunds.
func (r *ResultRepository) ListRefundsByMatch(ctx context.Context, matchID uuid.UUID) ([]*domain.Refund, error) {
	var refunds []*domain.Refund
	err := r.db.SelectContext(ctx, &refunds, `
		SELECT rf.*
		FROM refunds rf
		JOIN bets b ON b.id = rf.bet_id
		WHERE b.match_id = $1
		ORDER BY rf.created_at ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("result_repo.ListRefundsByMatch: %w", err)
	}
	return refunds, nil
}
