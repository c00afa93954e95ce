package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenasul/courtbet/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// BetRepository handles all database operations for Bets.
type BetRepository struct {
	db *sqlx.DB
}

// NewBetRepository creates a new BetRepository.
func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

// Create inserts a new bet inside an existing transaction.
func (r *BetRepository) Create(ctx context.Context, tx *sqlx.Tx, b *domain.Bet) error {
	query := `
		INSERT INTO bets
			(id, user_id, match_id, outcome_name, amount, status, potential_return, payment_id, created_at)
		VALUES
			(:id, :user_id, :match_id, :outcome_name, :amount, :status, :potential_return, :payment_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("bet_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a bet by its primary key.
func (r *BetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bet, error) {
	var b domain.Bet
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bets WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBetNotFound
		}
		return nil, fmt.Errorf("bet_repo.GetByID: %w", err)
	}
	return &b, nil
}

// GetActiveByMatch returns all active bets for a match, inside the current
// transaction. Used by the odds resweep, settlement and cancellation, all of
// which already hold the match row lock.
func (r *BetRepository) GetActiveByMatch(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := tx.SelectContext(ctx, &bets,
		`SELECT * FROM bets WHERE match_id = $1 AND status = 'active' ORDER BY created_at ASC`,
		matchID)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.GetActiveByMatch: %w", err)
	}
	return bets, nil
}

// HasActiveBet reports whether the user already holds an active bet on the
// match. Run inside the placement transaction so the one-active-bet rule
// cannot be raced.
func (r *BetRepository) HasActiveBet(ctx context.Context, tx *sqlx.Tx, userID, matchID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS (
			SELECT 1 FROM bets
			WHERE user_id = $1 AND match_id = $2 AND status = 'active'
		)`, userID, matchID)
	if err != nil {
		return false, fmt.Errorf("bet_repo.HasActiveBet: %w", err)
	}
	return exists, nil
}

// UpdatePotentialReturn rewrites the live estimate for one bet during the
// odds resweep.
func (r *BetRepository) UpdatePotentialReturn(ctx context.Context, tx *sqlx.Tx, betID uuid.UUID, pr decimal.Decimal) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE bets SET potential_return = $1 WHERE id = $2`, pr, betID); err != nil {
		return fmt.Errorf("bet_repo.UpdatePotentialReturn: %w", err)
	}
	return nil
}

// MarkWon settles one winning bet: status=won and potential_return overwritten
// with the actual payout.
func (r *BetRepository) MarkWon(ctx context.Context, tx *sqlx.Tx, betID uuid.UUID, payout decimal.Decimal) error {
	query := `
		UPDATE bets
		SET status = 'won', potential_return = $1, settled_at = now()
		WHERE id = $2 AND status = 'active'`
	res, err := tx.ExecContext(ctx, query, payout, betID)
	if err != nil {
		return fmt.Errorf("bet_repo.MarkWon: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrBetNotActive
	}
	return nil
}

// MarkLostBulk settles every active bet on the match that did not back the
// winner. potential_return is left at its last estimate (informational only).
func (r *BetRepository) MarkLostBulk(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID, winnerName string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bets
		SET status = 'lost', settled_at = now()
		WHERE match_id = $1
		  AND outcome_name != $2
		  AND status = 'active'`,
		matchID, winnerName)
	if err != nil {
		return fmt.Errorf("bet_repo.MarkLostBulk: %w", err)
	}
	return nil
}

// MarkRefunded flips one bet to refunded. Only touches bets that are still
// active to prevent double-processing.
func (r *BetRepository) MarkRefunded(ctx context.Context, tx *sqlx.Tx, betID uuid.UUID) error {
	query := `
		UPDATE bets
		SET status = 'refunded', settled_at = now()
		WHERE id = $1 AND status = 'active'`
	res, err := tx.ExecContext(ctx, query, betID)
	if err != nil {
		return fmt.Errorf("bet_repo.MarkRefunded: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrBetNotActive
	}
	return nil
}

// GetByUserID returns a user's bet history, paginated, newest first.
func (r *BetRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.SelectContext(ctx, &bets,
		`SELECT * FROM bets WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.GetByUserID: %w", err)
	}
	return bets, nil
}

// GetByMatch returns every bet on a match regardless of status (reports).
func (r *BetRepository) GetByMatch(ctx context.Context, matchID uuid.UUID) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.SelectContext(ctx, &bets,
		`SELECT * FROM bets WHERE match_id = $1 ORDER BY outcome_name ASC, amount DESC`,
		matchID)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.GetByMatch: %w", err)
	}
	return bets, nil
}

// OutcomeStatRow aggregates stake per outcome for the stats endpoint.
type OutcomeStatRow struct {
	OutcomeName string          `db:"outcome_name" json:"outcome_name"`
	BetCount    int             `db:"bet_count"    json:"bet_count"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
}

// StatsByOutcome aggregates bet counts and stake per outcome across all bet
// statuses (finished matches keep their history visible).
func (r *BetRepository) StatsByOutcome(ctx context.Context, matchID uuid.UUID) ([]OutcomeStatRow, error) {
	var rows []OutcomeStatRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT outcome_name,
		       COUNT(*)                AS bet_count,
		       COALESCE(SUM(amount),0) AS total_amount
		FROM bets
		WHERE match_id = $1
		GROUP BY outcome_name`, matchID)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.StatsByOutcome: %w", err)
	}
	return rows, nil
}

// ActiveStakesByMatch aggregates the active stake per outcome outside any
// transaction. Feed for the public odds display; the authoritative numbers at
// settlement come from GetActiveByMatch under the row lock.
func (r *BetRepository) ActiveStakesByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Stake, error) {
	var stakes []domain.Stake
	err := r.db.SelectContext(ctx, &stakes, `
		SELECT outcome_name, COALESCE(SUM(amount),0) AS amount
		FROM bets
		WHERE match_id = $1 AND status = 'active'
		GROUP BY outcome_name`, matchID)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.ActiveStakesByMatch: %w", err)
	}
	return stakes, nil
}

// StatusStatRow aggregates bets per status for the reports endpoint.
type StatusStatRow struct {
	Status       string          `db:"status"        json:"status"`
	BetCount     int             `db:"bet_count"     json:"bet_count"`
	TotalAmount  decimal.Decimal `db:"total_amount"  json:"total_amount"`
	TotalReturns decimal.Decimal `db:"total_returns" json:"total_returns"`
}

// StatsByStatus aggregates the whole ledger per bet status.
func (r *BetRepository) StatsByStatus(ctx context.Context) ([]StatusStatRow, error) {
	var rows []StatusStatRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT status,
		       COUNT(*)                          AS bet_count,
		       COALESCE(SUM(amount),0)           AS total_amount,
		       COALESCE(SUM(potential_return),0) AS total_returns
		FROM bets
		GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.StatsByStatus: %w", err)
	}
	return rows, nil
}
