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

// MatchRepository handles all database operations for Matches.
type MatchRepository struct {
	db *sqlx.DB
}

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a new match row.
func (r *MatchRepository) Create(ctx context.Context, m *domain.Match) error {
	query := `
		INSERT INTO matches
			(id, booking_id, status, betting_enabled, total_pool, house_edge, created_at, updated_at)
		VALUES
			(:id, :booking_id, :status, :betting_enabled, :total_pool, :house_edge, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("match_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a match by its primary key.
func (r *MatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	var m domain.Match
	err := r.db.GetContext(ctx, &m, `SELECT * FROM matches WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, fmt.Errorf("match_repo.GetByID: %w", err)
	}
	return &m, nil
}

// GetByBookingID fetches the match attached to a booking, if any.
func (r *MatchRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*domain.Match, error) {
	var m domain.Match
	err := r.db.GetContext(ctx, &m, `SELECT * FROM matches WHERE booking_id = $1`, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, fmt.Errorf("match_repo.GetByBookingID: %w", err)
	}
	return &m, nil
}

// LockForUpdate loads a match inside tx with a row-level lock. Every pool
// mutation and settlement goes through this lock, serialising all writers on
// the same match while leaving other matches untouched.
func (r *MatchRepository) LockForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.Match, error) {
	var m domain.Match
	err := tx.GetContext(ctx, &m, `SELECT * FROM matches WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, fmt.Errorf("match_repo.LockForUpdate: %w", err)
	}
	return &m, nil
}

// AddToPool increments (or decrements, with a negative amount) the cached
// total_pool inside an existing transaction. Callers must hold the row lock
// via LockForUpdate first.
func (r *MatchRepository) AddToPool(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE matches SET total_pool = total_pool + $1, updated_at = now() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, amount, matchID); err != nil {
		return fmt.Errorf("match_repo.AddToPool: %w", err)
	}
	return nil
}

// DisableBetting flips betting_enabled off once the cutoff window has closed.
// No-op when the flag is already off.
func (r *MatchRepository) DisableBetting(ctx context.Context, matchID uuid.UUID) error {
	query := `
		UPDATE matches
		SET betting_enabled = false, updated_at = now()
		WHERE id = $1 AND betting_enabled = true`
	if _, err := r.db.ExecContext(ctx, query, matchID); err != nil {
		return fmt.Errorf("match_repo.DisableBetting: %w", err)
	}
	return nil
}

// Finish marks the match finished inside the settlement transaction.
// Guarded on the current status so a settled match can never be re-finished.
func (r *MatchRepository) Finish(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) error {
	query := `
		UPDATE matches
		SET status = 'finished', betting_enabled = false, updated_at = now()
		WHERE id = $1 AND status != 'finished'`
	res, err := tx.ExecContext(ctx, query, matchID)
	if err != nil {
		return fmt.Errorf("match_repo.Finish: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadySettled
	}
	return nil
}

// Cancel marks the match cancelled inside the cancellation transaction.
func (r *MatchRepository) Cancel(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) error {
	query := `
		UPDATE matches
		SET status = 'cancelled', betting_enabled = false, updated_at = now()
		WHERE id = $1 AND status != 'finished'`
	res, err := tx.ExecContext(ctx, query, matchID)
	if err != nil {
		return fmt.Errorf("match_repo.Cancel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadySettled
	}
	return nil
}

// SetLive advances an upcoming match to live (operator action once play starts).
func (r *MatchRepository) SetLive(ctx context.Context, matchID uuid.UUID) error {
	query := `
		UPDATE matches
		SET status = 'live', betting_enabled = false, updated_at = now()
		WHERE id = $1 AND status = 'upcoming'`
	res, err := r.db.ExecContext(ctx, query, matchID)
	if err != nil {
		return fmt.Errorf("match_repo.SetLive: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrMatchNotUpcoming
	}
	return nil
}

// List returns a paginated slice of matches filtered by optional status.
// status="" returns all statuses.
func (r *MatchRepository) List(ctx context.Context, limit, offset int, status string) ([]*domain.Match, error) {
	var matches []*domain.Match
	var err error
	if status != "" {
		err = r.db.SelectContext(ctx, &matches,
			`SELECT * FROM matches WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			status, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &matches,
			`SELECT * FROM matches ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("match_repo.List: %w", err)
	}
	return matches, nil
}

// PoolStatusRow aggregates matches per status for the reports endpoint.
type PoolStatusRow struct {
	Status    string          `db:"status"     json:"status"`
	Count     int             `db:"count"      json:"count"`
	TotalPool decimal.Decimal `db:"total_pool" json:"total_pool"`
	AvgPool   decimal.Decimal `db:"avg_pool"   json:"avg_pool"`
}

// PoolStatsByStatus aggregates pool volume per match status.
func (r *MatchRepository) PoolStatsByStatus(ctx context.Context) ([]PoolStatusRow, error) {
	var rows []PoolStatusRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT status,
		       COUNT(*)                    AS count,
		       COALESCE(SUM(total_pool),0) AS total_pool,
		       COALESCE(AVG(total_pool),0) AS avg_pool
		FROM matches
		GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("match_repo.PoolStatsByStatus: %w", err)
	}
	return rows, nil
}
