// Package repository contains all PostgreSQL data access for the betting core.
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

// BookingRepository is the read-only view onto the booking subsystem's table.
// The betting core never writes bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetByID fetches the booking fields the betting core needs.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.GetContext(ctx, &b,
		`SELECT id, court_name, start_at, player_a, player_b, match_type
		 FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("booking_repo.GetByID: %w", err)
	}
	return &b, nil
}

// GetByMatchID resolves the booking behind an existing match.
func (r *BookingRepository) GetByMatchID(ctx context.Context, matchID uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.GetContext(ctx, &b,
		`SELECT bk.id, bk.court_name, bk.start_at, bk.player_a, bk.player_b, bk.match_type
		 FROM bookings bk
		 JOIN matches m ON m.booking_id = bk.id
		 WHERE m.id = $1`, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("booking_repo.GetByMatchID: %w", err)
	}
	return &b, nil
}
