package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// BetStatus represents the current state of a user's bet.
type BetStatus string

const (
	BetStatusActive   BetStatus = "active"   // in play, counts toward the pool
	BetStatusWon      BetStatus = "won"      // match settled in user's favour
	BetStatusLost     BetStatus = "lost"     // match settled against user
	BetStatusRefunded BetStatus = "refunded" // cancelled by user or by match cancellation
)

// ──────────────────────────────────────────────────────────────────────────────
// Bet
// ──────────────────────────────────────────────────────────────────────────────

// Bet represents a single user wager on one outcome (a participant name) of
// one match. Amount is immutable after creation; status moves one-way from
// active to exactly one of won/lost/refunded.
//
// PotentialReturn is a pool-wide derived estimate: it is recomputed for every
// active bet on the match whenever the active-bet set changes. At settlement
// the winners' field is overwritten with the actual payout.
type Bet struct {
	ID              uuid.UUID       `json:"id"               db:"id"`
	UserID          uuid.UUID       `json:"user_id"          db:"user_id"`
	MatchID         uuid.UUID       `json:"match_id"         db:"match_id"`
	OutcomeName     string          `json:"outcome_name"     db:"outcome_name"`
	Amount          decimal.Decimal `json:"amount"           db:"amount"`
	Status          BetStatus       `json:"status"           db:"status"`
	PotentialReturn decimal.Decimal `json:"potential_return" db:"potential_return"`
	PaymentID       string          `json:"payment_id"       db:"payment_id"`
	CreatedAt       time.Time       `json:"created_at"       db:"created_at"`
	SettledAt       *time.Time      `json:"settled_at"       db:"settled_at"`
}

// IsActive returns true while the bet still counts toward the match pool.
func (b *Bet) IsActive() bool {
	return b.Status == BetStatusActive
}

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBetRequest — value object used by BetService
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBetRequest carries the validated inputs for placing a bet.
type PlaceBetRequest struct {
	UserID      uuid.UUID
	BookingID   uuid.UUID
	OutcomeName string
	Amount      decimal.Decimal
	PaymentID   string
}

// BetResponse is the API-safe view of a bet.
type BetResponse struct {
	ID              uuid.UUID       `json:"id"`
	MatchID         uuid.UUID       `json:"match_id"`
	OutcomeName     string          `json:"outcome_name"`
	Amount          decimal.Decimal `json:"amount"`
	Status          BetStatus       `json:"status"`
	PotentialReturn decimal.Decimal `json:"potential_return"`
	CreatedAt       time.Time       `json:"created_at"`
	SettledAt       *time.Time      `json:"settled_at,omitempty"`
}

// ToResponse converts a Bet to its API response form.
func (b *Bet) ToResponse() BetResponse {
	return BetResponse{
		ID:              b.ID,
		MatchID:         b.MatchID,
		OutcomeName:     b.OutcomeName,
		Amount:          b.Amount,
		Status:          b.Status,
		PotentialReturn: b.PotentialReturn,
		CreatedAt:       b.CreatedAt,
		SettledAt:       b.SettledAt,
	}
}
