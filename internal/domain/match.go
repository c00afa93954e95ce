// Package domain defines the core business entities and types for the
// court booking pari-mutuel betting system.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// MatchStatus represents the lifecycle state of a bettable match.
type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "upcoming"  // accepting bets (subject to cutoff)
	MatchLive      MatchStatus = "live"      // in play; betting closed
	MatchFinished  MatchStatus = "finished"  // settled; terminal
	MatchCancelled MatchStatus = "cancelled" // voided; all bets refunded; terminal
)

// DefaultHouseEdge is the fraction of the pool retained before payouts (20 %).
var DefaultHouseEdge = decimal.NewFromFloat(0.20)

// ──────────────────────────────────────────────────────────────────────────────
// Match
// ──────────────────────────────────────────────────────────────────────────────

// Match represents one bettable event, tied 1:1 to a court booking.
//
// TotalPool is maintained incrementally: every bet placement adds its amount,
// every bet cancellation subtracts it, so it always equals the sum of the
// match's active bet amounts. Settlement recomputes the pool from the bet
// ledger instead of trusting this cache.
type Match struct {
	ID             uuid.UUID       `json:"id"              db:"id"`
	BookingID      uuid.UUID       `json:"booking_id"      db:"booking_id"`
	Status         MatchStatus     `json:"status"          db:"status"`
	BettingEnabled bool            `json:"betting_enabled" db:"betting_enabled"`
	TotalPool      decimal.Decimal `json:"total_pool"      db:"total_pool"`
	HouseEdge      decimal.Decimal `json:"house_edge"      db:"house_edge"`
	CreatedAt      time.Time       `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"      db:"updated_at"`
}

// NewMatch builds the initial match record for an eligible booking.
func NewMatch(bookingID uuid.UUID) *Match {
	now := time.Now().UTC()
	return &Match{
		ID:             uuid.New(),
		BookingID:      bookingID,
		Status:         MatchUpcoming,
		BettingEnabled: true,
		TotalPool:      decimal.Zero,
		HouseEdge:      DefaultHouseEdge,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AcceptsBets returns true while bets may still be placed or cancelled:
// the match must be upcoming and its betting flag on. The time-based
// eligibility cutoff is checked separately against the booking.
func (m *Match) AcceptsBets() bool {
	return m.Status == MatchUpcoming && m.BettingEnabled
}

// IsTerminal returns true once the match has reached an immutable state.
func (m *Match) IsTerminal() bool {
	return m.Status == MatchFinished || m.Status == MatchCancelled
}

// IsFinished returns true after the match has been settled.
func (m *Match) IsFinished() bool {
	return m.Status == MatchFinished
}

// PayoutPool returns the distributable pool after the house edge deduction.
func (m *Match) PayoutPool() decimal.Decimal {
	one := decimal.NewFromInt(1)
	return m.TotalPool.Mul(one.Sub(m.HouseEdge))
}

// ──────────────────────────────────────────────────────────────────────────────
// MatchResult
// ──────────────────────────────────────────────────────────────────────────────

// MatchResult records the settlement of a match. Written exactly once, inside
// the settlement transaction, and immutable afterwards.
type MatchResult struct {
	ID            uuid.UUID       `json:"id"             db:"id"`
	MatchID       uuid.UUID       `json:"match_id"       db:"match_id"`
	WinnerName    string          `json:"winner_name"    db:"winner_name"`
	Score         string          `json:"score"          db:"score"`
	TotalWinnings decimal.Decimal `json:"total_winnings" db:"total_winnings"`
	Settled       bool            `json:"settled"        db:"settled"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
}
