package domain

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Booking — read-only view of the court booking subsystem
// ──────────────────────────────────────────────────────────────────────────────

// BettingCutoff is how long before a booking's start time the betting window
// closes. Bets are rejected once the booking starts within this window.
const BettingCutoff = time.Hour

// Booking is the slice of a court reservation the betting core needs: when the
// match starts and who plays. The booking subsystem owns the full record
// (court, recurrence, payment for the slot itself).
type Booking struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	CourtName string    `json:"court_name" db:"court_name"`
	StartAt   time.Time `json:"start_at"   db:"start_at"`
	PlayerA   string    `json:"player_a"   db:"player_a"`
	PlayerB   string    `json:"player_b"   db:"player_b"`
	MatchType string    `json:"match_type" db:"match_type"`
}

// OpenForBetting reports whether the booking may still accept new bets at the
// given instant: the match must start strictly more than BettingCutoff from now.
func (b *Booking) OpenForBetting(now time.Time) bool {
	return b.OpenForBettingAt(now, BettingCutoff)
}

// OpenForBettingAt is OpenForBetting with a configurable cutoff window.
func (b *Booking) OpenForBettingAt(now time.Time, cutoff time.Duration) bool {
	return b.StartAt.After(now.Add(cutoff))
}

// HasParticipant reports whether name is one of the two scheduled players.
func (b *Booking) HasParticipant(name string) bool {
	return name == b.PlayerA || name == b.PlayerB
}

// Label returns the display form "PlayerA vs PlayerB" used in notifications.
func (b *Booking) Label() string {
	return b.PlayerA + " vs " + b.PlayerB
}
