package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Booking / eligibility errors
var (
	// ErrBookingNotFound is returned when no booking matches the given id.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrIneligibleForBetting is returned when a bet (or match creation) is
	// attempted on a booking that starts within the betting cutoff window,
	// or on a booking that does not exist.
	ErrIneligibleForBetting = errors.New("booking is not eligible for betting")
)

// Match errors
var (
	// ErrMatchNotFound is returned when no match matches the given criteria.
	ErrMatchNotFound = errors.New("match not found")

	// ErrBettingDisabled is returned when a bet is attempted on a match whose
	// betting flag has been switched off.
	ErrBettingDisabled = errors.New("betting is disabled for this match")

	// ErrMatchNotUpcoming is returned when an operation requires the match to
	// still be in StatusUpcoming (bet placement, bet cancellation).
	ErrMatchNotUpcoming = errors.New("match is no longer accepting bets")

	// ErrAlreadySettled is returned when finish or cancel is attempted on a
	// match that has already been finished. Re-finishing is an error, never
	// a no-op.
	ErrAlreadySettled = errors.New("match is already settled")

	// ErrResultNotFound is returned when no result row exists for a match.
	ErrResultNotFound = errors.New("match result not found")
)

// ErrUserNotFound is returned when the account subsystem has no user with the
// given id.
var ErrUserNotFound = errors.New("user not found")

// Bet errors
var (
	// ErrBetNotFound is returned when no bet matches the given criteria.
	ErrBetNotFound = errors.New("bet not found")

	// ErrBetNotActive is returned when a cancellation is attempted on a bet
	// that is not in BetStatusActive.
	ErrBetNotActive = errors.New("bet is not active")

	// ErrInvalidOutcome is returned when the chosen outcome is not one of the
	// match's two participant names.
	ErrInvalidOutcome = errors.New("invalid outcome: must be one of the match participants")

	// ErrInvalidAmount is returned when the bet amount is zero, negative or
	// unparsable.
	ErrInvalidAmount = errors.New("bet amount must be greater than zero")

	// ErrDuplicateActiveBet is returned when the user already holds an active
	// bet on the same match.
	ErrDuplicateActiveBet = errors.New("user already has an active bet on this match")

	// ErrPaymentNotConfirmed is returned when bet placement is attempted
	// before the associated payment has been confirmed by the gateway.
	ErrPaymentNotConfirmed = errors.New("payment has not been confirmed")
)

// ErrForbidden is returned when a user operates on a resource that belongs to
// someone else.
var ErrForbidden = errors.New("forbidden")

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrBookingNotFound,
	ErrMatchNotFound,
	ErrBetNotFound,
	ErrResultNotFound,
	ErrUserNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors. Use this instead of comparing error values
// directly when translating domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for errors that represent a state conflict (e.g.
// double settlement or a second active bet on the same match).
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrAlreadySettled,
		ErrDuplicateActiveBet,
		ErrMatchNotUpcoming,
		ErrBettingDisabled,
		ErrBetNotActive,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsRejectedPrecondition returns true for user-facing validation failures that
// carry no state change and should map to a 400-class response.
func IsRejectedPrecondition(err error) bool {
	preconditionErrors := []error{
		ErrIneligibleForBetting,
		ErrInvalidOutcome,
		ErrInvalidAmount,
		ErrPaymentNotConfirmed,
	}
	for _, target := range preconditionErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
