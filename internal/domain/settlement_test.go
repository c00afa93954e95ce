package domain_test

import (
	"testing"

	"github.com/arenasul/courtbet/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func activeBet(user uuid.UUID, outcome string, amount int64) *domain.Bet {
	return &domain.Bet{
		ID:          uuid.New(),
		UserID:      user,
		MatchID:     uuid.New(),
		OutcomeName: outcome,
		Amount:      decimal.NewFromInt(amount),
		Status:      domain.BetStatusActive,
	}
}

// TestBuildSettlement_ProportionalPayout validates the settlement maths.
// No I/O — pure arithmetic.
//
//	Scenario:
//	  user1: 100 on Alice
//	  user2: 300 on Bob
//	  house edge 20 %, winner Alice
//
//	Expected:
//	  total_pool     = 400
//	  total_winnings = 400 × 0.8 = 320
//	  winning_stake  = 100
//	  payout(user1)  = 100 × 320/100 = 320
func TestBuildSettlement_ProportionalPayout(t *testing.T) {
	user1 := uuid.New()
	user2 := uuid.New()
	bets := []*domain.Bet{
		activeBet(user1, "Alice", 100),
		activeBet(user2, "Bob", 300),
	}

	s := domain.BuildSettlement(bets, "Alice", edge)

	if !s.TotalPool.Equal(decimal.NewFromInt(400)) {
		t.Errorf("TotalPool = %s, want 400", s.TotalPool)
	}
	if !s.TotalWinnings.Equal(decimal.NewFromInt(320)) {
		t.Errorf("TotalWinnings = %s, want 320", s.TotalWinnings)
	}
	if len(s.Payouts) != 1 {
		t.Fatalf("expected 1 payout, got %d", len(s.Payouts))
	}
	if !s.Payouts[0].Amount.Equal(decimal.NewFromInt(320)) {
		t.Errorf("payout = %s, want 320", s.Payouts[0].Amount)
	}
	if s.Payouts[0].UserID != user1 {
		t.Error("payout went to the wrong user")
	}
	if len(s.LosingBetIDs) != 1 {
		t.Errorf("expected 1 losing bet, got %d", len(s.LosingBetIDs))
	}
}

// TestBuildSettlement_SplitAmongWinners: two winners share the payout pool in
// proportion to stake, and the total paid never exceeds the winnings pool.
//
//	80 + 20 on Alice, 100 on Bob → pool 200, winnings 160
//	payout(80)  = 80 × 160/100 = 128
//	payout(20)  = 20 × 160/100 = 32
func TestBuildSettlement_SplitAmongWinners(t *testing.T) {
	bets := []*domain.Bet{
		activeBet(uuid.New(), "Alice", 80),
		activeBet(uuid.New(), "Alice", 20),
		activeBet(uuid.New(), "Bob", 100),
	}

	s := domain.BuildSettlement(bets, "Alice", edge)

	if len(s.Payouts) != 2 {
		t.Fatalf("expected 2 payouts, got %d", len(s.Payouts))
	}
	if !s.Payouts[0].Amount.Equal(decimal.NewFromInt(128)) {
		t.Errorf("payout[0] = %s, want 128", s.Payouts[0].Amount)
	}
	if !s.Payouts[1].Amount.Equal(decimal.NewFromInt(32)) {
		t.Errorf("payout[1] = %s, want 32", s.Payouts[1].Amount)
	}
	if s.TotalPaid().GreaterThan(s.TotalWinnings) {
		t.Errorf("paid %s exceeds winnings pool %s", s.TotalPaid(), s.TotalWinnings)
	}
}

// Payout conservation under awkward division: floor rounding keeps the sum of
// payouts at or below the winnings pool.
func TestBuildSettlement_PayoutConservation(t *testing.T) {
	bets := []*domain.Bet{
		activeBet(uuid.New(), "Alice", 33),
		activeBet(uuid.New(), "Alice", 34),
		activeBet(uuid.New(), "Alice", 33),
		activeBet(uuid.New(), "Bob", 77),
	}

	s := domain.BuildSettlement(bets, "Alice", edge)

	if s.TotalPaid().GreaterThan(s.TotalWinnings) {
		t.Errorf("paid %s exceeds winnings pool %s", s.TotalPaid(), s.TotalWinnings)
	}
	// Rounding loss is bounded by a cent per winner.
	slack := s.TotalWinnings.Sub(s.TotalPaid())
	if slack.GreaterThan(decimal.NewFromFloat(0.03)) {
		t.Errorf("rounding slack %s too large", slack)
	}
}

// Nobody backed the winner: no payouts, but TotalWinnings still records the
// computed value. Defined edge case, not an error.
func TestBuildSettlement_NoWinningStake(t *testing.T) {
	bets := []*domain.Bet{
		activeBet(uuid.New(), "Bob", 150),
		activeBet(uuid.New(), "Bob", 50),
	}

	s := domain.BuildSettlement(bets, "Alice", edge)

	if len(s.Payouts) != 0 {
		t.Errorf("expected no payouts, got %d", len(s.Payouts))
	}
	if !s.TotalWinnings.Equal(decimal.NewFromInt(160)) {
		t.Errorf("TotalWinnings = %s, want 160", s.TotalWinnings)
	}
	if len(s.LosingBetIDs) != 2 {
		t.Errorf("expected 2 losing bets, got %d", len(s.LosingBetIDs))
	}
}

// Refunded and already-settled bets never participate in settlement.
func TestBuildSettlement_IgnoresInactiveBets(t *testing.T) {
	refunded := activeBet(uuid.New(), "Alice", 500)
	refunded.Status = domain.BetStatusRefunded

	bets := []*domain.Bet{
		refunded,
		activeBet(uuid.New(), "Alice", 100),
		activeBet(uuid.New(), "Bob", 100),
	}

	s := domain.BuildSettlement(bets, "Alice", edge)

	if !s.TotalPool.Equal(decimal.NewFromInt(200)) {
		t.Errorf("TotalPool = %s, want 200 (refunded bet excluded)", s.TotalPool)
	}
	if len(s.Payouts) != 1 {
		t.Fatalf("expected 1 payout, got %d", len(s.Payouts))
	}
}
