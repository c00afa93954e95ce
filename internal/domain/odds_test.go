package domain_test

import (
	"testing"

	"github.com/arenasul/courtbet/internal/domain"
	"github.com/shopspring/decimal"
)

var edge = decimal.NewFromFloat(0.20)

// ── Odds table ────────────────────────────────────────────────────────────────

// TestComputeOdds_TwoSidedPool replays the canonical scenario:
//
//	user1 bets 100 on Alice, user2 bets 300 on Bob
//	total_pool  = 400
//	payout_pool = 400 × 0.8 = 320
//	Alice odds  = 320 / 100 = 3.20
//	Bob odds    = 320 / 300 = 1.07 (half-up to 2 dp)
func TestComputeOdds_TwoSidedPool(t *testing.T) {
	stakes := []domain.Stake{
		{OutcomeName: "Alice", Amount: decimal.NewFromInt(100)},
		{OutcomeName: "Bob", Amount: decimal.NewFromInt(300)},
	}
	table := domain.ComputeOdds(stakes, edge)

	if !table.TotalPool.Equal(decimal.NewFromInt(400)) {
		t.Errorf("TotalPool = %s, want 400", table.TotalPool)
	}
	if !table.PayoutPool.Equal(decimal.NewFromInt(320)) {
		t.Errorf("PayoutPool = %s, want 320", table.PayoutPool)
	}

	wantAlice := decimal.NewFromFloat(3.20)
	if odds, ok := table.OddsFor("Alice"); !ok || !odds.Equal(wantAlice) {
		t.Errorf("odds[Alice] = %s, want %s", odds, wantAlice)
	}
	wantBob := decimal.NewFromFloat(1.07)
	if odds, ok := table.OddsFor("Bob"); !ok || !odds.Equal(wantBob) {
		t.Errorf("odds[Bob] = %s, want %s", odds, wantBob)
	}
}

func TestComputeOdds_EmptyPool(t *testing.T) {
	table := domain.ComputeOdds(nil, edge)
	if !table.TotalPool.IsZero() {
		t.Errorf("TotalPool = %s, want 0", table.TotalPool)
	}
	if len(table.Odds) != 0 {
		t.Errorf("empty pool should produce no odds entries, got %d", len(table.Odds))
	}
}

// Outcomes with zero aggregated stake must be absent from the table, not zero.
func TestComputeOdds_UnbackedOutcomeAbsent(t *testing.T) {
	stakes := []domain.Stake{
		{OutcomeName: "Alice", Amount: decimal.NewFromInt(250)},
	}
	table := domain.ComputeOdds(stakes, edge)

	if _, ok := table.OddsFor("Bob"); ok {
		t.Error("unbacked outcome should have no odds entry")
	}
	// One-sided pool: Alice gets payoutPool/stake = 200/250 = 0.80
	want := decimal.NewFromFloat(0.80)
	if odds, _ := table.OddsFor("Alice"); !odds.Equal(want) {
		t.Errorf("odds[Alice] = %s, want %s", odds, want)
	}
}

// TestComputeOdds_Monotonic verifies the parimutuel see-saw: adding stake on
// Alice never raises Alice's odds and never lowers Bob's.
func TestComputeOdds_Monotonic(t *testing.T) {
	before := domain.ComputeOdds([]domain.Stake{
		{OutcomeName: "Alice", Amount: decimal.NewFromInt(100)},
		{OutcomeName: "Bob", Amount: decimal.NewFromInt(300)},
	}, edge)

	after := domain.ComputeOdds([]domain.Stake{
		{OutcomeName: "Alice", Amount: decimal.NewFromInt(100)},
		{OutcomeName: "Alice", Amount: decimal.NewFromInt(200)},
		{OutcomeName: "Bob", Amount: decimal.NewFromInt(300)},
	}, edge)

	aliceBefore, _ := before.OddsFor("Alice")
	aliceAfter, _ := after.OddsFor("Alice")
	if aliceAfter.GreaterThan(aliceBefore) {
		t.Errorf("more stake on Alice raised her odds: %s -> %s", aliceBefore, aliceAfter)
	}

	bobBefore, _ := before.OddsFor("Bob")
	bobAfter, _ := after.OddsFor("Bob")
	if bobAfter.LessThan(bobBefore) {
		t.Errorf("more stake on Alice lowered Bob's odds: %s -> %s", bobBefore, bobAfter)
	}
}

// ── Potential return ──────────────────────────────────────────────────────────

func TestPotentialReturn(t *testing.T) {
	table := domain.ComputeOdds([]domain.Stake{
		{OutcomeName: "Alice", Amount: decimal.NewFromInt(100)},
		{OutcomeName: "Bob", Amount: decimal.NewFromInt(300)},
	}, edge)

	// 100 × 3.20 = 320
	want := decimal.NewFromInt(320)
	got := table.PotentialReturn("Alice", decimal.NewFromInt(100))
	if !got.Equal(want) {
		t.Errorf("PotentialReturn(Alice, 100) = %s, want %s", got, want)
	}

	// Unbacked outcome pays nothing.
	if pr := table.PotentialReturn("Carol", decimal.NewFromInt(50)); !pr.IsZero() {
		t.Errorf("PotentialReturn for unbacked outcome = %s, want 0", pr)
	}

	// Empty pool pays nothing.
	empty := domain.ComputeOdds(nil, edge)
	if pr := empty.PotentialReturn("Alice", decimal.NewFromInt(50)); !pr.IsZero() {
		t.Errorf("PotentialReturn on empty pool = %s, want 0", pr)
	}
}

// ── Stake extraction ──────────────────────────────────────────────────────────

func TestStakesFromBets_SkipsInactive(t *testing.T) {
	bets := []*domain.Bet{
		{OutcomeName: "Alice", Amount: decimal.NewFromInt(100), Status: domain.BetStatusActive},
		{OutcomeName: "Alice", Amount: decimal.NewFromInt(40), Status: domain.BetStatusRefunded},
		{OutcomeName: "Bob", Amount: decimal.NewFromInt(300), Status: domain.BetStatusActive},
	}
	stakes := domain.StakesFromBets(bets)
	if len(stakes) != 2 {
		t.Fatalf("expected 2 active stakes, got %d", len(stakes))
	}
	table := domain.ComputeOdds(stakes, edge)
	if !table.TotalPool.Equal(decimal.NewFromInt(400)) {
		t.Errorf("refunded bet leaked into the pool: total = %s, want 400", table.TotalPool)
	}
}
