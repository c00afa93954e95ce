package domain

import (
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Odds engine — pure pool arithmetic, no I/O
// ──────────────────────────────────────────────────────────────────────────────

// Stake is one active wager's contribution to the pool: outcome name + amount.
type Stake struct {
	OutcomeName string          `db:"outcome_name"`
	Amount      decimal.Decimal `db:"amount"`
}

// OddsTable holds the live odds derived from a match's active bets.
//
// Odds maps outcome name → payout multiplier. Outcomes with zero aggregated
// stake have no entry (absent, not zero). A match with an empty pool yields a
// table with TotalPool zero and an empty Odds map.
type OddsTable struct {
	Odds       map[string]decimal.Decimal `json:"odds"`
	TotalPool  decimal.Decimal            `json:"total_pool"`
	PayoutPool decimal.Decimal            `json:"payout_pool"`
}

// ComputeOdds groups the active stakes by outcome and derives the current
// payout multiplier per backed outcome:
//
//	payoutPool = totalPool × (1 − houseEdge)
//	odds[o]    = payoutPool / stakeOn(o)    (rounded half-up to 2 dp)
//
// Odds are a pool-wide derived quantity: callers must recompute the table
// whenever the active-bet set of a match changes.
func ComputeOdds(stakes []Stake, houseEdge decimal.Decimal) OddsTable {
	byOutcome := make(map[string]decimal.Decimal)
	totalPool := decimal.Zero
	for _, s := range stakes {
		byOutcome[s.OutcomeName] = byOutcome[s.OutcomeName].Add(s.Amount)
		totalPool = totalPool.Add(s.Amount)
	}

	table := OddsTable{
		Odds:      make(map[string]decimal.Decimal),
		TotalPool: totalPool,
	}
	if totalPool.IsZero() {
		return table
	}

	one := decimal.NewFromInt(1)
	table.PayoutPool = totalPool.Mul(one.Sub(houseEdge))

	for outcome, backed := range byOutcome {
		if backed.IsPositive() {
			table.Odds[outcome] = table.PayoutPool.Div(backed).Round(2)
		}
	}
	return table
}

// PotentialReturn returns stake × odds for the outcome, rounded half-up to
// 2 dp. Returns zero when the outcome is unbacked or the pool is empty.
func (t OddsTable) PotentialReturn(outcomeName string, stake decimal.Decimal) decimal.Decimal {
	odds, ok := t.Odds[outcomeName]
	if !ok {
		return decimal.Zero
	}
	return stake.Mul(odds).Round(2)
}

// OddsFor returns the multiplier for the outcome and whether it is backed.
func (t OddsTable) OddsFor(outcomeName string) (decimal.Decimal, bool) {
	odds, ok := t.Odds[outcomeName]
	return odds, ok
}

// StakesFromBets extracts the (outcome, amount) pairs of the active bets in
// the given slice. Non-active bets are skipped so callers can pass a full
// ledger page without pre-filtering.
func StakesFromBets(bets []*Bet) []Stake {
	stakes := make([]Stake, 0, len(bets))
	for _, b := range bets {
		if b.IsActive() {
			stakes = append(stakes, Stake{OutcomeName: b.OutcomeName, Amount: b.Amount})
		}
	}
	return stakes
}
