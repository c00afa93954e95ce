package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Settlement plan — pure partition/payout arithmetic, applied transactionally
// by the settlement service
// ──────────────────────────────────────────────────────────────────────────────

// Payout is the settlement outcome for one winning bet.
type Payout struct {
	BetID  uuid.UUID
	UserID uuid.UUID
	Amount decimal.Decimal
}

// Settlement is the fully computed plan for finishing a match: who wins, who
// loses, and how much each winner is paid. Building the plan touches no state;
// the service applies it inside a single transaction.
type Settlement struct {
	WinnerName    string
	TotalPool     decimal.Decimal // authoritative: summed from the active bets
	TotalWinnings decimal.Decimal // TotalPool × (1 − houseEdge)
	WinningStake  decimal.Decimal // Σ amount over winning bets
	Payouts       []Payout        // empty when WinningStake is zero
	LosingBetIDs  []uuid.UUID
	LoserUserIDs  []uuid.UUID
}

// BuildSettlement partitions the active bets of a match by the winning outcome
// and computes each winner's payout as an exact proportional share of the pool
// net of the house edge:
//
//	totalWinnings = totalPool × (1 − houseEdge)
//	payout        = amount × totalWinnings / winningStake
//
// Payouts are floored to 2 dp so their sum never exceeds totalWinnings. The
// displayed odds play no part here: they are an estimate that drifts as later
// bets arrive, whereas settlement redistributes the final pool exactly.
//
// When nobody backed the winner, WinningStake is zero and Payouts is empty:
// nothing is disbursed but TotalWinnings still records the computed value.
// Non-active bets are ignored entirely.
func BuildSettlement(bets []*Bet, winnerName string, houseEdge decimal.Decimal) Settlement {
	s := Settlement{
		WinnerName:    winnerName,
		TotalPool:     decimal.Zero,
		WinningStake:  decimal.Zero,
		TotalWinnings: decimal.Zero,
	}

	var winners []*Bet
	for _, b := range bets {
		if !b.IsActive() {
			continue
		}
		s.TotalPool = s.TotalPool.Add(b.Amount)
		if b.OutcomeName == winnerName {
			winners = append(winners, b)
			s.WinningStake = s.WinningStake.Add(b.Amount)
		} else {
			s.LosingBetIDs = append(s.LosingBetIDs, b.ID)
			s.LoserUserIDs = append(s.LoserUserIDs, b.UserID)
		}
	}

	one := decimal.NewFromInt(1)
	s.TotalWinnings = s.TotalPool.Mul(one.Sub(houseEdge))

	if s.WinningStake.IsZero() {
		return s
	}

	ratio := s.TotalWinnings.Div(s.WinningStake)
	for _, b := range winners {
		s.Payouts = append(s.Payouts, Payout{
			BetID:  b.ID,
			UserID: b.UserID,
			Amount: b.Amount.Mul(ratio).RoundDown(2),
		})
	}
	return s
}

// TotalPaid returns the sum of all planned payouts.
func (s Settlement) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payouts {
		total = total.Add(p.Amount)
	}
	return total
}
