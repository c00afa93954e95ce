package domain_test

import (
	"testing"
	"time"

	"github.com/arenasul/courtbet/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestBuildRefundOutcome_Success records the external id and keeps the bet's
// transition to refunded.
func TestBuildRefundOutcome_Success(t *testing.T) {
	bet := activeBet(uuid.New(), "Alice", 150)
	now := time.Now().UTC()

	out := domain.BuildRefundOutcome(bet, true, "re_abc123", "", now)

	rec := out.Record
	if rec.Status != domain.RefundSucceeded {
		t.Errorf("record status = %s, want succeeded", rec.Status)
	}
	if rec.ExternalRefundID == nil || *rec.ExternalRefundID != "re_abc123" {
		t.Errorf("external refund id not recorded, got %v", rec.ExternalRefundID)
	}
	if rec.FailureReason != nil {
		t.Errorf("failure reason should be nil on success, got %q", *rec.FailureReason)
	}
	if rec.BetID != bet.ID || rec.UserID != bet.UserID {
		t.Error("audit row must reference the refunded bet and its owner")
	}
	if !rec.Amount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("refund amount = %s, want the full stake 150", rec.Amount)
	}
	if out.Status != domain.BetStatusRefunded {
		t.Errorf("bet status = %s, want refunded", out.Status)
	}
}

// TestBuildRefundOutcome_FailedGatewayStillRefunds pins the cancellation
// rule: when the external refund call fails, the audit row records the
// failure and its reason, but the bet still moves to refunded. The failed
// row is the handle for manual reconciliation, never a blocked transition.
func TestBuildRefundOutcome_FailedGatewayStillRefunds(t *testing.T) {
	bet := activeBet(uuid.New(), "Bob", 75)
	now := time.Now().UTC()

	out := domain.BuildRefundOutcome(bet, false, "", "card network timeout", now)

	rec := out.Record
	if rec.Status != domain.RefundFailed {
		t.Errorf("record status = %s, want failed", rec.Status)
	}
	if rec.FailureReason == nil || *rec.FailureReason != "card network timeout" {
		t.Errorf("failure reason not recorded, got %v", rec.FailureReason)
	}
	if rec.ExternalRefundID != nil {
		t.Errorf("external refund id should be nil on failure, got %q", *rec.ExternalRefundID)
	}
	if out.Status != domain.BetStatusRefunded {
		t.Errorf("bet status = %s, want refunded regardless of gateway outcome", out.Status)
	}
}

// TestBuildRefundOutcome_MixedSweep replays a whole-match cancellation where
// some gateway calls fail: every bet ends refunded, and the failed count
// comes from the audit rows alone.
func TestBuildRefundOutcome_MixedSweep(t *testing.T) {
	bets := []*domain.Bet{
		activeBet(uuid.New(), "Alice", 100),
		activeBet(uuid.New(), "Bob", 300),
		activeBet(uuid.New(), "Alice", 50),
	}
	gatewayOK := []bool{true, false, true}
	now := time.Now().UTC()

	failed := 0
	for i, bet := range bets {
		out := domain.BuildRefundOutcome(bet, gatewayOK[i], "re_x", "declined", now)
		if out.Status != domain.BetStatusRefunded {
			t.Errorf("bet %d status = %s, want refunded", i, out.Status)
		}
		if out.Record.Status == domain.RefundFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("failed refunds = %d, want 1", failed)
	}
}
