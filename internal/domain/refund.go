package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundStatus records the outcome of one external refund attempt.
type RefundStatus string

const (
	RefundSucceeded RefundStatus = "succeeded"
	RefundFailed    RefundStatus = "failed"
	RefundPending   RefundStatus = "pending"
)

// Refund is the append-only audit record written for every bet refunded
// during a match cancellation. The bet itself is marked refunded regardless
// of the gateway outcome; a failed row here is the handle for manual
// reconciliation, not a blocked state transition.
type Refund struct {
	ID               uuid.UUID       `json:"id"                 db:"id"`
	BetID            uuid.UUID       `json:"bet_id"             db:"bet_id"`
	UserID           uuid.UUID       `json:"user_id"            db:"user_id"`
	Amount           decimal.Decimal `json:"amount"             db:"amount"`
	ExternalRefundID *string         `json:"external_refund_id" db:"external_refund_id"`
	Status           RefundStatus    `json:"status"             db:"status"`
	FailureReason    *string         `json:"failure_reason"     db:"failure_reason"`
	CreatedAt        time.Time       `json:"created_at"         db:"created_at"`
}

// CancelSummary is returned by match cancellation: how many active bets were
// refunded in the ledger and how many of the external refund calls failed.
type CancelSummary struct {
	Refunded int `json:"refunded"`
	Failed   int `json:"failed"`
}

// RefundOutcome is the fully computed result of one external refund attempt:
// the audit row to append and the status the bet moves to. Building it
// touches no state; the cancellation service applies it inside its
// transaction.
type RefundOutcome struct {
	Record *Refund
	Status BetStatus
}

// BuildRefundOutcome maps one gateway refund attempt onto the ledger. The bet
// moves to refunded in both branches: a failed external call only changes
// what the audit row records, and is reconciled manually from that row rather
// than by leaving the bet active against a cancelled match.
func BuildRefundOutcome(bet *Bet, ok bool, externalID, reason string, now time.Time) RefundOutcome {
	rec := &Refund{
		ID:        uuid.New(),
		BetID:     bet.ID,
		UserID:    bet.UserID,
		Amount:    bet.Amount,
		Status:    RefundSucceeded,
		CreatedAt: now,
	}
	if ok {
		id := externalID
		rec.ExternalRefundID = &id
	} else {
		rec.Status = RefundFailed
		r := reason
		rec.FailureReason = &r
	}
	return RefundOutcome{Record: rec, Status: BetStatusRefunded}
}
