package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenasul/courtbet/internal/domain"
	"github.com/arenasul/courtbet/internal/notify"
	"github.com/arenasul/courtbet/internal/payment"
	"github.com/arenasul/courtbet/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ──────────────────────────────────────────────────────────────────────────────
// SettlementService
// ──────────────────────────────────────────────────────────────────────────────

// SettlementService owns the two terminal transitions of a match: settlement
// after a result and cancellation with refunds. Both are single atomic
// transactions over the bet ledger, the match row and the audit tables.
type SettlementService struct {
	db          *sqlx.DB
	betRepo     *repository.BetRepository
	matchRepo   *repository.MatchRepository
	bookingRepo *repository.BookingRepository
	resultRepo  *repository.ResultRepository
	userRepo    *repository.UserRepository
	gateway     payment.Gateway
	notifier    notify.Notifier
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(
	db *sqlx.DB,
	betRepo *repository.BetRepository,
	matchRepo *repository.MatchRepository,
	bookingRepo *repository.BookingRepository,
	resultRepo *repository.ResultRepository,
	userRepo *repository.UserRepository,
	gateway payment.Gateway,
	notifier notify.Notifier,
) *SettlementService {
	return &SettlementService{
		db:          db,
		betRepo:     betRepo,
		matchRepo:   matchRepo,
		bookingRepo: bookingRepo,
		resultRepo:  resultRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		notifier:    notifier,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// FinishMatch
// ──────────────────────────────────────────────────────────────────────────────

// FinishMatch records the result and settles every active bet in one
// transaction: the pool is recomputed authoritatively from the ledger, winners
// are paid their exact proportional share of the pool net of the house edge,
// losers are marked lost, the match goes terminal and the MatchResult row is
// written. A second call fails with ErrAlreadySettled.
//
// Notifications go out after the commit and never affect the settlement.
func (s *SettlementService) FinishMatch(ctx context.Context, matchID uuid.UUID, winnerName, score string) (*domain.MatchResult, error) {
	booking, err := s.bookingRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.FinishMatch: %w", err)
	}
	if !booking.HasParticipant(winnerName) {
		return nil, domain.ErrInvalidOutcome
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.FinishMatch: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	match, err := s.matchRepo.LockForUpdate(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.FinishMatch: lock match: %w", err)
	}
	if match.IsTerminal() {
		err = domain.ErrAlreadySettled
		return nil, err
	}

	// The cached total_pool is not trusted at settlement: the plan sums the
	// active bets itself, under the same lock that placement holds.
	bets, err := s.betRepo.GetActiveByMatch(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.FinishMatch: load bets: %w", err)
	}

	plan := domain.BuildSettlement(bets, winnerName, match.HouseEdge)

	for _, p := range plan.Payouts {
		if err = s.betRepo.MarkWon(ctx, tx, p.BetID, p.Amount); err != nil {
			return nil, fmt.Errorf("settlement_service.FinishMatch: mark won: %w", err)
		}
	}
	if err = s.betRepo.MarkLostBulk(ctx, tx, matchID, winnerName); err != nil {
		return nil, fmt.Errorf("settlement_service.FinishMatch: mark lost: %w", err)
	}
	if err = s.matchRepo.Finish(ctx, tx, matchID); err != nil {
		return nil, fmt.Errorf("settlement_service.FinishMatch: %w", err)
	}

	result := &domain.MatchResult{
		ID:            uuid.New(),
		MatchID:       matchID,
		WinnerName:    winnerName,
		Score:         score,
		TotalWinnings: plan.TotalWinnings,
		Settled:       true,
		CreatedAt:     time.Now().UTC(),
	}
	if err = s.resultRepo.CreateResult(ctx, tx, result); err != nil {
		return nil, fmt.Errorf("settlement_service.FinishMatch: create result: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("settlement_service.FinishMatch: commit: %w", err)
	}

	slog.Info("match settled",
		"match_id", matchID,
		"winner", winnerName,
		"pool", plan.TotalPool.StringFixed(2),
		"winnings", plan.TotalWinnings.StringFixed(2),
		"paid", plan.TotalPaid().StringFixed(2),
		"winners", len(plan.Payouts),
		"losers", len(plan.LosingBetIDs),
	)

	go s.notifySettled(plan, booking)

	return result, nil
}

// notifySettled emails every affected bettor after a settlement commit.
// Failures are logged by the notifier; nothing here can undo the settlement.
func (s *SettlementService) notifySettled(plan domain.Settlement, booking *domain.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ids := make([]uuid.UUID, 0, len(plan.Payouts)+len(plan.LoserUserIDs))
	for _, p := range plan.Payouts {
		ids = append(ids, p.UserID)
	}
	ids = append(ids, plan.LoserUserIDs...)

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		slog.Warn("settlement_service: user lookup for notifications failed", "err", err)
		return
	}

	for _, p := range plan.Payouts {
		if u, ok := users[p.UserID]; ok {
			s.notifier.BetWon(u.Email, booking.Label(), plan.WinnerName, p.Amount)
		}
	}
	for _, loserID := range plan.LoserUserIDs {
		if u, ok := users[loserID]; ok {
			s.notifier.BetLost(u.Email, booking.Label(), plan.WinnerName)
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CancelMatch
// ──────────────────────────────────────────────────────────────────────────────

// CancelMatch voids a not-yet-finished match and refunds every active bet.
//
// Per bet the gateway refund is attempted and an audit row records its
// outcome, but the bet is marked refunded either way: the ledger state
// transition is unconditional and a failed gateway call is reconciled manually
// from the refunds table. Ledger, audit rows and match status commit as one
// transaction.
func (s *SettlementService) CancelMatch(ctx context.Context, matchID uuid.UUID) (*domain.CancelSummary, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.CancelMatch: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	match, err := s.matchRepo.LockForUpdate(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.CancelMatch: lock match: %w", err)
	}
	if match.IsTerminal() {
		err = domain.ErrAlreadySettled
		return nil, err
	}

	bets, err := s.betRepo.GetActiveByMatch(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.CancelMatch: load bets: %w", err)
	}

	summary := &domain.CancelSummary{}
	for _, bet := range bets {
		res := s.gateway.Refund(ctx, bet.PaymentID, bet.Amount)

		outcome := domain.BuildRefundOutcome(bet, res.OK, res.RefundID, res.Reason, time.Now().UTC())
		if outcome.Record.Status == domain.RefundFailed {
			summary.Failed++
			slog.Warn("settlement_service: gateway refund failed",
				"bet_id", bet.ID, "payment_id", bet.PaymentID, "reason", res.Reason)
		}
		if err = s.resultRepo.CreateRefund(ctx, tx, outcome.Record); err != nil {
			return nil, fmt.Errorf("settlement_service.CancelMatch: create refund: %w", err)
		}

		if err = s.betRepo.MarkRefunded(ctx, tx, bet.ID); err != nil {
			return nil, fmt.Errorf("settlement_service.CancelMatch: mark refunded: %w", err)
		}
		summary.Refunded++
	}

	// The pool empties with its bets.
	if match.TotalPool.IsPositive() {
		if err = s.matchRepo.AddToPool(ctx, tx, matchID, match.TotalPool.Neg()); err != nil {
			return nil, fmt.Errorf("settlement_service.CancelMatch: drain pool: %w", err)
		}
	}
	if err = s.matchRepo.Cancel(ctx, tx, matchID); err != nil {
		return nil, fmt.Errorf("settlement_service.CancelMatch: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("settlement_service.CancelMatch: commit: %w", err)
	}

	slog.Info("match cancelled",
		"match_id", matchID,
		"refunded", summary.Refunded,
		"failed_refunds", summary.Failed,
	)

	go s.notifyCancelled(bets, matchID)

	return summary, nil
}

// notifyCancelled emails every refunded bettor after a cancellation commit.
func (s *SettlementService) notifyCancelled(bets []*domain.Bet, matchID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	booking, err := s.bookingRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		slog.Warn("settlement_service: booking lookup for notifications failed", "match_id", matchID, "err", err)
		return
	}

	ids := make([]uuid.UUID, 0, len(bets))
	for _, b := range bets {
		ids = append(ids, b.UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		slog.Warn("settlement_service: user lookup for notifications failed", "err", err)
		return
	}

	for _, b := range bets {
		if u, ok := users[b.UserID]; ok {
			s.notifier.BetRefunded(u.Email, booking.Label(), b.Amount)
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reports
// ──────────────────────────────────────────────────────────────────────────────

// GetResult returns the settlement record for a match.
func (s *SettlementService) GetResult(ctx context.Context, matchID uuid.UUID) (*domain.MatchResult, error) {
	result, err := s.resultRepo.GetResultByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.GetResult: %w", err)
	}
	return result, nil
}

// MatchReport is the admin view of one match: booking context, pool state,
// result if settled, the full bet ledger and the refund audit trail.
type MatchReport struct {
	Match   *domain.Match       `json:"match"`
	Booking *domain.Booking     `json:"booking"`
	Result  *domain.MatchResult `json:"result,omitempty"`
	Bets    []*domain.Bet       `json:"bets"`
	Refunds []*domain.Refund    `json:"refunds,omitempty"`
}

// GetMatchReport assembles the full admin report for a match.
func (s *SettlementService) GetMatchReport(ctx context.Context, matchID uuid.UUID) (*MatchReport, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.GetMatchReport: %w", err)
	}
	booking, err := s.bookingRepo.GetByID(ctx, match.BookingID)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.GetMatchReport: %w", err)
	}
	bets, err := s.betRepo.GetByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.GetMatchReport: %w", err)
	}

	report := &MatchReport{Match: match, Booking: booking, Bets: bets}

	result, err := s.resultRepo.GetResultByMatch(ctx, matchID)
	if err == nil {
		report.Result = result
	} else if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("settlement_service.GetMatchReport: %w", err)
	}

	if match.Status == domain.MatchCancelled {
		refunds, err := s.resultRepo.ListRefundsByMatch(ctx, matchID)
		if err != nil {
			return nil, fmt.Errorf("settlement_service.GetMatchReport: %w", err)
		}
		report.Refunds = refunds
	}
	return report, nil
}

// BettingReport aggregates the whole platform: matches per status and bets
// per status.
type BettingReport struct {
	Pools []repository.PoolStatusRow `json:"pools"`
	Bets  []repository.StatusStatRow `json:"bets"`
}

// GetBettingReport assembles the platform-wide aggregate report.
func (s *SettlementService) GetBettingReport(ctx context.Context) (*BettingReport, error) {
	pools, err := s.matchRepo.PoolStatsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.GetBettingReport: %w", err)
	}
	bets, err := s.betRepo.StatsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.GetBettingReport: %w", err)
	}
	return &BettingReport{Pools: pools, Bets: bets}, nil
}
