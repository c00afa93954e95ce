package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenasul/courtbet/internal/config"
	"github.com/arenasul/courtbet/internal/domain"
	"github.com/arenasul/courtbet/internal/notify"
	"github.com/arenasul/courtbet/internal/payment"
	"github.com/arenasul/courtbet/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// BetService
// ──────────────────────────────────────────────────────────────────────────────

// BetService orchestrates the bet ledger: payment intents, placement,
// user-initiated cancellation and the per-match betting stats. Every pool
// mutation happens inside a single PostgreSQL transaction holding the match
// row lock.
type BetService struct {
	db          *sqlx.DB
	betRepo     *repository.BetRepository
	matchRepo   *repository.MatchRepository
	bookingRepo *repository.BookingRepository
	userRepo    *repository.UserRepository
	matchSvc    *MatchService
	gateway     payment.Gateway
	notifier    notify.Notifier
	cfg         *config.Config
}

// NewBetService creates a BetService.
func NewBetService(
	db *sqlx.DB,
	betRepo *repository.BetRepository,
	matchRepo *repository.MatchRepository,
	bookingRepo *repository.BookingRepository,
	userRepo *repository.UserRepository,
	matchSvc *MatchService,
	gateway payment.Gateway,
	notifier notify.Notifier,
	cfg *config.Config,
) *BetService {
	return &BetService{
		db:          db,
		betRepo:     betRepo,
		matchRepo:   matchRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		matchSvc:    matchSvc,
		gateway:     gateway,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreatePaymentIntent
// ──────────────────────────────────────────────────────────────────────────────

// CreatePaymentIntent validates the stake against an eligible booking and
// opens a payment with the configured gateway. The returned intent carries
// whatever the client needs to collect the money (client secret or PIX QR).
func (s *BetService) CreatePaymentIntent(ctx context.Context, userID, bookingID uuid.UUID, amount decimal.Decimal) (*payment.Intent, error) {
	if !amount.IsPositive() || amount.LessThan(minBet(s.cfg)) {
		return nil, domain.ErrInvalidAmount
	}

	booking, eligible, err := s.matchSvc.CheckEligibility(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.CreatePaymentIntent: %w", err)
	}
	if booking == nil || !eligible {
		return nil, domain.ErrIneligibleForBetting
	}

	intent, err := s.gateway.CreateIntent(ctx, amount, s.cfg.Payment.Currency, map[string]string{
		"user_id":     userID.String(),
		"booking_id":  bookingID.String(),
		"description": "Bet on " + booking.Label(),
	})
	if err != nil {
		return nil, fmt.Errorf("bet_service.CreatePaymentIntent: %w", err)
	}
	return intent, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBet
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBet validates the request and atomically records the bet, grows the
// match pool and recomputes every active bet's potential return.
//
// Preconditions are checked in a fixed order, each failing with its own
// sentinel: payment confirmed, booking eligible, match accepting bets, outcome
// is a participant, amount valid, no existing active bet for the user. Nothing
// is written when any of them fails.
func (s *BetService) PlaceBet(ctx context.Context, req domain.PlaceBetRequest) (*domain.Bet, error) {
	// ── 1. Payment must already be captured ──────────────────────────────────
	if req.PaymentID == "" || !s.gateway.IsConfirmed(ctx, req.PaymentID) {
		return nil, domain.ErrPaymentNotConfirmed
	}

	// ── 2. Booking window still open ─────────────────────────────────────────
	booking, eligible, err := s.matchSvc.CheckEligibility(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: %w", err)
	}
	if booking == nil || !eligible {
		return nil, domain.ErrIneligibleForBetting
	}

	// ── 3. Match exists (created on first bet) and accepts bets ──────────────
	match, err := s.matchSvc.GetOrCreateMatch(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: %w", err)
	}
	if match.Status != domain.MatchUpcoming {
		return nil, domain.ErrMatchNotUpcoming
	}
	if !match.BettingEnabled {
		return nil, domain.ErrBettingDisabled
	}

	// ── 4. Outcome must be one of the two scheduled players ──────────────────
	if !booking.HasParticipant(req.OutcomeName) {
		return nil, domain.ErrInvalidOutcome
	}

	// ── 5. Stake validation ──────────────────────────────────────────────────
	if !req.Amount.IsPositive() || req.Amount.LessThan(minBet(s.cfg)) {
		return nil, domain.ErrInvalidAmount
	}

	// ── 6. Transaction: lock match, enforce one-active-bet, write ────────────
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	locked, err := s.matchRepo.LockForUpdate(ctx, tx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: lock match: %w", err)
	}
	// Re-check under the lock: a settlement may have slipped in between.
	if !locked.AcceptsBets() {
		err = domain.ErrMatchNotUpcoming
		return nil, err
	}

	exists, err := s.betRepo.HasActiveBet(ctx, tx, req.UserID, match.ID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: check duplicate: %w", err)
	}
	if exists {
		err = domain.ErrDuplicateActiveBet
		return nil, err
	}

	bet := &domain.Bet{
		ID:              uuid.New(),
		UserID:          req.UserID,
		MatchID:         match.ID,
		OutcomeName:     req.OutcomeName,
		Amount:          req.Amount,
		Status:          domain.BetStatusActive,
		PotentialReturn: decimal.Zero, // overwritten by the resweep below
		PaymentID:       req.PaymentID,
		CreatedAt:       time.Now().UTC(),
	}
	if err = s.betRepo.Create(ctx, tx, bet); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: create bet: %w", err)
	}

	if err = s.matchRepo.AddToPool(ctx, tx, match.ID, req.Amount); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: add to pool: %w", err)
	}

	if err = s.resweepPotentialReturns(ctx, tx, match.ID, locked.HouseEdge, bet); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: commit: %w", err)
	}

	// Best-effort confirmation email; never affects the committed bet.
	go s.notifyConfirmed(bet, booking)

	return bet, nil
}

// resweepPotentialReturns recomputes the odds table from every active bet on
// the match and rewrites each bet's potential_return. Called inside the
// placement and cancellation transactions, after the pool change, while the
// match row lock is held. placed, when non-nil, gets its in-memory
// PotentialReturn updated too so the caller can return fresh numbers.
func (s *BetService) resweepPotentialReturns(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID, edge decimal.Decimal, placed *domain.Bet) error {
	bets, err := s.betRepo.GetActiveByMatch(ctx, tx, matchID)
	if err != nil {
		return fmt.Errorf("resweep: %w", err)
	}

	table := domain.ComputeOdds(domain.StakesFromBets(bets), edge)
	for _, b := range bets {
		pr := table.PotentialReturn(b.OutcomeName, b.Amount)
		if err := s.betRepo.UpdatePotentialReturn(ctx, tx, b.ID, pr); err != nil {
			return fmt.Errorf("resweep: %w", err)
		}
		if placed != nil && b.ID == placed.ID {
			placed.PotentialReturn = pr
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// CancelBet
// ──────────────────────────────────────────────────────────────────────────────

// CancelBet lets the owner withdraw an active bet while the match is still
// upcoming. The stake leaves the pool and every remaining bet's potential
// return is recomputed. The ledger alone is touched here; money flows back
// through the gateway only when the whole match is cancelled.
func (s *BetService) CancelBet(ctx context.Context, betID, userID uuid.UUID) error {
	bet, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return fmt.Errorf("bet_service.CancelBet: %w", err)
	}
	if bet.UserID != userID {
		return domain.ErrForbidden
	}
	if !bet.IsActive() {
		return domain.ErrBetNotActive
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bet_service.CancelBet: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	match, err := s.matchRepo.LockForUpdate(ctx, tx, bet.MatchID)
	if err != nil {
		return fmt.Errorf("bet_service.CancelBet: lock match: %w", err)
	}
	if match.Status != domain.MatchUpcoming {
		err = domain.ErrMatchNotUpcoming
		return err
	}

	if err = s.betRepo.MarkRefunded(ctx, tx, bet.ID); err != nil {
		return fmt.Errorf("bet_service.CancelBet: mark refunded: %w", err)
	}
	if err = s.matchRepo.AddToPool(ctx, tx, match.ID, bet.Amount.Neg()); err != nil {
		return fmt.Errorf("bet_service.CancelBet: shrink pool: %w", err)
	}
	if err = s.resweepPotentialReturns(ctx, tx, match.ID, match.HouseEdge, nil); err != nil {
		return fmt.Errorf("bet_service.CancelBet: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("bet_service.CancelBet: commit: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────────────────────────

// GetMyBets returns the caller's paginated bet history, newest first.
func (s *BetService) GetMyBets(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Bet, error) {
	bets, err := s.betRepo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bet_service.GetMyBets: %w", err)
	}
	return bets, nil
}

// BettingStats is the public per-match betting snapshot: aggregate stake per
// outcome plus the live odds table.
type BettingStats struct {
	MatchID    uuid.UUID                   `json:"match_id"`
	Status     domain.MatchStatus          `json:"status"`
	MatchLabel string                      `json:"match_label"`
	TotalPool  decimal.Decimal             `json:"total_pool"`
	PayoutPool decimal.Decimal             `json:"payout_pool"`
	Outcomes   []repository.OutcomeStatRow `json:"outcomes"`
	Odds       map[string]decimal.Decimal  `json:"odds"`
}

// GetBettingStats builds the public stats view for a match.
func (s *BetService) GetBettingStats(ctx context.Context, matchID uuid.UUID) (*BettingStats, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.GetBettingStats: %w", err)
	}
	booking, err := s.bookingRepo.GetByID(ctx, match.BookingID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.GetBettingStats: %w", err)
	}
	outcomes, err := s.betRepo.StatsByOutcome(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.GetBettingStats: %w", err)
	}

	// Odds derive from active stakes only; the aggregate rows above include
	// settled history.
	table := domain.OddsTable{Odds: map[string]decimal.Decimal{}}
	if match.Status == domain.MatchUpcoming {
		stakes, err := s.betRepo.ActiveStakesByMatch(ctx, matchID)
		if err != nil {
			return nil, fmt.Errorf("bet_service.GetBettingStats: %w", err)
		}
		table = domain.ComputeOdds(stakes, match.HouseEdge)
	}

	return &BettingStats{
		MatchID:    match.ID,
		Status:     match.Status,
		MatchLabel: booking.Label(),
		TotalPool:  match.TotalPool,
		PayoutPool: match.PayoutPool(),
		Outcomes:   outcomes,
		Odds:       table.Odds,
	}, nil
}

// notifyConfirmed sends the bet confirmation email in the background.
func (s *BetService) notifyConfirmed(bet *domain.Bet, booking *domain.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, bet.UserID)
	if err != nil {
		slog.Warn("bet_service: user lookup for confirmation failed", "user_id", bet.UserID, "err", err)
		return
	}
	s.notifier.BetConfirmed(user.Email, booking.Label(), bet.OutcomeName, bet.Amount, bet.PotentialReturn)
}
