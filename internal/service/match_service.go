package service

import (
	"context"
	"fmt"
	"time"

	"github.com/arenasul/courtbet/internal/config"
	"github.com/arenasul/courtbet/internal/domain"
	"github.com/arenasul/courtbet/internal/repository"
	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// MatchService
// ──────────────────────────────────────────────────────────────────────────────

// MatchService owns the eligibility gate between the booking subsystem and the
// betting core: which bookings may carry a match, and when a match stops
// accepting bets.
type MatchService struct {
	bookingRepo *repository.BookingRepository
	matchRepo   *repository.MatchRepository
	cfg         *config.Config
}

// NewMatchService creates a MatchService.
func NewMatchService(
	bookingRepo *repository.BookingRepository,
	matchRepo *repository.MatchRepository,
	cfg *config.Config,
) *MatchService {
	return &MatchService{
		bookingRepo: bookingRepo,
		matchRepo:   matchRepo,
		cfg:         cfg,
	}
}

// cutoff returns the configured betting-close window.
func (s *MatchService) cutoff() time.Duration {
	return s.cfg.Betting.BettingCutoff
}

// CheckEligibility loads the booking and reports whether its betting window is
// still open. A missing booking is ineligible, not an internal error.
func (s *MatchService) CheckEligibility(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, bool, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("match_service.CheckEligibility: %w", err)
	}
	return booking, booking.OpenForBettingAt(time.Now().UTC(), s.cutoff()), nil
}

// GetOrCreateMatch returns the match for a booking, creating it on first
// access while the booking's betting window is still open.
//
// An existing match is always returned, but when the window has since closed
// its betting flag is switched off first so the caller sees the closed state.
// No match and a closed (or missing) booking yields ErrIneligibleForBetting.
func (s *MatchService) GetOrCreateMatch(ctx context.Context, bookingID uuid.UUID) (*domain.Match, error) {
	booking, eligible, err := s.CheckEligibility(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("match_service.GetOrCreateMatch: %w", err)
	}

	match, err := s.matchRepo.GetByBookingID(ctx, bookingID)
	if err == nil {
		if !eligible && match.BettingEnabled {
			if err := s.matchRepo.DisableBetting(ctx, match.ID); err != nil {
				return nil, fmt.Errorf("match_service.GetOrCreateMatch: %w", err)
			}
			match.BettingEnabled = false
		}
		return match, nil
	}
	if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("match_service.GetOrCreateMatch: %w", err)
	}

	// No match yet. Only an open booking may spawn one.
	if booking == nil || !eligible {
		return nil, domain.ErrIneligibleForBetting
	}

	match = domain.NewMatch(booking.ID)
	match.HouseEdge = houseEdge(s.cfg)
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("match_service.GetOrCreateMatch: %w", err)
	}
	return match, nil
}

// GetMatch fetches a match with its booking context.
func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, *domain.Booking, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("match_service.GetMatch: %w", err)
	}
	booking, err := s.bookingRepo.GetByID(ctx, match.BookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("match_service.GetMatch: %w", err)
	}
	return match, booking, nil
}

// SetLive advances an upcoming match to live once play starts. Betting closes
// as a side effect.
func (s *MatchService) SetLive(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	if err := s.matchRepo.SetLive(ctx, matchID); err != nil {
		return nil, fmt.Errorf("match_service.SetLive: %w", err)
	}
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("match_service.SetLive: %w", err)
	}
	return match, nil
}

// ListMatches returns a paginated match listing, optionally filtered by status.
func (s *MatchService) ListMatches(ctx context.Context, limit, offset int, status string) ([]*domain.Match, error) {
	matches, err := s.matchRepo.List(ctx, limit, offset, status)
	if err != nil {
		return nil, fmt.Errorf("match_service.ListMatches: %w", err)
	}
	return matches, nil
}

