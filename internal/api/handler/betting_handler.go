package handler

import (
	"errors"
	"net/http"

	"github.com/arenasul/courtbet/internal/api/middleware"
	"github.com/arenasul/courtbet/internal/domain"
	"github.com/arenasul/courtbet/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BettingHandler serves the user-facing betting endpoints: payment intents,
// bet placement and cancellation, bet history, and the per-match stats view.
type BettingHandler struct {
	betSvc   *service.BetService
	matchSvc *service.MatchService
}

// NewBettingHandler creates a BettingHandler.
func NewBettingHandler(betSvc *service.BetService, matchSvc *service.MatchService) *BettingHandler {
	return &BettingHandler{betSvc: betSvc, matchSvc: matchSvc}
}

// CreatePaymentIntent godoc
// POST /api/betting/payment-intent [user]
// Body: {"booking_id":"uuid","amount":"50.00"}
func (h *BettingHandler) CreatePaymentIntent(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var body struct {
		BookingID string `json:"booking_id" binding:"required"`
		Amount    string `json:"amount"     binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	bookingID, err := uuid.Parse(body.BookingID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_BOOKING_ID", "invalid booking_id format")
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a positive decimal string")
		return
	}

	intent, err := h.betSvc.CreatePaymentIntent(c.Request.Context(), userID, bookingID, amount)
	if err != nil {
		h.respondBettingError(c, err, "could not create payment intent")
		return
	}
	respondSuccess(c, http.StatusCreated, intent)
}

// PlaceBet godoc
// POST /api/betting/bets [user]
// Body: {"booking_id":"uuid","outcome_name":"Alice","amount":"50.00","payment_id":"pi_..."}
func (h *BettingHandler) PlaceBet(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var body struct {
		BookingID   string `json:"booking_id"   binding:"required"`
		OutcomeName string `json:"outcome_name" binding:"required"`
		Amount      string `json:"amount"       binding:"required"`
		PaymentID   string `json:"payment_id"   binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	bookingID, err := uuid.Parse(body.BookingID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_BOOKING_ID", "invalid booking_id format")
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a positive decimal string")
		return
	}

	bet, err := h.betSvc.PlaceBet(c.Request.Context(), domain.PlaceBetRequest{
		UserID:      userID,
		BookingID:   bookingID,
		OutcomeName: body.OutcomeName,
		Amount:      amount,
		PaymentID:   body.PaymentID,
	})
	if err != nil {
		h.respondBettingError(c, err, "could not place bet")
		return
	}
	respondSuccess(c, http.StatusCreated, bet.ToResponse())
}

// CancelBet godoc
// DELETE /api/betting/bets/:id [user]
func (h *BettingHandler) CancelBet(c *gin.Context) {
	userID := middleware.GetUserID(c)

	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_BET_ID", "invalid bet id")
		return
	}

	if err := h.betSvc.CancelBet(c.Request.Context(), betID, userID); err != nil {
		h.respondBettingError(c, err, "could not cancel bet")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"cancelled": true})
}

// GetMyBets godoc
// GET /api/betting/my-bets?page=1&limit=20 [user]
func (h *BettingHandler) GetMyBets(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	bets, err := h.betSvc.GetMyBets(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bets")
		return
	}

	responses := make([]domain.BetResponse, 0, len(bets))
	for _, b := range bets {
		responses = append(responses, b.ToResponse())
	}
	respondList(c, responses, len(responses), page, limit)
}

// GetMatchForBooking godoc
// GET /api/betting/bookings/:id/match (public)
// Returns the bettable match for a booking, creating it when the booking is
// still inside its betting window.
func (h *BettingHandler) GetMatchForBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_BOOKING_ID", "invalid booking id")
		return
	}

	match, err := h.matchSvc.GetOrCreateMatch(c.Request.Context(), bookingID)
	if err != nil {
		h.respondBettingError(c, err, "could not load match")
		return
	}
	respondSuccess(c, http.StatusOK, match)
}

// GetMatch godoc
// GET /api/betting/matches/:id (public)
func (h *BettingHandler) GetMatch(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MATCH_ID", "invalid match id")
		return
	}

	match, booking, err := h.matchSvc.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		h.respondBettingError(c, err, "could not load match")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"match": match, "booking": booking})
}

// GetMatchStats godoc
// GET /api/betting/matches/:id/stats (public)
func (h *BettingHandler) GetMatchStats(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MATCH_ID", "invalid match id")
		return
	}

	stats, err := h.betSvc.GetBettingStats(c.Request.Context(), matchID)
	if err != nil {
		h.respondBettingError(c, err, "could not load stats")
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}

// respondBettingError translates domain sentinels to HTTP responses. Unknown
// errors collapse to a 500 without leaking internals.
func (h *BettingHandler) respondBettingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrIneligibleForBetting):
		respondError(c, http.StatusUnprocessableEntity, "ERR_INELIGIBLE", err.Error())
	case errors.Is(err, domain.ErrPaymentNotConfirmed):
		respondError(c, http.StatusPaymentRequired, "ERR_PAYMENT_NOT_CONFIRMED", err.Error())
	case errors.Is(err, domain.ErrInvalidOutcome):
		respondError(c, http.StatusBadRequest, "ERR_INVALID_OUTCOME", err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", err.Error())
	case errors.Is(err, domain.ErrDuplicateActiveBet):
		respondError(c, http.StatusConflict, "ERR_DUPLICATE_BET", err.Error())
	case errors.Is(err, domain.ErrBettingDisabled):
		respondError(c, http.StatusConflict, "ERR_BETTING_DISABLED", err.Error())
	case errors.Is(err, domain.ErrMatchNotUpcoming):
		respondError(c, http.StatusConflict, "ERR_MATCH_CLOSED", err.Error())
	case errors.Is(err, domain.ErrBetNotActive):
		respondError(c, http.StatusConflict, "ERR_BET_NOT_ACTIVE", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", "this bet does not belong to you")
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", fallback)
	}
}
