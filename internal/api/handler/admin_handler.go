package handler

import (
	"errors"
	"net/http"

	"github.com/arenasul/courtbet/internal/domain"
	"github.com/arenasul/courtbet/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler serves the operator endpoints: match lifecycle transitions,
// settlement, cancellation and reports.
type AdminHandler struct {
	matchSvc      *service.MatchService
	settlementSvc *service.SettlementService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(matchSvc *service.MatchService, settlementSvc *service.SettlementService) *AdminHandler {
	return &AdminHandler{matchSvc: matchSvc, settlementSvc: settlementSvc}
}

// ListMatches godoc
// GET /api/admin/matches?status=upcoming&page=1&limit=20 [admin]
func (h *AdminHandler) ListMatches(c *gin.Context) {
	status := c.Query("status")
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	matches, err := h.matchSvc.ListMatches(c.Request.Context(), limit, offset, status)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list matches")
		return
	}
	respondList(c, matches, len(matches), page, limit)
}

// SetLive godoc
// POST /api/admin/matches/:id/live [admin]
func (h *AdminHandler) SetLive(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MATCH_ID", "invalid match id")
		return
	}

	match, err := h.matchSvc.SetLive(c.Request.Context(), matchID)
	if err != nil {
		h.respondAdminError(c, err, "could not set match live")
		return
	}
	respondSuccess(c, http.StatusOK, match)
}

// FinishMatch godoc
// POST /api/admin/matches/:id/finish [admin]
// Body: {"winner_name":"Alice","score":"6-4 6-2"}
func (h *AdminHandler) FinishMatch(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MATCH_ID", "invalid match id")
		return
	}

	var body struct {
		WinnerName string `json:"winner_name" binding:"required"`
		Score      string `json:"score"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	result, err := h.settlementSvc.FinishMatch(c.Request.Context(), matchID, body.WinnerName, body.Score)
	if err != nil {
		h.respondAdminError(c, err, "could not settle match")
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// CancelMatch godoc
// POST /api/admin/matches/:id/cancel [admin]
func (h *AdminHandler) CancelMatch(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MATCH_ID", "invalid match id")
		return
	}

	summary, err := h.settlementSvc.CancelMatch(c.Request.Context(), matchID)
	if err != nil {
		h.respondAdminError(c, err, "could not cancel match")
		return
	}
	respondSuccess(c, http.StatusOK, summary)
}

// GetResult godoc
// GET /api/admin/matches/:id/result [admin]
func (h *AdminHandler) GetResult(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MATCH_ID", "invalid match id")
		return
	}

	result, err := h.settlementSvc.GetResult(c.Request.Context(), matchID)
	if err != nil {
		h.respondAdminError(c, err, "could not load result")
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// GetMatchReport godoc
// GET /api/admin/matches/:id/report [admin]
func (h *AdminHandler) GetMatchReport(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MATCH_ID", "invalid match id")
		return
	}

	report, err := h.settlementSvc.GetMatchReport(c.Request.Context(), matchID)
	if err != nil {
		h.respondAdminError(c, err, "could not build report")
		return
	}
	respondSuccess(c, http.StatusOK, report)
}

// GetBettingReport godoc
// GET /api/admin/reports/betting [admin]
func (h *AdminHandler) GetBettingReport(c *gin.Context) {
	report, err := h.settlementSvc.GetBettingReport(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not build report")
		return
	}
	respondSuccess(c, http.StatusOK, report)
}

// respondAdminError translates domain sentinels for the operator endpoints.
func (h *AdminHandler) respondAdminError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrAlreadySettled):
		respondError(c, http.StatusConflict, "ERR_ALREADY_SETTLED", err.Error())
	case errors.Is(err, domain.ErrMatchNotUpcoming):
		respondError(c, http.StatusConflict, "ERR_MATCH_NOT_UPCOMING", err.Error())
	case errors.Is(err, domain.ErrInvalidOutcome):
		respondError(c, http.StatusBadRequest, "ERR_INVALID_WINNER", "winner must be one of the match participants")
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", fallback)
	}
}
