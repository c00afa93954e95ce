// Package api wires the HTTP surface: routes, middleware and CORS.
package api

import (
	"net/http"

	"github.com/arenasul/courtbet/internal/api/handler"
	"github.com/arenasul/courtbet/internal/api/middleware"
	"github.com/arenasul/courtbet/internal/config"
	"github.com/arenasul/courtbet/internal/service"
	"github.com/gin-gonic/gin"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	MatchSvc      *service.MatchService
	BetSvc        *service.BetService
	SettlementSvc *service.SettlementService
	Cfg           *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware and CORS rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	bettingH := handler.NewBettingHandler(deps.BetSvc, deps.MatchSvc)
	adminH := handler.NewAdminHandler(deps.MatchSvc, deps.SettlementSvc)

	userMW := middleware.UserMiddleware()
	adminMW := middleware.AdminMiddleware(deps.Cfg)

	api := r.Group("/api")
	{
		// ── Betting (public reads, identified writes) ────────────────────────
		betting := api.Group("/betting")
		{
			betting.GET("/bookings/:id/match", bettingH.GetMatchForBooking)
			betting.GET("/matches/:id", bettingH.GetMatch)
			betting.GET("/matches/:id/stats", bettingH.GetMatchStats)

			authed := betting.Group("")
			authed.Use(userMW)
			{
				authed.POST("/payment-intent", bettingH.CreatePaymentIntent)
				authed.POST("/bets", bettingH.PlaceBet)
				authed.DELETE("/bets/:id", bettingH.CancelBet)
				authed.GET("/my-bets", bettingH.GetMyBets)
			}
		}

		// ── Admin (operator token) ───────────────────────────────────────────
		admin := api.Group("/admin")
		admin.Use(adminMW)
		{
			admin.GET("/matches", adminH.ListMatches)
			admin.POST("/matches/:id/live", adminH.SetLive)
			admin.POST("/matches/:id/finish", adminH.FinishMatch)
			admin.POST("/matches/:id/cancel", adminH.CancelMatch)
			admin.GET("/matches/:id/result", adminH.GetResult)
			admin.GET("/matches/:id/report", adminH.GetMatchReport)
			admin.GET("/reports/betting", adminH.GetBettingReport)
		}
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// In development all origins are allowed; in production only the arena's web
// origins.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			allowed := map[string]bool{
				"https://arenasul.com.br":     true,
				"https://www.arenasul.com.br": true,
			}
			if allowed[origin] {
				c.Header("Access-Control-Allow-Origin", origin)
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-User-ID, X-Admin-Token, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
