// Package api_test runs HTTP-level smoke tests using net/http/httptest.
// These tests do NOT require a PostgreSQL database — they verify:
//   - Gin router routing and middleware wiring
//   - Request validation error responses (400)
//   - Identity middleware (401 without X-User-ID, 401 with a bad one)
//   - Admin token middleware (403 without/with a wrong token)
//   - Response format consistency (success/error envelope)
//   - CORS preflight handling
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arenasul/courtbet/internal/api"
	"github.com/arenasul/courtbet/internal/config"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

func testCfg() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Env:        "development",
			Port:       "8080",
			AdminToken: "test-admin-token",
		},
		Betting: config.BettingConfig{
			HouseEdge: 0.20,
			MinBet:    1,
		},
	}
}

// buildTestRouter creates a Gin engine with nil services: everything asserted
// here fails before any service call (validation, identity, admin token).
func buildTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return api.SetupRouter(api.RouterDeps{
		MatchSvc:      nil,
		BetSvc:        nil,
		SettlementSvc: nil,
		Cfg:           testCfg(),
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("response is not valid JSON: %v — body: %s", err, rr.Body.String())
	}
	return m
}

const testUserID = "11111111-1111-1111-1111-111111111111"

// ── /health ───────────────────────────────────────────────────────────────────

func TestHealthEndpoint(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rr.Code)
	}
}

// ── Identity middleware (no header → 401) ─────────────────────────────────────

func TestPlaceBet_NoIdentity_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"booking_id":"` + testUserID + `","outcome_name":"Alice","amount":"50.00","payment_id":"pi_x"}`
	rr := do(t, h, http.MethodPost, "/api/betting/bets", payload, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("POST /api/betting/bets without identity = %d, want 401", rr.Code)
	}
}

func TestMyBets_NoIdentity_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/betting/my-bets", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/betting/my-bets without identity = %d, want 401", rr.Code)
	}
}

func TestPaymentIntent_NoIdentity_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"booking_id":"` + testUserID + `","amount":"50.00"}`
	rr := do(t, h, http.MethodPost, "/api/betting/payment-intent", payload, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("POST /api/betting/payment-intent without identity = %d, want 401", rr.Code)
	}
}

func TestPlaceBet_MalformedIdentity_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"booking_id":"` + testUserID + `","outcome_name":"Alice","amount":"50.00","payment_id":"pi_x"}`
	rr := do(t, h, http.MethodPost, "/api/betting/bets", payload, map[string]string{
		"X-User-ID": "not-a-uuid",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("POST /api/betting/bets with bad identity = %d, want 401", rr.Code)
	}
}

// ── Request validation (identity present, bad payloads → 400) ─────────────────

func TestPlaceBet_MissingFields_Returns400(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/betting/bets", `{}`, map[string]string{
		"X-User-ID": testUserID,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("POST /api/betting/bets empty body = %d, want 400", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != false {
		t.Errorf("response.success should be false on error, got %v", body["success"])
	}
	if body["code"] == nil {
		t.Errorf("error envelope missing 'code', got: %v", body)
	}
}

func TestPlaceBet_NegativeAmount_Returns400(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"booking_id":"` + testUserID + `","outcome_name":"Alice","amount":"-10.00","payment_id":"pi_x"}`
	rr := do(t, h, http.MethodPost, "/api/betting/bets", payload, map[string]string{
		"X-User-ID": testUserID,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("negative amount = %d, want 400", rr.Code)
	}
}

func TestPlaceBet_BadBookingID_Returns400(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"booking_id":"nope","outcome_name":"Alice","amount":"10.00","payment_id":"pi_x"}`
	rr := do(t, h, http.MethodPost, "/api/betting/bets", payload, map[string]string{
		"X-User-ID": testUserID,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad booking id = %d, want 400", rr.Code)
	}
}

func TestCancelBet_BadBetID_Returns400(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodDelete, "/api/betting/bets/abc", "", map[string]string{
		"X-User-ID": testUserID,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("DELETE /api/betting/bets/abc = %d, want 400", rr.Code)
	}
}

// ── Admin token middleware ────────────────────────────────────────────────────

func TestAdminMatches_NoToken_Returns403(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/admin/matches", "", nil)
	if rr.Code != http.StatusForbidden {
		t.Errorf("GET /api/admin/matches without token = %d, want 403", rr.Code)
	}
}

func TestAdminFinish_WrongToken_Returns403(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"winner_name":"Alice","score":"6-4"}`
	rr := do(t, h, http.MethodPost, "/api/admin/matches/"+testUserID+"/finish", payload, map[string]string{
		"X-Admin-Token": "wrong-token",
	})
	if rr.Code != http.StatusForbidden {
		t.Errorf("finish with wrong admin token = %d, want 403", rr.Code)
	}
}

func TestAdminFinish_BadMatchID_Returns400(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"winner_name":"Alice"}`
	rr := do(t, h, http.MethodPost, "/api/admin/matches/xyz/finish", payload, map[string]string{
		"X-Admin-Token": "test-admin-token",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("finish with bad match id = %d, want 400", rr.Code)
	}
}

func TestAdminFinish_MissingWinner_Returns400(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/admin/matches/"+testUserID+"/finish", `{}`, map[string]string{
		"X-Admin-Token": "test-admin-token",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("finish without winner = %d, want 400", rr.Code)
	}
}

// ── Public endpoints stay public ──────────────────────────────────────────────

func TestMatchStats_IsPublic(t *testing.T) {
	h := buildTestRouter(t)
	// No identity: should NOT be 401. Bad match id fails validation first.
	rr := do(t, h, http.MethodGet, "/api/betting/matches/abc/stats", "", nil)
	if rr.Code == http.StatusUnauthorized {
		t.Error("GET /api/betting/matches/:id/stats should be public (no 401)")
	}
	if rr.Code != http.StatusBadRequest {
		t.Errorf("stats with bad match id = %d, want 400", rr.Code)
	}
}

func TestBookingMatch_IsPublic(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/betting/bookings/abc/match", "", nil)
	if rr.Code == http.StatusUnauthorized {
		t.Error("GET /api/betting/bookings/:id/match should be public (no 401)")
	}
}

// ── Error envelope format ─────────────────────────────────────────────────────

func TestErrorEnvelope_HasRequiredFields(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/betting/bets", `{}`, map[string]string{
		"X-User-ID": testUserID,
	})
	body := decodeBody(t, rr)

	for _, field := range []string{"success", "error", "code"} {
		if _, ok := body[field]; !ok {
			t.Errorf("error envelope missing field %q, got: %v", field, body)
		}
	}
	if body["success"] != false {
		t.Errorf("error envelope.success = %v, want false", body["success"])
	}
}

// ── CORS headers ──────────────────────────────────────────────────────────────

func TestCORSOptionsRequest(t *testing.T) {
	h := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/betting/bets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	// OPTIONS should return 204 (no content) in dev mode
	if rr.Code != http.StatusNoContent && rr.Code != http.StatusOK {
		t.Errorf("OPTIONS /api/betting/bets = %d, want 204 or 200", rr.Code)
	}
	allow := rr.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(allow, "POST") {
		t.Errorf("Access-Control-Allow-Methods missing POST, got %q", allow)
	}
}

func TestCORSAllowOrigin_Dev(t *testing.T) {
	h := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	// In dev mode, CORS origin should be wildcard
	origin := rr.Header().Get("Access-Control-Allow-Origin")
	if origin != "*" {
		t.Errorf("Dev CORS origin = %q, want *", origin)
	}
}
