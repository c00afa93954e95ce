package payment

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/arenasul/courtbet/internal/config"
	"github.com/shopspring/decimal"
)

func mockCfg() config.PaymentConfig {
	return config.PaymentConfig{
		Method:             "card",
		Currency:           "brl",
		MockActive:         true,
		RequestTimeout:     5 * time.Second,
		StripeBaseURL:      "https://api.stripe.com",
		MercadoPagoBaseURL: "https://api.mercadopago.com",
	}
}

func TestStripeGateway_MockFlow(t *testing.T) {
	g := NewStripeGateway(mockCfg(), &http.Client{})
	ctx := context.Background()

	intent, err := g.CreateIntent(ctx, decimal.NewFromInt(50), "brl", map[string]string{"user_id": "u1"})
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if !strings.HasPrefix(intent.PaymentID, "mock_pi_") {
		t.Errorf("expected mock_pi_ payment id, got %q", intent.PaymentID)
	}
	if intent.ClientSecret == "" {
		t.Error("expected a client secret on a card intent")
	}

	if !g.IsConfirmed(ctx, intent.PaymentID) {
		t.Error("mock payment should confirm")
	}
	if g.IsConfirmed(ctx, "pi_real_looking") {
		t.Error("non-mock id must not confirm in mock mode")
	}

	res := g.Refund(ctx, intent.PaymentID, decimal.NewFromInt(50))
	if !res.OK {
		t.Errorf("mock refund should succeed, reason=%q", res.Reason)
	}
	if !strings.HasPrefix(res.RefundID, "mock_refund_") {
		t.Errorf("unexpected refund id %q", res.RefundID)
	}
}

func TestMercadoPagoGateway_MockFlow(t *testing.T) {
	g := NewMercadoPagoGateway(mockCfg(), &http.Client{})
	ctx := context.Background()

	intent, err := g.CreateIntent(ctx, decimal.NewFromInt(25), "brl", nil)
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if !strings.HasPrefix(intent.PaymentID, "mp_mock_") {
		t.Errorf("expected mp_mock_ payment id, got %q", intent.PaymentID)
	}
	if intent.QRCode == "" || intent.QRCodeBase64 == "" {
		t.Error("pix intent should carry qr code material")
	}

	if !g.IsConfirmed(ctx, intent.PaymentID) {
		t.Error("mock pix payment should confirm")
	}

	res := g.Refund(ctx, intent.PaymentID, decimal.NewFromInt(25))
	if !res.OK || !strings.HasPrefix(res.RefundID, "mp_refund_") {
		t.Errorf("unexpected refund result %+v", res)
	}
}

func TestNew_SelectsGatewayByMethod(t *testing.T) {
	cfg := &config.Config{Payment: mockCfg()}

	if got := New(cfg).Name(); got != "stripe" {
		t.Errorf("method card should select stripe, got %q", got)
	}

	cfg.Payment.Method = "pix"
	if got := New(cfg).Name(); got != "mercadopago" {
		t.Errorf("method pix should select mercadopago, got %q", got)
	}
}
