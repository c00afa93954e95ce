// Package payment abstracts the external payment providers behind a single
// Gateway interface. The concrete gateway is chosen once at startup from
// configuration and injected into the services — never selected ad hoc per
// request.
package payment

import (
	"context"
	"net/http"

	"github.com/arenasul/courtbet/internal/config"
	"github.com/shopspring/decimal"
)

// Intent is the provider-agnostic result of creating a payment.
// ClientSecret is Stripe-specific; the QR fields are Mercado Pago PIX.
type Intent struct {
	PaymentID    string `json:"payment_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	QRCode       string `json:"qr_code,omitempty"`
	QRCodeBase64 string `json:"qr_code_base64,omitempty"`
	TicketURL    string `json:"ticket_url,omitempty"`
}

// RefundResult reports the outcome of one external refund attempt. A failed
// call yields OK=false plus a reason; callers record the outcome and move on
// (refund failures never abort a cancellation).
type RefundResult struct {
	OK       bool
	RefundID string
	Reason   string
}

// Gateway is the strategy interface over the payment providers.
type Gateway interface {
	// Name identifies the provider ("stripe", "mercadopago", "mock").
	Name() string

	// CreateIntent opens a payment for the given amount. metadata travels to
	// the provider for reconciliation and shows up in its dashboard.
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error)

	// IsConfirmed reports whether the payment has been captured on the
	// provider side. Lookup errors count as unconfirmed.
	IsConfirmed(ctx context.Context, paymentID string) bool

	// Refund returns the given amount to the payer. Never returns a Go error:
	// the failure mode is data, not control flow.
	Refund(ctx context.Context, paymentID string, amount decimal.Decimal) RefundResult
}

// New builds the gateway selected by configuration. PAYMENT_MOCK_ACTIVE keeps
// the real providers but short-circuits their HTTP calls, matching how the
// providers behave in dev environments.
func New(cfg *config.Config) Gateway {
	client := &http.Client{Timeout: cfg.Payment.RequestTimeout}
	if cfg.Payment.Method == "pix" {
		return NewMercadoPagoGateway(cfg.Payment, client)
	}
	return NewStripeGateway(cfg.Payment, client)
}
