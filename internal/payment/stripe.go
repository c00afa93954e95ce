package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/arenasul/courtbet/internal/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StripeGateway drives card payments through the Stripe PaymentIntents API.
type StripeGateway struct {
	secretKey  string
	baseURL    string
	mockActive bool
	client     *http.Client
}

// NewStripeGateway creates a Stripe gateway from the payment config.
func NewStripeGateway(cfg config.PaymentConfig, client *http.Client) *StripeGateway {
	return &StripeGateway{
		secretKey:  cfg.StripeSecretKey,
		baseURL:    cfg.StripeBaseURL,
		mockActive: cfg.MockActive,
		client:     client,
	}
}

// Name implements Gateway.
func (g *StripeGateway) Name() string { return "stripe" }

// stripeIntent mirrors the PaymentIntent fields we consume.
type stripeIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

type stripeRefund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent opens a card PaymentIntent. Stripe takes amounts in the
// currency's minor unit, so the decimal amount is shifted by two places.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error) {
	slog.Info("stripe: creating card payment", "amount", amount.StringFixed(2), "currency", currency)

	if g.mockActive {
		mockID := "mock_pi_" + uuid.NewString()
		return &Intent{
			PaymentID:    mockID,
			ClientSecret: "mock_secret_" + mockID,
		}, nil
	}

	form := url.Values{}
	form.Set("amount", amount.Shift(2).StringFixed(0))
	form.Set("currency", currency)
	form.Set("payment_method_types[]", "card")
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var intent stripeIntent
	if err := g.do(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, fmt.Errorf("stripe.CreateIntent: %w", err)
	}
	return &Intent{PaymentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// IsConfirmed reports whether the PaymentIntent has been captured.
func (g *StripeGateway) IsConfirmed(ctx context.Context, paymentID string) bool {
	if g.mockActive {
		return strings.HasPrefix(paymentID, "mock_pi_") || strings.HasPrefix(paymentID, "mock_card_")
	}

	var intent stripeIntent
	if err := g.do(ctx, http.MethodGet, "/v1/payment_intents/"+paymentID, nil, &intent); err != nil {
		slog.Warn("stripe: confirm lookup failed", "payment_id", paymentID, "err", err)
		return false
	}
	return intent.Status == "succeeded"
}

// Refund returns the amount to the card. Failures are reported as data.
func (g *StripeGateway) Refund(ctx context.Context, paymentID string, amount decimal.Decimal) RefundResult {
	if g.mockActive {
		return RefundResult{OK: true, RefundID: "mock_refund_" + paymentID}
	}

	form := url.Values{}
	form.Set("payment_intent", paymentID)
	form.Set("amount", amount.Shift(2).StringFixed(0))

	var refund stripeRefund
	if err := g.do(ctx, http.MethodPost, "/v1/refunds", form, &refund); err != nil {
		return RefundResult{OK: false, Reason: err.Error()}
	}
	return RefundResult{OK: true, RefundID: refund.ID}
}

// do runs one authenticated form-encoded call against the Stripe API and
// decodes the JSON response into out.
func (g *StripeGateway) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr stripeError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe api %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe api %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
