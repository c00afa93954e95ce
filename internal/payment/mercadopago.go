package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arenasul/courtbet/internal/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MercadoPagoGateway drives PIX payments through the Mercado Pago payments API.
type MercadoPagoGateway struct {
	accessToken string
	baseURL     string
	mockActive  bool
	client      *http.Client
}

// NewMercadoPagoGateway creates a Mercado Pago gateway from the payment config.
func NewMercadoPagoGateway(cfg config.PaymentConfig, client *http.Client) *MercadoPagoGateway {
	return &MercadoPagoGateway{
		accessToken: cfg.MercadoPagoToken,
		baseURL:     cfg.MercadoPagoBaseURL,
		mockActive:  cfg.MockActive,
		client:      client,
	}
}

// Name implements Gateway.
func (g *MercadoPagoGateway) Name() string { return "mercadopago" }

type mpPayment struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

type mpRefund struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
}

type mpError struct {
	Message string `json:"message"`
}

// CreateIntent opens a PIX payment and returns the QR code material the
// client renders for the payer.
func (g *MercadoPagoGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error) {
	slog.Info("mercadopago: creating pix payment", "amount", amount.StringFixed(2), "currency", currency)

	if g.mockActive {
		mockID := "mp_mock_" + uuid.NewString()
		return &Intent{
			PaymentID:    mockID,
			QRCode:       "00020126mockpixcopypaste" + mockID,
			QRCodeBase64: "bW9jay1xci1jb2Rl",
			TicketURL:    "https://mock.mercadopago.local/ticket/" + mockID,
		}, nil
	}

	amt, _ := amount.Round(2).Float64()
	payload := map[string]interface{}{
		"transaction_amount": amt,
		"payment_method_id":  "pix",
		"description":        metadata["description"],
		"metadata":           metadata,
		"payer": map[string]string{
			"email": metadata["payer_email"],
		},
	}

	var pay mpPayment
	if err := g.do(ctx, http.MethodPost, "/v1/payments", payload, &pay); err != nil {
		return nil, fmt.Errorf("mercadopago.CreateIntent: %w", err)
	}
	td := pay.PointOfInteraction.TransactionData
	return &Intent{
		PaymentID:    pay.ID.String(),
		QRCode:       td.QRCode,
		QRCodeBase64: td.QRCodeBase64,
		TicketURL:    td.TicketURL,
	}, nil
}

// IsConfirmed reports whether the PIX payment has been approved.
func (g *MercadoPagoGateway) IsConfirmed(ctx context.Context, paymentID string) bool {
	if g.mockActive {
		return strings.HasPrefix(paymentID, "mp_mock_")
	}

	var pay mpPayment
	if err := g.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &pay); err != nil {
		slog.Warn("mercadopago: confirm lookup failed", "payment_id", paymentID, "err", err)
		return false
	}
	return pay.Status == "approved"
}

// Refund reverses an approved PIX payment. Failures are reported as data.
func (g *MercadoPagoGateway) Refund(ctx context.Context, paymentID string, amount decimal.Decimal) RefundResult {
	if g.mockActive {
		return RefundResult{OK: true, RefundID: "mp_refund_" + paymentID}
	}

	amt, _ := amount.Round(2).Float64()
	payload := map[string]interface{}{"amount": amt}

	var refund mpRefund
	if err := g.do(ctx, http.MethodPost, "/v1/payments/"+paymentID+"/refunds", payload, &refund); err != nil {
		return RefundResult{OK: false, Reason: err.Error()}
	}
	return RefundResult{OK: true, RefundID: refund.ID.String()}
}

// do runs one authenticated JSON call against the Mercado Pago API. Writes
// carry an idempotency key so a retried request cannot double-charge.
func (g *MercadoPagoGateway) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
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
		var apiErr mpError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("mercadopago api %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("mercadopago api %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
