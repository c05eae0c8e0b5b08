// Package payment abstracts the external payment gateway used by the
// credit charge flow.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Provider creates payment links and verifies completed payments. The
// bot treats verification as opaque: it only learns whether the
// referenced payment went through.
type Provider interface {
	PaymentLink(ref string, amount int64) string
	Verify(ctx context.Context, ref string, amount int64) (bool, error)
}

// Config holds the gateway endpoints and merchant identity.
type Config struct {
	MerchantID string `yaml:"merchant_id" envconfig:"PAYMENT_MERCHANT_ID"`
	StartURL   string `yaml:"start_url" envconfig:"PAYMENT_START_URL"`
	VerifyURL  string `yaml:"verify_url" envconfig:"PAYMENT_VERIFY_URL"`
}

// Gateway is the HTTP implementation of Provider.
type Gateway struct {
	cfg    Config
	client *http.Client
}

func NewGateway(cfg Config) *Gateway {
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// PaymentLink builds the hosted payment page URL for a reference.
func (g *Gateway) PaymentLink(ref string, amount int64) string {
	q := url.Values{}
	q.Set("merchant", g.cfg.MerchantID)
	q.Set("ref", ref)
	q.Set("amount", strconv.FormatInt(amount, 10))
	return g.cfg.StartURL + "?" + q.Encode()
}

type verifyRequest struct {
	MerchantID string `json:"merchant_id"`
	Ref        string `json:"ref"`
	Amount     int64  `json:"amount"`
}

type verifyResponse struct {
	Paid bool `json:"paid"`
}

// Verify asks the gateway whether the referenced payment completed
// with the expected amount.
func (g *Gateway) Verify(ctx context.Context, ref string, amount int64) (bool, error) {
	body, err := json.Marshal(verifyRequest{
		MerchantID: g.cfg.MerchantID,
		Ref:        ref,
		Amount:     amount,
	})
	if err != nil {
		return false, fmt.Errorf("payment verify: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.VerifyURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("payment verify: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("payment verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("payment verify: gateway status %s", resp.Status)
	}
	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("payment verify: decode: %w", err)
	}
	return out.Paid, nil
}
