package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	config "github.com/Jonas-spec/soko/configs"
)

type stripeChargeResponse struct {
	ID    string `json:"id"`
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StripeCharger posts to the Stripe charges API.
type StripeCharger struct {
	cfg    config.StripeConfig
	client *http.Client
}

func NewStripeCharger(cfg config.StripeConfig) *StripeCharger {
	return &StripeCharger{cfg: cfg, client: &http.Client{}}
}

func (s *StripeCharger) Charge(ctx context.Context, amount decimal.Decimal, currency, token, description string) (string, error) {

	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	data := url.Values{}
	data.Set("amount", strconv.FormatInt(cents, 10))
	data.Set("currency", currency)
	data.Set("source", token)
	data.Set("description", description)

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.ChargeURL, strings.NewReader(data.Encode()))

	if err != nil {
		return "", fmt.Errorf("failed to create charge request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.SecretKey, "")

	resp, err := s.client.Do(req)

	if err != nil {
		return "", fmt.Errorf("charge request failed: %w", err)
	}

	defer resp.Body.Close()

	var chargeResp stripeChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&chargeResp); err != nil {
		return "", fmt.Errorf("failed to decode charge response: %w", err)
	}

	// 402 is a card decline; the message is safe to show to the customer.
	if resp.StatusCode == http.StatusPaymentRequired {
		return "", &DeclineError{Message: chargeResp.Error.Message}
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("charge API returned non-success status: %d", resp.StatusCode)
	}

	return chargeResp.ID, nil
}
