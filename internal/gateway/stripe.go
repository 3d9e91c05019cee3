package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// StripeVerifier checks payment intents against a Stripe-style REST API.
type StripeVerifier struct {
	BaseURL   string
	SecretKey string
	client    *http.Client
}

func NewStripeVerifier(baseURL, secretKey string) *StripeVerifier {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &StripeVerifier{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type stripeIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Verify reports whether the payment intent has succeeded. An unknown or
// rejected intent is "not verified"; answers in transientStatus are errors.
func (s *StripeVerifier) Verify(ctx context.Context, paymentRef string) (bool, error) {
	endpoint := s.BaseURL + "/v1/payment_intents/" + url.PathEscape(paymentRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("stripe verify: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	switch {
	case transientStatus(resp.StatusCode):
		return false, fmt.Errorf("stripe verify: status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, nil
	}

	var intent stripeIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return false, fmt.Errorf("stripe verify: decode: %w", err)
	}
	return intent.Status == "succeeded", nil
}
