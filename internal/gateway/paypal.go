package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// PaypalClient verifies PayPal orders and sends author payouts through the
// PayPal Payouts API. Requests authenticate with client-credentials tokens.
type PaypalClient struct {
	BaseURL string
	client  *http.Client
}

func NewPaypalClient(baseURL, clientID, clientSecret string) *PaypalClient {
	if baseURL == "" {
		baseURL = "https://api-m.sandbox.paypal.com"
	}
	cc := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	base := &http.Client{Timeout: 30 * time.Second}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	return &PaypalClient{
		BaseURL: baseURL,
		client:  cc.Client(ctx),
	}
}

type paypalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Verify reports whether the order has been captured. Unknown or declined
// orders are "not verified"; answers in transientStatus are errors.
func (p *PaypalClient) Verify(ctx context.Context, paymentRef string) (bool, error) {
	var order paypalOrder
	status, err := p.do(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(paymentRef), nil, &order)
	if err != nil {
		return false, fmt.Errorf("paypal verify: %w", err)
	}
	if transientStatus(status) {
		return false, fmt.Errorf("paypal verify: status %d", status)
	}
	if status != http.StatusOK {
		return false, nil
	}
	return order.Status == "COMPLETED", nil
}

type paypalAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type paypalPayoutItem struct {
	RecipientType string       `json:"recipient_type"`
	Amount        paypalAmount `json:"amount"`
	Receiver      string       `json:"receiver"`
	Note          string       `json:"note,omitempty"`
	SenderItemID  string       `json:"sender_item_id"`
}

type paypalPayoutRequest struct {
	SenderBatchHeader struct {
		SenderBatchID string `json:"sender_batch_id"`
		EmailSubject  string `json:"email_subject"`
		EmailMessage  string `json:"email_message,omitempty"`
	} `json:"sender_batch_header"`
	Items []paypalPayoutItem `json:"items"`
}

type paypalBatchResponse struct {
	BatchHeader struct {
		PayoutBatchID string `json:"payout_batch_id"`
		BatchStatus   string `json:"batch_status"`
	} `json:"batch_header"`
}

// CreatePayout submits a single-item payout batch to destination (a PayPal email).
func (p *PaypalClient) CreatePayout(ctx context.Context, destination string, amount decimal.Decimal, currency, note string) (*Submission, error) {
	batchID := uuid.NewString()

	var body paypalPayoutRequest
	body.SenderBatchHeader.SenderBatchID = batchID
	body.SenderBatchHeader.EmailSubject = "You have a payout"
	body.SenderBatchHeader.EmailMessage = note
	body.Items = []paypalPayoutItem{{
		RecipientType: "EMAIL",
		Amount:        paypalAmount{Value: amount.StringFixed(2), Currency: currency},
		Receiver:      destination,
		Note:          note,
		SenderItemID:  batchID + "-1",
	}}

	var out paypalBatchResponse
	status, err := p.do(ctx, http.MethodPost, "/v1/payments/payouts", body, &out)
	if err != nil {
		return nil, fmt.Errorf("paypal payout: %w", err)
	}
	if transientStatus(status) {
		return nil, fmt.Errorf("paypal payout: status %d", status)
	}
	if status >= 400 {
		return &Submission{Status: StatusFailed, Reason: fmt.Sprintf("paypal payout rejected: status %d", status)}, nil
	}
	return &Submission{
		BatchID: out.BatchHeader.PayoutBatchID,
		Status:  ParseStatus(out.BatchHeader.BatchStatus),
	}, nil
}

func (p *PaypalClient) BatchStatus(ctx context.Context, batchID string) (Status, error) {
	var out paypalBatchResponse
	status, err := p.do(ctx, http.MethodGet, "/v1/payments/payouts/"+url.PathEscape(batchID), nil, &out)
	if err != nil {
		return StatusUnknown, fmt.Errorf("paypal batch status: %w", err)
	}
	if status >= 400 {
		return StatusUnknown, fmt.Errorf("paypal batch status: status %d", status)
	}
	return ParseStatus(out.BatchHeader.BatchStatus), nil
}

// do sends a JSON request and decodes a 2xx body into out. 5xx responses
// are errors; other statuses are returned for the caller to interpret.
func (p *PaypalClient) do(ctx context.Context, method, path string, in, out interface{}) (int, error) {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 500 {
		return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode: %w", err)
		}
	}
	return resp.StatusCode, nil
}
