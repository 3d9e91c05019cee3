package gateway

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"credit-core/internal/model"
	"credit-core/pkg/errno"

	"github.com/shopspring/decimal"
)

// Status is the provider-agnostic state of a payout batch.
type Status string

const (
	StatusSuccess    Status = "SUCCESS"
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusFailed     Status = "FAILED"
	StatusUnknown    Status = "UNKNOWN"
)

// ParseStatus maps a provider status string onto Status.
func ParseStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS", "SUCCEEDED", "COMPLETED", "PAID":
		return StatusSuccess
	case "PENDING", "NEW":
		return StatusPending
	case "PROCESSING", "IN_TRANSIT":
		return StatusProcessing
	case "FAILED", "DENIED", "CANCELED", "CANCELLED", "RETURNED", "BLOCKED":
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// PaymentVerifier confirms that a payment reference is a settled payment.
type PaymentVerifier interface {
	Verify(ctx context.Context, paymentRef string) (bool, error)
}

// Submission is the provider's answer to a payout creation.
type Submission struct {
	BatchID string
	Status  Status
	Reason  string
}

// PayoutGateway sends money to authors and reports on batches it created.
type PayoutGateway interface {
	CreatePayout(ctx context.Context, destination string, amount decimal.Decimal, currency, note string) (*Submission, error)
	BatchStatus(ctx context.Context, batchID string) (Status, error)
}

// Registry resolves the payment verifier of a provider.
type Registry struct {
	mu        sync.RWMutex
	verifiers map[model.PaymentProvider]PaymentVerifier
}

func NewRegistry() *Registry {
	return &Registry{verifiers: make(map[model.PaymentProvider]PaymentVerifier)}
}

func (r *Registry) Register(provider model.PaymentProvider, v PaymentVerifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifiers[provider] = v
}

func (r *Registry) Verifier(provider model.PaymentProvider) (PaymentVerifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.verifiers[provider]
	if !ok {
		return nil, errno.ErrUnsupportedProvider
	}
	return v, nil
}

// transientStatus reports HTTP answers that say nothing about the payment
// itself: server errors, rejected credentials, timeouts and rate limits.
func transientStatus(code int) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return code >= 500
}
