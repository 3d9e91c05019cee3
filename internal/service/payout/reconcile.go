package payout

import (
	"credit-core/internal/gateway"
	"credit-core/internal/model"
)

// Reconcile folds a provider batch status into a payout status. Only
// PROCESSING payouts move; changed is false when the provider has not
// reached a terminal state yet.
func Reconcile(current model.PayoutStatus, provider gateway.Status) (next model.PayoutStatus, changed bool) {
	if current != model.PayoutProcessing {
		return current, false
	}
	switch provider {
	case gateway.StatusSuccess:
		return model.PayoutCompleted, true
	case gateway.StatusFailed:
		return model.PayoutFailed, true
	default:
		return current, false
	}
}

// SubmissionStatus maps the provider's immediate answer to a payout creation.
func SubmissionStatus(provider gateway.Status) model.PayoutStatus {
	switch provider {
	case gateway.StatusSuccess:
		return model.PayoutCompleted
	case gateway.StatusFailed:
		return model.PayoutFailed
	default:
		return model.PayoutProcessing
	}
}
