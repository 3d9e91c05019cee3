package gateway

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StubVerifier accepts references starting with "stub_". For development.
type StubVerifier struct{}

func (StubVerifier) Verify(ctx context.Context, paymentRef string) (bool, error) {
	return strings.HasPrefix(paymentRef, "stub_"), nil
}

// StubPayoutGateway accepts every payout as PENDING and reports every
// batch as SUCCESS on the next poll.
type StubPayoutGateway struct{}

func (StubPayoutGateway) CreatePayout(ctx context.Context, destination string, amount decimal.Decimal, currency, note string) (*Submission, error) {
	return &Submission{BatchID: "stub_batch_" + uuid.NewString(), Status: StatusPending}, nil
}

func (StubPayoutGateway) BatchStatus(ctx context.Context, batchID string) (Status, error) {
	if !strings.HasPrefix(batchID, "stub_batch_") {
		return StatusUnknown, nil
	}
	return StatusSuccess, nil
}
