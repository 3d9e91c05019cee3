package payout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"credit-core/internal/gateway"
	"credit-core/internal/model"
	"credit-core/internal/service/notify"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(db *gorm.DB) *Service {
	return NewService(db, notify.Nop{}, d("25"), "USD")
}

// addEarning books a settled-looking earning of net for author.
func addEarning(t *testing.T, db *gorm.DB, authorID uint64, net string, earnedAt time.Time) *model.Earning {
	t.Helper()
	n := d(net)
	fee := n.Mul(d("0.3")).Div(d("0.7")).Round(4)
	e := &model.Earning{
		AuthorID:           authorID,
		ChapterTitle:       "Chapter",
		Credits:            100,
		GrossAmount:        n.Add(fee),
		PlatformFeePercent: d("30"),
		PlatformFee:        fee,
		NetAmount:          n,
		Currency:           "USD",
		EarnedAt:           earnedAt,
	}
	require.NoError(t, db.Create(e).Error)
	return e
}

func setDestination(t *testing.T, svc *Service, authorID uint64, email string) {
	t.Helper()
	_, err := svc.UpdateSettings(context.Background(), authorID, SettingsUpdate{PayoutEmail: &email})
	require.NoError(t, err)
}

// fakeGateway answers CreatePayout with submitStatus (or submitErr) and
// BatchStatus from the statuses map. onSubmit runs before each submission;
// a cancelled ctx then fails it like a real HTTP client would.
type fakeGateway struct {
	mu           sync.Mutex
	submitStatus gateway.Status
	submitErr    error
	noBatchID    bool
	onSubmit     func()
	statuses     map[string]gateway.Status
	submitted    []string
	nextID       int
}

func (g *fakeGateway) CreatePayout(ctx context.Context, destination string, amount decimal.Decimal, currency, note string) (*gateway.Submission, error) {
	if g.onSubmit != nil {
		g.onSubmit()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitErr != nil {
		return nil, g.submitErr
	}
	g.nextID++
	g.submitted = append(g.submitted, destination+":"+amount.StringFixed(2))
	if g.noBatchID {
		return &gateway.Submission{Status: g.submitStatus}, nil
	}
	return &gateway.Submission{BatchID: fmt.Sprintf("BATCH-%c", 'A'+g.nextID-1), Status: g.submitStatus}, nil
}

func (g *fakeGateway) BatchStatus(ctx context.Context, batchID string) (gateway.Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.statuses[batchID]; ok {
		return s, nil
	}
	return gateway.StatusUnknown, nil
}

func (g *fakeGateway) set(batchID string, s gateway.Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statuses == nil {
		g.statuses = make(map[string]gateway.Status)
	}
	g.statuses[batchID] = s
}
