package purchase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"credit-core/internal/gateway"
	"credit-core/internal/model"
	"credit-core/internal/service/catalog"
	"credit-core/internal/service/notify"
	"credit-core/internal/service/wallet"
	"credit-core/internal/testutil"
	"credit-core/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type verifierFunc func(ctx context.Context, ref string) (bool, error)

func (f verifierFunc) Verify(ctx context.Context, ref string) (bool, error) { return f(ctx, ref) }

type countingInvalidator struct{ n int32 }

func (c *countingInvalidator) Invalidate(context.Context) { atomic.AddInt32(&c.n, 1) }

func newLedger(db *gorm.DB, v gateway.PaymentVerifier, rates RateInvalidator) *Ledger {
	reg := gateway.NewRegistry()
	reg.Register(model.ProviderStripe, v)
	return NewLedger(db, catalog.NewService(db), reg, rates, notify.Nop{}, Options{Currency: "USD", VerifyTimeout: time.Second})
}

func approveAll(context.Context, string) (bool, error) { return true, nil }

func TestConfirmPayment(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	rates := &countingInvalidator{}
	ledger := newLedger(db, verifierFunc(approveAll), rates)

	user := testutil.CreateUser(t, db, "buyer")
	pkg := testutil.CreatePackage(t, db, "Big", 1000, "10")

	p, err := ledger.ConfirmPayment(ctx, user.ID, pkg.ID, "pi_1", model.ProviderStripe)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseCompleted, p.Status)
	assert.EqualValues(t, 1000, p.CreditsGranted)
	assert.EqualValues(t, 1, rates.n)

	_, err = ledger.ConfirmPayment(ctx, user.ID, pkg.ID, "pi_1", model.ProviderStripe)
	assert.ErrorIs(t, err, errno.ErrAlreadyProcessed)

	balance, err := wallet.NewStore(db).GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, balance)

	list, total, err := ledger.ListPurchases(ctx, user.ID, model.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}

func TestConfirmPaymentNotVerified(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	ledger := newLedger(db, verifierFunc(func(context.Context, string) (bool, error) { return false, nil }), nil)

	user := testutil.CreateUser(t, db, "buyer")
	pkg := testutil.CreatePackage(t, db, "Big", 1000, "10")

	_, err := ledger.ConfirmPayment(ctx, user.ID, pkg.ID, "pi_unpaid", model.ProviderStripe)
	assert.ErrorIs(t, err, errno.ErrPaymentNotVerified)

	var purchases int64
	db.Model(&model.Purchase{}).Count(&purchases)
	assert.Zero(t, purchases)

	balance, err := wallet.NewStore(db).GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestConfirmPaymentRejections(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	down := verifierFunc(func(context.Context, string) (bool, error) { return false, errors.New("connection reset") })
	ledger := newLedger(db, down, nil)

	user := testutil.CreateUser(t, db, "buyer")
	pkg := testutil.CreatePackage(t, db, "Big", 1000, "10")

	_, err := ledger.ConfirmPayment(ctx, 9999, pkg.ID, "pi_1", model.ProviderStripe)
	assert.ErrorIs(t, err, errno.ErrUserNotFound)

	_, err = ledger.ConfirmPayment(ctx, user.ID, 9999, "pi_1", model.ProviderStripe)
	assert.ErrorIs(t, err, errno.ErrPackageNotFound)

	_, err = ledger.ConfirmPayment(ctx, user.ID, pkg.ID, "pi_1", model.ProviderPaypal)
	assert.ErrorIs(t, err, errno.ErrUnsupportedProvider)

	_, err = ledger.ConfirmPayment(ctx, user.ID, pkg.ID, "pi_1", model.ProviderStripe)
	assert.ErrorIs(t, err, errno.ErrGatewayUnavailable)

	var purchases int64
	db.Model(&model.Purchase{}).Count(&purchases)
	assert.Zero(t, purchases)
}

func TestConcurrentConfirmationsCreditOnce(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()

	// Hold every verifier until all callers have passed the pre-check so the
	// unique index, not the pre-check, decides the winner.
	const callers = 5
	var arrived sync.WaitGroup
	arrived.Add(callers)
	gate := verifierFunc(func(context.Context, string) (bool, error) {
		arrived.Done()
		arrived.Wait()
		return true, nil
	})
	ledger := newLedger(db, gate, nil)

	user := testutil.CreateUser(t, db, "buyer")
	pkg := testutil.CreatePackage(t, db, "Small", 100, "1")

	var ok, dup int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.ConfirmPayment(ctx, user.ID, pkg.ID, "pi_race", model.ProviderStripe)
			if err == nil {
				atomic.AddInt32(&ok, 1)
			} else if errors.Is(err, errno.ErrAlreadyProcessed) {
				atomic.AddInt32(&dup, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok)
	assert.EqualValues(t, callers-1, dup)

	balance, err := wallet.NewStore(db).GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 100, balance)
}

func TestConfirmOutcome(t *testing.T) {
	assert.Equal(t, "completed", confirmOutcome(nil))
	assert.Equal(t, "duplicate", confirmOutcome(errno.ErrAlreadyProcessed))
	assert.Equal(t, "gateway_error", confirmOutcome(errors.Join(errno.ErrGatewayUnavailable)))
	assert.Equal(t, "rejected", confirmOutcome(errno.ErrPackageNotFound))
}
