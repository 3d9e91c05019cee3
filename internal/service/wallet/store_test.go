package wallet

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"credit-core/internal/testutil"
	"credit-core/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectsNonPositiveAmounts(t *testing.T) {
	_, err := AddCreditsTx(nil, 1, 0)
	assert.ErrorIs(t, err, errno.ErrInvalidAmount)

	_, err = DeductCreditsTx(nil, 1, -5)
	assert.ErrorIs(t, err, errno.ErrInvalidAmount)
}

func TestStoreLifecycle(t *testing.T) {
	db := testutil.OpenTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "reader")

	balance, err := store.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	w, err := store.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, w.Balance)

	w, err = store.AddCredits(ctx, user.ID, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 100, w.Balance)

	w, err = store.DeductCredits(ctx, user.ID, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 70, w.Balance)
	assert.EqualValues(t, 2, w.Version)

	_, err = store.DeductCredits(ctx, user.ID, 71)
	assert.ErrorIs(t, err, errno.ErrInsufficientCredits)

	balance, err = store.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 70, balance)

	require.NoError(t, store.Delete(ctx, user.ID))
	balance, err = store.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestConcurrentDeductionsNeverOverdraw(t *testing.T) {
	db := testutil.OpenTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "racer")

	_, err := store.AddCredits(ctx, user.ID, 100)
	require.NoError(t, err)

	const workers = 20
	var ok, insufficient int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.DeductCredits(ctx, user.ID, 10)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case assert.ErrorIs(t, err, errno.ErrInsufficientCredits):
				atomic.AddInt32(&insufficient, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 10, ok)
	assert.EqualValues(t, 10, insufficient)

	balance, err := store.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}
