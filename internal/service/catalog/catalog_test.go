package catalog

import (
	"context"
	"testing"
	"time"

	"credit-core/internal/model"
	"credit-core/internal/testutil"
	"credit-core/pkg/errno"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookups(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	chapter := testutil.CreateChapter(t, db, author.ID, "Chapter 1", 10)
	pkg := testutil.CreatePackage(t, db, "Starter", 100, "0.99")

	u, err := svc.GetUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", u.Username)

	_, err = svc.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, errno.ErrUserNotFound)

	c, err := svc.GetChapter(ctx, chapter.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, c.Price)

	_, err = svc.GetChapter(ctx, 9999)
	assert.ErrorIs(t, err, errno.ErrChapterNotFound)

	_, err = svc.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, pkg.ID, false))
	_, err = svc.GetPackage(ctx, pkg.ID)
	assert.ErrorIs(t, err, errno.ErrPackageNotFound)

	active, err := svc.ListActivePackages(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestUpdatePricingFreezesReferencedPackages(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	fresh, err := svc.CreatePackage(ctx, "Fresh", 100, decimal.RequireFromString("0.99"))
	require.NoError(t, err)

	updated, err := svc.UpdatePricing(ctx, fresh.ID, 120, decimal.RequireFromString("1.19"))
	require.NoError(t, err)
	assert.EqualValues(t, 120, updated.CreditAmount)

	user := testutil.CreateUser(t, db, "buyer")
	require.NoError(t, db.Create(&model.Purchase{
		UserID:          user.ID,
		CreditPackageID: fresh.ID,
		Amount:          decimal.RequireFromString("1.19"),
		Currency:        "USD",
		PaymentRef:      "pi_1",
		Provider:        model.ProviderStripe,
		Status:          model.PurchaseCompleted,
		CreditsGranted:  120,
		PurchasedAt:     time.Now(),
	}).Error)

	_, err = svc.UpdatePricing(ctx, fresh.ID, 200, decimal.RequireFromString("1.99"))
	assert.ErrorIs(t, err, errno.ErrPackageImmutable)

	require.NoError(t, svc.SetActive(ctx, fresh.ID, false))

	_, err = svc.CreatePackage(ctx, "Broken", 0, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, errno.ErrInvalidAmount)
}
