package payout

import (
	"context"
	"testing"
	"time"

	"credit-core/internal/model"
	"credit-core/internal/testutil"
	"credit-core/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCreatedOnFirstAccess(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	s, err := svc.GetSettings(ctx, 42)
	require.NoError(t, err)
	assert.True(t, d("25").Equal(s.MinimumPayout))
	assert.Equal(t, model.FrequencyMonthly, s.Frequency)
	assert.False(t, s.HasDestination())

	min := d("10")
	freq := model.FrequencyWeekly
	auto := true
	s, err = svc.UpdateSettings(ctx, 42, SettingsUpdate{MinimumPayout: &min, Frequency: &freq, AutoPayout: &auto})
	require.NoError(t, err)
	assert.True(t, min.Equal(s.MinimumPayout))
	assert.Equal(t, model.FrequencyWeekly, s.Frequency)
	assert.True(t, s.AutoPayout)

	bad := model.PayoutFrequency("DAILY")
	_, err = svc.UpdateSettings(ctx, 42, SettingsUpdate{Frequency: &bad})
	assert.ErrorIs(t, err, errno.ErrInvalidSettings)

	zero := d("0")
	_, err = svc.UpdateSettings(ctx, 42, SettingsUpdate{MinimumPayout: &zero})
	assert.ErrorIs(t, err, errno.ErrInvalidSettings)

	email := "not-an-email"
	_, err = svc.UpdateSettings(ctx, 42, SettingsUpdate{PayoutEmail: &email})
	assert.ErrorIs(t, err, errno.ErrInvalidSettings)
}

func TestRequestPayoutBounds(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := newService(db)
	ctx := context.Background()
	const author = 7

	addEarning(t, db, author, "20", time.Now().Add(-2*time.Hour))

	ok, err := svc.CanRequestPayout(ctx, author)
	require.NoError(t, err)
	assert.False(t, ok, "no destination yet")

	setDestination(t, svc, author, "author@example.com")
	_, err = svc.RequestPayout(ctx, author, d("20"))
	assert.ErrorIs(t, err, errno.ErrPayoutNotEligible, "below minimum balance")

	addEarning(t, db, author, "10", time.Now().Add(-time.Hour))

	_, err = svc.RequestPayout(ctx, author, d("30.01"))
	assert.ErrorIs(t, err, errno.ErrPayoutExceedsBalance)

	_, err = svc.RequestPayout(ctx, author, d("24.99"))
	assert.ErrorIs(t, err, errno.ErrPayoutBelowMinimum)

	_, err = svc.RequestPayout(ctx, author, d("0"))
	assert.ErrorIs(t, err, errno.ErrInvalidAmount)

	p, err := svc.RequestPayout(ctx, author, d("30"))
	require.NoError(t, err)
	assert.Equal(t, model.PayoutPending, p.Status)
	assert.True(t, d("30").Equal(p.TotalAmount))

	full, err := svc.GetPayout(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, full.Earnings, 2)
	net := full.Earnings[0].NetAmount.Add(full.Earnings[1].NetAmount)
	assert.True(t, net.Equal(p.TotalAmount))
	assert.True(t, full.Earnings[0].PlatformFee.Add(full.Earnings[1].PlatformFee).Equal(p.PlatformFees))
	for _, e := range full.Earnings {
		assert.True(t, e.PaidOut)
	}

	unpaid, err := svc.UnpaidEarnings(ctx, author)
	require.NoError(t, err)
	assert.True(t, unpaid.IsZero())

	_, err = svc.RequestPayout(ctx, author, d("25"))
	assert.ErrorIs(t, err, errno.ErrPayoutNotEligible)

	_, err = svc.GetPayout(ctx, 9999)
	assert.ErrorIs(t, err, errno.ErrPayoutNotFound)
}

func TestSummaryAndListings(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := newService(db)
	ctx := context.Background()
	const author = 9

	addEarning(t, db, author, "40", time.Now().Add(-time.Hour))
	setDestination(t, svc, author, "author@example.com")

	_, err := svc.RequestPayout(ctx, author, d("30"))
	require.NoError(t, err)
	addEarning(t, db, author, "5", time.Now())

	sum, err := svc.Summary(ctx, author)
	require.NoError(t, err)
	assert.True(t, d("45").Equal(sum.Lifetime))
	assert.True(t, d("30").Equal(sum.InFlight))
	assert.True(t, sum.Paid.IsZero())
	assert.True(t, d("15").Equal(sum.Unpaid))
	assert.True(t, sum.HasDestination)
	assert.False(t, sum.CanRequest)

	earnings, total, err := svc.ListEarnings(ctx, author, model.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, earnings, 2)
	assert.True(t, d("5").Equal(earnings[0].NetAmount), "newest first")

	payouts, total, err := svc.ListPayouts(ctx, Filter{AuthorID: author, Status: model.PayoutPending}, model.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, payouts, 1)

	payouts, _, err = svc.ListPayouts(ctx, Filter{Status: model.PayoutCompleted}, model.Page{})
	require.NoError(t, err)
	assert.Empty(t, payouts)
}

func TestResubmit(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	failed := &model.Payout{
		AuthorID:        3,
		TotalAmount:     d("30"),
		Currency:        "USD",
		Status:          model.PayoutFailed,
		ProviderBatchID: "BATCH-X",
		FailureReason:   "receiver unregistered",
		RequestedAt:     time.Now(),
	}
	require.NoError(t, db.Create(failed).Error)

	p, err := svc.Resubmit(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PayoutPending, p.Status)
	assert.Empty(t, p.FailureReason)
	assert.Empty(t, p.ProviderBatchID)

	_, err = svc.Resubmit(ctx, failed.ID)
	assert.ErrorIs(t, err, errno.ErrPayoutNotRetryable)

	_, err = svc.Resubmit(ctx, 9999)
	assert.ErrorIs(t, err, errno.ErrPayoutNotFound)
}

func TestRunAutoPayouts(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := newService(db)
	ctx := context.Background()
	now := time.Now().UTC()
	auto := true

	// due: never paid
	addEarning(t, db, 1, "30", now.Add(-time.Hour))
	setDestination(t, svc, 1, "one@example.com")
	_, err := svc.UpdateSettings(ctx, 1, SettingsUpdate{AutoPayout: &auto})
	require.NoError(t, err)

	// not due: paid yesterday on a weekly schedule
	addEarning(t, db, 2, "30", now.Add(-time.Hour))
	setDestination(t, svc, 2, "two@example.com")
	weekly := model.FrequencyWeekly
	_, err = svc.UpdateSettings(ctx, 2, SettingsUpdate{AutoPayout: &auto, Frequency: &weekly})
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.PayoutSettings{}).Where("author_id = ?", 2).
		Update("last_payout_at", now.Add(-24*time.Hour)).Error)

	// below minimum
	addEarning(t, db, 3, "5", now.Add(-time.Hour))
	setDestination(t, svc, 3, "three@example.com")
	_, err = svc.UpdateSettings(ctx, 3, SettingsUpdate{AutoPayout: &auto})
	require.NoError(t, err)

	// auto payout off
	addEarning(t, db, 4, "50", now.Add(-time.Hour))
	setDestination(t, svc, 4, "four@example.com")

	created, err := svc.RunAutoPayouts(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	payouts, _, err := svc.ListPayouts(ctx, Filter{}, model.Page{})
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.EqualValues(t, 1, payouts[0].AuthorID)
	assert.True(t, d("30").Equal(payouts[0].TotalAmount))

	created, err = svc.RunAutoPayouts(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestResubmitAbandonedClaim(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	claimedAt := func(age time.Duration) *time.Time {
		at := time.Now().UTC().Add(-age)
		return &at
	}
	tests := []struct {
		name    string
		batchID string
		age     time.Duration
		wantErr error
	}{
		{name: "abandoned before the provider answered", age: StuckClaimAge + time.Minute},
		{name: "claim still in flight", age: time.Second, wantErr: errno.ErrPayoutNotRetryable},
		{name: "submitted and awaiting the provider", batchID: "BATCH-Q", age: time.Hour, wantErr: errno.ErrPayoutNotRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stuck := &model.Payout{
				AuthorID:        4,
				TotalAmount:     d("30"),
				Currency:        "USD",
				Status:          model.PayoutProcessing,
				ProviderBatchID: tt.batchID,
				RequestedAt:     time.Now(),
				ProcessedAt:     claimedAt(tt.age),
			}
			require.NoError(t, db.Create(stuck).Error)

			p, err := svc.Resubmit(ctx, stuck.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.PayoutPending, p.Status)
			assert.Nil(t, p.ProcessedAt)
		})
	}
}
