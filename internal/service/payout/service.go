package payout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"credit-core/internal/event"
	"credit-core/internal/model"
	"credit-core/internal/service/notify"
	"credit-core/pkg/errno"
	"credit-core/pkg/logger"
	"credit-core/pkg/monitor"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service is the author-facing side of payouts: balances, settings and
// payout requests.
type Service struct {
	db             *gorm.DB
	notifier       notify.Notifier
	defaultMinimum decimal.Decimal
	currency       string
}

func NewService(db *gorm.DB, n notify.Notifier, defaultMinimum decimal.Decimal, currency string) *Service {
	if currency == "" {
		currency = "USD"
	}
	return &Service{db: db, notifier: n, defaultMinimum: defaultMinimum, currency: currency}
}

// GetSettings returns the author's settings, creating defaults on first access.
func (s *Service) GetSettings(ctx context.Context, authorID uint64) (*model.PayoutSettings, error) {
	return s.ensureSettings(s.db.WithContext(ctx), authorID, false)
}

// SettingsUpdate changes only the fields that are set.
type SettingsUpdate struct {
	MinimumPayout *decimal.Decimal
	Frequency     *model.PayoutFrequency
	PayoutEmail   *string
	AutoPayout    *bool
}

func (s *Service) UpdateSettings(ctx context.Context, authorID uint64, upd SettingsUpdate) (*model.PayoutSettings, error) {
	if upd.MinimumPayout != nil && !upd.MinimumPayout.IsPositive() {
		return nil, errno.ErrInvalidSettings
	}
	if upd.Frequency != nil && !upd.Frequency.Valid() {
		return nil, errno.ErrInvalidSettings
	}
	if upd.PayoutEmail != nil && *upd.PayoutEmail != "" && !strings.Contains(*upd.PayoutEmail, "@") {
		return nil, errno.ErrInvalidSettings
	}

	var settings *model.PayoutSettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		settings, err = s.ensureSettings(tx, authorID, true)
		if err != nil {
			return err
		}
		if upd.MinimumPayout != nil {
			settings.MinimumPayout = *upd.MinimumPayout
		}
		if upd.Frequency != nil {
			settings.Frequency = *upd.Frequency
		}
		if upd.PayoutEmail != nil {
			settings.PayoutEmail = strings.TrimSpace(*upd.PayoutEmail)
		}
		if upd.AutoPayout != nil {
			settings.AutoPayout = *upd.AutoPayout
		}
		return tx.Save(settings).Error
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UnpaidEarnings is lifetime net earnings minus every payout ever created,
// whatever its status.
func (s *Service) UnpaidEarnings(ctx context.Context, authorID uint64) (decimal.Decimal, error) {
	return s.unpaid(s.db.WithContext(ctx), authorID)
}

// CanRequestPayout reports whether the author has a destination and an
// unpaid balance at or above their minimum.
func (s *Service) CanRequestPayout(ctx context.Context, authorID uint64) (bool, error) {
	settings, err := s.GetSettings(ctx, authorID)
	if err != nil {
		return false, err
	}
	unpaid, err := s.UnpaidEarnings(ctx, authorID)
	if err != nil {
		return false, err
	}
	return eligible(settings, unpaid), nil
}

// RequestPayout creates a PENDING payout of amount and settles every
// unpaid earning against it. Requests of one author serialize on the
// settings row.
func (s *Service) RequestPayout(ctx context.Context, authorID uint64, amount decimal.Decimal) (*model.Payout, error) {
	if !amount.IsPositive() {
		return nil, errno.ErrInvalidAmount
	}

	var payout model.Payout
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings, err := s.ensureSettings(tx, authorID, true)
		if err != nil {
			return err
		}
		unpaid, err := s.unpaid(tx, authorID)
		if err != nil {
			return err
		}

		switch {
		case !eligible(settings, unpaid):
			return errno.ErrPayoutNotEligible
		case amount.GreaterThan(unpaid):
			return errno.ErrPayoutExceedsBalance
		case amount.LessThan(settings.MinimumPayout):
			return errno.ErrPayoutBelowMinimum
		}

		var earnings []model.Earning
		err = tx.Where("author_id = ? AND paid_out = ?", authorID, false).
			Order("earned_at ASC, id ASC").
			Find(&earnings).Error
		if err != nil {
			return err
		}

		fees := decimal.Zero
		ids := make([]uint64, 0, len(earnings))
		for _, e := range earnings {
			fees = fees.Add(e.PlatformFee)
			ids = append(ids, e.ID)
		}

		now := time.Now().UTC()
		payout = model.Payout{
			AuthorID:     authorID,
			TotalAmount:  amount,
			PlatformFees: fees,
			Currency:     s.currency,
			Status:       model.PayoutPending,
			RequestedAt:  now,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return fmt.Errorf("create payout: %w", err)
		}

		if len(ids) > 0 {
			res := tx.Model(&model.Earning{}).
				Where("id IN ? AND paid_out = ?", ids, false).
				Updates(map[string]interface{}{"paid_out": true, "payout_id": payout.ID})
			if res.Error != nil {
				return fmt.Errorf("attach earnings: %w", res.Error)
			}
			if res.RowsAffected != int64(len(ids)) {
				return fmt.Errorf("attach earnings: %d of %d still unpaid", res.RowsAffected, len(ids))
			}
		}

		return tx.Model(settings).Update("last_payout_at", now).Error
	})
	if err != nil {
		return nil, err
	}

	monitor.Business.PayoutsRequestedTotal.Inc()
	logger.Info("payout requested",
		zap.Uint64("payout_id", payout.ID),
		zap.Uint64("author_id", authorID),
		zap.String("amount", amount.String()))

	msg := fmt.Sprintf("Your payout of %s %s has been requested.", amount.StringFixed(2), payout.Currency)
	notify.Send(ctx, s.notifier, notify.Notification{
		UserID:     authorID,
		Message:    msg,
		EntityType: event.EntityPayout,
		EntityID:   payout.ID,
		Occurrence: string(model.PayoutPending),
	})
	return &payout, nil
}

// Filter narrows ListPayouts; zero fields match everything.
type Filter struct {
	AuthorID uint64
	Status   model.PayoutStatus
}

func (s *Service) ListPayouts(ctx context.Context, f Filter, page model.Page) ([]model.Payout, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Payout{})
	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Bounds()
	var payouts []model.Payout
	err := q.Order("requested_at DESC, id DESC").Offset(offset).Limit(limit).Find(&payouts).Error
	return payouts, total, err
}

// GetPayout loads a payout with the earnings it settled.
func (s *Service) GetPayout(ctx context.Context, id uint64) (*model.Payout, error) {
	var p model.Payout
	err := s.db.WithContext(ctx).
		Preload("Earnings", func(db *gorm.DB) *gorm.DB { return db.Order("earned_at ASC, id ASC") }).
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.ErrPayoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Summary is the author's earnings dashboard.
type Summary struct {
	AuthorID       uint64          `json:"author_id"`
	Lifetime       decimal.Decimal `json:"lifetime"`
	Paid           decimal.Decimal `json:"paid"`
	InFlight       decimal.Decimal `json:"in_flight"`
	Unpaid         decimal.Decimal `json:"unpaid"`
	MinimumPayout  decimal.Decimal `json:"minimum_payout"`
	HasDestination bool            `json:"has_destination"`
	CanRequest     bool            `json:"can_request"`
	Currency       string          `json:"currency"`
}

func (s *Service) Summary(ctx context.Context, authorID uint64) (*Summary, error) {
	settings, err := s.GetSettings(ctx, authorID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	lifetime, err := sumEarnings(db, authorID)
	if err != nil {
		return nil, err
	}
	paid, err := sumPayouts(db, authorID, model.PayoutCompleted)
	if err != nil {
		return nil, err
	}
	inFlight, err := sumPayouts(db, authorID, model.PayoutPending, model.PayoutProcessing)
	if err != nil {
		return nil, err
	}
	all, err := sumPayouts(db, authorID)
	if err != nil {
		return nil, err
	}
	unpaid := lifetime.Sub(all)

	return &Summary{
		AuthorID:       authorID,
		Lifetime:       lifetime,
		Paid:           paid,
		InFlight:       inFlight,
		Unpaid:         unpaid,
		MinimumPayout:  settings.MinimumPayout,
		HasDestination: settings.HasDestination(),
		CanRequest:     eligible(settings, unpaid),
		Currency:       s.currency,
	}, nil
}

// ListEarnings returns the author's earnings, newest first.
func (s *Service) ListEarnings(ctx context.Context, authorID uint64, page model.Page) ([]model.Earning, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Earning{}).Where("author_id = ?", authorID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Bounds()
	var earnings []model.Earning
	err := q.Order("earned_at DESC, id DESC").Offset(offset).Limit(limit).Find(&earnings).Error
	return earnings, total, err
}

// StuckClaimAge is how long a claimed payout may stay PROCESSING without a
// provider batch id before Resubmit treats it as abandoned.
const StuckClaimAge = 15 * time.Minute

// Resubmit puts a FAILED payout, or a claim abandoned before the provider
// returned a batch id, back in the submit queue.
func (s *Service) Resubmit(ctx context.Context, payoutID uint64) (*model.Payout, error) {
	stale := time.Now().UTC().Add(-StuckClaimAge)
	res := s.db.WithContext(ctx).Model(&model.Payout{}).
		Where("id = ?", payoutID).
		Where(s.db.Where("status = ?", model.PayoutFailed).
			Or("status = ? AND provider_batch_id = '' AND processed_at < ?", model.PayoutProcessing, stale)).
		Updates(map[string]interface{}{
			"status":            model.PayoutPending,
			"failure_reason":    "",
			"provider_batch_id": "",
			"processed_at":      nil,
			"completed_at":      nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	p, err := s.GetPayout(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, errno.ErrPayoutNotRetryable
	}
	logger.Info("payout resubmitted", zap.Uint64("payout_id", payoutID))
	return p, nil
}

// RunAutoPayouts requests the full unpaid balance for every author with
// auto payout on whose frequency says a payout is due at now.
func (s *Service) RunAutoPayouts(ctx context.Context, now time.Time) (int, error) {
	var candidates []model.PayoutSettings
	err := s.db.WithContext(ctx).
		Where("auto_payout = ? AND payout_email <> '' AND frequency <> ?", true, model.FrequencyManual).
		Order("author_id ASC").
		Find(&candidates).Error
	if err != nil {
		return 0, err
	}

	created := 0
	for _, st := range candidates {
		var last time.Time
		if st.LastPayoutAt != nil {
			last = *st.LastPayoutAt
		}
		due, ok := st.Frequency.NextDue(last)
		if !ok || due.After(now) {
			continue
		}

		unpaid, err := s.UnpaidEarnings(ctx, st.AuthorID)
		if err != nil {
			logger.Error("auto payout: unpaid lookup failed", zap.Uint64("author_id", st.AuthorID), zap.Error(err))
			continue
		}
		if !eligible(&st, unpaid) {
			continue
		}

		if _, err := s.RequestPayout(ctx, st.AuthorID, unpaid); err != nil {
			logger.Warn("auto payout: request failed", zap.Uint64("author_id", st.AuthorID), zap.Error(err))
			continue
		}
		created++
	}
	return created, nil
}

// ensureSettings loads the settings row, inserting defaults when missing.
// With lock the row is held FOR UPDATE until the transaction ends.
func (s *Service) ensureSettings(db *gorm.DB, authorID uint64, lock bool) (*model.PayoutSettings, error) {
	fresh := model.PayoutSettings{
		AuthorID:      authorID,
		MinimumPayout: s.defaultMinimum,
		Frequency:     model.FrequencyMonthly,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "author_id"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return nil, fmt.Errorf("create payout settings: %w", err)
	}

	q := db
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var settings model.PayoutSettings
	if err := q.Where("author_id = ?", authorID).First(&settings).Error; err != nil {
		return nil, fmt.Errorf("load payout settings: %w", err)
	}
	return &settings, nil
}

func (s *Service) unpaid(db *gorm.DB, authorID uint64) (decimal.Decimal, error) {
	lifetime, err := sumEarnings(db, authorID)
	if err != nil {
		return decimal.Zero, err
	}
	paidOut, err := sumPayouts(db, authorID)
	if err != nil {
		return decimal.Zero, err
	}
	return lifetime.Sub(paidOut), nil
}

func eligible(settings *model.PayoutSettings, unpaid decimal.Decimal) bool {
	return settings.HasDestination() && unpaid.GreaterThanOrEqual(settings.MinimumPayout)
}

type sumRow struct {
	Total decimal.Decimal
}

func sumEarnings(db *gorm.DB, authorID uint64) (decimal.Decimal, error) {
	var row sumRow
	err := db.Model(&model.Earning{}).
		Select("COALESCE(SUM(net_amount), 0) AS total").
		Where("author_id = ?", authorID).
		Scan(&row).Error
	return row.Total, err
}

// sumPayouts totals the author's payouts in any of statuses, or all of them.
func sumPayouts(db *gorm.DB, authorID uint64, statuses ...model.PayoutStatus) (decimal.Decimal, error) {
	q := db.Model(&model.Payout{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("author_id = ?", authorID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var row sumRow
	err := q.Scan(&row).Error
	return row.Total, err
}
