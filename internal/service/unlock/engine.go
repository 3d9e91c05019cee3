package unlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"credit-core/internal/event"
	"credit-core/internal/model"
	"credit-core/internal/service/catalog"
	"credit-core/internal/service/notify"
	"credit-core/internal/service/wallet"
	"credit-core/pkg/database"
	"credit-core/pkg/errno"
	"credit-core/pkg/logger"
	"credit-core/pkg/monitor"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const uniqueUnlock = "idx_unlock_user_chapter"

// Rater supplies the current credit exchange rate.
type Rater interface {
	CurrentRate(ctx context.Context) (Rate, error)
}

// Engine spends credits on chapters and books the author's share.
type Engine struct {
	db         *gorm.DB
	catalog    catalog.Catalog
	rates      Rater
	notifier   notify.Notifier
	feePercent decimal.Decimal
	currency   string
}

func NewEngine(db *gorm.DB, cat catalog.Catalog, rates Rater, n notify.Notifier, feePercent decimal.Decimal, currency string) *Engine {
	return &Engine{
		db:         db,
		catalog:    cat,
		rates:      rates,
		notifier:   n,
		feePercent: feePercent,
		currency:   currency,
	}
}

// Result is a completed unlock.
type Result struct {
	Unlock  model.UnlockRecord `json:"unlock"`
	Earning model.Earning      `json:"earning"`
	Balance int64              `json:"balance"`
}

// UnlockChapter debits the chapter price from the reader and records the
// unlock and the author's earning in one transaction.
func (e *Engine) UnlockChapter(ctx context.Context, userID, chapterID uint64) (*Result, error) {
	res, err := e.unlock(ctx, userID, chapterID)
	monitor.Business.UnlocksTotal.WithLabelValues(outcome(err)).Inc()
	return res, err
}

func (e *Engine) unlock(ctx context.Context, userID, chapterID uint64) (*Result, error) {
	chapter, err := e.catalog.GetChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if !chapter.IsLocked || chapter.Price <= 0 {
		return nil, errno.ErrChapterNotLocked
	}

	unlocked, err := e.IsUnlocked(ctx, userID, chapterID)
	if err != nil {
		return nil, err
	}
	if unlocked {
		return nil, errno.ErrAlreadyUnlocked
	}

	rate, err := e.rates.CurrentRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("exchange rate: %w", err)
	}
	split := SplitEarnings(chapter.Price, rate.USDPerCredit, e.feePercent)

	var res Result
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := wallet.DeductCreditsTx(tx, userID, chapter.Price)
		if err != nil {
			return err
		}
		res.Balance = w.Balance

		now := time.Now().UTC()
		res.Unlock = model.UnlockRecord{
			UserID:       userID,
			ChapterID:    &chapter.ID,
			ChapterTitle: chapter.Title,
			AuthorID:     chapter.AuthorID,
			Cost:         chapter.Price,
			UnlockedAt:   now,
		}
		if err := tx.Create(&res.Unlock).Error; err != nil {
			if database.IsUniqueViolation(err, uniqueUnlock) {
				return errno.ErrAlreadyUnlocked
			}
			return fmt.Errorf("insert unlock: %w", err)
		}

		res.Earning = model.Earning{
			AuthorID:           chapter.AuthorID,
			ChapterID:          &chapter.ID,
			UnlockRecordID:     &res.Unlock.ID,
			ChapterTitle:       chapter.Title,
			Credits:            chapter.Price,
			GrossAmount:        split.Gross,
			PlatformFeePercent: split.FeePercent,
			PlatformFee:        split.Fee,
			NetAmount:          split.Net,
			Currency:           e.currency,
			EarnedAt:           now,
		}
		if err := tx.Create(&res.Earning).Error; err != nil {
			return fmt.Errorf("insert earning: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitor.Business.CreditsSpentTotal.Add(float64(chapter.Price))
	monitor.Business.EarningsNetTotal.Add(split.Net.InexactFloat64())
	logger.Info("chapter unlocked",
		zap.Uint64("user_id", userID),
		zap.Uint64("chapter_id", chapterID),
		zap.Int64("cost", chapter.Price),
		zap.String("rate", rate.USDPerCredit.String()),
		zap.String("rate_source", rate.Source),
		zap.String("net", split.Net.String()))

	msg := fmt.Sprintf("A reader unlocked %q. You earned %s %s.", chapter.Title, split.Net.StringFixed(2), e.currency)
	notify.Send(ctx, e.notifier, notify.Notification{
		UserID:     chapter.AuthorID,
		Message:    msg,
		EntityType: event.EntityEarning,
		EntityID:   res.Earning.ID,
	})
	return &res, nil
}

func (e *Engine) IsUnlocked(ctx context.Context, userID, chapterID uint64) (bool, error) {
	var n int64
	err := e.db.WithContext(ctx).Model(&model.UnlockRecord{}).
		Where("user_id = ? AND chapter_id = ?", userID, chapterID).
		Count(&n).Error
	return n > 0, err
}

// ListUnlocks returns the user's unlocks, newest first.
func (e *Engine) ListUnlocks(ctx context.Context, userID uint64, page model.Page) ([]model.UnlockRecord, int64, error) {
	q := e.db.WithContext(ctx).Model(&model.UnlockRecord{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Bounds()
	var records []model.UnlockRecord
	err := q.Order("unlocked_at DESC, id DESC").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errno.ErrInsufficientCredits):
		return "insufficient"
	case errors.Is(err, errno.ErrAlreadyUnlocked):
		return "duplicate"
	case errors.Is(err, errno.ErrChapterNotLocked), errno.IsNotFound(err):
		return "rejected"
	default:
		return "error"
	}
}
