package unlock

import (
	"context"
	"errors"
	"time"

	"credit-core/internal/model"
	"credit-core/pkg/cache"
	"credit-core/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rateCacheKey = "ledger:usd_per_credit"

// Rate sources, most authoritative first.
const (
	SourceRealized = "realized"
	SourceCatalog  = "catalog"
	SourceDefault  = "default"
)

// Rate is the USD value of one credit.
type Rate struct {
	USDPerCredit decimal.Decimal `json:"usd_per_credit"`
	Source       string          `json:"source"`
}

// RateProvider derives the credit exchange rate from what users actually
// paid, falling back to list prices and then to the configured rate.
type RateProvider struct {
	db       *gorm.DB
	cache    cache.Cache
	ttl      time.Duration
	fallback decimal.Decimal
}

// NewRateProvider caches through c when it is non-nil.
func NewRateProvider(db *gorm.DB, c cache.Cache, ttl time.Duration, fallback decimal.Decimal) *RateProvider {
	return &RateProvider{db: db, cache: c, ttl: ttl, fallback: fallback}
}

func (r *RateProvider) CurrentRate(ctx context.Context) (Rate, error) {
	if r.cache != nil {
		var cached Rate
		if err := r.cache.Get(ctx, rateCacheKey, &cached); err == nil && cached.USDPerCredit.IsPositive() {
			return cached, nil
		}
	}

	rate, err := r.compute(ctx)
	if err != nil {
		return Rate{}, err
	}

	if r.cache != nil && r.ttl > 0 {
		if err := r.cache.Set(ctx, rateCacheKey, rate, r.ttl); err != nil {
			logger.Warn("rate cache set failed", zap.Error(err))
		}
	}
	return rate, nil
}

// Invalidate drops the cached rate; called after a purchase completes.
func (r *RateProvider) Invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, rateCacheKey); err != nil && !errors.Is(err, cache.ErrMiss) {
		logger.Warn("rate cache invalidate failed", zap.Error(err))
	}
}

// Totals is a money sum over a credit count.
type Totals struct {
	Amount  decimal.Decimal
	Credits int64
}

func (r *RateProvider) compute(ctx context.Context) (Rate, error) {
	db := r.db.WithContext(ctx)

	var realized Totals
	err := db.Model(&model.Purchase{}).
		Select("COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(credits_granted), 0) AS credits").
		Where("status = ?", model.PurchaseCompleted).
		Scan(&realized).Error
	if err != nil {
		return Rate{}, err
	}

	var listed Totals
	err = db.Model(&model.CreditPackage{}).
		Select("COALESCE(SUM(price_usd), 0) AS amount, COALESCE(SUM(credit_amount), 0) AS credits").
		Where("active = ? AND price_usd > 0 AND credit_amount > 0", true).
		Scan(&listed).Error
	if err != nil {
		return Rate{}, err
	}

	return SelectRate(realized, listed, r.fallback), nil
}

// SelectRate picks the realized average whenever it is positive, else the
// catalog average, else fallback.
func SelectRate(realized, listed Totals, fallback decimal.Decimal) Rate {
	if rate, ok := average(realized); ok {
		return Rate{USDPerCredit: rate, Source: SourceRealized}
	}
	if rate, ok := average(listed); ok {
		return Rate{USDPerCredit: rate, Source: SourceCatalog}
	}
	return Rate{USDPerCredit: fallback, Source: SourceDefault}
}

func average(s Totals) (decimal.Decimal, bool) {
	if s.Credits <= 0 || !s.Amount.IsPositive() {
		return decimal.Zero, false
	}
	return s.Amount.Div(decimal.NewFromInt(s.Credits)), true
}
