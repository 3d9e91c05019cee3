package purchase

import (
	"context"
	"fmt"
	"time"

	"credit-core/internal/event"
	"credit-core/internal/gateway"
	"credit-core/internal/model"
	"credit-core/internal/service/catalog"
	"credit-core/internal/service/notify"
	"credit-core/internal/service/wallet"
	"credit-core/pkg/database"
	"credit-core/pkg/errno"
	"credit-core/pkg/logger"
	"credit-core/pkg/monitor"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const uniquePaymentRef = "idx_purchases_payment_ref"

// VerifierSource resolves the payment verifier of a provider.
type VerifierSource interface {
	Verifier(provider model.PaymentProvider) (gateway.PaymentVerifier, error)
}

// RateInvalidator is told when completed purchases change the realized rate.
type RateInvalidator interface {
	Invalidate(ctx context.Context)
}

// Ledger turns verified external payments into wallet credit, at most once
// per payment reference.
type Ledger struct {
	db            *gorm.DB
	catalog       catalog.Catalog
	verifiers     VerifierSource
	rates         RateInvalidator
	notifier      notify.Notifier
	currency      string
	verifyTimeout time.Duration
}

type Options struct {
	Currency      string
	VerifyTimeout time.Duration
}

func NewLedger(db *gorm.DB, cat catalog.Catalog, verifiers VerifierSource, rates RateInvalidator, n notify.Notifier, opts Options) *Ledger {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.VerifyTimeout <= 0 {
		opts.VerifyTimeout = 15 * time.Second
	}
	return &Ledger{
		db:            db,
		catalog:       cat,
		verifiers:     verifiers,
		rates:         rates,
		notifier:      n,
		currency:      opts.Currency,
		verifyTimeout: opts.VerifyTimeout,
	}
}

// ConfirmPayment credits the package to the user once the provider confirms
// paymentRef. Replays of the same reference fail with ErrAlreadyProcessed.
func (l *Ledger) ConfirmPayment(ctx context.Context, userID, packageID uint64, paymentRef string, provider model.PaymentProvider) (*model.Purchase, error) {
	p, err := l.confirm(ctx, userID, packageID, paymentRef, provider)
	monitor.Business.PurchasesTotal.WithLabelValues(string(provider), confirmOutcome(err)).Inc()
	return p, err
}

func (l *Ledger) confirm(ctx context.Context, userID, packageID uint64, paymentRef string, provider model.PaymentProvider) (*model.Purchase, error) {
	if paymentRef == "" {
		return nil, errno.ErrBind
	}
	if !provider.Valid() {
		return nil, errno.ErrUnsupportedProvider
	}

	processed, err := l.exists(ctx, paymentRef)
	if err != nil {
		return nil, err
	}
	if processed {
		return nil, errno.ErrAlreadyProcessed
	}

	if _, err := l.catalog.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	pkg, err := l.catalog.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}

	if err := l.verify(ctx, provider, paymentRef); err != nil {
		return nil, err
	}

	purchase := &model.Purchase{
		UserID:          userID,
		CreditPackageID: pkg.ID,
		Amount:          pkg.PriceUSD,
		Currency:        l.currency,
		PaymentRef:      paymentRef,
		Provider:        provider,
		Status:          model.PurchaseCompleted,
		CreditsGranted:  pkg.CreditAmount,
		PurchasedAt:     time.Now().UTC(),
	}

	var balance int64
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := wallet.AddCreditsTx(tx, userID, pkg.CreditAmount)
		if err != nil {
			return err
		}
		balance = w.Balance

		if err := tx.Create(purchase).Error; err != nil {
			if database.IsUniqueViolation(err, uniquePaymentRef) {
				return errno.ErrAlreadyProcessed
			}
			return fmt.Errorf("insert purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitor.Business.CreditsPurchasedTotal.WithLabelValues(string(provider)).Add(float64(pkg.CreditAmount))
	logger.Info("purchase completed",
		zap.Uint64("purchase_id", purchase.ID),
		zap.Uint64("user_id", userID),
		zap.String("payment_ref", paymentRef),
		zap.Int64("credits", pkg.CreditAmount),
		zap.Int64("balance", balance))

	if l.rates != nil {
		l.rates.Invalidate(ctx)
	}
	msg := fmt.Sprintf("%d credits were added to your wallet.", pkg.CreditAmount)
	notify.Send(ctx, l.notifier, notify.Notification{
		UserID:     userID,
		Message:    msg,
		EntityType: event.EntityPurchase,
		EntityID:   purchase.ID,
	})
	return purchase, nil
}

// verify asks the provider under a bounded timeout. Transport failures are
// retryable and surface as ErrGatewayUnavailable.
func (l *Ledger) verify(ctx context.Context, provider model.PaymentProvider, paymentRef string) error {
	v, err := l.verifiers.Verifier(provider)
	if err != nil {
		return err
	}

	vctx, cancel := context.WithTimeout(ctx, l.verifyTimeout)
	defer cancel()

	ok, err := v.Verify(vctx, paymentRef)
	if err != nil {
		logger.Warn("payment verification failed",
			zap.String("provider", string(provider)),
			zap.String("payment_ref", paymentRef),
			zap.Error(err))
		return fmt.Errorf("%w: %v", errno.ErrGatewayUnavailable, err)
	}
	if !ok {
		return errno.ErrPaymentNotVerified
	}
	return nil
}

func (l *Ledger) exists(ctx context.Context, paymentRef string) (bool, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&model.Purchase{}).Where("payment_ref = ?", paymentRef).Count(&n).Error
	return n > 0, err
}

// ListPurchases returns the user's purchases, newest first.
func (l *Ledger) ListPurchases(ctx context.Context, userID uint64, page model.Page) ([]model.Purchase, int64, error) {
	q := l.db.WithContext(ctx).Model(&model.Purchase{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Bounds()
	var purchases []model.Purchase
	err := q.Order("purchased_at DESC, id DESC").Offset(offset).Limit(limit).Find(&purchases).Error
	return purchases, total, err
}

// ListActivePackages is the storefront view of the catalog.
func (l *Ledger) ListActivePackages(ctx context.Context) ([]model.CreditPackage, error) {
	return l.catalog.ListActivePackages(ctx)
}

func confirmOutcome(err error) string {
	if err == nil {
		return "completed"
	}
	switch errno.Lookup(err).Code {
	case errno.ErrAlreadyProcessed.Code:
		return "duplicate"
	case errno.ErrPaymentNotVerified.Code:
		return "not_verified"
	case errno.ErrGatewayUnavailable.Code:
		return "gateway_error"
	default:
		return "rejected"
	}
}
