package handler

import (
	"context"
	"strconv"
	"time"

	"credit-core/internal/handler/response"
	"credit-core/internal/model"
	"credit-core/internal/service/payout"
	"credit-core/internal/service/unlock"
	"credit-core/pkg/errno"
	"credit-core/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CallerHeader carries the authenticated user id set by the API gateway.
const CallerHeader = "X-User-ID"

type WalletReader interface {
	GetBalance(ctx context.Context, userID uint64) (int64, error)
}

type PurchaseLedger interface {
	ConfirmPayment(ctx context.Context, userID, packageID uint64, paymentRef string, provider model.PaymentProvider) (*model.Purchase, error)
	ListPurchases(ctx context.Context, userID uint64, page model.Page) ([]model.Purchase, int64, error)
	ListActivePackages(ctx context.Context) ([]model.CreditPackage, error)
}

type PackageAdmin interface {
	CreatePackage(ctx context.Context, name string, credits int64, price decimal.Decimal) (*model.CreditPackage, error)
	UpdatePricing(ctx context.Context, id uint64, credits int64, price decimal.Decimal) (*model.CreditPackage, error)
	SetActive(ctx context.Context, id uint64, active bool) error
}

type Unlocker interface {
	UnlockChapter(ctx context.Context, userID, chapterID uint64) (*unlock.Result, error)
	IsUnlocked(ctx context.Context, userID, chapterID uint64) (bool, error)
	ListUnlocks(ctx context.Context, userID uint64, page model.Page) ([]model.UnlockRecord, int64, error)
}

type RateSource interface {
	CurrentRate(ctx context.Context) (unlock.Rate, error)
}

type Payouts interface {
	GetSettings(ctx context.Context, authorID uint64) (*model.PayoutSettings, error)
	UpdateSettings(ctx context.Context, authorID uint64, upd payout.SettingsUpdate) (*model.PayoutSettings, error)
	RequestPayout(ctx context.Context, authorID uint64, amount decimal.Decimal) (*model.Payout, error)
	ListPayouts(ctx context.Context, f payout.Filter, page model.Page) ([]model.Payout, int64, error)
	GetPayout(ctx context.Context, id uint64) (*model.Payout, error)
	Summary(ctx context.Context, authorID uint64) (*payout.Summary, error)
	ListEarnings(ctx context.Context, authorID uint64, page model.Page) ([]model.Earning, int64, error)
	Resubmit(ctx context.Context, payoutID uint64) (*model.Payout, error)
}

// PassRunner triggers scheduler passes on demand; false means skipped
// because another instance holds the job lock.
type PassRunner interface {
	RunSubmitPass(ctx context.Context) bool
	RunPollPass(ctx context.Context) bool
	RunAutoPayoutPass(ctx context.Context) bool
}

// Handler serves the ledger API.
type Handler struct {
	Wallets  WalletReader
	Ledger   PurchaseLedger
	Packages PackageAdmin
	Unlocks  Unlocker
	Rates    RateSource
	Payouts  Payouts
	Passes   PassRunner
}

// callerID reads the caller from CallerHeader.
func callerID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.GetHeader(CallerHeader), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, errno.ErrUnauthenticated)
		return 0, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BindError(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func pageOf(c *gin.Context) model.Page {
	var p model.Page
	_ = c.ShouldBindQuery(&p)
	return p
}

func paged(items interface{}, total int64, p model.Page) response.Paged {
	offset, limit := p.Bounds()
	return response.Paged{Items: items, Total: total, Page: offset/limit + 1, Size: limit}
}

func bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.BindError(c, validator.GetErrorMsg(err))
		return false
	}
	return true
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "UP",
		"service": "credit-server",
		"time":    time.Now().UTC(),
	})
}
