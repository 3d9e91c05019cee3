package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "STRIPE"
	ProviderPaypal PaymentProvider = "PAYPAL"
)

func (p PaymentProvider) Valid() bool {
	return p == ProviderStripe || p == ProviderPaypal
}

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "PENDING"
	PurchaseCompleted PurchaseStatus = "COMPLETED"
	PurchaseFailed    PurchaseStatus = "FAILED"
)

// CreditPackage is a purchasable bundle of credits.
type CreditPackage struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	CreditAmount int64           `gorm:"not null;check:chk_credit_packages_credits_positive,credit_amount > 0" json:"credit_amount"`
	PriceUSD     decimal.Decimal `gorm:"type:numeric(19,4);not null;check:chk_credit_packages_price_positive,price_usd > 0" json:"price_usd"`
	Active       bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Purchase records one confirmed real-money transaction. PaymentRef is the
// provider's payment id and the idempotency key of the confirmation.
type Purchase struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint64          `gorm:"not null;index" json:"user_id"`
	CreditPackageID uint64          `gorm:"not null;index" json:"credit_package_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"amount"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	PaymentRef      string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_purchases_payment_ref" json:"payment_ref"`
	Provider        PaymentProvider `gorm:"type:varchar(16);not null" json:"provider"`
	Status          PurchaseStatus  `gorm:"type:varchar(16);not null;index" json:"status"`
	CreditsGranted  int64           `gorm:"not null" json:"credits_granted"`
	PurchasedAt     time.Time       `gorm:"not null" json:"purchased_at"`
}

func (CreditPackage) TableName() string {
	return "credit_packages"
}

func (Purchase) TableName() string {
	return "purchases"
}
