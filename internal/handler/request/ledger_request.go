package request

import "github.com/shopspring/decimal"

type ConfirmPurchaseRequest struct {
	PackageID  uint64 `json:"package_id" binding:"required"`
	PaymentRef string `json:"payment_ref" binding:"required,max=255"`
	Provider   string `json:"provider" binding:"required,oneof=STRIPE PAYPAL"`
}

type CreatePackageRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	CreditAmount int64           `json:"credit_amount" binding:"required,gt=0"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
}

type UpdatePackageRequest struct {
	CreditAmount int64           `json:"credit_amount" binding:"required,gt=0"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
}

type SetPackageActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
