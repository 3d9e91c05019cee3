package request

import "github.com/shopspring/decimal"

type RequestPayoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// UpdatePayoutSettingsRequest changes only the fields present in the body.
// An empty payout_email clears the destination.
type UpdatePayoutSettingsRequest struct {
	MinimumPayout *decimal.Decimal `json:"minimum_payout"`
	Frequency     *string          `json:"frequency" binding:"omitempty,oneof=WEEKLY BIWEEKLY MONTHLY MANUAL"`
	PayoutEmail   *string          `json:"payout_email" binding:"omitempty,max=255"`
	AutoPayout    *bool            `json:"auto_payout"`
}

type ListPayoutsQuery struct {
	AuthorID uint64 `form:"author_id"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING PROCESSING COMPLETED FAILED"`
	Page     int    `form:"page"`
	Size     int    `form:"size"`
}
