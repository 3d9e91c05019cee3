package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "PENDING"
	PayoutProcessing PayoutStatus = "PROCESSING"
	PayoutCompleted  PayoutStatus = "COMPLETED"
	PayoutFailed     PayoutStatus = "FAILED"
)

func (s PayoutStatus) Valid() bool {
	switch s {
	case PayoutPending, PayoutProcessing, PayoutCompleted, PayoutFailed:
		return true
	}
	return false
}

func (s PayoutStatus) Terminal() bool {
	return s == PayoutCompleted || s == PayoutFailed
}

type PayoutFrequency string

const (
	FrequencyWeekly   PayoutFrequency = "WEEKLY"
	FrequencyBiweekly PayoutFrequency = "BIWEEKLY"
	FrequencyMonthly  PayoutFrequency = "MONTHLY"
	FrequencyManual   PayoutFrequency = "MANUAL"
)

func (f PayoutFrequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyManual:
		return true
	}
	return false
}

// NextDue returns when an automatic payout is next due after last.
// MANUAL never comes due; a zero last means "due now".
func (f PayoutFrequency) NextDue(last time.Time) (time.Time, bool) {
	if f == FrequencyManual {
		return time.Time{}, false
	}
	if last.IsZero() {
		return time.Time{}, true
	}
	switch f {
	case FrequencyWeekly:
		return last.AddDate(0, 0, 7), true
	case FrequencyBiweekly:
		return last.AddDate(0, 0, 14), true
	default:
		return last.AddDate(0, 1, 0), true
	}
}

// PayoutSettings holds one author's payout preferences.
type PayoutSettings struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID      uint64          `gorm:"not null;uniqueIndex:idx_payout_settings_author" json:"author_id"`
	MinimumPayout decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"minimum_payout"`
	Frequency     PayoutFrequency `gorm:"type:varchar(16);not null;default:'MONTHLY'" json:"frequency"`
	PayoutEmail   string          `gorm:"type:varchar(255);not null;default:''" json:"payout_email"`
	AutoPayout    bool            `gorm:"not null;default:false" json:"auto_payout"`
	LastPayoutAt  *time.Time      `json:"last_payout_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (s *PayoutSettings) HasDestination() bool {
	return s.PayoutEmail != ""
}

// Payout is one disbursement of settled earnings to an author.
type Payout struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID        uint64          `gorm:"not null;index" json:"author_id"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"total_amount"`
	PlatformFees    decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"platform_fees"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Status          PayoutStatus    `gorm:"type:varchar(16);not null;index" json:"status"`
	ProviderBatchID string          `gorm:"type:varchar(128);not null;default:''" json:"provider_batch_id"`
	FailureReason   string          `gorm:"type:text;not null;default:''" json:"failure_reason,omitempty"`
	Notes           string          `gorm:"type:text;not null;default:''" json:"notes,omitempty"`
	RequestedAt     time.Time       `gorm:"not null" json:"requested_at"`
	ProcessedAt     *time.Time      `json:"processed_at"`
	CompletedAt     *time.Time      `json:"completed_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Earnings []Earning `gorm:"foreignKey:PayoutID" json:"earnings,omitempty"`
}

func (PayoutSettings) TableName() string {
	return "payout_settings"
}

func (Payout) TableName() string {
	return "payouts"
}
