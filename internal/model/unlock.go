package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnlockRecord grants a user permanent access to one chapter. ChapterID is
// nulled when the chapter is deleted; the snapshot columns keep history readable.
type UnlockRecord struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint64    `gorm:"not null;uniqueIndex:idx_unlock_user_chapter,priority:1" json:"user_id"`
	ChapterID    *uint64   `gorm:"uniqueIndex:idx_unlock_user_chapter,priority:2" json:"chapter_id"`
	ChapterTitle string    `gorm:"type:varchar(255);not null;default:''" json:"chapter_title"`
	AuthorID     uint64    `gorm:"not null" json:"author_id"`
	Cost         int64     `gorm:"not null" json:"cost"` // credits
	UnlockedAt   time.Time `gorm:"not null" json:"unlocked_at"`
}

// Earning is an author's commission-split share of one unlock. Amounts are
// fixed at creation: Gross = PlatformFee + NetAmount.
type Earning struct {
	ID                 uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID           uint64          `gorm:"not null;index:idx_earnings_author_paid,priority:1" json:"author_id"`
	ChapterID          *uint64         `gorm:"index" json:"chapter_id"`
	UnlockRecordID     *uint64         `gorm:"index" json:"unlock_record_id"`
	ChapterTitle       string          `gorm:"type:varchar(255);not null;default:''" json:"chapter_title"`
	Credits            int64           `gorm:"not null" json:"credits"`
	GrossAmount        decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"gross_amount"`
	PlatformFeePercent decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"platform_fee_percent"`
	PlatformFee        decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"platform_fee"`
	NetAmount          decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"net_amount"`
	Currency           string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	EarnedAt           time.Time       `gorm:"not null;index" json:"earned_at"`
	PaidOut            bool            `gorm:"not null;default:false;index:idx_earnings_author_paid,priority:2" json:"paid_out"`
	PayoutID           *uint64         `gorm:"index" json:"payout_id,omitempty"`
}

func (UnlockRecord) TableName() string {
	return "unlock_records"
}

func (Earning) TableName() string {
	return "earnings"
}
