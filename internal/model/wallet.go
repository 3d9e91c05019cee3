package model

import "time"

// Wallet holds a user's spendable credits. One row per user, created lazily.
type Wallet struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_wallets_user_id" json:"user_id"`
	Balance   int64     `gorm:"not null;default:0;check:chk_wallets_balance_non_negative,balance >= 0" json:"balance"`
	Version   uint64    `gorm:"not null;default:0" json:"version"` // bumped on every balance change
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}
