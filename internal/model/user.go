package model

import "time"

// User is the slice of the platform account the ledger reads.
type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(255);not null;unique" json:"username"`
	Email     string    `gorm:"type:varchar(255);not null;unique" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Chapter is the priced content unit. The catalog service owns it; the
// ledger only reads price, author and title.
type Chapter struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BookID    uint64    `gorm:"not null;index" json:"book_id"`
	AuthorID  uint64    `gorm:"not null;index" json:"author_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Price     int64     `gorm:"not null;default:0" json:"price"` // credits
	IsLocked  bool      `gorm:"not null;default:false" json:"is_locked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (Chapter) TableName() string {
	return "chapters"
}
