package event

import "time"

// Topic: booksocial_notifications
const TopicNotifications = "booksocial_notifications"

// Entity types a notification can point at.
const (
	EntityPurchase = "purchase"
	EntityUnlock   = "unlock"
	EntityEarning  = "earning"
	EntityPayout   = "payout"
)

// NotificationEvent asks the delivery service to tell a user something.
type NotificationEvent struct {
	EventID    string    `json:"event_id"`
	UserID     uint64    `json:"user_id"`
	Message    string    `json:"message"`
	EntityType string    `json:"entity_type"`
	EntityID   uint64    `json:"entity_id"`
	CreatedAt  time.Time `json:"created_at"`
}
