package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	OutboxPending = "PENDING"
	OutboxSent    = "SENT"
)

// OutboxMessage is a pending event for the relay to publish (transactional outbox).
type OutboxMessage struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string     `gorm:"type:varchar(255);not null" json:"topic"`
	Key       string     `gorm:"type:varchar(255);not null;default:''" json:"key"` // partition key
	EventID   string     `gorm:"type:char(64);not null;uniqueIndex:idx_outbox_event_id" json:"event_id"`
	Payload   []byte     `gorm:"type:text;not null" json:"payload"`
	Status    string     `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	Attempts  int        `gorm:"not null;default:0" json:"attempts"`
	LastError string     `gorm:"type:text;not null;default:''" json:"last_error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

// CreateOutboxMessage enqueues payload on topic. A message whose eventID
// already exists is dropped, so re-emitting the same event is harmless.
func CreateOutboxMessage(tx *gorm.DB, topic, key, eventID string, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := OutboxMessage{
		Topic:   topic,
		Key:     key,
		EventID: eventID,
		Payload: payloadBytes,
		Status:  OutboxPending,
	}

	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&msg).Error
}
