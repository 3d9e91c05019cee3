package notify

import (
	"context"
	"strconv"
	"time"

	"credit-core/internal/event"
	"credit-core/internal/model"
	"credit-core/pkg/crypto_util"
	"credit-core/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notification is one user-facing message about an entity.
type Notification struct {
	UserID     uint64
	Message    string
	EntityType string
	EntityID   uint64
	// Occurrence tells repeated events about the same entity apart, e.g. a
	// payout failing again after a resubmit. Empty for one-off events.
	Occurrence string
}

// Notifier hands a notification to the delivery pipeline.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// OutboxNotifier writes notifications to the outbox table; RelayService
// moves them to the broker.
type OutboxNotifier struct {
	db    *gorm.DB
	topic string
}

func NewOutboxNotifier(db *gorm.DB) *OutboxNotifier {
	return &OutboxNotifier{db: db, topic: event.TopicNotifications}
}

// EventID derives the outbox event id of n. Equal ids collapse to one message.
func EventID(n Notification) string {
	return crypto_util.Fingerprint("notification",
		strconv.FormatUint(n.UserID, 10),
		n.EntityType,
		strconv.FormatUint(n.EntityID, 10),
		n.Occurrence,
		n.Message)
}

// Notify is idempotent per (user, entity, occurrence, message).
func (o *OutboxNotifier) Notify(ctx context.Context, n Notification) error {
	uid := strconv.FormatUint(n.UserID, 10)
	eventID := EventID(n)

	evt := event.NotificationEvent{
		EventID:    eventID,
		UserID:     n.UserID,
		Message:    n.Message,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		CreatedAt:  time.Now().UTC(),
	}
	return model.CreateOutboxMessage(o.db.WithContext(ctx), o.topic, uid, eventID, evt)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }

// Send delivers best-effort: a failure is logged and never returned.
func Send(ctx context.Context, notifier Notifier, n Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		logger.Warn("notification dropped",
			zap.Uint64("user_id", n.UserID),
			zap.String("entity_type", n.EntityType),
			zap.Uint64("entity_id", n.EntityID),
			zap.Error(err))
	}
}
