package service

import (
	"context"
	"time"

	"credit-core/internal/model"
	"credit-core/internal/service/mq"
	"credit-core/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RelayService moves outbox messages to the broker. Delivery is
// at-least-once: a message is marked SENT only after Publish succeeds.
type RelayService struct {
	db       *gorm.DB
	producer mq.Producer
	interval time.Duration
	batch    int
}

func NewRelayService(db *gorm.DB, producer mq.Producer) *RelayService {
	return &RelayService{
		db:       db,
		producer: producer,
		interval: 500 * time.Millisecond,
		batch:    50,
	}
}

func (s *RelayService) Start(ctx context.Context) {
	logger.Info("Relay service started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Relay service stopped")
			return
		case <-ticker.C:
			if _, err := s.RelayOnce(ctx); err != nil {
				logger.Error("Relay: load pending messages failed", zap.Error(err))
			}
		}
	}
}

// RelayOnce publishes one batch of pending messages, oldest first, and
// returns how many were sent.
func (s *RelayService) RelayOnce(ctx context.Context) (int, error) {
	var messages []model.OutboxMessage
	err := s.db.WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("id ASC").
		Limit(s.batch).
		Find(&messages).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range messages {
		msg := &messages[i]
		if err := s.producer.Publish(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			logger.Warn("Relay: publish failed", zap.Uint64("id", msg.ID), zap.Error(err))
			s.db.WithContext(ctx).Model(msg).Updates(map[string]interface{}{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": err.Error(),
			})
			continue
		}

		now := time.Now().UTC()
		err := s.db.WithContext(ctx).Model(msg).Updates(map[string]interface{}{
			"status":  model.OutboxSent,
			"sent_at": now,
		}).Error
		if err != nil {
			// Sent again on the next tick; consumers dedupe by event_id.
			logger.Warn("Relay: mark sent failed", zap.Uint64("id", msg.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
