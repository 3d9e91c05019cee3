package payout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"credit-core/internal/event"
	"credit-core/internal/gateway"
	"credit-core/internal/model"
	"credit-core/internal/service/notify"
	"credit-core/pkg/logger"
	"credit-core/pkg/monitor"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	missingDestination = "no payout destination configured"
	missingBatch       = "provider accepted the payout without a batch id"

	// settleTimeout bounds the writes that finish a claimed payout.
	settleTimeout = 10 * time.Second
)

// Processor drives payouts through the payout gateway: the submit pass
// hands PENDING payouts to the provider, the poll pass reconciles
// PROCESSING ones against it. Both are safe to run concurrently.
type Processor struct {
	db       *gorm.DB
	gateway  gateway.PayoutGateway
	notifier notify.Notifier
	timeout  time.Duration
	batch    int
	note     string
}

type ProcessorOptions struct {
	GatewayTimeout time.Duration
	BatchSize      int
	Note           string
}

func NewProcessor(db *gorm.DB, gw gateway.PayoutGateway, n notify.Notifier, opts ProcessorOptions) *Processor {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = 30 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &Processor{
		db:       db,
		gateway:  gw,
		notifier: n,
		timeout:  opts.GatewayTimeout,
		batch:    opts.BatchSize,
		note:     opts.Note,
	}
}

// PassStats counts what one pass did.
type PassStats struct {
	Seen       int `json:"seen"`
	Completed  int `json:"completed"`
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

// SubmitPending submits every PENDING payout, oldest first, fetching
// BatchSize rows at a time until the queue is drained or ctx is done.
func (p *Processor) SubmitPending(ctx context.Context) (PassStats, error) {
	timer := prometheus.NewTimer(monitor.Business.SweepDuration.WithLabelValues("submit"))
	defer timer.ObserveDuration()

	var stats PassStats
	var lastID uint64
	for ctx.Err() == nil {
		var pending []model.Payout
		err := p.db.WithContext(ctx).
			Where("status = ? AND id > ?", model.PayoutPending, lastID).
			Order("id ASC").
			Limit(p.batch).
			Find(&pending).Error
		if err != nil {
			return stats, err
		}

		for i := range pending {
			if ctx.Err() != nil {
				break
			}
			lastID = pending[i].ID
			stats.Seen++
			status, err := p.submit(ctx, &pending[i])
			if err != nil {
				stats.Errors++
				logger.Error("payout submit failed", zap.Uint64("payout_id", pending[i].ID), zap.Error(err))
				continue
			}
			stats.count(status)
		}
		if len(pending) < p.batch {
			break
		}
	}
	return stats, ctx.Err()
}

// submit claims payout and hands it to the gateway. An empty status means
// another worker claimed it first.
func (p *Processor) submit(ctx context.Context, payout *model.Payout) (model.PayoutStatus, error) {
	now := time.Now().UTC()
	claim := p.db.WithContext(ctx).Model(&model.Payout{}).
		Where("id = ? AND status = ?", payout.ID, model.PayoutPending).
		Updates(map[string]interface{}{"status": model.PayoutProcessing, "processed_at": now})
	if claim.Error != nil {
		return "", fmt.Errorf("claim: %w", claim.Error)
	}
	if claim.RowsAffected == 0 {
		return "", nil
	}
	payout.Status = model.PayoutProcessing
	payout.ProcessedAt = &now

	// The claim is ours now. Its outcome is written even after ctx is
	// cancelled, otherwise it stays PROCESSING with no batch to poll.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	var settings model.PayoutSettings
	err := p.db.WithContext(wctx).Where("author_id = ?", payout.AuthorID).First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return p.fail(wctx, payout, "load payout settings: "+err.Error())
	}
	if !settings.HasDestination() {
		return p.fail(wctx, payout, missingDestination)
	}

	gctx, gcancel := context.WithTimeout(ctx, p.timeout)
	sub, err := p.gateway.CreatePayout(gctx, settings.PayoutEmail, payout.TotalAmount, payout.Currency, p.note)
	gcancel()
	if err != nil {
		return p.fail(wctx, payout, err.Error())
	}
	if sub == nil {
		return p.fail(wctx, payout, missingBatch)
	}

	next := SubmissionStatus(sub.Status)
	if next == model.PayoutProcessing && sub.BatchID == "" {
		return p.fail(wctx, payout, missingBatch)
	}

	updates := map[string]interface{}{
		"status":            next,
		"provider_batch_id": sub.BatchID,
	}
	switch next {
	case model.PayoutCompleted:
		updates["completed_at"] = time.Now().UTC()
	case model.PayoutFailed:
		reason := sub.Reason
		if reason == "" {
			reason = "provider rejected the payout"
		}
		updates["failure_reason"] = reason
	}

	if err := p.transition(wctx, payout, next, updates); err != nil {
		return "", fmt.Errorf("record submission of batch %q: %w", sub.BatchID, err)
	}
	return next, nil
}

// PollProcessing reconciles every PROCESSING payout that has a batch id
// with the provider. Errors are logged per payout and never abort the pass.
func (p *Processor) PollProcessing(ctx context.Context) (PassStats, error) {
	timer := prometheus.NewTimer(monitor.Business.SweepDuration.WithLabelValues("poll"))
	defer timer.ObserveDuration()

	var stats PassStats
	var lastID uint64
	for ctx.Err() == nil {
		var processing []model.Payout
		err := p.db.WithContext(ctx).
			Where("status = ? AND provider_batch_id <> '' AND id > ?", model.PayoutProcessing, lastID).
			Order("id ASC").
			Limit(p.batch).
			Find(&processing).Error
		if err != nil {
			return stats, err
		}

		for i := range processing {
			if ctx.Err() != nil {
				break
			}
			lastID = processing[i].ID
			stats.Seen++
			p.poll(ctx, &processing[i], &stats)
		}
		if len(processing) < p.batch {
			break
		}
	}
	return stats, ctx.Err()
}

func (p *Processor) poll(ctx context.Context, payout *model.Payout, stats *PassStats) {
	gctx, cancel := context.WithTimeout(ctx, p.timeout)
	provider, err := p.gateway.BatchStatus(gctx, payout.ProviderBatchID)
	cancel()
	if err != nil {
		stats.Errors++
		logger.Warn("payout poll failed",
			zap.Uint64("payout_id", payout.ID),
			zap.String("batch_id", payout.ProviderBatchID),
			zap.Error(err))
		return
	}

	next, changed := Reconcile(payout.Status, provider)
	if !changed {
		stats.count(model.PayoutProcessing)
		return
	}

	updates := map[string]interface{}{"status": next}
	if next == model.PayoutCompleted {
		updates["completed_at"] = gorm.Expr("COALESCE(completed_at, ?)", time.Now().UTC())
	} else {
		updates["failure_reason"] = fmt.Sprintf("provider reported batch %s", provider)
	}

	wctx, wcancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer wcancel()
	if err := p.transition(wctx, payout, next, updates); err != nil {
		stats.Errors++
		logger.Error("payout reconcile failed", zap.Uint64("payout_id", payout.ID), zap.Error(err))
		return
	}
	stats.count(next)
}

// fail moves a claimed payout to FAILED with reason.
func (p *Processor) fail(ctx context.Context, payout *model.Payout, reason string) (model.PayoutStatus, error) {
	updates := map[string]interface{}{
		"status":         model.PayoutFailed,
		"failure_reason": reason,
	}
	if err := p.transition(ctx, payout, model.PayoutFailed, updates); err != nil {
		return "", err
	}
	return model.PayoutFailed, nil
}

// transition applies updates only while the payout is still PROCESSING and
// tells the author about terminal outcomes.
func (p *Processor) transition(ctx context.Context, payout *model.Payout, next model.PayoutStatus, updates map[string]interface{}) error {
	res := p.db.WithContext(ctx).Model(&model.Payout{}).
		Where("id = ? AND status = ?", payout.ID, model.PayoutProcessing).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update payout %d: %w", payout.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		logger.Warn("payout moved concurrently", zap.Uint64("payout_id", payout.ID))
		return nil
	}

	monitor.Business.PayoutTransitionsTotal.WithLabelValues(string(next)).Inc()
	logger.Info("payout transitioned",
		zap.Uint64("payout_id", payout.ID),
		zap.String("from", string(payout.Status)),
		zap.String("to", string(next)))

	payout.Status = next
	if !next.Terminal() {
		return nil
	}

	amount := payout.TotalAmount.StringFixed(2)
	msg := fmt.Sprintf("Your payout of %s %s has been sent.", amount, payout.Currency)
	if next == model.PayoutFailed {
		reason, _ := updates["failure_reason"].(string)
		msg = fmt.Sprintf("Your payout of %s %s failed: %s", amount, payout.Currency, reason)
	}
	notify.Send(ctx, p.notifier, notify.Notification{
		UserID:     payout.AuthorID,
		Message:    msg,
		EntityType: event.EntityPayout,
		EntityID:   payout.ID,
		Occurrence: attempt(payout, next),
	})
	return nil
}

// attempt identifies one submission of payout: each resubmit gets a new
// processed_at.
func attempt(payout *model.Payout, status model.PayoutStatus) string {
	if payout.ProcessedAt == nil {
		return string(status)
	}
	return string(status) + "@" + strconv.FormatInt(payout.ProcessedAt.UnixMicro(), 10)
}

func (s *PassStats) count(status model.PayoutStatus) {
	switch status {
	case model.PayoutCompleted:
		s.Completed++
	case model.PayoutFailed:
		s.Failed++
	case model.PayoutProcessing:
		s.Processing++
	default:
		s.Skipped++
	}
}
