package service

import (
	"context"
	"fmt"
	"time"

	"credit-core/internal/service/payout"
	"credit-core/pkg/config"
	"credit-core/pkg/logger"
	"credit-core/pkg/utils/lock"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PayoutPasses is the submit/poll side of the payout pipeline.
type PayoutPasses interface {
	SubmitPending(ctx context.Context) (payout.PassStats, error)
	PollProcessing(ctx context.Context) (payout.PassStats, error)
}

// AutoPayouts creates payouts for authors on an automatic schedule.
type AutoPayouts interface {
	RunAutoPayouts(ctx context.Context, now time.Time) (int, error)
}

const (
	JobSubmit = "payout_submit"
	JobPoll   = "payout_poll"
	JobAuto   = "payout_auto"
)

// CronService runs the payout passes on their schedules. Each job takes a
// distributed lock first so only one instance runs it at a time.
type CronService struct {
	cron      *cron.Cron
	locker    lock.DistributedLock
	processor PayoutPasses
	payouts   AutoPayouts
	cfg       config.PayoutConfig
}

func NewCronService(locker lock.DistributedLock, processor PayoutPasses, payouts AutoPayouts, cfg config.PayoutConfig) *CronService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &CronService{
		cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		locker:    locker,
		processor: processor,
		payouts:   payouts,
		cfg:       cfg,
	}
}

func (s *CronService) Start() error {
	jobs := []struct {
		spec string
		name string
		run  func(context.Context) error
	}{
		{s.cfg.SubmitSpec, JobSubmit, s.submit},
		{s.cfg.PollSpec, JobPoll, s.poll},
		{s.cfg.AutoPayoutSpec, JobAuto, s.auto},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		name, run := j.name, j.run
		if _, err := s.cron.AddFunc(j.spec, func() { s.Trigger(context.Background(), name, run) }); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", name, j.spec, err)
		}
	}

	s.cron.Start()
	logger.Info("Cron service started",
		zap.String("submit", s.cfg.SubmitSpec),
		zap.String("poll", s.cfg.PollSpec),
		zap.String("auto", s.cfg.AutoPayoutSpec))
	return nil
}

// Stop waits for running jobs to finish.
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Cron service stopped")
}

func (s *CronService) RunSubmitPass(ctx context.Context) bool {
	return s.Trigger(ctx, JobSubmit, s.submit)
}

func (s *CronService) RunPollPass(ctx context.Context) bool {
	return s.Trigger(ctx, JobPoll, s.poll)
}

func (s *CronService) RunAutoPayoutPass(ctx context.Context) bool {
	return s.Trigger(ctx, JobAuto, s.auto)
}

// Trigger runs job under its lock. It returns false when another holder
// has the lock and the run was skipped.
func (s *CronService) Trigger(ctx context.Context, job string, run func(context.Context) error) bool {
	key := "cron:lock:" + job
	locked, err := s.locker.Acquire(ctx, key, s.cfg.LockTTL)
	if err != nil {
		logger.Warn("cron: lock unavailable", zap.String("job", job), zap.Error(err))
		return false
	}
	if !locked {
		logger.Debug("cron: job already running elsewhere", zap.String("job", job))
		return false
	}
	defer func() {
		if err := s.locker.Release(context.Background(), key); err != nil {
			logger.Warn("cron: lock release failed", zap.String("job", job), zap.Error(err))
		}
	}()

	if err := run(ctx); err != nil {
		logger.Error("cron: job failed", zap.String("job", job), zap.Error(err))
	}
	return true
}

func (s *CronService) submit(ctx context.Context) error {
	stats, err := s.processor.SubmitPending(ctx)
	if err != nil {
		return err
	}
	logPass(JobSubmit, stats)
	return nil
}

func (s *CronService) poll(ctx context.Context) error {
	stats, err := s.processor.PollProcessing(ctx)
	if err != nil {
		return err
	}
	logPass(JobPoll, stats)
	return nil
}

func (s *CronService) auto(ctx context.Context) error {
	created, err := s.payouts.RunAutoPayouts(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if created > 0 {
		logger.Info("cron: auto payouts created", zap.Int("count", created))
	}
	return nil
}

func logPass(job string, stats payout.PassStats) {
	if stats.Seen == 0 {
		return
	}
	logger.Info("cron: pass finished",
		zap.String("job", job),
		zap.Int("seen", stats.Seen),
		zap.Int("completed", stats.Completed),
		zap.Int("processing", stats.Processing),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors))
}
