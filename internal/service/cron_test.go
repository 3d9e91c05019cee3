package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"credit-core/internal/service/payout"
	"credit-core/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLock struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func (l *memLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *memLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

type fakePasses struct {
	mu      sync.Mutex
	submits int
	polls   int
	autos   int
	err     error
}

func (f *fakePasses) SubmitPending(context.Context) (payout.PassStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	return payout.PassStats{Seen: 1, Processing: 1}, f.err
}

func (f *fakePasses) PollProcessing(context.Context) (payout.PassStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return payout.PassStats{Seen: 1, Completed: 1}, f.err
}

func (f *fakePasses) RunAutoPayouts(context.Context, time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.autos++
	return 2, f.err
}

func testPayoutConfig() config.PayoutConfig {
	return config.PayoutConfig{
		SubmitSpec:     "@every 1h",
		PollSpec:       "@every 20m",
		AutoPayoutSpec: "@daily",
		LockTTL:        time.Minute,
	}
}

func TestCronPassesRunUnderLock(t *testing.T) {
	locker := &memLock{}
	passes := &fakePasses{}
	svc := NewCronService(locker, passes, passes, testPayoutConfig())
	ctx := context.Background()

	assert.True(t, svc.RunSubmitPass(ctx))
	assert.True(t, svc.RunPollPass(ctx))
	assert.True(t, svc.RunAutoPayoutPass(ctx))
	assert.Equal(t, 1, passes.submits)
	assert.Equal(t, 1, passes.polls)
	assert.Equal(t, 1, passes.autos)
	assert.Empty(t, locker.held, "locks released")
}

func TestCronSkipsWhenLockHeld(t *testing.T) {
	locker := &memLock{held: map[string]bool{"cron:lock:" + JobSubmit: true}}
	passes := &fakePasses{}
	svc := NewCronService(locker, passes, passes, testPayoutConfig())

	assert.False(t, svc.RunSubmitPass(context.Background()))
	assert.Zero(t, passes.submits)

	assert.True(t, svc.RunPollPass(context.Background()))
	assert.Equal(t, 1, passes.polls)
}

func TestCronLockErrorsSkip(t *testing.T) {
	passes := &fakePasses{}
	svc := NewCronService(&memLock{err: errors.New("redis down")}, passes, passes, testPayoutConfig())

	assert.False(t, svc.RunPollPass(context.Background()))
	assert.Zero(t, passes.polls)
}

func TestCronJobErrorStillReleasesLock(t *testing.T) {
	locker := &memLock{}
	passes := &fakePasses{err: errors.New("db down")}
	svc := NewCronService(locker, passes, passes, testPayoutConfig())

	assert.True(t, svc.RunSubmitPass(context.Background()))
	assert.Empty(t, locker.held)
}

func TestCronStartRejectsBadSpec(t *testing.T) {
	cfg := testPayoutConfig()
	cfg.PollSpec = "every now and then"
	passes := &fakePasses{}
	svc := NewCronService(&memLock{}, passes, passes, cfg)

	err := svc.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobPoll)
}

func TestCronStartStop(t *testing.T) {
	passes := &fakePasses{}
	svc := NewCronService(&memLock{}, passes, passes, testPayoutConfig())
	require.NoError(t, svc.Start())
	svc.Stop()
}
