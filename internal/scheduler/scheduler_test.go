package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/platform/logger"
)

type countingRunner struct {
	calls int32
	err   error
}

func (r *countingRunner) Run(ctx context.Context) (*domain.RunReport, error) {
	atomic.AddInt32(&r.calls, 1)
	if r.err != nil {
		return nil, r.err
	}
	return &domain.RunReport{Sync: domain.SyncReport{Created: 1}}, nil
}

func (r *countingRunner) count() int32 { return atomic.LoadInt32(&r.calls) }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func TestNextTimePoint(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2024, 5, 1, 5, 30, 0, 0, time.UTC),
			want: time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC),
		},
		{
			name: "already passed",
			now:  time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC),
			want: time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly now",
			now:  time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC),
			want: time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextTimePoint(tt.now, 6, 0))
		})
	}
}

func TestNew_InvalidTimeFallsBack(t *testing.T) {
	s := New(&countingRunner{}, Options{Hour: 25, Minute: 99}, logger.NewNop())

	assert.Equal(t, 6, s.opts.Hour)
	assert.Equal(t, 0, s.opts.Minute)
	assert.Equal(t, time.Minute, s.opts.CheckInterval)
}

func TestScheduler_RunsOnStartupAndDaily(t *testing.T) {
	runner := &countingRunner{}
	clock := &fakeClock{t: time.Date(2024, 5, 1, 5, 59, 0, 0, time.UTC)}

	s := New(runner, Options{Hour: 6, Minute: 0, RunOnStartup: true, CheckInterval: 5 * time.Millisecond}, logger.NewNop())
	s.now = clock.Now

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runner.count() == 1 }, time.Second, time.Millisecond)

	// not due yet
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runner.count())

	clock.Set(time.Date(2024, 5, 1, 6, 0, 30, 0, time.UTC))
	require.Eventually(t, func() bool { return runner.count() == 2 }, time.Second, time.Millisecond)

	// next run moves to the following day
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(2), runner.count())
	require.Eventually(t, func() bool {
		return s.Status().NextRun.Equal(time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC))
	}, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestScheduler_NoStartupRun(t *testing.T) {
	runner := &countingRunner{}
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	s := New(runner, Options{Hour: 6, CheckInterval: 5 * time.Millisecond}, logger.NewNop())
	s.now = clock.Now

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	assert.Equal(t, int32(0), runner.count())
	assert.Equal(t, time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC), s.Status().NextRun)
}

func TestScheduler_RecordsLastError(t *testing.T) {
	runner := &countingRunner{err: domain.ErrClassifierFailure}
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	s := New(runner, Options{Hour: 6, RunOnStartup: true, CheckInterval: time.Hour}, logger.NewNop())
	s.now = clock.Now

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Start(ctx)

	status := s.Status()
	assert.Equal(t, int32(1), runner.count())
	assert.Equal(t, domain.ErrClassifierFailure.Error(), status.LastError)
	assert.False(t, status.IsRunning)
	assert.Equal(t, clock.Now(), status.LastRun)
}
