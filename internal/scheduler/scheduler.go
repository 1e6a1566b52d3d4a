package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/platform/logger"
)

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context) (*domain.RunReport, error)
}

// Options sets the daily trigger time in UTC
type Options struct {
	Hour          int
	Minute        int
	RunOnStartup  bool
	CheckInterval time.Duration
}

// Status describes the scheduled task
type Status struct {
	LastRun   time.Time `json:"last_run"`
	NextRun   time.Time `json:"next_run"`
	IsRunning bool      `json:"is_running"`
	LastError string    `json:"last_error,omitempty"`
}

// Scheduler triggers the runner once a day at a fixed UTC time
type Scheduler struct {
	runner Runner
	opts   Options
	now    func() time.Time
	log    *logger.Logger

	mutex  sync.Mutex
	status Status
}

// New creates a daily scheduler; out-of-range times fall back to 06:00
func New(runner Runner, opts Options, log *logger.Logger) *Scheduler {
	if opts.Hour < 0 || opts.Hour > 23 {
		log.Warn("invalid schedule hour, using default", "hour", opts.Hour, "default", 6)
		opts.Hour = 6
	}
	if opts.Minute < 0 || opts.Minute > 59 {
		log.Warn("invalid schedule minute, using default", "minute", opts.Minute, "default", 0)
		opts.Minute = 0
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = time.Minute
	}

	return &Scheduler{
		runner: runner,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log.With("component", "Scheduler"),
	}
}

// Start blocks, checking the clock every CheckInterval until ctx is done
func (s *Scheduler) Start(ctx context.Context) {
	s.mutex.Lock()
	s.status.NextRun = nextTimePoint(s.now(), s.opts.Hour, s.opts.Minute)
	next := s.status.NextRun
	s.mutex.Unlock()

	s.log.Info("scheduler started",
		"next_run", next.Format(time.RFC3339),
		"run_on_startup", s.opts.RunOnStartup,
		"check_interval", s.opts.CheckInterval.String(),
	)

	if s.opts.RunOnStartup {
		s.execute(ctx)
	}

	ticker := time.NewTicker(s.opts.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			if s.due() {
				s.execute(ctx)
				s.mutex.Lock()
				s.status.NextRun = nextTimePoint(s.now(), s.opts.Hour, s.opts.Minute)
				s.mutex.Unlock()
			}
		}
	}
}

// Status returns a snapshot of the task state
func (s *Scheduler) Status() Status {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.status
}

func (s *Scheduler) due() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return !s.status.IsRunning && !s.now().Before(s.status.NextRun)
}

func (s *Scheduler) execute(ctx context.Context) {
	s.mutex.Lock()
	s.status.IsRunning = true
	s.mutex.Unlock()

	start := s.now()
	report, err := s.runner.Run(ctx)

	s.mutex.Lock()
	s.status.IsRunning = false
	s.status.LastRun = start
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.mutex.Unlock()

	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		s.log.Info("skipping scheduled run, another run holds the lock")
	case err != nil:
		s.log.Error("scheduled run failed", "error", err)
	case report != nil:
		s.log.Info("scheduled run finished",
			"created", report.Sync.Created,
			"updated", report.Sync.Updated,
			"failed", report.Sync.Failed,
		)
	}
}

// nextTimePoint returns the first hour:minute strictly after now
func nextTimePoint(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
