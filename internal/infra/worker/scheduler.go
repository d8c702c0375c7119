// Package worker runs periodic maintenance jobs of the server on a cron
// schedule.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron schedules in one location. A job
// still running when its next tick fires is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	metrics *Metrics
	timeout time.Duration
	ready   atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// Options configures a Scheduler.
type Options struct {
	// Timezone is the IANA location schedules are evaluated in. Empty means UTC.
	Timezone string
	// JobTimeout bounds a single job run. Zero means one minute.
	JobTimeout time.Duration
	Logger     *slog.Logger
	Metrics    *Metrics
}

// NewScheduler returns a stopped scheduler.
func NewScheduler(opts Options) (*Scheduler, error) {
	loc := time.UTC
	if opts.Timezone != "" {
		l, err := time.LoadLocation(opts.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", opts.Timezone, err)
		}
		loc = l
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.JobTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:  logger,
		metrics: opts.Metrics,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Add registers job under name on a five field cron schedule.
func (s *Scheduler) Add(name, schedule string, job Job) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}
	s.logger.Info("job scheduled", slog.String("job", name), slog.String("schedule", schedule))
	return nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.ready.Store(true)
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.cron.Entries())))
}

// Ready reports whether the scheduler has been started and not stopped.
func (s *Scheduler) Ready() bool { return s.ready.Load() }

// Stop cancels running jobs and waits for them to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.ready.Store(false)
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}

// RunNow executes job synchronously with the scheduler's bookkeeping.
func (s *Scheduler) RunNow(name string, job Job) {
	s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) {
	start := time.Now()
	s.record(func(m *Metrics) { m.RecordJobRun(name, "started") })

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	err := job(ctx)
	elapsed := time.Since(start)
	s.record(func(m *Metrics) { m.RecordJobDuration(name, elapsed.Seconds()) })
	if err != nil {
		s.record(func(m *Metrics) { m.RecordJobRun(name, "failure") })
		s.logger.Error("job failed",
			slog.String("job", name),
			slog.Duration("duration", elapsed),
			slog.Any("error", err))
		return
	}
	s.record(func(m *Metrics) {
		m.RecordJobRun(name, "success")
		m.RecordLastSuccess(name)
	})
	s.logger.Debug("job completed", slog.String("job", name), slog.Duration("duration", elapsed))
}

func (s *Scheduler) record(fn func(*Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}
