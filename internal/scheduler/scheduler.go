package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one run of a periodic task.
type Job func(ctx context.Context) error

// Scheduler runs a job immediately on start and then once per interval
// until stopped or its context is cancelled. Runs never overlap.
type Scheduler struct {
	logger    *zap.Logger
	name      string
	interval  time.Duration
	job       Job
	stopCh    chan struct{}
	doneCh    chan struct{}
	isRunning bool
	mu        sync.RWMutex
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(logger *zap.Logger, name string, interval time.Duration, job Job) *Scheduler {
	doneCh := make(chan struct{})
	close(doneCh)

	return &Scheduler{
		logger:   logger.With(zap.String("job", name)),
		name:     name,
		interval: interval,
		job:      job,
		stopCh:   make(chan struct{}),
		doneCh:   doneCh,
	}
}

// Start begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSchedulerAlreadyRunning
	}

	s.isRunning = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(ctx, s.stopCh, s.doneCh)

	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.isRunning = false
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.logger.Info("Scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Done is closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doneCh
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	defer func() {
		s.mu.Lock()
		if s.stopCh == stopCh {
			s.isRunning = false
		}
		s.mu.Unlock()
	}()

	s.execute(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context canceled")
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.execute(ctx)
		}
	}
}

// execute runs the job once. Runs longer than a second are bounded by the
// interval so a stuck run cannot starve the next tick.
func (s *Scheduler) execute(ctx context.Context) {
	if s.interval > time.Second {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.interval)
		defer cancel()
	}

	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error("Scheduled run failed", zap.Error(err))
		return
	}
	s.logger.Debug("Scheduled run completed", zap.Duration("duration", time.Since(start)))
}
