package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
	"github.com/custodia-labs/cinedex/internal/core/ports/driving"
	"github.com/custodia-labs/cinedex/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// retryInitialInterval is the first delay after a failed scheduled rebuild.
const retryInitialInterval = 30 * time.Second

// Scheduler rebuilds the index every configured interval. The schedule is
// persisted so a restarted server keeps its cadence, and failed runs are
// retried with exponential backoff capped at the interval.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	index  driving.IndexService

	now        func() time.Time
	newBackOff func(interval time.Duration) backoff.BackOff

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(config domain.SchedulerConfig, store driven.SchedulerStore, index driving.IndexService) *Scheduler {
	return &Scheduler{
		config:     config,
		store:      store,
		index:      index,
		now:        time.Now,
		newBackOff: retryBackOff,
	}
}

// Start runs the schedule until ctx ends or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Active() {
		logger.Debug("Scheduled rebuilds disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	stop := make(chan struct{})
	s.stopCh = stop
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.stopCh = nil
		s.mu.Unlock()
	}()

	sched, err := s.load(ctx)
	if err != nil {
		return err
	}
	logger.Info("Rebuilding every %s, next at %s", sched.Interval, sched.NextRun.Format(time.RFC3339))

	bo := s.newBackOff(sched.Interval)
	timer := time.NewTimer(s.until(sched.NextRun))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-timer.C:
		}
		s.runOnce(ctx, sched, bo)
		timer.Reset(s.until(sched.NextRun))
	}
}

// Stop ends the loop after any rebuild in progress.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	return nil
}

// load returns the saved schedule, starting a new one when nothing was
// saved or the configured interval changed.
func (s *Scheduler) load(ctx context.Context) (*domain.RebuildSchedule, error) {
	interval := s.config.RebuildInterval

	sched, err := s.store.LoadSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rebuild schedule: %w", err)
	}
	switch {
	case sched == nil:
		sched = &domain.RebuildSchedule{Interval: interval, NextRun: s.now().Add(interval)}
	case sched.Interval != interval:
		sched.Interval = interval
		sched.NextRun = s.now().Add(interval)
	default:
		return sched, nil
	}

	if err := s.store.SaveSchedule(ctx, sched); err != nil {
		return nil, fmt.Errorf("save rebuild schedule: %w", err)
	}
	return sched, nil
}

// runOnce rebuilds and moves the schedule forward. A run interrupted by
// ctx leaves the schedule as it was.
func (s *Scheduler) runOnce(ctx context.Context, sched *domain.RebuildSchedule, bo backoff.BackOff) {
	logger.Section("Scheduled Rebuild")
	started := s.now()
	rec, err := s.index.Rebuild(ctx)
	if ctx.Err() != nil {
		return
	}

	sched.LastRun = started
	if err != nil {
		delay := bo.NextBackOff()
		if delay == backoff.Stop || delay > sched.Interval {
			delay = sched.Interval
		}
		sched.Failures++
		sched.LastError = err.Error()
		sched.NextRun = s.now().Add(delay)
		logger.Warn("Scheduled rebuild failed (%d in a row), retrying in %s: %v",
			sched.Failures, delay.Round(time.Second), err)
	} else {
		bo.Reset()
		sched.Failures = 0
		sched.LastError = ""
		sched.LastRunID = rec.RunID
		sched.NextRun = s.now().Add(sched.Interval)
		logger.Info("Scheduled rebuild committed %s, next at %s",
			rec.Generation, sched.NextRun.Format(time.RFC3339))
	}

	if err := s.store.SaveSchedule(context.WithoutCancel(ctx), sched); err != nil {
		logger.Error("scheduler: failed to save schedule: %v", err)
	}
}

func (s *Scheduler) until(t time.Time) time.Duration {
	return max(t.Sub(s.now()), 0)
}

func retryBackOff(interval time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(retryInitialInterval, interval)
	b.MaxInterval = interval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
