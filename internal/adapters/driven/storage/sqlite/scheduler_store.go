package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore on a single-row table.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// LoadSchedule returns nil and no error if no schedule was saved.
func (s *schedulerStore) LoadSchedule(ctx context.Context) (*domain.RebuildSchedule, error) {
	var sched domain.RebuildSchedule
	var intervalSeconds int64
	var nextRun, lastRun, lastRunID, lastError sql.NullString

	err := s.store.db.QueryRowContext(ctx, `
		SELECT interval_seconds, next_run, last_run, last_run_id, last_error, failures
		FROM rebuild_schedule WHERE id = 1
	`).Scan(&intervalSeconds, &nextRun, &lastRun, &lastRunID, &lastError, &sched.Failures)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading rebuild schedule: %w", err)
	}

	sched.Interval = time.Duration(intervalSeconds) * time.Second
	sched.NextRun = parseNullableTime(nextRun)
	sched.LastRun = parseNullableTime(lastRun)
	sched.LastRunID = lastRunID.String
	sched.LastError = lastError.String
	return &sched, nil
}

// SaveSchedule replaces the saved schedule. Intervals are kept to the second.
func (s *schedulerStore) SaveSchedule(ctx context.Context, sched *domain.RebuildSchedule) error {
	if sched == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO rebuild_schedule (id, interval_seconds, next_run, last_run, last_run_id, last_error, failures)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			interval_seconds = excluded.interval_seconds,
			next_run = excluded.next_run,
			last_run = excluded.last_run,
			last_run_id = excluded.last_run_id,
			last_error = excluded.last_error,
			failures = excluded.failures
	`, int64(sched.Interval/time.Second),
		formatNullableTime(sched.NextRun), formatNullableTime(sched.LastRun),
		nullString(sched.LastRunID), nullString(sched.LastError), sched.Failures)
	if err != nil {
		return fmt.Errorf("saving rebuild schedule: %w", err)
	}
	return nil
}
