package domain

import "time"

// SchedulerConfig controls periodic index rebuilds.
type SchedulerConfig struct {
	// Enabled is the master switch.
	Enabled bool

	// RebuildInterval is the time between scheduled rebuilds. Zero disables them.
	RebuildInterval time.Duration
}

// Active reports whether rebuilds should be scheduled at all.
func (c SchedulerConfig) Active() bool {
	return c.Enabled && c.RebuildInterval > 0
}

// DefaultSchedulerConfig returns the scheduler defaults. Periodic rebuilds
// are off until an interval is configured.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{Enabled: true}
}

// RebuildSchedule is the persisted state of periodic rebuilds, kept so a
// restarted server keeps its cadence.
type RebuildSchedule struct {
	Interval time.Duration
	NextRun  time.Time
	LastRun  time.Time

	// LastRunID is the build run of the last successful scheduled rebuild.
	LastRunID string

	// LastError is the error of the last run; empty after a success.
	LastError string

	// Failures counts consecutive failed runs.
	Failures int
}

// Due reports whether a run is due at now.
func (s *RebuildSchedule) Due(now time.Time) bool {
	return s.NextRun.IsZero() || !s.NextRun.After(now)
}
