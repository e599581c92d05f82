package domain

import "time"

// BuildState is the lifecycle state of an index build.
type BuildState string

// Build states.
const (
	BuildRunning   BuildState = "running"
	BuildCommitted BuildState = "committed"
	BuildFailed    BuildState = "failed"
	BuildCancelled BuildState = "cancelled"
	// BuildRetired marks a committed generation that has been replaced.
	BuildRetired BuildState = "retired"
)

// IsTerminal reports whether the state can no longer change except to retired.
func (s BuildState) IsTerminal() bool {
	return s != BuildRunning
}

// String returns the string representation.
func (s BuildState) String() string {
	return string(s)
}

// BuildRecord is one entry in the build catalog.
type BuildRecord struct {
	// RunID identifies the build attempt.
	RunID string `json:"run_id"`

	// Generation names the index directory the build wrote.
	Generation string `json:"generation"`

	State      BuildState `json:"state"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitzero"`

	TitleCount int `json:"title_count"`
	NameCount  int `json:"name_count"`

	// Stats holds per-dataset decode counters.
	Stats []DecodeStats `json:"stats,omitempty"`

	// Error is set for failed and cancelled builds.
	Error string `json:"error,omitempty"`
}

// Duration returns how long the build ran.
func (r BuildRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// IndexStatus describes the currently served index.
type IndexStatus struct {
	// Ready is true when a generation is being served.
	Ready bool `json:"ready"`

	// Generation is the served generation, if any.
	Generation string `json:"generation,omitempty"`

	TitleCount uint64 `json:"title_count"`
	NameCount  uint64 `json:"name_count"`

	// Building is true while a rebuild is in flight.
	Building bool `json:"building"`

	// LastBuild is the most recent catalog entry, if any.
	LastBuild *BuildRecord `json:"last_build,omitempty"`
}
