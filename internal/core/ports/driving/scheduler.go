package driving

import "context"

// Scheduler rebuilds the index periodically.
type Scheduler interface {
	// Start runs scheduled rebuilds. Blocks until ctx ends or Stop is
	// called; returns at once when no interval is configured.
	Start(ctx context.Context) error

	// Stop ends the loop after any rebuild in progress.
	Stop() error
}
