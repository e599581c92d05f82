// Package watch rebuilds the index when dataset files in the data directory
// change. Bursts of file events are coalesced by a debounce window, rebuilds
// are rate limited, and failed rebuilds are retried with exponential backoff.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/cinedex/internal/adapters/driven/dataset/filesystem"
	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/logger"
)

// Defaults applied to zero Options fields.
const (
	DefaultMinInterval    = time.Minute
	DefaultMaxRetryWindow = 10 * time.Minute
)

// Rebuilder starts an index rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*domain.BuildRecord, error)
}

// Options tunes a Watcher.
type Options struct {
	// Debounce is the quiet period after the last relevant event.
	Debounce time.Duration

	// MinInterval is the minimum time between two rebuild attempts.
	MinInterval time.Duration

	// NewBackOff returns the retry policy for one triggered rebuild.
	// Nil means exponential backoff capped at DefaultMaxRetryWindow.
	NewBackOff func() backoff.BackOff

	// Match reports whether a file name is worth a rebuild.
	// Nil means filesystem.IsDatasetFile.
	Match func(name string) bool
}

// Watcher turns dataset file changes into index rebuilds.
type Watcher struct {
	dir       string
	rebuilder Rebuilder
	opts      Options
	limiter   *rate.Limiter
}

// New creates a watcher over dir.
func New(dir string, rebuilder Rebuilder, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = domain.DefaultWatchDebounce
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	if opts.NewBackOff == nil {
		opts.NewBackOff = defaultBackOff
	}
	if opts.Match == nil {
		opts.Match = filesystem.IsDatasetFile
	}
	return &Watcher{
		dir:       dir,
		rebuilder: rebuilder,
		opts:      opts,
		limiter:   rate.NewLimiter(rate.Every(opts.MinInterval), 1),
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = time.Minute
	b.MaxElapsedTime = DefaultMaxRetryWindow
	return b
}

// Run watches until ctx is cancelled. Rebuilds run on the watcher goroutine;
// events arriving meanwhile schedule one more rebuild once it finishes.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("watching %s for dataset changes (debounce %s)", w.dir, w.opts.Debounce)

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-timer.C:
			if err := w.trigger(ctx); err != nil && ctx.Err() == nil {
				logger.Error("rebuild after dataset change failed: %v", err)
			}
		}
	}
}

// handleEvent reports whether the event should schedule a rebuild.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if !w.opts.Match(name) {
		return false
	}
	logger.Debug("dataset event %s on %s", event.Op, name)
	return true
}

// trigger waits for the rate limiter and rebuilds, retrying transient failures.
func (w *Watcher) trigger(ctx context.Context) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	operation := func() error {
		rec, err := w.rebuilder.Rebuild(ctx)
		if err == nil {
			logger.Info("rebuilt generation %s after dataset change", rec.Generation)
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		logger.Warn("rebuild failed, will retry: %v", err)
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(w.opts.NewBackOff(), ctx))
}

// retryable reports whether a failed rebuild may succeed later. A missing
// dataset is usually a file in the middle of being replaced.
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, domain.ErrBuildCancelled), errors.Is(err, domain.ErrSchemaViolation):
		return false
	default:
		return true
	}
}
