package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
	"github.com/custodia-labs/cinedex/internal/core/ports/driving"
	"github.com/custodia-labs/cinedex/internal/logger"
)

// Ensure IndexService implements the interfaces.
var (
	_ driving.IndexService = (*IndexService)(nil)
	_ ReaderLeaser         = (*IndexService)(nil)
)

const rebuildFlightKey = "rebuild"

// generation is one committed index. Queries hold the read lock for their
// whole duration; retiring takes the write lock, so a generation is closed
// only after its last query has finished.
type generation struct {
	mu      sync.RWMutex
	reader  driven.IndexReader
	record  domain.BuildRecord
	retired bool
}

// IndexService builds index generations and serves the committed one.
type IndexService struct {
	composer *Composer
	builder  driven.IndexBuilder
	catalog  driven.BuildCatalog

	current  atomic.Pointer[generation]
	flight   singleflight.Group
	building atomic.Bool

	// buildCtx bounds every shared build; Close cancels it.
	buildCtx    context.Context
	cancelBuild context.CancelFunc
	mu          sync.Mutex
	closed      bool
	builds      sync.WaitGroup

	now           func() time.Time
	newRunID      func() string
	newGeneration func() string
}

// NewIndexService creates a new index service.
func NewIndexService(composer *Composer, builder driven.IndexBuilder, catalog driven.BuildCatalog) *IndexService {
	buildCtx, cancel := context.WithCancel(context.Background())
	return &IndexService{
		composer:      composer,
		builder:       builder,
		catalog:       catalog,
		buildCtx:      buildCtx,
		cancelBuild:   cancel,
		now:           time.Now,
		newRunID:      uuid.NewString,
		newGeneration: func() string { return ulid.Make().String() },
	}
}

// Open serves the last committed generation recorded in the catalog and
// removes generations left behind by interrupted builds.
func (s *IndexService) Open(ctx context.Context) error {
	logger.Section("Open Index")

	rec, err := s.catalog.LatestCommitted(ctx)
	if err != nil {
		return fmt.Errorf("read build catalog: %w", err)
	}

	serving := ""
	if rec == nil {
		logger.Info("No committed index yet")
	} else {
		reader, err := s.builder.Open(ctx, rec.Generation)
		if err != nil {
			return fmt.Errorf("open generation %s: %w", rec.Generation, err)
		}
		s.install(&generation{reader: reader, record: *rec})
		serving = rec.Generation
		logger.Info("Serving generation %s (%d titles, %d names)", rec.Generation, rec.TitleCount, rec.NameCount)
	}

	s.removeOrphans(serving)
	return nil
}

// WithReader runs fn against the served generation under a read lease.
func (s *IndexService) WithReader(ctx context.Context, fn func(driven.IndexReader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g, err := s.acquire()
	if err != nil {
		return err
	}
	defer g.mu.RUnlock()
	return fn(g.reader)
}

// acquire returns the current generation with its read lock held.
func (s *IndexService) acquire() (*generation, error) {
	for {
		g := s.current.Load()
		if g == nil {
			return nil, domain.ErrIndexUnavailable
		}
		g.mu.RLock()
		if !g.retired {
			return g, nil
		}
		// Swapped between Load and RLock; the next Load sees the successor.
		g.mu.RUnlock()
	}
}

// Rebuild ingests every dataset into a new generation and swaps it in.
// Concurrent callers share the in-flight build. A caller whose context ends
// stops waiting without affecting the build, which only Close cancels.
func (s *IndexService) Rebuild(ctx context.Context) (*domain.BuildRecord, error) {
	ch := s.flight.DoChan(rebuildFlightKey, func() (any, error) {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return domain.BuildRecord{}, fmt.Errorf("%w: index service closed", domain.ErrBuildCancelled)
		}
		s.builds.Add(1)
		s.mu.Unlock()
		defer s.builds.Done()

		return s.rebuild(s.buildCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrBuildCancelled, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		rec := res.Val.(domain.BuildRecord)
		return &rec, nil
	}
}

func (s *IndexService) rebuild(ctx context.Context) (domain.BuildRecord, error) {
	s.building.Store(true)
	defer s.building.Store(false)

	rec := domain.BuildRecord{
		RunID:      s.newRunID(),
		Generation: s.newGeneration(),
		State:      domain.BuildRunning,
		StartedAt:  s.now(),
	}
	logger.Section("Rebuild")
	logger.Info("Build %s writing generation %s", rec.RunID, rec.Generation)

	if err := s.catalog.SaveBuild(ctx, &rec); err != nil {
		return rec, fmt.Errorf("record build start: %w", err)
	}

	comp, err := s.composer.Compose(ctx)
	if err != nil {
		return rec, s.fail(ctx, &rec, fmt.Errorf("compose: %w", err))
	}
	rec.Stats = comp.Stats

	reader, err := s.builder.Build(ctx, rec.Generation, comp.Titles(), comp.Names())
	if err != nil {
		return rec, s.fail(ctx, &rec, fmt.Errorf("build index: %w", err))
	}

	titles, names, err := reader.Counts()
	if err != nil {
		_ = reader.Close()
		_ = s.builder.Remove(rec.Generation)
		return rec, s.fail(ctx, &rec, fmt.Errorf("count documents: %w", err))
	}
	rec.TitleCount = int(titles)
	rec.NameCount = int(names)
	rec.State = domain.BuildCommitted
	rec.FinishedAt = s.now()

	if err := s.catalog.SaveBuild(context.WithoutCancel(ctx), &rec); err != nil {
		_ = reader.Close()
		_ = s.builder.Remove(rec.Generation)
		return rec, fmt.Errorf("record build commit: %w", err)
	}

	s.install(&generation{reader: reader, record: rec})
	logger.Info("Committed generation %s in %s: %d titles, %d names",
		rec.Generation, rec.Duration().Round(time.Millisecond), rec.TitleCount, rec.NameCount)
	return rec, nil
}

// fail records a failed or cancelled build. The served generation is untouched.
func (s *IndexService) fail(ctx context.Context, rec *domain.BuildRecord, err error) error {
	rec.FinishedAt = s.now()
	rec.State = domain.BuildFailed
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		rec.State = domain.BuildCancelled
		if !errors.Is(err, domain.ErrBuildCancelled) {
			err = fmt.Errorf("%w: %w", domain.ErrBuildCancelled, err)
		}
	}
	rec.Error = err.Error()

	if saveErr := s.catalog.SaveBuild(context.WithoutCancel(ctx), rec); saveErr != nil {
		logger.Warn("Failed to record build %s outcome: %v", rec.RunID, saveErr)
	}
	logger.Error("Build %s %s: %v", rec.RunID, rec.State, err)
	return err
}

// install makes g the served generation and retires its predecessor.
func (s *IndexService) install(g *generation) {
	old := s.current.Swap(g)
	if old == nil {
		return
	}
	s.retire(old, true)

	old.record.State = domain.BuildRetired
	if err := s.catalog.SaveBuild(context.Background(), &old.record); err != nil {
		logger.Warn("Failed to mark generation %s retired: %v", old.record.Generation, err)
	}
}

// retire waits for in-flight queries on g, closes it and optionally deletes it.
func (s *IndexService) retire(g *generation, remove bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.retired = true
	if err := g.reader.Close(); err != nil {
		logger.Warn("Failed to close generation %s: %v", g.record.Generation, err)
	}
	if remove {
		if err := s.builder.Remove(g.record.Generation); err != nil {
			logger.Warn("Failed to remove generation %s: %v", g.record.Generation, err)
		}
		logger.Debug("Retired generation %s", g.record.Generation)
	}
}

func (s *IndexService) removeOrphans(keep string) {
	gens, err := s.builder.List()
	if err != nil {
		logger.Warn("Failed to list generations: %v", err)
		return
	}
	for _, gen := range gens {
		if gen == keep {
			continue
		}
		logger.Debug("Removing orphaned generation %s", gen)
		if err := s.builder.Remove(gen); err != nil {
			logger.Warn("Failed to remove generation %s: %v", gen, err)
		}
	}
}

// Status describes the served generation.
func (s *IndexService) Status(ctx context.Context) (*domain.IndexStatus, error) {
	status := &domain.IndexStatus{Building: s.building.Load()}

	if g, err := s.acquire(); err == nil {
		status.Ready = true
		status.Generation = g.reader.Generation()
		titles, names, countErr := g.reader.Counts()
		g.mu.RUnlock()
		if countErr != nil {
			return nil, fmt.Errorf("count documents: %w", countErr)
		}
		status.TitleCount = titles
		status.NameCount = names
	}

	recent, err := s.catalog.ListBuilds(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("read build catalog: %w", err)
	}
	if len(recent) > 0 {
		status.LastBuild = &recent[0]
	}
	return status, nil
}

// History returns recent builds, newest first. A limit of 0 or less
// returns every recorded build.
func (s *IndexService) History(ctx context.Context, limit int) ([]domain.BuildRecord, error) {
	return s.catalog.ListBuilds(ctx, max(limit, 0))
}

// Close cancels any build in flight, waits for it to finish and releases
// the current generation. Files stay on disk.
func (s *IndexService) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancelBuild()
	s.builds.Wait()

	if g := s.current.Swap(nil); g != nil {
		s.retire(g, false)
	}
	return nil
}
