package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
)

// Ensure BuildCatalog implements the interface.
var _ driven.BuildCatalog = (*BuildCatalog)(nil)

// BuildCatalog is an in-memory implementation of driven.BuildCatalog.
type BuildCatalog struct {
	mu      sync.RWMutex
	records map[string]domain.BuildRecord
}

// NewBuildCatalog creates an empty catalog.
func NewBuildCatalog() *BuildCatalog {
	return &BuildCatalog{records: make(map[string]domain.BuildRecord)}
}

// SaveBuild creates or updates a record keyed by RunID.
func (c *BuildCatalog) SaveBuild(_ context.Context, record *domain.BuildRecord) error {
	if record == nil || record.RunID == "" {
		return domain.ErrInvalidInput
	}
	rec := *record
	rec.Stats = slices.Clone(record.Stats)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[rec.RunID] = rec
	return nil
}

// GetBuild returns the record for a run.
func (c *BuildCatalog) GetBuild(_ context.Context, runID string) (*domain.BuildRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// LatestCommitted returns the most recently committed build, or nil.
func (c *BuildCatalog) LatestCommitted(_ context.Context) (*domain.BuildRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var latest *domain.BuildRecord
	for _, rec := range c.records {
		if rec.State != domain.BuildCommitted {
			continue
		}
		if latest == nil || rec.FinishedAt.After(latest.FinishedAt) {
			r := rec
			latest = &r
		}
	}
	return latest, nil
}

// ListBuilds returns records ordered by start time descending.
func (c *BuildCatalog) ListBuilds(_ context.Context, limit int) ([]domain.BuildRecord, error) {
	c.mu.RLock()
	records := make([]domain.BuildRecord, 0, len(c.records))
	for _, rec := range c.records {
		records = append(records, rec)
	}
	c.mu.RUnlock()

	slices.SortFunc(records, func(a, b domain.BuildRecord) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.RunID, b.RunID)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
