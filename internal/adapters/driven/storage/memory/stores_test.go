package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

func TestBuildCatalog(t *testing.T) {
	ctx := context.Background()
	catalog := NewBuildCatalog()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	latest, err := catalog.LatestCommitted(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	assert.ErrorIs(t, catalog.SaveBuild(ctx, nil), domain.ErrInvalidInput)

	old := &domain.BuildRecord{RunID: "a", Generation: "g1", State: domain.BuildCommitted,
		StartedAt: base, FinishedAt: base.Add(time.Minute)}
	newer := &domain.BuildRecord{RunID: "b", Generation: "g2", State: domain.BuildCommitted,
		StartedAt: base.Add(time.Hour), FinishedAt: base.Add(2 * time.Hour)}
	failed := &domain.BuildRecord{RunID: "c", Generation: "g3", State: domain.BuildFailed,
		StartedAt: base.Add(3 * time.Hour)}
	for _, r := range []*domain.BuildRecord{old, newer, failed} {
		require.NoError(t, catalog.SaveBuild(ctx, r))
	}

	latest, err = catalog.LatestCommitted(ctx)
	require.NoError(t, err)
	assert.Equal(t, "g2", latest.Generation)

	list, err := catalog.ListBuilds(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].RunID)
	assert.Equal(t, "b", list[1].RunID)

	all, err := catalog.ListBuilds(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = catalog.GetBuild(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuildCatalog_SaveCopiesRecord(t *testing.T) {
	ctx := context.Background()
	catalog := NewBuildCatalog()
	rec := &domain.BuildRecord{RunID: "a", State: domain.BuildRunning,
		Stats: []domain.DecodeStats{{Kind: domain.DatasetTitles, Rows: 1}}}
	require.NoError(t, catalog.SaveBuild(ctx, rec))

	rec.State = domain.BuildFailed
	rec.Stats[0].Rows = 99

	got, err := catalog.GetBuild(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.BuildRunning, got.State)
	assert.Equal(t, 1, got.Stats[0].Rows)
}

func TestSchedulerStore(t *testing.T) {
	ctx := context.Background()
	store := NewSchedulerStore()

	sched, err := store.LoadSchedule(ctx)
	require.NoError(t, err)
	assert.Nil(t, sched)

	assert.ErrorIs(t, store.SaveSchedule(ctx, nil), domain.ErrInvalidInput)

	saved := &domain.RebuildSchedule{Interval: time.Hour, Failures: 1}
	require.NoError(t, store.SaveSchedule(ctx, saved))
	saved.Failures = 5

	sched, err = store.LoadSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, sched.Interval)
	assert.Equal(t, 1, sched.Failures)

	sched.Interval = time.Minute
	again, err := store.LoadSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, again.Interval)
}
