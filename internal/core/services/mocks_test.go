package services

import (
	"context"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
	"github.com/custodia-labs/cinedex/internal/core/ports/driving"
)

// --- Mock implementations shared by the service tests ---

// mockDatasetSource serves dataset contents from memory.
type mockDatasetSource struct {
	files   map[domain.DatasetKind]string
	openErr error
}

func newMockDatasetSource(files map[domain.DatasetKind]string) *mockDatasetSource {
	return &mockDatasetSource{files: files}
}

func (m *mockDatasetSource) Open(_ context.Context, kind domain.DatasetKind) (io.ReadCloser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	content, ok := m.files[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingDataset, kind.FileName())
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (m *mockDatasetSource) Location() string { return "memory" }

// mockReader is an in-memory index generation.
type mockReader struct {
	generation string
	titles     []domain.TitleDocument
	names      []domain.NameDocument

	// hold blocks title searches until closed, when set.
	hold    chan struct{}
	entered chan struct{}

	closed    atomic.Bool
	lastTitle domain.TitleQuery
	mu        sync.Mutex
}

func (r *mockReader) SearchTitles(_ context.Context, q domain.TitleQuery) (domain.TitleResults, error) {
	if r.closed.Load() {
		return domain.TitleResults{}, fmt.Errorf("reader %s used after close", r.generation)
	}
	if r.entered != nil {
		r.entered <- struct{}{}
	}
	if r.hold != nil {
		<-r.hold
	}
	if r.closed.Load() {
		return domain.TitleResults{}, fmt.Errorf("reader %s closed during query", r.generation)
	}

	r.mu.Lock()
	r.lastTitle = q
	r.mu.Unlock()

	var hits []domain.TitleHit
	for _, doc := range r.titles {
		if q.Text != "" && !strings.Contains(strings.ToLower(doc.PrimaryTitle), strings.ToLower(q.Text)) {
			continue
		}
		hits = append(hits, domain.TitleHit{Document: doc, Score: 1})
	}
	total := uint64(len(hits))
	if len(hits) > *q.Limit {
		hits = hits[:*q.Limit]
	}
	return domain.TitleResults{Hits: hits, Total: total}, nil
}

func (r *mockReader) SearchNames(_ context.Context, q domain.NameQuery) (domain.NameResults, error) {
	var hits []domain.NameHit
	for _, doc := range r.names {
		if strings.Contains(strings.ToLower(doc.PrimaryName), strings.ToLower(q.Text)) {
			hits = append(hits, domain.NameHit{Document: doc, Score: 1})
		}
	}
	return domain.NameResults{Hits: hits, Total: uint64(len(hits))}, nil
}

func (r *mockReader) GetTitle(_ context.Context, id string) (*domain.TitleDocument, error) {
	for _, doc := range r.titles {
		if doc.ID == id {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *mockReader) GetName(_ context.Context, id string) (*domain.NameDocument, error) {
	for _, doc := range r.names {
		if doc.ID == id {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *mockReader) Counts() (uint64, uint64, error) {
	return uint64(len(r.titles)), uint64(len(r.names)), nil
}

func (r *mockReader) Generation() string { return r.generation }

func (r *mockReader) Close() error {
	r.closed.Store(true)
	return nil
}

// mockIndexBuilder keeps generations in memory.
type mockIndexBuilder struct {
	mu       sync.Mutex
	gens     map[string]*mockReader
	removed  []string
	buildErr error
	builds   atomic.Int32

	// gate blocks Build until closed, when set.
	gate chan struct{}
}

func newMockIndexBuilder() *mockIndexBuilder {
	return &mockIndexBuilder{gens: make(map[string]*mockReader)}
}

func (b *mockIndexBuilder) Build(ctx context.Context, gen string,
	titles iter.Seq[domain.TitleDocument], names iter.Seq[domain.NameDocument]) (driven.IndexReader, error) {
	b.builds.Add(1)
	if b.gate != nil {
		select {
		case <-b.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.buildErr != nil {
		return nil, b.buildErr
	}
	r := &mockReader{generation: gen}
	if titles != nil {
		r.titles = slices.Collect(titles)
	}
	if names != nil {
		r.names = slices.Collect(names)
	}
	b.mu.Lock()
	b.gens[gen] = r
	b.mu.Unlock()
	return r, nil
}

func (b *mockIndexBuilder) Open(_ context.Context, gen string) (driven.IndexReader, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.gens[gen]
	if !ok {
		return nil, fmt.Errorf("generation %s: %w", gen, domain.ErrNotFound)
	}
	reopened := &mockReader{generation: gen, titles: r.titles, names: r.names}
	return reopened, nil
}

func (b *mockIndexBuilder) Remove(gen string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.gens, gen)
	b.removed = append(b.removed, gen)
	return nil
}

func (b *mockIndexBuilder) List() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	gens := make([]string, 0, len(b.gens))
	for g := range b.gens {
		gens = append(gens, g)
	}
	slices.Sort(gens)
	return gens, nil
}

func (b *mockIndexBuilder) wasRemoved(gen string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Contains(b.removed, gen)
}

// mockBuildCatalog records builds in memory.
type mockBuildCatalog struct {
	mu      sync.Mutex
	records map[string]domain.BuildRecord
	order   []string
}

func newMockBuildCatalog() *mockBuildCatalog {
	return &mockBuildCatalog{records: make(map[string]domain.BuildRecord)}
}

func (c *mockBuildCatalog) SaveBuild(_ context.Context, rec *domain.BuildRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[rec.RunID]; !ok {
		c.order = append(c.order, rec.RunID)
	}
	c.records[rec.RunID] = *rec
	return nil
}

func (c *mockBuildCatalog) GetBuild(_ context.Context, runID string) (*domain.BuildRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (c *mockBuildCatalog) LatestCommitted(_ context.Context) (*domain.BuildRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.order) - 1; i >= 0; i-- {
		if rec := c.records[c.order[i]]; rec.State == domain.BuildCommitted {
			return &rec, nil
		}
	}
	return nil, nil
}

func (c *mockBuildCatalog) ListBuilds(_ context.Context, limit int) ([]domain.BuildRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.BuildRecord
	for i := len(c.order) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, c.records[c.order[i]])
	}
	return out, nil
}

// mockIndexService counts rebuilds for scheduler tests. The first
// failFirst rebuilds return rebuildErr.
type mockIndexService struct {
	rebuilds   atomic.Int32
	rebuildErr error
	failFirst  int32
}

func (m *mockIndexService) Open(context.Context) error { return nil }

func (m *mockIndexService) Rebuild(context.Context) (*domain.BuildRecord, error) {
	n := m.rebuilds.Add(1)
	if m.rebuildErr != nil && n <= m.failFirst {
		return nil, m.rebuildErr
	}
	return &domain.BuildRecord{
		RunID:      fmt.Sprintf("run-%d", n),
		Generation: fmt.Sprintf("gen-%d", n),
		State:      domain.BuildCommitted,
		TitleCount: 3,
		NameCount:  2,
	}, nil
}

func (m *mockIndexService) Status(context.Context) (*domain.IndexStatus, error) {
	return &domain.IndexStatus{}, nil
}

func (m *mockIndexService) History(context.Context, int) ([]domain.BuildRecord, error) {
	return nil, nil
}

func (m *mockIndexService) Close() error { return nil }

// Ensure mocks implement interfaces
var (
	_ driven.DatasetSource = (*mockDatasetSource)(nil)
	_ driven.IndexBuilder  = (*mockIndexBuilder)(nil)
	_ driven.IndexReader   = (*mockReader)(nil)
	_ driven.BuildCatalog  = (*mockBuildCatalog)(nil)
	_ driving.IndexService = (*mockIndexService)(nil)
)
