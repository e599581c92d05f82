package httpapi

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// --- Mock implementations ---

type mockSearchService struct {
	titles []domain.TitleDocument
	names  []domain.NameDocument
	err    error

	mu        sync.Mutex
	lastTitle domain.TitleQuery
	lastName  domain.NameQuery
}

func (m *mockSearchService) SearchTitles(_ context.Context, q domain.TitleQuery) (domain.TitleResults, error) {
	if m.err != nil {
		return domain.TitleResults{}, m.err
	}
	q, err := q.Normalize()
	if err != nil {
		return domain.TitleResults{}, err
	}
	m.mu.Lock()
	m.lastTitle = q
	m.mu.Unlock()

	var res domain.TitleResults
	for _, d := range m.titles {
		if q.Text != "" && !strings.Contains(strings.ToLower(d.PrimaryTitle), strings.ToLower(q.Text)) {
			continue
		}
		res.Hits = append(res.Hits, domain.TitleHit{Document: d, Score: 1})
	}
	res.Total = uint64(len(res.Hits))
	return res, nil
}

func (m *mockSearchService) SearchNames(_ context.Context, q domain.NameQuery) (domain.NameResults, error) {
	if m.err != nil {
		return domain.NameResults{}, m.err
	}
	q, err := q.Normalize()
	if err != nil {
		return domain.NameResults{}, err
	}
	m.mu.Lock()
	m.lastName = q
	m.mu.Unlock()

	var res domain.NameResults
	for _, d := range m.names {
		res.Hits = append(res.Hits, domain.NameHit{Document: d, Score: 2})
	}
	res.Total = uint64(len(res.Hits))
	return res, nil
}

func (m *mockSearchService) GetTitle(_ context.Context, id string) (*domain.TitleDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.titles {
		if m.titles[i].ID == id {
			return &m.titles[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSearchService) GetName(_ context.Context, id string) (*domain.NameDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.names {
		if m.names[i].ID == id {
			return &m.names[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockIndexService struct {
	status     *domain.IndexStatus
	history    []domain.BuildRecord
	rebuildErr error

	mu       sync.Mutex
	rebuilds int
	done     chan struct{}
}

func (m *mockIndexService) Open(context.Context) error { return nil }

func (m *mockIndexService) Rebuild(context.Context) (*domain.BuildRecord, error) {
	m.mu.Lock()
	m.rebuilds++
	m.mu.Unlock()
	if m.done != nil {
		defer close(m.done)
	}
	if m.rebuildErr != nil {
		return nil, m.rebuildErr
	}
	return &domain.BuildRecord{RunID: "run-1", Generation: "gen-1", State: domain.BuildCommitted, TitleCount: 2}, nil
}

func (m *mockIndexService) Status(context.Context) (*domain.IndexStatus, error) {
	if m.status == nil {
		return &domain.IndexStatus{}, nil
	}
	return m.status, nil
}

func (m *mockIndexService) History(_ context.Context, limit int) ([]domain.BuildRecord, error) {
	if limit > 0 && limit < len(m.history) {
		return m.history[:limit], nil
	}
	return m.history, nil
}

func (m *mockIndexService) Close() error { return nil }

func (m *mockIndexService) rebuildCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rebuilds
}
