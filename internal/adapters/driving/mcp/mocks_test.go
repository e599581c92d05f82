package mcp

import (
	"context"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	titles domain.TitleResults
	names  domain.NameResults
	title  *domain.TitleDocument
	name   *domain.NameDocument
	err    error

	lastTitle domain.TitleQuery
	lastName  domain.NameQuery
}

func (m *mockSearchService) SearchTitles(_ context.Context, q domain.TitleQuery) (domain.TitleResults, error) {
	m.lastTitle = q
	return m.titles, m.err
}

func (m *mockSearchService) SearchNames(_ context.Context, q domain.NameQuery) (domain.NameResults, error) {
	m.lastName = q
	return m.names, m.err
}

func (m *mockSearchService) GetTitle(_ context.Context, id string) (*domain.TitleDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.title == nil || m.title.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.title, nil
}

func (m *mockSearchService) GetName(_ context.Context, id string) (*domain.NameDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.name == nil || m.name.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.name, nil
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	status     *domain.IndexStatus
	rebuildErr error
	rebuilds   int
}

func (m *mockIndexService) Open(context.Context) error { return nil }

func (m *mockIndexService) Rebuild(context.Context) (*domain.BuildRecord, error) {
	m.rebuilds++
	if m.rebuildErr != nil {
		return nil, m.rebuildErr
	}
	m.status = &domain.IndexStatus{
		Ready:      true,
		Generation: "gen-new",
		TitleCount: 3,
		LastBuild:  &domain.BuildRecord{Generation: "gen-new", State: domain.BuildCommitted},
	}
	return m.status.LastBuild, nil
}

func (m *mockIndexService) Status(context.Context) (*domain.IndexStatus, error) {
	if m.status == nil {
		return &domain.IndexStatus{}, nil
	}
	return m.status, nil
}

func (m *mockIndexService) History(context.Context, int) ([]domain.BuildRecord, error) {
	return nil, nil
}

func (m *mockIndexService) Close() error { return nil }
