package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// --- Mock implementations ---

type mockSearchService struct {
	titles domain.TitleResults
	names  domain.NameResults
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
	for i := range m.titles.Hits {
		if m.titles.Hits[i].Document.ID == id {
			return &m.titles.Hits[i].Document, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSearchService) GetName(_ context.Context, id string) (*domain.NameDocument, error) {
	for i := range m.names.Hits {
		if m.names.Hits[i].Document.ID == id {
			return &m.names.Hits[i].Document, nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockIndexService struct {
	status     domain.IndexStatus
	history    []domain.BuildRecord
	rebuildErr error

	mu       sync.Mutex
	rebuilds int
	limit    int
}

func (m *mockIndexService) Open(context.Context) error { return nil }

func (m *mockIndexService) Rebuild(context.Context) (*domain.BuildRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuilds++
	if m.rebuildErr != nil {
		return nil, m.rebuildErr
	}
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.status.Ready = true
	m.status.Generation = "01JGEN"
	return &domain.BuildRecord{
		RunID:      "run-1",
		Generation: "01JGEN",
		State:      domain.BuildCommitted,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		TitleCount: 12345,
		NameCount:  67,
		Stats: []domain.DecodeStats{
			{Kind: domain.DatasetTitles, Rows: 12345, Malformed: 2},
		},
	}, nil
}

func (m *mockIndexService) Status(context.Context) (*domain.IndexStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.status
	return &s, nil
}

func (m *mockIndexService) History(_ context.Context, limit int) ([]domain.BuildRecord, error) {
	m.limit = limit
	return m.history, nil
}

func (m *mockIndexService) Close() error { return nil }

func (m *mockIndexService) rebuildCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rebuilds
}

type mockSettingsService struct {
	settings    domain.AppSettings
	saved       *domain.AppSettings
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.saved = s
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

type mockScheduler struct {
	mu      sync.Mutex
	started bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error { return nil }

func (m *mockScheduler) wasStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// --- Test helpers ---

type testServices struct {
	search    *mockSearchService
	index     *mockIndexService
	settings  *mockSettingsService
	scheduler *mockScheduler
	services  *Services
}

func sampleTitleResults() domain.TitleResults {
	return domain.TitleResults{
		Hits: []domain.TitleHit{{
			Document: domain.TitleDocument{
				ID:              "tt0133093",
				PrimaryTitle:    "The Matrix",
				OriginalTitle:   "The Matrix",
				TitleType:       "movie",
				StartYear:       domain.Ptr(1999),
				RuntimeMinutes:  domain.Ptr(136),
				Genres:          []string{"Action", "Sci-Fi"},
				AverageRating:   domain.Ptr(8.7),
				NumVotes:        domain.Ptr(int64(2100000)),
				AlternateTitles: []domain.AlternateTitle{{Title: "Матрица", Region: "RU"}},
				Crew:            "Keanu Reeves Laurence Fishburne",
			},
			Score: 4.2,
		}},
		Total: 1,
	}
}

func sampleNameResults() domain.NameResults {
	return domain.NameResults{
		Hits: []domain.NameHit{{
			Document: domain.NameDocument{
				ID:             "nm0000206",
				PrimaryName:    "Keanu Reeves",
				BirthYear:      domain.Ptr(1964),
				Professions:    []string{"actor", "producer"},
				KnownForTitles: []string{"tt0133093"},
			},
			Score: 3,
		}},
		Total: 1,
	}
}

// setupTestServices injects mock services and restores the previous ones
// when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	settings := domain.DefaultAppSettings()
	settings.Paths.DataDir = "/data/imdb"

	ts := &testServices{
		search:    &mockSearchService{titles: sampleTitleResults(), names: sampleNameResults()},
		index:     &mockIndexService{},
		settings:  &mockSettingsService{settings: settings},
		scheduler: &mockScheduler{},
	}
	ts.services = &Services{
		Search:    ts.search,
		Index:     ts.index,
		Settings:  ts.settings,
		Scheduler: ts.scheduler,
		Config:    settings,
	}

	prevServices, prevBootstrap := services, bootstrap
	services, bootstrap = ts.services, nil
	t.Cleanup(func() {
		services, bootstrap = prevServices, prevBootstrap
	})
	return ts
}

// execute runs the root command with args and returns stdout and stderr.
// Flags are reset afterwards so later tests see defaults.
func execute(t *testing.T, ctx context.Context, input string, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
