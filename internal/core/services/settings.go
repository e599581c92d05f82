package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
	"github.com/custodia-labs/cinedex/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDataDir          = "paths.data_dir"
	keyIndexDir         = "paths.index_dir"
	keyBindAddr         = "server.bind_addr"
	keyWorkers          = "ingest.workers"
	keyBatchSize        = "ingest.batch_size"
	keyOptionalDatasets = "ingest.optional_datasets"
	keyRankingBlend     = "ranking.blend"
	keyWatchDebounce    = "watch.debounce"
	keySchedulerEnabled = "scheduler.enabled"
	keyRebuildInterval  = "scheduler.rebuild_interval"
	keyVerbose          = "verbose"
)

// Environment overrides, applied over the config file.
const (
	EnvDataDir  = "IMDB_DATA_DIR"
	EnvIndexDir = "IMDB_INDEX_DIR"
	EnvBindAddr = "IMDB_BIND_ADDR"
	EnvVerbose  = "IMDB_VERBOSE"
)

// SettingsService resolves settings from defaults, the config store and
// the process environment, in increasing precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service. A nil getenv reads
// the process environment.
func NewSettingsService(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &SettingsService{
		configStore: configStore,
		getenv:      getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Paths: domain.PathSettings{
			DataDir:  s.getString(keyDataDir, defaults.Paths.DataDir),
			IndexDir: s.getString(keyIndexDir, defaults.Paths.IndexDir),
		},
		Server: domain.ServerSettings{
			BindAddr: s.getString(keyBindAddr, defaults.Server.BindAddr),
		},
		Ingest: domain.IngestSettings{
			Workers:          s.getInt(keyWorkers, defaults.Ingest.Workers),
			BatchSize:        s.getInt(keyBatchSize, defaults.Ingest.BatchSize),
			OptionalDatasets: s.getDatasetKinds(keyOptionalDatasets),
		},
		Ranking: domain.RankingSettings{
			Blend: s.getBool(keyRankingBlend, defaults.Ranking.Blend),
		},
		Watch: domain.WatchSettings{
			Debounce: s.getDuration(keyWatchDebounce, defaults.Watch.Debounce),
		},
		Scheduler: s.getSchedulerConfig(defaults.Scheduler),
		Verbose:   s.getBool(keyVerbose, defaults.Verbose),
	}

	if err := s.applyEnv(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *SettingsService) applyEnv(settings *domain.AppSettings) error {
	if v := s.getenv(EnvDataDir); v != "" {
		settings.Paths.DataDir = v
	}
	if v := s.getenv(EnvIndexDir); v != "" {
		settings.Paths.IndexDir = v
	}
	if v := s.getenv(EnvBindAddr); v != "" {
		settings.Server.BindAddr = v
	}
	if v := s.getenv(EnvVerbose); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", domain.ErrInvalidInput, EnvVerbose, v)
		}
		settings.Verbose = verbose
	}
	return nil
}

// Save persists application settings. Values that came from the
// environment are written as resolved.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	optional := make([]string, 0, len(settings.Ingest.OptionalDatasets))
	for _, kind := range settings.Ingest.OptionalDatasets {
		optional = append(optional, kind.String())
	}

	values := []struct {
		key   string
		value any
	}{
		{keyDataDir, settings.Paths.DataDir},
		{keyIndexDir, settings.Paths.IndexDir},
		{keyBindAddr, settings.Server.BindAddr},
		{keyWorkers, settings.Ingest.Workers},
		{keyBatchSize, settings.Ingest.BatchSize},
		{keyOptionalDatasets, optional},
		{keyRankingBlend, settings.Ranking.Blend},
		{keyWatchDebounce, settings.Watch.Debounce.String()},
		{keySchedulerEnabled, settings.Scheduler.Enabled},
		{keyRebuildInterval, settings.Scheduler.RebuildInterval.String()},
		{keyVerbose, settings.Verbose},
	}
	for _, kv := range values {
		if err := s.configStore.Set(kv.key, kv.value); err != nil {
			return fmt.Errorf("save %s: %w", kv.key, err)
		}
	}
	return nil
}

// Validate checks the resolved settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Paths.DataDir == "" {
		return fmt.Errorf("%w: data directory is empty", domain.ErrInvalidInput)
	}
	if settings.Server.BindAddr == "" {
		return fmt.Errorf("%w: bind address is empty", domain.ErrInvalidInput)
	}
	if settings.Ingest.Workers < 1 {
		return fmt.Errorf("%w: ingest workers must be at least 1, got %d", domain.ErrInvalidInput, settings.Ingest.Workers)
	}
	if settings.Ingest.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be at least 1, got %d", domain.ErrInvalidInput, settings.Ingest.BatchSize)
	}
	for _, raw := range s.configStore.GetStringSlice(keyOptionalDatasets) {
		if !domain.DatasetKind(raw).IsValid() {
			return fmt.Errorf("%w: unknown dataset kind %q", domain.ErrInvalidInput, raw)
		}
	}
	if settings.Watch.Debounce < 0 {
		return fmt.Errorf("%w: watch debounce is negative", domain.ErrInvalidInput)
	}
	if settings.Scheduler.RebuildInterval < 0 {
		return fmt.Errorf("%w: rebuild interval is negative", domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetDuration(key)
}

// getDatasetKinds drops unrecognised kinds; Validate reports them.
func (s *SettingsService) getDatasetKinds(key string) []domain.DatasetKind {
	var kinds []domain.DatasetKind
	for _, raw := range s.configStore.GetStringSlice(key) {
		if kind := domain.DatasetKind(raw); kind.IsValid() {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// getSchedulerConfig overlays the scheduler keys on the defaults.
func (s *SettingsService) getSchedulerConfig(defaults domain.SchedulerConfig) domain.SchedulerConfig {
	return domain.SchedulerConfig{
		Enabled:         s.getBool(keySchedulerEnabled, defaults.Enabled),
		RebuildInterval: s.getDuration(keyRebuildInterval, defaults.RebuildInterval),
	}
}
