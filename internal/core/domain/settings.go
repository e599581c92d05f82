package domain

import (
	"path/filepath"
	"runtime"
	"time"
)

// Default settings values.
const (
	DefaultDataDir       = "data"
	DefaultIndexDirName  = "index"
	DefaultBindAddr      = "127.0.0.1:3000"
	DefaultBatchSize     = 10000
	DefaultWatchDebounce = 5 * time.Second
)

// PathSettings locates the dataset files and the index root.
type PathSettings struct {
	// DataDir holds the TSV dataset files.
	DataDir string

	// IndexDir holds one subdirectory per index generation.
	// Empty means <DataDir>/index.
	IndexDir string
}

// ResolvedIndexDir returns IndexDir, defaulting to <DataDir>/index.
func (p PathSettings) ResolvedIndexDir() string {
	if p.IndexDir != "" {
		return p.IndexDir
	}
	return filepath.Join(p.DataDir, DefaultIndexDirName)
}

// ServerSettings holds the HTTP listener configuration.
type ServerSettings struct {
	BindAddr string
}

// IngestSettings tunes the build pipeline.
type IngestSettings struct {
	// Workers is the number of composer partitions.
	Workers int

	// BatchSize is the number of documents submitted per index batch.
	BatchSize int

	// OptionalDatasets may be missing without failing the build.
	OptionalDatasets []DatasetKind
}

// IsOptional reports whether a missing dataset of this kind is tolerated.
func (s IngestSettings) IsOptional(kind DatasetKind) bool {
	for _, k := range s.OptionalDatasets {
		if k == kind {
			return true
		}
	}
	return false
}

// RankingSettings controls relevance ordering.
type RankingSettings struct {
	// Blend enables popularity-aware re-scoring of relevance results.
	Blend bool
}

// WatchSettings controls rebuild-on-change.
type WatchSettings struct {
	// Debounce is the quiet period after the last file event before a rebuild.
	Debounce time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Paths   PathSettings
	Server  ServerSettings
	Ingest  IngestSettings
	Ranking RankingSettings
	Watch   WatchSettings

	// Scheduler holds the periodic rebuild configuration.
	Scheduler SchedulerConfig

	// Verbose enables debug logging.
	Verbose bool
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Paths: PathSettings{
			DataDir: DefaultDataDir,
		},
		Server: ServerSettings{
			BindAddr: DefaultBindAddr,
		},
		Ingest: IngestSettings{
			Workers:   runtime.GOMAXPROCS(0),
			BatchSize: DefaultBatchSize,
		},
		Ranking: RankingSettings{
			Blend: true,
		},
		Watch: WatchSettings{
			Debounce: DefaultWatchDebounce,
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}
