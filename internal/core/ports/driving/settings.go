package driving

import "github.com/custodia-labs/cinedex/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves settings from defaults, the config file and the environment.
	Get() (*domain.AppSettings, error)

	// Save persists application settings to the config file.
	Save(settings *domain.AppSettings) error

	// Validate checks the resolved settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
