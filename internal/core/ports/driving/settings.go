package driving

import "github.com/custodia-labs/reportgen-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Set validates and persists a single setting by key.
	Set(key, value string) error

	// Keys returns all recognised setting keys.
	Keys() []string

	// IsSecret reports whether a key holds a credential.
	IsSecret(key string) bool

	// Validate checks current settings can drive the application.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
