package driving

import "github.com/custodia-labs/sercha-workspace/internal/core/domain"

// SettingsService manages client settings.
type SettingsService interface {
	// Get retrieves current settings, filling defaults for unset keys.
	Get() (*domain.ClientSettings, error)

	// Save persists settings.
	Save(settings *domain.ClientSettings) error

	// SetBackend updates the backend URL.
	SetBackend(url string) error

	// SetToken updates the backend token.
	SetToken(token string) error
}
