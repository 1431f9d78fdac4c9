package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyBackendURL       = "backend.url"
	keyBackendToken     = "backend.token"
	keyBackendTimeout   = "backend.timeout_seconds"
	keyBackendRate      = "backend.requests_per_second"
	keyPollInterval     = "poll.interval_seconds"
	keyAutoSyncInterval = "autosync.interval_seconds"
	keyDriveRoot        = "drive.root"
)

// SettingsService manages client settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Unset or invalid keys take their defaults.
func (s *SettingsService) Get() (*domain.ClientSettings, error) {
	defaults := domain.DefaultClientSettings()

	settings := &domain.ClientSettings{
		Backend: domain.BackendSettings{
			URL:               s.getString(keyBackendURL, defaults.Backend.URL),
			Token:             s.configStore.GetString(keyBackendToken),
			Timeout:           s.getSeconds(keyBackendTimeout, defaults.Backend.Timeout),
			RequestsPerSecond: s.getFloat(keyBackendRate, defaults.Backend.RequestsPerSecond),
		},
		Poll: domain.PollSettings{
			Interval: s.getSeconds(keyPollInterval, defaults.Poll.Interval),
		},
		AutoSync: domain.AutoSyncSettings{
			Interval: s.getSeconds(keyAutoSyncInterval, defaults.AutoSync.Interval),
		},
		Drive: domain.DriveSettings{
			Root: domain.CleanDrivePath(s.getString(keyDriveRoot, defaults.Drive.Root)),
		},
	}

	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.ClientSettings) error {
	if err := validateBackendURL(settings.Backend.URL); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyBackendURL, settings.Backend.URL},
		{keyBackendTimeout, int(settings.Backend.Timeout.Seconds())},
		{keyBackendRate, settings.Backend.RequestsPerSecond},
		{keyPollInterval, int(settings.Poll.Interval.Seconds())},
		{keyAutoSyncInterval, int(settings.AutoSync.Interval.Seconds())},
		{keyDriveRoot, domain.CleanDrivePath(settings.Drive.Root)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Backend.Token != "" {
		if err := s.configStore.Set(keyBackendToken, settings.Backend.Token); err != nil {
			return fmt.Errorf("save %s: %w", keyBackendToken, err)
		}
	}

	return nil
}

// SetBackend updates the backend URL.
func (s *SettingsService) SetBackend(rawURL string) error {
	rawURL = strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if err := validateBackendURL(rawURL); err != nil {
		return err
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Backend.URL = rawURL
	return s.Save(settings)
}

// SetToken updates the backend token.
func (s *SettingsService) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token cannot be empty", domain.ErrInvalidInput)
	}
	return s.configStore.Set(keyBackendToken, token)
}

func validateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: backend url must be an absolute http(s) URL, got %q", domain.ErrInvalidInput, raw)
	}
	return nil
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	raw, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	var val float64
	switch v := raw.(type) {
	case float64:
		val = v
	case float32:
		val = float64(v)
	case int:
		val = float64(v)
	case int64:
		val = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return defaultVal
		}
		val = parsed
	default:
		return defaultVal
	}
	if val <= 0 {
		return defaultVal
	}
	return val
}
