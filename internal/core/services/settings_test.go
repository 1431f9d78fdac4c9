package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

func newTestSettings(t *testing.T) (*SettingsService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	return NewSettingsService(store), dir
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettings(t)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultClientSettings(), *settings)
	assert.False(t, settings.Backend.HasCredentials())
}

func TestSettingsService_SaveAndReload(t *testing.T) {
	service, dir := newTestSettings(t)

	settings := domain.DefaultClientSettings()
	settings.Backend.URL = "https://search.example.com/api"
	settings.Backend.Token = "tok_123456"
	settings.Backend.RequestsPerSecond = 2.5
	settings.Poll.Interval = 30 * time.Second
	settings.AutoSync.Interval = 5 * time.Second
	settings.Drive.Root = "team/"
	require.NoError(t, service.Save(&settings))

	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	reloaded, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, "https://search.example.com/api", reloaded.Backend.URL)
	assert.Equal(t, "tok_123456", reloaded.Backend.Token)
	assert.InDelta(t, 2.5, reloaded.Backend.RequestsPerSecond, 0.001)
	assert.Equal(t, 30*time.Second, reloaded.Poll.Interval)
	assert.Equal(t, 5*time.Second, reloaded.AutoSync.Interval)
	assert.Equal(t, "/team", reloaded.Drive.Root)
}

func TestSettingsService_SetBackend(t *testing.T) {
	service, _ := newTestSettings(t)

	require.NoError(t, service.SetBackend(" https://search.example.com/api/ "))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "https://search.example.com/api", settings.Backend.URL)
}

func TestSettingsService_SetBackend_Invalid(t *testing.T) {
	service, _ := newTestSettings(t)

	for _, raw := range []string{"", "search.example.com", "ftp://search.example.com", "http://"} {
		assert.ErrorIs(t, service.SetBackend(raw), domain.ErrInvalidInput, raw)
	}
}

func TestSettingsService_SetToken(t *testing.T) {
	service, _ := newTestSettings(t)

	assert.ErrorIs(t, service.SetToken("   "), domain.ErrInvalidInput)
	require.NoError(t, service.SetToken(" secret-token "))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "secret-token", settings.Backend.Token)
	assert.True(t, settings.Backend.HasCredentials())
	assert.Equal(t, "********oken", settings.Backend.MaskedToken())
}
