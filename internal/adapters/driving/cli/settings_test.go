package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSettingsShow(t *testing.T) {
	settings := withServices(t)
	require.NoError(t, settings.SetToken("secret-token"))

	out, err := runRoot(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Backend]")
	assert.Contains(t, out, "oken")
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, "[Drive]")
}

func TestSettingsSetBackend(t *testing.T) {
	settings := withServices(t)

	out, err := runRoot(t, "", "settings", "set-backend", "https://search.example.com/api/")

	require.NoError(t, err)
	assert.Contains(t, out, "Backend set to https://search.example.com/api")
	got, err := settings.Get()
	require.NoError(t, err)
	assert.Equal(t, "https://search.example.com/api", got.Backend.URL)
}

func TestSettingsSetBackend_Invalid(t *testing.T) {
	withServices(t)

	_, err := runRoot(t, "", "settings", "set-backend", "not a url")

	assert.Error(t, err)
}

func TestSettingsSetToken_FromArg(t *testing.T) {
	settings := withServices(t)

	out, err := runRoot(t, "", "settings", "set-token", "abc123")

	require.NoError(t, err)
	assert.Contains(t, out, "Token saved.")
	got, _ := settings.Get()
	assert.Equal(t, "abc123", got.Backend.Token)
}

func TestSettingsSetToken_FromStdin(t *testing.T) {
	settings := withServices(t)

	_, err := runRoot(t, "piped-token\n", "settings", "set-token")

	require.NoError(t, err)
	got, _ := settings.Get()
	assert.Equal(t, "piped-token", got.Backend.Token)
}

func TestSettingsSetToken_Empty(t *testing.T) {
	withServices(t)

	_, err := runRoot(t, "\n", "settings", "set-token")

	assert.EqualError(t, err, "token cannot be empty")
}

func TestSettings_NotConfigured(t *testing.T) {
	withServices(t)
	settingsService = nil

	_, err := runRoot(t, "", "settings", "show")

	assert.ErrorContains(t, err, "settings service not configured")
}
