package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-workspace/internal/core/services"
)

// withServices installs real services backed by a temporary config
// directory and restores the previous set when the test ends.
func withServices(t *testing.T) *services.SettingsService {
	t.Helper()

	prev := Services{
		SchemaRegistry:   schemaRegistry,
		FormInterpreter:  formInterpreter,
		QuotaGate:        quotaGate,
		Reconciler:       reconciler,
		ConnectorService: connectorService,
		DriveService:     driveService,
		SettingsService:  settingsService,
		ActivityService:  activityService,
		LogFile:          logFile,
	}
	t.Cleanup(func() { SetServices(&prev) })

	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	settings := services.NewSettingsService(store)

	SetServices(&Services{
		SchemaRegistry:  services.NewBuiltinSchemaRegistry(),
		FormInterpreter: services.NewFormInterpreter(),
		SettingsService: settings,
	})
	return settings
}
