// Command sercha-workspace is a terminal client for a Sercha search workspace.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driven/backend"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-workspace/internal/core/services"
	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

// version is set by the linker.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	// History is a convenience; run without it rather than fail.
	var activityStore driven.ActivityStore
	store, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("activity history unavailable, keeping it in memory: %v", err)
		activityStore = memory.NewActivityStore()
	} else {
		defer store.Close()
		activityStore = store.ActivityStore()
	}

	client := backend.NewClient(backend.ConfigFromSettings(settings.Backend))

	registry := services.NewBuiltinSchemaRegistry()
	forms := services.NewFormInterpreter()
	reconciler := services.NewReconciler(client, client, activityStore, settings.Poll.Interval)
	quota := services.NewQuotaGate(reconciler, client)
	connectors := services.NewConnectorService(client, registry, forms, quota, reconciler)

	hasCredentials := func() bool {
		current, err := settingsService.Get()
		return err == nil && current.Backend.HasCredentials()
	}
	drive := services.NewDriveService(
		client, quota, activityStore, hasCredentials, settings.Drive.Root, settings.AutoSync.Interval,
	)
	defer drive.Close()

	logFile := filepath.Join(filepath.Dir(configStore.Path()), "logs", "tui.log")

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{
		SchemaRegistry:   registry,
		FormInterpreter:  forms,
		QuotaGate:        quota,
		Reconciler:       reconciler,
		ConnectorService: connectors,
		DriveService:     drive,
		SettingsService:  settingsService,
		ActivityService:  services.NewActivityService(activityStore),
		LogFile:          logFile,
	})

	return cli.Execute(ctx)
}
