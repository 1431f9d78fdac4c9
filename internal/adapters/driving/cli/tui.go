package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

The TUI lists connectors with their live status, walks through connector
creation forms and browses the workspace drive. Connector status and plan
usage are refreshed in the background while it runs.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select
  Esc      - Back / Cancel
  ctrl+c   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI's ports from the injected services.
func tuiPorts() *tui.Ports {
	return &tui.Ports{
		SchemaRegistry:  schemaRegistry,
		FormInterpreter: formInterpreter,
		Quota:           quotaGate,
		Reconciler:      reconciler,
		Connectors:      connectorService,
		Drive:           driveService,
		Settings:        settingsService,
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Log lines would corrupt the alt screen.
	if logFile != "" {
		restore, err := logger.ToFile(logFile)
		if err != nil {
			return err
		}
		defer func() { _ = restore() }()
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	go func() {
		if err := reconciler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("reconciler stopped: %v", err)
		}
	}()
	defer func() {
		if err := reconciler.Stop(); err != nil {
			logger.Warn("reconciler stop: %v", err)
		}
	}()

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
