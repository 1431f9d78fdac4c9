// Package cli provides the command-line interface of the workspace client.
// Commands are registered on rootCmd from each file's init function and
// reach core services through package-level driving ports set by main.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Services injected by main.
var (
	schemaRegistry   driving.SchemaRegistry
	formInterpreter  driving.FormInterpreter
	quotaGate        driving.QuotaGate
	reconciler       driving.Reconciler
	connectorService driving.ConnectorService
	driveService     driving.DriveService
	settingsService  driving.SettingsService
	activityService  driving.ActivityService

	// logFile receives log output while the TUI owns the terminal.
	logFile string
)

// Services aggregates the driving ports used by commands.
type Services struct {
	SchemaRegistry   driving.SchemaRegistry
	FormInterpreter  driving.FormInterpreter
	QuotaGate        driving.QuotaGate
	Reconciler       driving.Reconciler
	ConnectorService driving.ConnectorService
	DriveService     driving.DriveService
	SettingsService  driving.SettingsService
	ActivityService  driving.ActivityService
	LogFile          string
}

// SetServices wires the core services into the command tree.
func SetServices(s *Services) {
	schemaRegistry = s.SchemaRegistry
	formInterpreter = s.FormInterpreter
	quotaGate = s.QuotaGate
	reconciler = s.Reconciler
	connectorService = s.ConnectorService
	driveService = s.DriveService
	settingsService = s.SettingsService
	activityService = s.ActivityService
	logFile = s.LogFile
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "sercha-workspace",
	Short: "Manage connectors and the drive of a Sercha workspace",
	Long: `sercha-workspace is a terminal client for a Sercha search workspace.

It configures data-source connectors, runs their lifecycle actions, tracks
plan limits and manages files in the workspace drive.

Run without arguments to open the interactive terminal UI.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logging to stderr")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// errNotConfigured reports a missing service.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}

// requireCredentials fails early when no backend token is configured.
func requireCredentials() error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.Backend.HasCredentials() {
		return fmt.Errorf("%w: no token set, run 'sercha-workspace settings set-token'",
			domain.ErrBackendUnavailable)
	}
	return nil
}

// commandContext returns the command's context, or Background outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// userError turns a core error into the message shown after a user action.
func userError(action string, err error) error {
	if err == nil {
		return nil
	}
	logger.Debug("%s: %v", action, err)
	// Local errors already read well.
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrBackendUnavailable) {
		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) {
			return err
		}
	}
	return errors.New(domain.UserMessage(err))
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a connector id", domain.ErrInvalidInput, arg)
	}
	return id, nil
}

// renderTable draws rows under headers with a rounded border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers(headers...).
		Rows(rows...).
		String()
}

// formatTime renders a timestamp for tables, "never" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
