package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage client settings",
	Long: `View and configure the backend endpoint, token and polling intervals.

Settings are stored in config.toml and may be overridden with
SERCHA_WORKSPACE_* environment variables.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsBackendCmd = &cobra.Command{
	Use:     "set-backend <url>",
	Short:   "Set the backend API URL",
	Example: "  sercha-workspace settings set-backend https://search.example.com/api",
	Args:    cobra.ExactArgs(1),
	RunE:    runSettingsBackend,
}

var settingsTokenCmd = &cobra.Command{
	Use:   "set-token [token]",
	Short: "Set the backend API token",
	Long: `Set the bearer token used for every backend request.

Without an argument the token is read from the terminal without echo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsToken,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsBackendCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Backend]")
	cmd.Printf("  URL: %s\n", settings.Backend.URL)
	cmd.Printf("  Token: %s\n", settings.Backend.MaskedToken())
	cmd.Printf("  Timeout: %s\n", settings.Backend.Timeout)
	cmd.Printf("  Rate limit: %.1f req/s\n", settings.Backend.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Polling]")
	cmd.Printf("  Connectors: every %s\n", settings.Poll.Interval)
	cmd.Printf("  Drive auto-sync: every %s\n", settings.AutoSync.Interval)
	cmd.Println()

	cmd.Println("[Drive]")
	cmd.Printf("  Root: %s\n", settings.Drive.Root)
	return nil
}

func runSettingsBackend(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}
	if err := settingsService.SetBackend(args[0]); err != nil {
		return fmt.Errorf("failed to set backend: %w", err)
	}
	cmd.Printf("Backend set to %s\n", strings.TrimRight(strings.TrimSpace(args[0]), "/"))
	return nil
}

func runSettingsToken(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		var err error
		token, err = readSecret(cmd, bufio.NewReader(cmd.InOrStdin()), "API token: ")
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token cannot be empty")
	}

	if err := settingsService.SetToken(token); err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}
	cmd.Println("Token saved.")
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	cmd.Print(prompt)
	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		b, err := term.ReadPassword(int(file.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return readLine(reader)
}
