package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history <kind>",
	Short: "Show recent background activity",
	Long: `Show the outcome of recent background runs.

Kinds: connector_refresh, entitlement_refresh, auto_sync, upload.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: historyKinds(),
	RunE:      runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func historyKinds() []string {
	return []string{
		string(domain.ActivityConnectorRefresh),
		string(domain.ActivityEntitlementRefresh),
		string(domain.ActivityAutoSync),
		string(domain.ActivityUpload),
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	if activityService == nil {
		return errNotConfigured("activity")
	}
	kind := domain.ActivityKind(args[0])
	known := false
	for _, k := range historyKinds() {
		if k == args[0] {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInput, args[0])
	}

	results, err := activityService.Recent(commandContext(cmd), kind, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No activity recorded.")
		return nil
	}

	rows := make([][]string, 0, len(results))
	for i := range results {
		r := &results[i]
		outcome := "ok"
		if !r.Success {
			outcome = "failed: " + r.Error
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Duration().Round(time.Millisecond).String(),
			fmt.Sprint(r.ItemsProcessed),
			outcome,
		})
	}
	cmd.Println(renderTable([]string{"STARTED", "DURATION", "ITEMS", "RESULT"}, rows))
	return nil
}
