package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

var entitlementsCmd = &cobra.Command{
	Use:     "entitlements",
	Aliases: []string{"quota", "usage"},
	Short:   "Show plan usage and limits",
	RunE:    runEntitlements,
}

func init() {
	rootCmd.AddCommand(entitlementsCmd)
}

func runEntitlements(cmd *cobra.Command, _ []string) error {
	if reconciler == nil {
		return errNotConfigured("entitlement")
	}
	if err := requireCredentials(); err != nil {
		return err
	}
	if err := reconciler.RefreshEntitlements(commandContext(cmd)); err != nil {
		return userError("refresh entitlements", err)
	}

	e := reconciler.Entitlement()
	if e == nil {
		return fmt.Errorf("%w: no entitlement data", domain.ErrBackendUnavailable)
	}

	cmd.Println(renderTable([]string{"RESOURCE", "USED", "LIMIT"}, [][]string{
		{"Connectors", fmt.Sprint(e.ConnectorsUsed), formatLimit(float64(e.ConnectorsLimit), "%.0f")},
		{"Storage (GB)", fmt.Sprintf("%.1f", e.StorageUsedGB), formatLimit(e.StorageGB, "%.1f")},
	}))
	if e.ConnectorsExhausted() {
		cmd.Println(domain.ConnectorLimitMessage(e))
	}
	if e.StorageExhausted() {
		cmd.Println(domain.StorageLimitMessage(e))
	}
	return nil
}

func formatLimit(v float64, format string) string {
	if v < 0 {
		return "unlimited"
	}
	return fmt.Sprintf(format, v)
}
