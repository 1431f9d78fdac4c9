package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

var connectorsCmd = &cobra.Command{
	Use:     "connectors",
	Aliases: []string{"connector", "cc"},
	Short:   "Manage connectors",
	Long: `List connectors and run their lifecycle actions.

A connector is created SCHEDULED and becomes ACTIVE after its first index
run finishes. Deleting requires the connector to be paused first.`,
	RunE: runConnectorsList,
}

var connectorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connectors",
	RunE:  runConnectorsList,
}

var connectorsTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List connector types that can be added",
	RunE:  runConnectorsTypes,
}

var connectorsAddCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Add a connector",
	Long: `Add a connector of the given type.

Values are given with --set key=value. Lists are comma separated. Tab groups
take the tab name as value, e.g. --set indexing_scope=specific.
With --interactive every visible field is prompted for.`,
	Example: `  sercha-workspace connectors add web --name Docs --set base_url=https://docs.example.com
  sercha-workspace connectors add github -i`,
	Args: cobra.ExactArgs(1),
	RunE: runConnectorsAdd,
}

var connectorsActionsCmd = &cobra.Command{
	Use:   "actions <id>",
	Short: "Show which actions a connector currently allows",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectorsActions,
}

var connectorsIndexCmd = &cobra.Command{
	Use:   "index <id>",
	Short: "Index new content of an active connector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnectorAction(cmd, args[0], "Indexing started", func(ctx context.Context, id int) error {
			return connectorService.Index(ctx, id, false)
		})
	},
}

var connectorsReindexCmd = &cobra.Command{
	Use:   "reindex <id>",
	Short: "Re-index an active connector from the beginning",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnectorAction(cmd, args[0], "Full re-index started", func(ctx context.Context, id int) error {
			return connectorService.Index(ctx, id, true)
		})
	},
}

var connectorsPauseCmd = &cobra.Command{
	Use:   "pause <id>",
	Short: "Pause a connector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnectorAction(cmd, args[0], "Pause requested", func(ctx context.Context, id int) error {
			return connectorService.SetPaused(ctx, id, true)
		})
	},
}

var connectorsResumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Resume a paused connector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnectorAction(cmd, args[0], "Resume requested", func(ctx context.Context, id int) error {
			return connectorService.SetPaused(ctx, id, false)
		})
	},
}

var connectorsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a paused connector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnectorAction(cmd, args[0], "Connector deleted", func(ctx context.Context, id int) error {
			return connectorService.Delete(ctx, id)
		})
	},
}

var (
	addName        string
	addValues      []string
	addInteractive bool
	addNewCred     bool
)

func init() {
	connectorsAddCmd.Flags().StringVar(&addName, "name", "", "connector name")
	connectorsAddCmd.Flags().StringArrayVar(&addValues, "set", nil, "field value as key=value (repeatable)")
	connectorsAddCmd.Flags().BoolVarP(&addInteractive, "interactive", "i", false, "prompt for each field")
	connectorsAddCmd.Flags().BoolVar(&addNewCred, "new-credential", false, "ignore the existing credential and enter a new one")

	connectorsCmd.AddCommand(connectorsListCmd)
	connectorsCmd.AddCommand(connectorsTypesCmd)
	connectorsCmd.AddCommand(connectorsAddCmd)
	connectorsCmd.AddCommand(connectorsActionsCmd)
	connectorsCmd.AddCommand(connectorsIndexCmd)
	connectorsCmd.AddCommand(connectorsReindexCmd)
	connectorsCmd.AddCommand(connectorsPauseCmd)
	connectorsCmd.AddCommand(connectorsResumeCmd)
	connectorsCmd.AddCommand(connectorsDeleteCmd)
	rootCmd.AddCommand(connectorsCmd)
}

// refreshPairs loads the current CCPair list. A refresh already running
// elsewhere is fine; its result will be read instead.
func refreshPairs(ctx context.Context) error {
	if reconciler == nil {
		return errNotConfigured("connector")
	}
	if err := reconciler.RefreshConnectors(ctx); err != nil && !errors.Is(err, domain.ErrRefreshInFlight) {
		return userError("refresh connectors", err)
	}
	return nil
}

func runConnectorsList(cmd *cobra.Command, _ []string) error {
	if err := requireCredentials(); err != nil {
		return err
	}
	if err := refreshPairs(commandContext(cmd)); err != nil {
		return err
	}

	pairs := reconciler.CCPairs()
	if len(pairs) == 0 {
		cmd.Println("No connectors configured.")
		cmd.Println("Run 'sercha-workspace connectors add <type>' to add one.")
		return nil
	}

	rows := make([][]string, 0, len(pairs))
	for i := range pairs {
		p := &pairs[i]
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			p.Name,
			p.Source,
			p.DisplayStatus(),
			strconv.Itoa(p.NumDocsIndexed),
			formatTime(p.LastIndexedAt),
		})
	}
	cmd.Println(renderTable([]string{"ID", "NAME", "TYPE", "STATUS", "DOCS", "LAST INDEXED"}, rows))
	return nil
}

func runConnectorsTypes(cmd *cobra.Command, _ []string) error {
	if schemaRegistry == nil {
		return errNotConfigured("schema")
	}
	schemas := schemaRegistry.List()
	rows := make([][]string, 0, len(schemas))
	for _, s := range schemas {
		rows = append(rows, []string{s.ID, s.Name, s.Description})
	}
	cmd.Println(renderTable([]string{"TYPE", "NAME", "DESCRIPTION"}, rows))
	return nil
}

func runConnectorsActions(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := requireCredentials(); err != nil {
		return err
	}
	if err := refreshPairs(commandContext(cmd)); err != nil {
		return err
	}
	set, err := connectorService.Actions(id)
	if err != nil {
		return userError("actions", err)
	}

	for _, a := range []domain.Action{
		domain.ActionIndex, domain.ActionFullReindex, domain.ActionPauseOrResume, domain.ActionDelete,
	} {
		ok, reason := set.Allows(a)
		if ok {
			cmd.Printf("  %-16s allowed\n", a)
		} else {
			cmd.Printf("  %-16s blocked: %s\n", a, reason)
		}
	}
	return nil
}

func runConnectorAction(cmd *cobra.Command, arg, done string, action func(context.Context, int) error) error {
	if connectorService == nil {
		return errNotConfigured("connector")
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	if err := requireCredentials(); err != nil {
		return err
	}
	ctx := commandContext(cmd)
	if err := refreshPairs(ctx); err != nil {
		return err
	}
	if err := action(ctx, id); err != nil {
		return userError(cmd.Name(), err)
	}
	cmd.Printf("%s for connector %d.\n", done, id)
	return nil
}

func runConnectorsAdd(cmd *cobra.Command, args []string) error {
	if connectorService == nil || schemaRegistry == nil || formInterpreter == nil {
		return errNotConfigured("connector")
	}
	if err := requireCredentials(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	schema := schemaRegistry.Get(args[0])
	if schema == nil {
		return fmt.Errorf("%w: unknown connector type %q, see 'sercha-workspace connectors types'",
			domain.ErrUnsupportedType, args[0])
	}

	if err := reconciler.RefreshEntitlements(ctx); err != nil && !errors.Is(err, domain.ErrRefreshInFlight) {
		logger.Warn("entitlement refresh failed: %v", err)
	}
	if decision := quotaGate.CheckOpen(); decision.Blocked {
		return errors.New(decision.Message)
	}

	var cred *domain.Credential
	if !addNewCred {
		var err error
		cred, err = connectorService.ExistingCredential(ctx, schema.ID)
		if err != nil {
			logger.Warn("could not look up existing credential: %v", err)
		}
	}
	if cred != nil {
		cmd.Printf("Using existing %s credential %d.\n", schema.Name, cred.ID)
	}

	state := formInterpreter.NewFormState(schema, cred)
	if addName != "" {
		state.Set(domain.FieldConnectorName, addName)
	}
	if err := applyValues(schema, state, addValues); err != nil {
		return err
	}
	if addInteractive {
		if err := promptFields(cmd, schema, state, cred); err != nil {
			return err
		}
	}

	pair, err := connectorService.Create(ctx, driving.CreateRequest{
		Source:     schema.ID,
		Form:       state,
		Credential: cred,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			for _, name := range verr.Fields.Names() {
				cmd.PrintErrf("  %s: %s\n", name, verr.Fields[name])
			}
		}
		return userError("create connector", err)
	}

	cmd.Printf("Created connector %q (id %d). Status: %s\n", pair.Name, pair.ID, pair.DisplayStatus())
	return nil
}

// applyValues sets key=value pairs on the form.
func applyValues(schema *domain.ConnectorSchema, state *domain.FormState, values []string) error {
	for _, kv := range values {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("%w: expected key=value, got %q", domain.ErrInvalidInput, kv)
		}
		if key == domain.FieldConnectorName {
			state.Set(key, value)
			continue
		}
		field, found := schema.FieldByName(key)
		if !found {
			return fmt.Errorf("%w: %s has no field %q", domain.ErrInvalidInput, schema.ID, key)
		}
		state.Set(key, formInterpreter.ParseInput(field, value))
	}
	return nil
}

// promptFields asks for every visible, enabled input until none is left.
// The form is re-rendered after each answer because answers change visibility.
func promptFields(cmd *cobra.Command, schema *domain.ConnectorSchema, state *domain.FormState, cred *domain.Credential) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	asked := make(map[string]bool)

	cmd.Println(schema.Name)
	if schema.Description != "" {
		cmd.Println(schema.Description)
	}
	cmd.Println()

	for {
		plan := formInterpreter.Render(schema, state, cred)
		if plan.AdvancedOffered && !state.AdvancedExpanded && !asked["advanced"] {
			asked["advanced"] = true
			cmd.Print("Configure advanced options? [y/N]: ")
			if answer, _ := readLine(reader); strings.EqualFold(answer, "y") {
				state.AdvancedExpanded = true
			}
			continue
		}

		next := nextUnasked(plan.Inputs(), asked)
		if next == nil {
			return nil
		}
		asked[next.Name] = true

		answer, err := promptField(cmd, reader, next)
		if err != nil {
			return err
		}
		if answer == "" {
			continue
		}
		if next.Field == nil {
			state.Set(next.Name, answer)
		} else {
			state.Set(next.Name, formInterpreter.ParseInput(next.Field, answer))
		}
	}
}

func nextUnasked(inputs []domain.RenderedField, asked map[string]bool) *domain.RenderedField {
	for i := range inputs {
		if !inputs[i].Disabled && !asked[inputs[i].Name] {
			return &inputs[i]
		}
	}
	return nil
}

func promptField(cmd *cobra.Command, reader *bufio.Reader, f *domain.RenderedField) (string, error) {
	label := f.Label
	if f.Required {
		label += " *"
	}
	if len(f.Tabs) > 0 {
		names := make([]string, 0, len(f.Tabs))
		for _, t := range f.Tabs {
			names = append(names, t.Name)
		}
		label += " (" + strings.Join(names, "/") + ")"
	}
	switch f.Kind {
	case domain.FieldKindCheckbox:
		label += " (true/false)"
	case domain.FieldKindSelect:
		if sel, ok := f.Field.(domain.SelectField); ok {
			values := make([]string, 0, len(sel.Options))
			for _, o := range sel.Options {
				values = append(values, o.Value)
			}
			label += " (" + strings.Join(values, "/") + ")"
		}
	}
	if isSecret(f) {
		return readSecret(cmd, reader, label+": ")
	}
	if current := fmt.Sprint(valueOrEmpty(f.Value)); current != "" {
		label += " [" + current + "]"
	}
	cmd.Printf("%s: ", label)
	return readLine(reader)
}

func isSecret(f *domain.RenderedField) bool {
	return f.Field != nil && f.Field.Spec().Secret
}

func valueOrEmpty(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(t, ",")
	default:
		return t
	}
}

// readLine reads one trimmed line. EOF after partial input is not an error.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
