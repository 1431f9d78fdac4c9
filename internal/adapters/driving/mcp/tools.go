package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// ListConnectorsInput is the input schema for the list_connectors tool.
type ListConnectorsInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"fetch a fresh list from the backend before answering"`
}

// ListConnectorsOutput is the output schema for the list_connectors tool.
type ListConnectorsOutput struct {
	Connectors []ConnectorOutput `json:"connectors"`
	Count      int               `json:"count"`
}

// ConnectorOutput represents a single connector-credential pair.
type ConnectorOutput struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Source        string `json:"source"`
	Status        string `json:"status"`
	DisplayStatus string `json:"display_status"`
	DocsIndexed   int    `json:"docs_indexed"`
	LastIndexedAt string `json:"last_indexed_at,omitempty"`
	LastError     string `json:"last_error,omitempty"`
}

// ConnectorActionsInput is the input schema for the connector_actions tool.
type ConnectorActionsInput struct {
	ID     int    `json:"id" jsonschema:"the connector-credential pair id"`
	Action string `json:"action,omitempty" jsonschema:"optional action to run: index, full_reindex, pause_or_resume or delete"`
}

// ConnectorActionsOutput lists the allowed actions and the outcome of a run.
type ConnectorActionsOutput struct {
	ID      int             `json:"id"`
	Actions []ActionOutput  `json:"actions"`
	Ran     string          `json:"ran,omitempty"`
	Pair    ConnectorOutput `json:"connector"`
}

// ActionOutput is one action with its availability.
type ActionOutput struct {
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// EntitlementsInput is the input schema for the entitlements tool.
type EntitlementsInput struct{}

// EntitlementsOutput reports plan usage. Negative limits mean unlimited.
type EntitlementsOutput struct {
	Known           bool     `json:"known"`
	ConnectorsUsed  int      `json:"connectors_used"`
	ConnectorsLimit int      `json:"connectors_limit"`
	StorageUsedGB   float64  `json:"storage_used_gb"`
	StorageGB       float64  `json:"storage_gb"`
	Messages        []string `json:"messages,omitempty"`
}

// ListConnectorTypesInput is the input schema for the list_connector_types tool.
type ListConnectorTypesInput struct{}

// ListConnectorTypesOutput lists configurable connector types.
type ListConnectorTypesOutput struct {
	Types []ConnectorTypeOutput `json:"types"`
}

// ConnectorTypeOutput describes one connector type and its top-level fields.
type ConnectorTypeOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Fields      []string `json:"fields"`
}

// DriveListInput is the input schema for the drive_list tool.
type DriveListInput struct {
	Path string `json:"path,omitempty" jsonschema:"drive directory to list (default: current directory)"`
}

// DriveListOutput lists one drive directory.
type DriveListOutput struct {
	Path    string              `json:"path"`
	Entries []domain.DriveEntry `json:"entries"`
}

var toolActions = []domain.Action{
	domain.ActionIndex,
	domain.ActionFullReindex,
	domain.ActionPauseOrResume,
	domain.ActionDelete,
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_connectors",
		Description: "List configured connectors with their status and document counts",
	}, s.handleListConnectors)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "entitlements",
		Description: "Show plan usage and limits for connectors and storage",
	}, s.handleEntitlements)

	if s.ports.Connectors != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "connector_actions",
			Description: "Show which lifecycle actions a connector allows, optionally running one",
		}, s.handleConnectorActions)
	}

	if s.ports.Schemas != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_connector_types",
			Description: "List the connector types that can be configured",
		}, s.handleListConnectorTypes)
	}

	if s.ports.Drive != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "drive_list",
			Description: "List files and folders in the workspace drive",
		}, s.handleDriveList)
	}
}

func toConnectorOutput(p domain.CCPair) ConnectorOutput {
	out := ConnectorOutput{
		ID:            p.ID,
		Name:          p.Name,
		Source:        p.Source,
		Status:        p.Status.String(),
		DisplayStatus: p.DisplayStatus(),
		DocsIndexed:   p.NumDocsIndexed,
		LastError:     p.LastError,
	}
	if !p.LastIndexedAt.IsZero() {
		out.LastIndexedAt = p.LastIndexedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return out
}

func (s *Server) handleListConnectors(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListConnectorsInput,
) (*mcp.CallToolResult, ListConnectorsOutput, error) {
	if input.Refresh {
		err := s.ports.Reconciler.RefreshConnectors(ctx)
		if err != nil && !errors.Is(err, domain.ErrRefreshInFlight) {
			return nil, ListConnectorsOutput{}, toolError(err)
		}
	}

	pairs := s.ports.Reconciler.CCPairs()
	output := ListConnectorsOutput{
		Connectors: make([]ConnectorOutput, len(pairs)),
		Count:      len(pairs),
	}
	for i := range pairs {
		output.Connectors[i] = toConnectorOutput(pairs[i])
	}
	return nil, output, nil
}

func (s *Server) handleConnectorActions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConnectorActionsInput,
) (*mcp.CallToolResult, ConnectorActionsOutput, error) {
	pair, ok := s.ports.Reconciler.CCPair(input.ID)
	if !ok {
		return nil, ConnectorActionsOutput{}, fmt.Errorf("connector %d not found", input.ID)
	}

	if input.Action != "" {
		if err := s.runAction(ctx, input.ID, domain.Action(input.Action)); err != nil {
			return nil, ConnectorActionsOutput{}, toolError(err)
		}
		if updated, ok := s.ports.Reconciler.CCPair(input.ID); ok {
			pair = updated
		}
	}

	set, err := s.ports.Connectors.Actions(input.ID)
	if err != nil {
		// A deleted pair has no actions left.
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, ConnectorActionsOutput{}, err
		}
	}

	output := ConnectorActionsOutput{
		ID:   input.ID,
		Ran:  input.Action,
		Pair: toConnectorOutput(pair),
	}
	for _, a := range toolActions {
		allowed, reason := set.Allows(a)
		item := ActionOutput{Action: string(a), Allowed: allowed}
		if !allowed {
			item.Reason = reason
		}
		output.Actions = append(output.Actions, item)
	}
	return nil, output, nil
}

// toolError keeps local input errors readable and maps backend failures
// to the message the UI would show.
func toolError(err error) error {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return errors.New(domain.UserMessage(err))
	}
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return errors.New(domain.UserMessage(err))
}

func (s *Server) runAction(ctx context.Context, id int, action domain.Action) error {
	switch action {
	case domain.ActionIndex:
		return s.ports.Connectors.Index(ctx, id, false)
	case domain.ActionFullReindex:
		return s.ports.Connectors.Index(ctx, id, true)
	case domain.ActionPauseOrResume:
		return s.ports.Connectors.TogglePause(ctx, id)
	case domain.ActionDelete:
		return s.ports.Connectors.Delete(ctx, id)
	default:
		return fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
	}
}

func (s *Server) handleEntitlements(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EntitlementsInput,
) (*mcp.CallToolResult, EntitlementsOutput, error) {
	if s.ports.Reconciler.Entitlement() == nil {
		// Nothing cached yet; a failure here leaves the output unknown.
		_ = s.ports.Reconciler.RefreshEntitlements(ctx)
	}

	e := s.ports.Reconciler.Entitlement()
	if e == nil {
		return nil, EntitlementsOutput{}, nil
	}
	output := EntitlementsOutput{
		Known:           true,
		ConnectorsUsed:  e.ConnectorsUsed,
		ConnectorsLimit: e.ConnectorsLimit,
		StorageUsedGB:   e.StorageUsedGB,
		StorageGB:       e.StorageGB,
	}
	if e.ConnectorsExhausted() {
		output.Messages = append(output.Messages, domain.ConnectorLimitMessage(e))
	}
	if e.StorageExhausted() {
		output.Messages = append(output.Messages, domain.StorageLimitMessage(e))
	}
	return nil, output, nil
}

func (s *Server) handleListConnectorTypes(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListConnectorTypesInput,
) (*mcp.CallToolResult, ListConnectorTypesOutput, error) {
	schemas := s.ports.Schemas.List()
	output := ListConnectorTypesOutput{Types: make([]ConnectorTypeOutput, len(schemas))}
	for i := range schemas {
		fields := make([]string, 0, len(schemas[i].Fields))
		for _, f := range schemas[i].Fields {
			fields = append(fields, f.Spec().Name)
		}
		output.Types[i] = ConnectorTypeOutput{
			ID:          schemas[i].ID,
			Name:        schemas[i].Name,
			Description: schemas[i].Description,
			Fields:      fields,
		}
	}
	return nil, output, nil
}

func (s *Server) handleDriveList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DriveListInput,
) (*mcp.CallToolResult, DriveListOutput, error) {
	var err error
	if input.Path == "" {
		err = s.ports.Drive.Refresh(ctx)
	} else {
		err = s.ports.Drive.ChangeDir(ctx, input.Path)
	}
	if err != nil {
		return nil, DriveListOutput{}, toolError(err)
	}
	return nil, DriveListOutput{Path: s.ports.Drive.Path(), Entries: s.ports.Drive.Listing()}, nil
}
