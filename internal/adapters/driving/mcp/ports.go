package mcp

import (
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Reconciler provides the CCPair list and entitlement snapshot.
	Reconciler driving.Reconciler

	// Connectors runs guarded lifecycle actions. Optional.
	Connectors driving.ConnectorService

	// Schemas lists configurable connector types. Optional.
	Schemas driving.SchemaRegistry

	// Drive browses the workspace drive. Optional.
	Drive driving.DriveService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Reconciler == nil {
		return ErrMissingReconciler
	}
	return nil
}
