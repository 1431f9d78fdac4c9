// Package tui provides an interactive terminal user interface for the
// workspace client. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// SchemaRegistry provides the configurable connector types.
	SchemaRegistry driving.SchemaRegistry

	// FormInterpreter evaluates connector forms.
	FormInterpreter driving.FormInterpreter

	// Quota gates connector creation and uploads.
	Quota driving.QuotaGate

	// Reconciler owns the CCPair list and entitlement snapshot.
	Reconciler driving.Reconciler

	// Connectors runs creation and lifecycle actions.
	Connectors driving.ConnectorService

	// Drive browses and uploads drive files.
	Drive driving.DriveService

	// Settings manages client settings.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Reconciler == nil {
		return ErrMissingReconciler
	}
	if p.Connectors == nil {
		return ErrMissingConnectorService
	}
	if p.SchemaRegistry == nil || p.FormInterpreter == nil {
		return ErrMissingFormServices
	}
	if p.Drive == nil {
		return ErrMissingDriveService
	}
	return nil
}
