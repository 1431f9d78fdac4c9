// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewConnectors lists connectors and their actions.
	ViewConnectors
	// ViewAddConnector is the connector creation dialog.
	ViewAddConnector
	// ViewDrive is the drive browser.
	ViewDrive
	// ViewSettings is the settings view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewConnectors:
		return "connectors"
	case ViewAddConnector:
		return "add_connector"
	case ViewDrive:
		return "drive"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// ConnectorsUpdated is sent whenever the CCPair list or the entitlement
// snapshot changes.
type ConnectorsUpdated struct{}

// ConnectorActionDone reports the outcome of a lifecycle action.
type ConnectorActionDone struct {
	CCPairID int
	Action   domain.Action
	Err      error
}

// AddConnectorRequested asks the app to open the creation dialog for a type.
// An empty SchemaID opens the type picker.
type AddConnectorRequested struct {
	SchemaID string
}

// CredentialLoaded carries the existing credential for the dialog's type.
type CredentialLoaded struct {
	SchemaID   string
	Credential *domain.Credential
	Err        error
}

// ConnectorCreated reports the outcome of a creation submit.
type ConnectorCreated struct {
	Pair *domain.CCPair
	Err  error
}

// DriveLoaded reports the outcome of a directory listing.
type DriveLoaded struct {
	Path string
	Err  error
}

// DriveTick re-renders drive progress and sync state.
type DriveTick struct{}

// UploadDone reports the outcome of an upload batch.
type UploadDone struct {
	Result *domain.UploadResult
	Err    error
}

// DriveDeleted reports the outcome of a delete.
type DriveDeleted struct {
	Result *domain.DeleteResult
	Err    error
}

// SettingsLoaded carries the client settings.
type SettingsLoaded struct {
	Settings *domain.ClientSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
