package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/views/addconnector"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/views/connectors"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/views/drive"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView         *menu.View
	connectorsView   *connectors.View
	addConnectorView *addconnector.View
	driveView        *drive.View
	settingsView     *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingReconciler)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:            ports,
		ctx:              context.Background(),
		styles:           s,
		menuView:         menu.NewView(s),
		connectorsView:   connectors.NewView(s, ports.Reconciler, ports.Connectors, ports.Quota),
		addConnectorView: addconnector.NewView(s, ports.SchemaRegistry, ports.FormInterpreter, ports.Connectors),
		driveView:        drive.NewView(s, ports.Drive),
		settingsView:     settings.NewView(s, ports.Settings),
		currentView:      messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	a.updateSubtitle()
	return tea.Batch(
		tea.SetWindowTitle("sercha workspace"),
		a.waitForUpdates(),
	)
}

// waitForUpdates blocks on the reconciler's update channel and turns the
// next signal into a ConnectorsUpdated message.
func (a *App) waitForUpdates() tea.Cmd {
	updates := a.ports.Reconciler.Updates()
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return messages.ConnectorsUpdated{}
	}
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.AddConnectorRequested:
		a.leaveCurrent()
		a.currentView = messages.ViewAddConnector
		return a, a.addConnectorView.Open(msg.SchemaID)

	case messages.ConnectorsUpdated:
		a.updateSubtitle()
		a.connectorsView, cmd = a.connectorsView.Update(msg)
		return a, tea.Batch(cmd, a.waitForUpdates())

	case messages.ConnectorActionDone:
		a.connectorsView, cmd = a.connectorsView.Update(msg)
		return a, cmd

	case messages.CredentialLoaded, messages.ConnectorCreated:
		a.addConnectorView, cmd = a.addConnectorView.Update(msg)
		return a, cmd

	case messages.DriveLoaded, messages.DriveTick, messages.UploadDone,
		messages.DriveDeleted, spinner.TickMsg:
		a.driveView, cmd = a.driveView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.updateCurrent(msg)

	case messages.Quit:
		a.leaveCurrent()
		return a, tea.Quit
	}

	return a, a.updateCurrent(msg)
}

// updateCurrent forwards msg to the active view.
func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewConnectors:
		a.connectorsView, cmd = a.connectorsView.Update(msg)
	case messages.ViewAddConnector:
		a.addConnectorView, cmd = a.addConnectorView.Update(msg)
	case messages.ViewDrive:
		a.driveView, cmd = a.driveView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && (key.Type == tea.KeyEsc || key.String() == "q") {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// switchTo activates view and runs its initialisation.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.leaveCurrent()
	a.currentView = view

	switch view {
	case messages.ViewConnectors:
		return a.connectorsView.Init()
	case messages.ViewAddConnector:
		return a.addConnectorView.Open("")
	case messages.ViewDrive:
		a.ports.Drive.SetVisible(a.ctx, true)
		return a.driveView.Init()
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewMenu:
		a.updateSubtitle()
	case messages.ViewHelp:
	}
	return nil
}

// leaveCurrent pauses background work tied to the active view.
func (a *App) leaveCurrent() {
	if a.currentView == messages.ViewDrive {
		a.driveView.Leave()
		a.ports.Drive.SetVisible(a.ctx, false)
	}
}

// updateSubtitle shows entitlement usage under the menu title.
func (a *App) updateSubtitle() {
	a.menuView.SetSubtitle(usageLine(a.ports.Reconciler.Entitlement()))
}

func usageLine(e *domain.Entitlement) string {
	if e == nil {
		return "Connectors and drive"
	}
	connectors := fmt.Sprintf("%d connectors", e.ConnectorsUsed)
	if e.ConnectorsLimit >= 0 {
		connectors = fmt.Sprintf("%d/%d connectors", e.ConnectorsUsed, e.ConnectorsLimit)
	}
	storage := fmt.Sprintf("%.1f GB used", e.StorageUsedGB)
	if e.StorageGB >= 0 {
		storage = fmt.Sprintf("%.1f/%.1f GB", e.StorageUsedGB, e.StorageGB)
	}
	return connectors + " · " + storage
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewConnectors:
		return a.connectorsView.View()
	case messages.ViewAddConnector:
		return a.addConnectorView.View()
	case messages.ViewDrive:
		return a.driveView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back
  ctrl+c      Quit

Connectors:
  a           Add connector
  i / r       Index / re-index from the beginning
  p           Pause or resume
  d           Delete
  R           Refresh

Add connector:
  tab / ↓     Next field
  shift+tab   Previous field
  ctrl+a      Show advanced options
  ctrl+s      Create

Drive:
  enter       Open folder
  backspace   Parent folder
  u / m / d   Upload / new folder / delete
  s           Sync now

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	a.leaveCurrent()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.connectorsView.SetDimensions(width, height)
	a.addConnectorView.SetDimensions(width, height)
	a.driveView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
