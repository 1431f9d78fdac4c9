// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionBackend
	SectionToken
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
)

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.ClientSettings
	err      error
	saved    bool

	section  Section
	selected int

	backendInput textinput.Model
	tokenInput   textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	backendInput := textinput.New()
	backendInput.Placeholder = domain.DefaultBackendURL
	backendInput.CharLimit = 512

	tokenInput := textinput.New()
	tokenInput.Placeholder = "Enter API token"
	tokenInput.EchoMode = textinput.EchoPassword
	tokenInput.CharLimit = 1024

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		backendInput:    backendInput,
		tokenInput:      tokenInput,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.saved = true
		v.section = SectionOverview
		v.backendInput.Blur()
		v.tokenInput.Blur()
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.section = SectionOverview
		v.backendInput.Blur()
		v.tokenInput.Blur()
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionBackend:
		return v.handleInputKeys(msg, &v.backendInput, v.setBackend)
	case SectionToken:
		return v.handleInputKeys(msg, &v.tokenInput, v.setToken)
	}
	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	const items = 2

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < items-1 {
			v.selected++
		}
	case keyEnter:
		v.saved = false
		if v.selected == 0 {
			v.section = SectionBackend
			v.backendInput.Reset()
			if v.settings != nil {
				v.backendInput.SetValue(v.settings.Backend.URL)
			}
			return v, v.backendInput.Focus()
		}
		v.section = SectionToken
		v.tokenInput.Reset()
		return v, v.tokenInput.Focus()
	}
	return v, nil
}

func (v *View) handleInputKeys(msg tea.KeyMsg, in *textinput.Model, save func(string) tea.Cmd) (*View, tea.Cmd) {
	if msg.String() == keyEnter {
		return v, save(in.Value())
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return v, cmd
}

func (v *View) setBackend(url string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: fmt.Errorf("settings service not available")}
		}
		return messages.SettingsSaved{Err: v.settingsService.SetBackend(url)}
	}
}

func (v *View) setToken(token string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: fmt.Errorf("settings service not available")}
		}
		if strings.TrimSpace(token) == "" {
			return messages.SettingsSaved{Err: fmt.Errorf("%w: token cannot be empty", domain.ErrInvalidInput)}
		}
		return messages.SettingsSaved{Err: v.settingsService.SetToken(token)}
	}
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	} else if v.saved {
		b.WriteString(v.styles.Success.Render("Saved."))
		b.WriteString("\n\n")
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionBackend:
		b.WriteString(v.styles.Subtitle.Render("Backend URL"))
		b.WriteString("\n")
		b.WriteString(v.styles.InputField.Render(v.backendInput.View()))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
	case SectionToken:
		b.WriteString(v.styles.Subtitle.Render("API token"))
		b.WriteString("\n")
		b.WriteString(v.styles.InputField.Render(v.tokenInput.View()))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
	}
	return b.String()
}

func (v *View) renderOverview() string {
	if v.settings == nil {
		return v.styles.Muted.Render("Loading settings...")
	}
	s := v.settings

	var b strings.Builder
	items := []struct{ label, value string }{
		{"Backend URL", s.Backend.URL},
		{"API token", s.Backend.MaskedToken()},
	}
	for i, item := range items {
		line := fmt.Sprintf("%-12s %s", item.label, item.value)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf(
		"Connector refresh every %s · drive auto-sync every %s · drive root %s",
		s.Poll.Interval, s.AutoSync.Interval, s.Drive.Root)))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[enter] edit  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset returns to the overview.
func (v *View) Reset() {
	v.section = SectionOverview
	v.selected = 0
	v.saved = false
	v.err = nil
	v.backendInput.Blur()
	v.tokenInput.Blur()
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.ClientSettings {
	return v.settings
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
