// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/styles"
)

// FieldInput wraps a bubbles textinput with a form label.
// Secret inputs echo as bullets.
type FieldInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	secret    bool
	width     int
}

// NewFieldInput creates an unfocused labelled input.
func NewFieldInput(s *styles.Styles, label string, secret bool) *FieldInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Width = 40
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}

	return &FieldInput{
		textinput: ti,
		styles:    s,
		label:     label,
		secret:    secret,
		width:     40,
	}
}

// Init returns the cursor blink command.
func (f *FieldInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (f *FieldInput) Update(msg tea.Msg) (*FieldInput, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the label and the input box.
func (f *FieldInput) View() string {
	label := f.styles.Normal.Render(f.label + ": ")
	if f.Focused() {
		label = f.styles.Title.Render(f.label + ": ")
	}
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, f.styles.InputField.Render(f.textinput.View()))
}

// Label returns the label text.
func (f *FieldInput) Label() string {
	return f.label
}

// Secret reports whether the input masks its value.
func (f *FieldInput) Secret() bool {
	return f.secret
}

// SetPlaceholder sets the placeholder shown while empty.
func (f *FieldInput) SetPlaceholder(p string) {
	f.textinput.Placeholder = p
}

// Value returns the current input value.
func (f *FieldInput) Value() string {
	return f.textinput.Value()
}

// SetValue sets the input value.
func (f *FieldInput) SetValue(value string) {
	f.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (f *FieldInput) Focus() tea.Cmd {
	return f.textinput.Focus()
}

// Blur removes focus from the input.
func (f *FieldInput) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the input is focused.
func (f *FieldInput) Focused() bool {
	return f.textinput.Focused()
}

// SetWidth sets the width available to label and input.
func (f *FieldInput) SetWidth(width int) {
	f.width = width
	inputWidth := width - len(f.label) - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	f.textinput.Width = inputWidth
}

// Width returns the current width.
func (f *FieldInput) Width() int {
	return f.width
}

// Reset clears the input.
func (f *FieldInput) Reset() {
	f.textinput.Reset()
}
