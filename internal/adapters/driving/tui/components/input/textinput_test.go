package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/styles"
)

func TestNewFieldInput(t *testing.T) {
	input := NewFieldInput(styles.DefaultStyles(), "Base URL", false)

	require.NotNil(t, input)
	assert.Equal(t, "", input.Value())
	assert.Equal(t, "Base URL", input.Label())
	assert.False(t, input.Focused())
	assert.False(t, input.Secret())
}

func TestNewFieldInput_NilStyles(t *testing.T) {
	input := NewFieldInput(nil, "Name", false)

	require.NotNil(t, input)
	assert.NotNil(t, input.styles)
}

func TestFieldInput_Init(t *testing.T) {
	assert.NotNil(t, NewFieldInput(nil, "Name", false).Init())
}

func TestFieldInput_TypingRequiresFocus(t *testing.T) {
	input := NewFieldInput(nil, "Name", false)
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}

	input.Update(msg)
	assert.Equal(t, "", input.Value())

	input.Focus()
	updated, _ := input.Update(msg)
	assert.Equal(t, input, updated)
	assert.Equal(t, "a", input.Value())
}

func TestFieldInput_SecretHidesValue(t *testing.T) {
	input := NewFieldInput(nil, "Token", true)
	input.SetValue("ghp_secret")

	assert.True(t, input.Secret())
	assert.Equal(t, "ghp_secret", input.Value())
	assert.NotContains(t, input.View(), "ghp_secret")
}

func TestFieldInput_View(t *testing.T) {
	input := NewFieldInput(nil, "Base URL", false)
	input.SetValue("https://docs.example.com")

	view := input.View()
	assert.Contains(t, view, "Base URL:")
	assert.Contains(t, view, "https://docs.example.com")
}

func TestFieldInput_FocusBlur(t *testing.T) {
	input := NewFieldInput(nil, "Name", false)

	input.Focus()
	assert.True(t, input.Focused())
	input.Blur()
	assert.False(t, input.Focused())
}

func TestFieldInput_SetWidth(t *testing.T) {
	input := NewFieldInput(nil, "Name", false)

	input.SetWidth(100)
	assert.Equal(t, 100, input.Width())
	assert.Equal(t, 90, input.textinput.Width)

	input.SetWidth(10)
	assert.Equal(t, 20, input.textinput.Width)
}

func TestFieldInput_Reset(t *testing.T) {
	input := NewFieldInput(nil, "Name", false)
	input.SetValue("docs")

	input.Reset()

	assert.Equal(t, "", input.Value())
}
