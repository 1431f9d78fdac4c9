// Package styles holds the palette and the lipgloss styles every view shares.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// Theme is the colour palette. Status colours double as CCPair and sync
// badges, so keep them distinct from Accent and Info.
type Theme struct {
	Accent  lipgloss.Color
	Info    lipgloss.Color
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Surface lipgloss.Color
	Edge    lipgloss.Color

	OK      lipgloss.Color
	Caution lipgloss.Color
	Danger  lipgloss.Color
}

// DefaultTheme is a dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#7C3AED"),
		Info:    lipgloss.Color("#06B6D4"),
		Text:    lipgloss.Color("#CDD6F4"),
		Dim:     lipgloss.Color("#6C7086"),
		Surface: lipgloss.Color("#181825"),
		Edge:    lipgloss.Color("#45475A"),
		OK:      lipgloss.Color("#A6E3A1"),
		Caution: lipgloss.Color("#F9E2AF"),
		Danger:  lipgloss.Color("#F38BA8"),
	}
}

// Styles are the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	// InputField frames the focused form input.
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
}

// NewStyles derives styles from theme, falling back to DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		theme:    theme,
		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Info).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Dim),
		Selected: fg(theme.Text).Background(theme.Accent).Bold(true),
		Help:     fg(theme.Dim),
		Error:    fg(theme.Danger),
		Success:  fg(theme.OK),
		Warning:  fg(theme.Caution),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Edge).
			Padding(0, 1),
		StatusBar: fg(theme.Dim).Background(theme.Surface).Padding(0, 1),
	}
}

// DefaultStyles returns styles for DefaultTheme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

func (s *Styles) Theme() *Theme {
	return s.theme
}

// ConnectorStatus returns the style of a CCPair status badge.
func (s *Styles) ConnectorStatus(p *domain.CCPair) lipgloss.Style {
	switch {
	case p.Status == domain.StatusInvalid:
		return s.Error
	case p.Status == domain.StatusDeleting, p.Status == domain.StatusPaused:
		return s.Warning
	case p.Indexing, p.Status == domain.StatusInitialIndexing, p.Status == domain.StatusScheduled:
		return s.Subtitle
	case p.Status == domain.StatusActive:
		return s.Success
	default:
		return s.Muted
	}
}

// SyncState returns the style of the drive auto-sync indicator.
func (s *Styles) SyncState(state domain.SyncState) lipgloss.Style {
	switch state {
	case domain.SyncSuccess:
		return s.Success
	case domain.SyncError:
		return s.Error
	case domain.SyncSyncing:
		return s.Subtitle
	default:
		return s.Muted
	}
}

// Quota styles a usage line: warning once no further connector fits.
func (s *Styles) Quota(e *domain.Entitlement) lipgloss.Style {
	switch {
	case e == nil:
		return s.Muted
	case e.ConnectorsExhausted():
		return s.Warning
	default:
		return s.Normal
	}
}
