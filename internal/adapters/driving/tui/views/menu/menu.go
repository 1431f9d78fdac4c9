// Package menu is the landing screen: one entry per area plus the current
// plan usage.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Shortcut jumps straight to it; Quit items end the
// program instead of switching view.
type Item struct {
	Label    string
	Hint     string
	Shortcut string
	View     messages.ViewType
	Quit     bool
}

// View is the main menu.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	subtitle string
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		keys:     keymap.DefaultKeyMap(),
		subtitle: "Connectors and drive",
		items: []Item{
			{Label: "Connectors", Hint: "add, index and pause sources", Shortcut: "c", View: messages.ViewConnectors},
			{Label: "Drive", Hint: "upload files for indexing", Shortcut: "d", View: messages.ViewDrive},
			{Label: "Settings", Hint: "backend and token", Shortcut: "s", View: messages.ViewSettings},
			{Label: "Help", Shortcut: "?", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and turns a choice into a ViewChanged message.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.selected > 0 {
				v.selected--
			}
		case key.Matches(msg, v.keys.Down):
			if v.selected < len(v.items)-1 {
				v.selected++
			}
		case key.Matches(msg, v.keys.Select):
			return v, v.choose(v.items[v.selected])
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		default:
			for i, item := range v.items {
				if item.Shortcut != "" && msg.String() == item.Shortcut {
					v.selected = i
					return v, v.choose(item)
				}
			}
		}
	}
	return v, nil
}

func (v *View) choose(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Sercha Workspace"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(v.subtitle))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := item.Label
		if item.Shortcut != "" {
			label = fmt.Sprintf("%-12s %s", item.Label, v.styles.Muted.Render("["+item.Shortcut+"]"))
		}
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(item.Label))
			if item.Hint != "" {
				b.WriteString("  " + v.styles.Muted.Render(item.Hint))
			}
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] select  [q] quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// SetSubtitle replaces the line under the title, e.g. with plan usage.
func (v *View) SetSubtitle(subtitle string) {
	v.subtitle = subtitle
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.selected
}
