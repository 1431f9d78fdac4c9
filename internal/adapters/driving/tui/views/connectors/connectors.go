// Package connectors provides the connector list view for the TUI.
package connectors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// View lists CCPairs with their status and runs lifecycle actions.
// It reads the reconciler's snapshot and never mutates it directly.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	bar        *status.Bar
	reconciler driving.Reconciler
	connectors driving.ConnectorService
	quota      driving.QuotaGate

	pairs       []domain.CCPair
	entitlement *domain.Entitlement
	selected    int
	// confirmDelete holds the pair id awaiting a second keypress.
	confirmDelete int
	width         int
	height        int
	ready         bool
}

// NewView creates a new connectors view.
func NewView(
	s *styles.Styles,
	reconciler driving.Reconciler,
	connectors driving.ConnectorService,
	quota driving.QuotaGate,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	bar.SetBindings(km.ConnectorsHelp())

	return &View{
		styles:     s,
		keymap:     km,
		bar:        bar,
		reconciler: reconciler,
		connectors: connectors,
		quota:      quota,
	}
}

// Init loads the current snapshot and asks for a fresh one.
func (v *View) Init() tea.Cmd {
	v.reload()
	return v.refresh()
}

// refresh returns a command that refreshes the CCPair list. The result
// arrives through the reconciler's update channel.
func (v *View) refresh() tea.Cmd {
	if v.reconciler == nil {
		return nil
	}
	return func() tea.Msg {
		err := v.reconciler.RefreshConnectors(context.Background())
		if err != nil && !errors.Is(err, domain.ErrRefreshInFlight) {
			return messages.ErrorOccurred{Err: err}
		}
		return nil
	}
}

// reload copies the reconciler's snapshot into the view.
func (v *View) reload() {
	if v.reconciler == nil {
		return
	}
	v.pairs = v.reconciler.CCPairs()
	v.entitlement = v.reconciler.Entitlement()
	if v.selected >= len(v.pairs) {
		v.selected = max(len(v.pairs)-1, 0)
	}
}

// Update handles messages for the connectors view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ConnectorsUpdated:
		v.reload()
		return v, nil

	case messages.ConnectorActionDone:
		if msg.Err != nil {
			v.bar.SetState(status.StateError, domain.UserMessage(msg.Err))
		} else {
			v.bar.SetState(status.StateNotice, doneMessage(msg.Action))
		}
		v.reload()
		return v, nil

	case messages.ErrorOccurred:
		v.bar.SetState(status.StateError, domain.UserMessage(msg.Err))
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	if v.confirmDelete != 0 {
		id := v.confirmDelete
		v.confirmDelete = 0
		if keyStr == "y" {
			v.bar.SetState(status.StateBusy, "Deleting...")
			return v, v.runAction(id, domain.ActionDelete)
		}
		v.bar.Clear()
		return v, nil
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(keyStr, v.keymap.Down):
		if v.selected < len(v.pairs)-1 {
			v.selected++
		}
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case keymap.Matches(keyStr, v.keymap.Add):
		return v, v.openAdd()
	case keymap.Matches(keyStr, v.keymap.Refresh):
		v.bar.SetState(status.StateBusy, "Refreshing...")
		return v, v.refresh()
	case keymap.Matches(keyStr, v.keymap.Index):
		return v, v.tryAction(domain.ActionIndex)
	case keymap.Matches(keyStr, v.keymap.Reindex):
		return v, v.tryAction(domain.ActionFullReindex)
	case keymap.Matches(keyStr, v.keymap.Pause):
		return v, v.tryAction(domain.ActionPauseOrResume)
	case keymap.Matches(keyStr, v.keymap.Delete):
		return v, v.tryAction(domain.ActionDelete)
	}
	return v, nil
}

// openAdd consults the quota gate before the creation dialog opens.
func (v *View) openAdd() tea.Cmd {
	if v.quota != nil {
		if decision := v.quota.CheckOpen(); decision.Blocked {
			v.bar.SetState(status.StateError, decision.Message)
			return nil
		}
	}
	return func() tea.Msg { return messages.AddConnectorRequested{} }
}

// tryAction checks the selected pair's action set before issuing anything.
// Blocked actions only explain why.
func (v *View) tryAction(action domain.Action) tea.Cmd {
	pair, ok := v.Selected()
	if !ok || v.connectors == nil {
		return nil
	}
	set, err := v.connectors.Actions(pair.ID)
	if err != nil {
		v.bar.SetState(status.StateError, domain.UserMessage(err))
		return nil
	}
	if allowed, reason := set.Allows(action); !allowed {
		v.bar.SetState(status.StateError, reason)
		return nil
	}

	if action == domain.ActionDelete {
		v.confirmDelete = pair.ID
		v.bar.SetState(status.StateBusy, fmt.Sprintf("Delete %q? [y/N]", pair.Name))
		return nil
	}
	v.bar.SetState(status.StateBusy, "Working...")
	return v.runAction(pair.ID, action)
}

func (v *View) runAction(id int, action domain.Action) tea.Cmd {
	svc := v.connectors
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch action {
		case domain.ActionIndex:
			err = svc.Index(ctx, id, false)
		case domain.ActionFullReindex:
			err = svc.Index(ctx, id, true)
		case domain.ActionPauseOrResume:
			err = svc.TogglePause(ctx, id)
		case domain.ActionDelete:
			err = svc.Delete(ctx, id)
		}
		return messages.ConnectorActionDone{CCPairID: id, Action: action, Err: err}
	}
}

func doneMessage(action domain.Action) string {
	switch action {
	case domain.ActionIndex:
		return "Indexing started"
	case domain.ActionFullReindex:
		return "Full re-index started"
	case domain.ActionPauseOrResume:
		return "Status change requested"
	case domain.ActionDelete:
		return "Connector deleted"
	default:
		return "Done"
	}
}

// View renders the connectors view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Connectors"))
	b.WriteString("\n")
	b.WriteString(v.renderUsage())
	b.WriteString("\n\n")

	if len(v.pairs) == 0 {
		b.WriteString(v.styles.Muted.Render("No connectors yet. Press [a] to add one."))
		b.WriteString("\n")
	} else {
		for i := range v.pairs {
			b.WriteString(v.renderPair(i, &v.pairs[i]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(v.renderActions())
	}

	b.WriteString("\n")
	v.bar.SetWidth(v.width)
	b.WriteString(v.bar.View())
	return b.String()
}

func (v *View) renderUsage() string {
	e := v.entitlement
	if e == nil {
		return v.styles.Muted.Render("Usage unavailable")
	}
	line := fmt.Sprintf("Connectors %d/%s · Storage %.1f/%s GB",
		e.ConnectorsUsed, limitString(float64(e.ConnectorsLimit), "%.0f"),
		e.StorageUsedGB, limitString(e.StorageGB, "%.1f"))
	return v.styles.Quota(e).Render(line)
}

func limitString(v float64, format string) string {
	if v < 0 {
		return "∞"
	}
	return fmt.Sprintf(format, v)
}

func (v *View) renderPair(index int, p *domain.CCPair) string {
	name := p.Name
	maxName := v.width - 40
	if maxName < 10 {
		maxName = 10
	}
	if len(name) > maxName {
		name = name[:maxName-3] + "..."
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s [%s] %s", maxName, name, p.Source, p.DisplayStatus()))
	}
	return "  " + v.styles.Normal.Render(fmt.Sprintf("%-*s ", maxName, name)) +
		v.styles.Muted.Render(fmt.Sprintf("[%s] ", p.Source)) +
		v.styles.ConnectorStatus(p).Render(p.DisplayStatus())
}

// renderActions shows what the selected pair allows.
func (v *View) renderActions() string {
	pair, ok := v.Selected()
	if !ok || v.connectors == nil {
		return ""
	}
	set, err := v.connectors.Actions(pair.ID)
	if err != nil {
		return ""
	}

	var parts []string
	for _, a := range []struct {
		action domain.Action
		label  string
	}{
		{domain.ActionIndex, "[i] index"},
		{domain.ActionFullReindex, "[r] re-index"},
		{domain.ActionPauseOrResume, "[p] " + pauseLabel(&pair)},
		{domain.ActionDelete, "[d] delete"},
	} {
		if allowed, _ := set.Allows(a.action); allowed {
			parts = append(parts, v.styles.Normal.Render(a.label))
		} else {
			parts = append(parts, v.styles.Muted.Render(a.label))
		}
	}
	line := strings.Join(parts, "  ")
	if set.BlockedReason != "" {
		line += "\n" + v.styles.Muted.Render("Indexing: "+set.BlockedReason)
	}
	if pair.LastError != "" {
		line += "\n" + v.styles.Error.Render("Last error: "+pair.LastError)
	}
	return line
}

func pauseLabel(p *domain.CCPair) string {
	if p.PauseToggleTarget() == domain.StatusActive {
		return "resume"
	}
	return "pause"
}

// Selected returns the pair under the cursor.
func (v *View) Selected() (domain.CCPair, bool) {
	if v.selected < 0 || v.selected >= len(v.pairs) {
		return domain.CCPair{}, false
	}
	return v.pairs[v.selected], true
}

// Pairs returns the rendered pairs.
func (v *View) Pairs() []domain.CCPair {
	return v.pairs
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.bar
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}
