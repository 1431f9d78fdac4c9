// Package addconnector provides the connector creation dialog for the TUI.
// The form is driven entirely by the connector schema: every keypress
// updates the form state and the next render re-evaluates visibility.
package addconnector

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// Step tracks the dialog's progress.
type Step int

const (
	StepSelectType Step = iota
	StepLoading
	StepForm
	StepSubmitting
	StepComplete
)

// View is the connector creation dialog.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	bar        *status.Bar
	registry   driving.SchemaRegistry
	forms      driving.FormInterpreter
	connectors driving.ConnectorService

	step       Step
	schemas    []domain.ConnectorSchema
	typeCursor int

	schema     *domain.ConnectorSchema
	credential *domain.Credential
	state      *domain.FormState
	inputs     map[string]*input.FieldInput
	focus      int
	created    *domain.CCPair

	width  int
	height int
	ready  bool
}

// NewView creates a new add connector view.
func NewView(
	s *styles.Styles,
	registry driving.SchemaRegistry,
	forms driving.FormInterpreter,
	connectors driving.ConnectorService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()
	return &View{
		styles:     s,
		keymap:     km,
		bar:        status.NewBar(s, km),
		registry:   registry,
		forms:      forms,
		connectors: connectors,
		inputs:     make(map[string]*input.FieldInput),
	}
}

// Open starts the dialog. An empty schemaID shows the type picker first.
// Quota has already been checked by the caller.
func (v *View) Open(schemaID string) tea.Cmd {
	v.Reset()
	if v.registry != nil {
		v.schemas = v.registry.List()
	}
	if schemaID == "" {
		v.step = StepSelectType
		return nil
	}
	return v.selectSchema(schemaID)
}

func (v *View) selectSchema(schemaID string) tea.Cmd {
	if v.registry == nil || v.forms == nil {
		v.bar.SetState(status.StateError, "connector services not available")
		return nil
	}
	schema := v.registry.Get(schemaID)
	if schema == nil {
		v.bar.SetState(status.StateError, fmt.Sprintf("unknown connector type %q", schemaID))
		return nil
	}
	v.schema = schema
	v.step = StepLoading
	v.bar.SetState(status.StateBusy, "Loading...")

	svc := v.connectors
	return func() tea.Msg {
		if svc == nil {
			return messages.CredentialLoaded{SchemaID: schemaID}
		}
		cred, err := svc.ExistingCredential(context.Background(), schemaID)
		return messages.CredentialLoaded{SchemaID: schemaID, Credential: cred, Err: err}
	}
}

// Update handles messages for the dialog.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.CredentialLoaded:
		if v.schema == nil || msg.SchemaID != v.schema.ID {
			return v, nil
		}
		// A failed lookup only means no reuse.
		if msg.Err == nil {
			v.credential = msg.Credential
		}
		v.state = v.forms.NewFormState(v.schema, v.credential)
		v.step = StepForm
		v.bar.Clear()
		v.bar.SetBindings(v.keymap.FormHelp())
		return v, v.focusCurrent()

	case messages.ConnectorCreated:
		if msg.Err != nil {
			v.step = StepForm
			v.bar.SetState(status.StateError, domain.UserMessage(msg.Err))
			return v, v.focusCurrent()
		}
		v.created = msg.Pair
		v.step = StepComplete
		v.bar.SetState(status.StateNotice, fmt.Sprintf("Created %q", msg.Pair.Name))
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	if keymap.Matches(keyStr, v.keymap.Back) {
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewConnectors} }
	}

	switch v.step {
	case StepSelectType:
		return v.handleTypeSelect(keyStr)
	case StepForm:
		return v.handleFormKey(msg)
	case StepComplete:
		if keyStr == "enter" {
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewConnectors} }
		}
	case StepLoading, StepSubmitting:
	}
	return v, nil
}

func (v *View) handleTypeSelect(keyStr string) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.typeCursor > 0 {
			v.typeCursor--
		}
	case keymap.Matches(keyStr, v.keymap.Down):
		if v.typeCursor < len(v.schemas)-1 {
			v.typeCursor++
		}
	case keyStr == "enter":
		if v.typeCursor < len(v.schemas) {
			return v, v.selectSchema(v.schemas[v.typeCursor].ID)
		}
	}
	return v, nil
}

// handleFormKey routes keys either to navigation or to the focused field.
func (v *View) handleFormKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	fields := v.focusable()

	switch keyStr {
	case "tab", "down":
		v.moveFocus(1, len(fields))
		return v, v.focusCurrent()
	case "shift+tab", "up":
		v.moveFocus(-1, len(fields))
		return v, v.focusCurrent()
	case "ctrl+a":
		v.state.ToggleAdvanced()
		return v, nil
	case "ctrl+s":
		return v, v.submit()
	}

	if v.focus >= len(fields) {
		return v, nil
	}
	f := fields[v.focus]

	switch f.Kind {
	case domain.FieldKindCheckbox:
		if keyStr == " " || keyStr == "enter" {
			on, _ := f.Value.(bool)
			v.state.Set(f.Name, !on)
		}
		return v, nil
	case domain.FieldKindSelect:
		if sel, ok := f.Field.(domain.SelectField); ok {
			v.cycle(f.Name, optionValues(sel.Options), keyStr)
		}
		return v, nil
	case domain.FieldKindTabGroup:
		names := make([]string, len(f.Tabs))
		for i, t := range f.Tabs {
			names[i] = t.Name
		}
		v.cycle(f.Name, names, keyStr)
		return v, nil
	}

	if keyStr == "enter" {
		v.moveFocus(1, len(fields))
		return v, v.focusCurrent()
	}
	in := v.input(f)
	_, cmd := in.Update(msg)
	v.state.Set(f.Name, v.forms.ParseInput(f.Field, in.Value()))
	return v, cmd
}

// cycle moves a select or tab value left or right.
func (v *View) cycle(name string, values []string, keyStr string) {
	if len(values) == 0 {
		return
	}
	current := v.state.String(name)
	idx := 0
	for i, val := range values {
		if val == current {
			idx = i
		}
	}
	switch keyStr {
	case "right", "l", " ":
		idx = (idx + 1) % len(values)
	case "left", "h":
		idx = (idx - 1 + len(values)) % len(values)
	default:
		return
	}
	v.state.Set(name, values[idx])
}

func optionValues(opts []domain.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func (v *View) moveFocus(delta, n int) {
	if n == 0 {
		v.focus = 0
		return
	}
	v.focus = (v.focus + delta + n) % n
}

// plan renders the form for the current state.
func (v *View) plan() *domain.RenderPlan {
	return v.forms.Render(v.schema, v.state, v.credential)
}

// focusable returns the visible, enabled inputs in display order.
func (v *View) focusable() []domain.RenderedField {
	if v.state == nil {
		return nil
	}
	var out []domain.RenderedField
	for _, f := range v.plan().Inputs() {
		if !f.Disabled {
			out = append(out, f)
		}
	}
	return out
}

// input returns the text input backing a field, creating it on first use.
func (v *View) input(f domain.RenderedField) *input.FieldInput {
	if in, ok := v.inputs[f.Name]; ok {
		return in
	}
	secret := f.Field != nil && f.Field.Spec().Secret
	in := input.NewFieldInput(v.styles, f.Label, secret)
	in.SetValue(displayValue(f.Value))
	if tf, ok := f.Field.(domain.TextField); ok && tf.Placeholder != "" {
		in.SetPlaceholder(tf.Placeholder)
	}
	if f.Kind == domain.FieldKindList {
		in.SetPlaceholder("comma separated")
	}
	in.SetWidth(v.width)
	v.inputs[f.Name] = in
	return in
}

func (v *View) focusCurrent() tea.Cmd {
	for _, in := range v.inputs {
		in.Blur()
	}
	fields := v.focusable()
	if len(fields) == 0 {
		return nil
	}
	if v.focus >= len(fields) {
		v.focus = len(fields) - 1
	}
	f := fields[v.focus]
	if !isTextKind(f.Kind) {
		return nil
	}
	return v.input(f).Focus()
}

func isTextKind(k domain.FieldKind) bool {
	switch k {
	case domain.FieldKindCheckbox, domain.FieldKindSelect, domain.FieldKindTabGroup:
		return false
	default:
		return true
	}
}

func displayValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// submit hands the form to the connector service, which runs the quota
// gate and validation before any network call.
func (v *View) submit() tea.Cmd {
	if v.connectors == nil {
		v.bar.SetState(status.StateError, "connector service not available")
		return nil
	}
	if errs := v.forms.Validate(v.schema, v.state, v.credential); len(errs) > 0 {
		v.state.Errors = errs
		v.bar.SetState(status.StateError, "Please fix the highlighted fields.")
		return nil
	}

	v.step = StepSubmitting
	v.bar.SetState(status.StateBusy, "Creating connector...")
	req := driving.CreateRequest{Source: v.schema.ID, Form: v.state, Credential: v.credential}
	svc := v.connectors
	return func() tea.Msg {
		pair, err := svc.Create(context.Background(), req)
		return messages.ConnectorCreated{Pair: pair, Err: err}
	}
}

// View renders the dialog.
func (v *View) View() string {
	var b strings.Builder

	switch v.step {
	case StepSelectType:
		b.WriteString(v.renderTypeSelect())
	case StepLoading:
		b.WriteString(v.styles.Title.Render("Add Connector"))
		b.WriteString("\n")
	case StepForm, StepSubmitting:
		b.WriteString(v.renderForm())
	case StepComplete:
		b.WriteString(v.renderComplete())
	}

	b.WriteString("\n")
	v.bar.SetWidth(v.width)
	b.WriteString(v.bar.View())
	return b.String()
}

func (v *View) renderTypeSelect() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Add Connector"))
	b.WriteString("\n\n")
	if len(v.schemas) == 0 {
		b.WriteString(v.styles.Muted.Render("No connector types available."))
		b.WriteString("\n")
		return b.String()
	}
	for i, s := range v.schemas {
		if i == v.typeCursor {
			b.WriteString(v.styles.Selected.Render("> " + s.Name))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(s.Name))
		}
		if s.Description != "" {
			b.WriteString("  " + v.styles.Muted.Render(s.Description))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderForm() string {
	var b strings.Builder
	plan := v.plan()

	b.WriteString(v.styles.Title.Render(plan.Title))
	b.WriteString("\n")
	if plan.Description != "" {
		b.WriteString(v.styles.Muted.Render(plan.Description))
		b.WriteString("\n")
	}
	if v.credential != nil {
		b.WriteString(v.styles.Muted.Render("Using existing credential " + v.credential.Name))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	var focused string
	if fields := v.focusable(); v.focus < len(fields) {
		focused = fields[v.focus].Name
	}

	v.renderFields(&b, plan.Fields, focused, 0)

	if plan.AdvancedOffered {
		b.WriteString("\n")
		if plan.AdvancedExpanded {
			b.WriteString(v.styles.Subtitle.Render("▾ Advanced"))
			b.WriteString("\n")
			v.renderFields(&b, plan.Advanced, focused, 1)
		} else {
			b.WriteString(v.styles.Muted.Render("▸ Advanced [ctrl+a]"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (v *View) renderFields(b *strings.Builder, fields []domain.RenderedField, focused string, depth int) {
	indent := strings.Repeat("  ", depth)
	for i := range fields {
		f := &fields[i]
		if !f.Visible {
			continue
		}
		b.WriteString(indent)
		b.WriteString(v.renderField(f, f.Name == focused))
		b.WriteString("\n")
		if f.Error != "" {
			b.WriteString(indent + "  " + v.styles.Error.Render(f.Error) + "\n")
		}
		for _, t := range f.Tabs {
			if t.Selected {
				v.renderFields(b, t.Fields, focused, depth+1)
			}
		}
	}
}

func (v *View) renderField(f *domain.RenderedField, focused bool) string {
	label := f.Label
	if f.Required {
		label += " *"
	}
	cursor := "  "
	if focused {
		cursor = "> "
	}

	var line string
	switch f.Kind {
	case domain.FieldKindCheckbox:
		box := "[ ]"
		if on, _ := f.Value.(bool); on {
			box = "[x]"
		}
		line = cursor + box + " " + label
	case domain.FieldKindSelect, domain.FieldKindTabGroup:
		line = cursor + label + ": " + v.renderChoices(f)
	default:
		in := v.input(*f)
		return cursor + in.View()
	}

	switch {
	case f.Disabled:
		return v.styles.Muted.Render(line)
	case focused:
		return v.styles.Title.Render(line)
	default:
		return v.styles.Normal.Render(line)
	}
}

func (v *View) renderChoices(f *domain.RenderedField) string {
	var parts []string
	if len(f.Tabs) > 0 {
		for _, t := range f.Tabs {
			parts = append(parts, choice(t.Label, t.Selected))
		}
	} else if sel, ok := f.Field.(domain.SelectField); ok {
		current := displayValue(f.Value)
		for _, o := range sel.Options {
			parts = append(parts, choice(o.Label, o.Value == current))
		}
	}
	return strings.Join(parts, " ")
}

func choice(label string, selected bool) string {
	if selected {
		return "(•) " + label
	}
	return "( ) " + label
}

func (v *View) renderComplete() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Connector created"))
	b.WriteString("\n\n")
	if v.created != nil {
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%s is %s. The first index run will start shortly.",
			v.created.Name, strings.ToLower(v.created.DisplayStatus()))))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[enter] back to connectors"))
	b.WriteString("\n")
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	for _, in := range v.inputs {
		in.SetWidth(width)
	}
}

// Reset discards the form state.
func (v *View) Reset() {
	v.step = StepSelectType
	v.typeCursor = 0
	v.schema = nil
	v.credential = nil
	v.state = nil
	v.inputs = make(map[string]*input.FieldInput)
	v.focus = 0
	v.created = nil
	v.bar.Clear()
	v.bar.SetBindings(nil)
}

// Step returns the current step.
func (v *View) Step() Step {
	return v.step
}

// State returns the form state, nil outside the form step.
func (v *View) State() *domain.FormState {
	return v.state
}
