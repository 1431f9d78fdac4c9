package domain

import (
	"sort"
)

// FieldConnectorName is the form key of the connector name.
// It is implicitly required for every schema.
const FieldConnectorName = "name"

// FormValues maps field names to their current raw values.
// Text-like fields hold string, checkboxes bool, lists []string.
type FormValues map[string]any

// FieldErrors maps field names to validation messages.
type FieldErrors map[string]string

// Names returns the field names with errors, sorted.
func (e FieldErrors) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Payload is the submission object built from a form.
type Payload map[string]any

// FormState is the mutable state of one creation dialog.
// It is created when the dialog opens and discarded when it closes.
type FormState struct {
	// Values holds the current raw value per field name.
	Values FormValues
	// Errors holds the last validation result.
	Errors FieldErrors
	// AdvancedExpanded tracks whether the advanced panel is open.
	AdvancedExpanded bool
}

// NewFormState creates an empty form state.
func NewFormState() *FormState {
	return &FormState{
		Values: make(FormValues),
		Errors: make(FieldErrors),
	}
}

// Set stores a value and clears any error recorded for the field.
func (s *FormState) Set(name string, value any) {
	s.Values[name] = value
	delete(s.Errors, name)
}

// Get returns the raw value of a field.
func (s *FormState) Get(name string) any {
	return s.Values[name]
}

// String returns the value of a field as a string, or "" when it is not a string.
func (s *FormState) String(name string) string {
	v, _ := s.Values[name].(string)
	return v
}

// ToggleAdvanced flips the advanced panel.
func (s *FormState) ToggleAdvanced() {
	s.AdvancedExpanded = !s.AdvancedExpanded
}

// RenderedField is the evaluated view of one field.
type RenderedField struct {
	Field    Field
	Name     string
	Kind     FieldKind
	Label    string
	Visible  bool
	Disabled bool
	Required bool
	Value    any
	Error    string
	// Tabs is set for tab groups only.
	Tabs []RenderedTab
}

// RenderedTab is one evaluated sub-group of a tab group.
type RenderedTab struct {
	Name     string
	Label    string
	Selected bool
	Fields   []RenderedField
}

// RenderPlan is the fully evaluated form for one render pass.
type RenderPlan struct {
	SchemaID         string
	Title            string
	Description      string
	Fields           []RenderedField
	Advanced         []RenderedField
	AdvancedOffered  bool
	AdvancedExpanded bool
}

// Inputs returns the visible leaf fields in display order, descending into
// the selected tab of each tab group. Advanced fields are included only while
// the panel is offered and expanded.
func (p *RenderPlan) Inputs() []RenderedField {
	var out []RenderedField
	var walk func(fields []RenderedField)
	walk = func(fields []RenderedField) {
		for _, f := range fields {
			if !f.Visible {
				continue
			}
			out = append(out, f)
			for _, t := range f.Tabs {
				if t.Selected {
					walk(t.Fields)
				}
			}
		}
	}
	walk(p.Fields)
	if p.AdvancedOffered && p.AdvancedExpanded {
		walk(p.Advanced)
	}
	return out
}
