package domain

import (
	"fmt"
	"time"
)

// FieldKind identifies the input widget a field renders as.
type FieldKind string

// Supported field kinds.
const (
	FieldKindText     FieldKind = "text"
	FieldKindTextarea FieldKind = "textarea"
	FieldKindSelect   FieldKind = "select"
	FieldKindCheckbox FieldKind = "checkbox"
	FieldKindList     FieldKind = "list"
	FieldKindFile     FieldKind = "file"
	FieldKindNumber   FieldKind = "number"
	FieldKindTabGroup FieldKind = "tab"
)

// Predicate evaluates a field condition against the live form values and
// the existing credential, which may be nil.
type Predicate func(values FormValues, credential *Credential) bool

// Transform rewrites a raw form value before submission.
// Transforms must be total: they may not panic on any value the form can hold.
type Transform func(value any) any

// Field is one input declaration in a connector schema.
// The set of implementations is closed: TextField, TextareaField,
// SelectField, CheckboxField, ListField, FileField, NumberField and TabGroupField.
type Field interface {
	Kind() FieldKind
	Spec() FieldSpec
	isField()
}

// FieldSpec holds the attributes shared by every field kind.
type FieldSpec struct {
	// Name is the submission payload key. Unique within a schema.
	Name string
	// Label is the human-readable label.
	Label string
	// Description explains what the field is for.
	Description string
	// Required fields block submission while empty and visible.
	Required bool
	// Default seeds the form state.
	Default any
	// Secret fields are masked when rendered.
	Secret bool
	// Credential fields are submitted as part of the credential, not the connector config.
	Credential bool
	// VisibleWhen hides the field when it returns false. Nil means always visible.
	VisibleWhen Predicate
	// DisabledWhen disables the field when it returns true. Nil means never disabled.
	DisabledWhen Predicate
	// Transform is applied to the raw value by BuildPayload. Nil passes the value through.
	Transform Transform
}

// Spec returns the shared field attributes.
func (s FieldSpec) Spec() FieldSpec { return s }

func (FieldSpec) isField() {}

// TextField is a single-line text input.
type TextField struct {
	FieldSpec
	Placeholder string
}

// Kind implements Field.
func (TextField) Kind() FieldKind { return FieldKindText }

// TextareaField is a multi-line text input.
type TextareaField struct {
	FieldSpec
}

// Kind implements Field.
func (TextareaField) Kind() FieldKind { return FieldKindTextarea }

// Option is one choice of a SelectField.
type Option struct {
	Value string
	Label string
}

// SelectField picks one value out of Options.
type SelectField struct {
	FieldSpec
	Options []Option
}

// Kind implements Field.
func (SelectField) Kind() FieldKind { return FieldKindSelect }

// HasOption reports whether value is one of the declared options.
func (f SelectField) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// CheckboxField is a boolean toggle.
type CheckboxField struct {
	FieldSpec
}

// Kind implements Field.
func (CheckboxField) Kind() FieldKind { return FieldKindCheckbox }

// ListField collects an ordered list of strings.
type ListField struct {
	FieldSpec
}

// Kind implements Field.
func (ListField) Kind() FieldKind { return FieldKindList }

// FileField references a local file whose contents are submitted.
type FileField struct {
	FieldSpec
	Accept []string
}

// Kind implements Field.
func (FileField) Kind() FieldKind { return FieldKindFile }

// NumberField is a numeric input.
type NumberField struct {
	FieldSpec
}

// Kind implements Field.
func (NumberField) Kind() FieldKind { return FieldKindNumber }

// Tab is one named sub-group of a TabGroupField.
type Tab struct {
	Name   string
	Label  string
	Fields []Field
}

// TabGroupField owns an ordered list of sub-groups. The form value stored under
// the group's Name is the selected tab name. Only the selected tab's fields are
// submitted.
type TabGroupField struct {
	FieldSpec
	Tabs       []Tab
	DefaultTab string
}

// Kind implements Field.
func (TabGroupField) Kind() FieldKind { return FieldKindTabGroup }

// Tab returns the sub-group with the given name.
func (f TabGroupField) Tab(name string) (Tab, bool) {
	for _, t := range f.Tabs {
		if t.Name == name {
			return t, true
		}
	}
	return Tab{}, false
}

// Selected returns the tab currently selected in values, falling back to DefaultTab.
func (f TabGroupField) Selected(values FormValues) Tab {
	if name, ok := values[f.Name].(string); ok {
		if t, found := f.Tab(name); found {
			return t
		}
	}
	t, _ := f.Tab(f.DefaultTab)
	return t
}

// ConnectorSchema is the declarative form definition for one connector type.
// Schemas are immutable once registered.
type ConnectorSchema struct {
	// ID is the connector-type identifier (e.g., "google_drive").
	ID string
	// Name is the human-readable display name.
	Name string
	// Description is shown above the form.
	Description string
	// Fields are always rendered.
	Fields []Field
	// Advanced fields live in a collapsible panel.
	Advanced []Field
	// RefreshFreq overrides the default sync frequency when non-zero.
	RefreshFreq time.Duration
	// AdvancedGate decides whether the advanced panel is offered at all. Nil means offered.
	AdvancedGate Predicate
}

// DefaultRefreshFreq is the sync frequency used when a schema has no override.
const DefaultRefreshFreq = 30 * time.Minute

// DefaultPruneFreq is how often the backend prunes deleted documents.
const DefaultPruneFreq = 30 * 24 * time.Hour

// EffectiveRefreshFreq returns the schema override or the default.
func (s *ConnectorSchema) EffectiveRefreshFreq() time.Duration {
	if s.RefreshFreq > 0 {
		return s.RefreshFreq
	}
	return DefaultRefreshFreq
}

// AdvancedOffered reports whether the advanced panel should be shown.
func (s *ConnectorSchema) AdvancedOffered(values FormValues, credential *Credential) bool {
	if len(s.Advanced) == 0 {
		return false
	}
	if s.AdvancedGate == nil {
		return true
	}
	return s.AdvancedGate(values, credential)
}

// WalkFields visits every field, descending into every tab of every tab group.
func (s *ConnectorSchema) WalkFields(fn func(Field)) {
	var walk func(fields []Field)
	walk = func(fields []Field) {
		for _, f := range fields {
			fn(f)
			if group, ok := f.(TabGroupField); ok {
				for _, t := range group.Tabs {
					walk(t.Fields)
				}
			}
		}
	}
	walk(s.Fields)
	walk(s.Advanced)
}

// FieldByName returns the field with the given name from anywhere in the schema.
func (s *ConnectorSchema) FieldByName(name string) (Field, bool) {
	var found Field
	s.WalkFields(func(f Field) {
		if found == nil && f.Spec().Name == name {
			found = f
		}
	})
	return found, found != nil
}

// Check verifies the schema's structural invariants: a non-empty ID, unique
// field names across the whole schema including tab sub-groups, and tab groups
// whose default tab exists.
func (s *ConnectorSchema) Check() error {
	if s.ID == "" {
		return fmt.Errorf("%w: schema without id", ErrInvalidInput)
	}
	seen := make(map[string]bool)
	var err error
	s.WalkFields(func(f Field) {
		if err != nil {
			return
		}
		name := f.Spec().Name
		switch {
		case name == "":
			err = fmt.Errorf("%w: %s: field without name", ErrInvalidInput, s.ID)
		case name == FieldConnectorName:
			err = fmt.Errorf("%w: %s: field name %q is reserved", ErrInvalidInput, s.ID, name)
		case seen[name]:
			err = fmt.Errorf("%w: %s: duplicate field name %q", ErrInvalidInput, s.ID, name)
		}
		seen[name] = true
		if group, ok := f.(TabGroupField); ok && err == nil {
			if len(group.Tabs) == 0 {
				err = fmt.Errorf("%w: %s: tab group %q has no tabs", ErrInvalidInput, s.ID, name)
			} else if _, found := group.Tab(group.DefaultTab); !found {
				err = fmt.Errorf("%w: %s: tab group %q default tab %q missing",
					ErrInvalidInput, s.ID, name, group.DefaultTab)
			}
		}
	})
	return err
}

// Common predicates used by schemas.

// WhenEquals is visible when values[name] equals want.
func WhenEquals(name string, want any) Predicate {
	return func(values FormValues, _ *Credential) bool {
		return values[name] == want
	}
}

// WhenTrue is satisfied when the checkbox named name is checked.
func WhenTrue(name string) Predicate {
	return func(values FormValues, _ *Credential) bool {
		b, _ := values[name].(bool)
		return b
	}
}

// WhenCredentialKind is satisfied when the existing credential is of the given kind.
func WhenCredentialKind(kind CredentialKind) Predicate {
	return func(_ FormValues, credential *Credential) bool {
		return credential != nil && credential.Kind == kind
	}
}

// WhenNoCredential is satisfied while no existing credential is attached, so
// fields that only a new credential needs drop out once one is reused.
func WhenNoCredential() Predicate {
	return func(_ FormValues, credential *Credential) bool {
		return credential == nil
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(values FormValues, credential *Credential) bool {
		return !p(values, credential)
	}
}
