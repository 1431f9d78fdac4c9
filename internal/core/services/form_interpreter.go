package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// Ensure FormInterpreter implements the interface.
var _ driving.FormInterpreter = (*FormInterpreter)(nil)

// Messages recorded on validation failure.
const (
	msgRequired     = "This field is required."
	msgNameRequired = "Please give this connector a name."
	msgBadOption    = "Choose one of the listed options."
	msgBadNumber    = "Enter a number."
)

// FormInterpreter evaluates connector schemas against form state.
// It is stateless; all per-dialog state lives in domain.FormState.
type FormInterpreter struct{}

// NewFormInterpreter creates a form interpreter.
func NewFormInterpreter() *FormInterpreter {
	return &FormInterpreter{}
}

// NewFormState seeds a form from schema defaults. Values of an existing
// credential override defaults for fields with the same name.
func (fi *FormInterpreter) NewFormState(
	schema *domain.ConnectorSchema,
	credential *domain.Credential,
) *domain.FormState {
	state := domain.NewFormState()
	state.Values[domain.FieldConnectorName] = ""
	if schema == nil {
		return state
	}

	schema.WalkFields(func(f domain.Field) {
		spec := f.Spec()
		if group, ok := f.(domain.TabGroupField); ok {
			state.Values[spec.Name] = group.DefaultTab
			return
		}
		if spec.Default != nil {
			state.Values[spec.Name] = spec.Default
		}
		if credential == nil {
			return
		}
		if raw, ok := credential.Fields[spec.Name]; ok {
			state.Values[spec.Name] = parseInput(f, raw)
		}
	})
	return state
}

// ParseInput converts typed text into the value type the field kind holds.
// Checkboxes parse as booleans and lists split on commas or newlines.
func (fi *FormInterpreter) ParseInput(f domain.Field, raw string) any {
	return parseInput(f, raw)
}

func parseInput(f domain.Field, raw string) any {
	switch f.(type) {
	case domain.CheckboxField:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		return b
	case domain.ListField:
		list, _ := splitList(raw).([]string)
		return list
	default:
		return raw
	}
}

// Render evaluates every field, recursively expanding tab groups.
func (fi *FormInterpreter) Render(
	schema *domain.ConnectorSchema,
	state *domain.FormState,
	credential *domain.Credential,
) *domain.RenderPlan {
	plan := &domain.RenderPlan{
		SchemaID:         schema.ID,
		Title:            schema.Name,
		Description:      schema.Description,
		AdvancedOffered:  schema.AdvancedOffered(state.Values, credential),
		AdvancedExpanded: state.AdvancedExpanded,
	}

	nameField := domain.TextField{FieldSpec: domain.FieldSpec{
		Name:     domain.FieldConnectorName,
		Label:    "Connector name",
		Required: true,
	}}
	plan.Fields = append(plan.Fields, fi.renderField(nameField, state, credential, true))
	plan.Fields = append(plan.Fields, fi.renderFields(schema.Fields, state, credential, true)...)
	plan.Advanced = fi.renderFields(schema.Advanced, state, credential, plan.AdvancedOffered)
	return plan
}

func (fi *FormInterpreter) renderFields(
	fields []domain.Field,
	state *domain.FormState,
	credential *domain.Credential,
	parentVisible bool,
) []domain.RenderedField {
	out := make([]domain.RenderedField, 0, len(fields))
	for _, f := range fields {
		out = append(out, fi.renderField(f, state, credential, parentVisible))
	}
	return out
}

func (fi *FormInterpreter) renderField(
	f domain.Field,
	state *domain.FormState,
	credential *domain.Credential,
	parentVisible bool,
) domain.RenderedField {
	spec := f.Spec()
	visible := parentVisible && isVisible(spec, state.Values, credential)
	rf := domain.RenderedField{
		Field:    f,
		Name:     spec.Name,
		Kind:     f.Kind(),
		Label:    spec.Label,
		Visible:  visible,
		Disabled: isDisabled(spec, state.Values, credential),
		Required: spec.Required,
		Value:    state.Values[spec.Name],
		Error:    state.Errors[spec.Name],
	}

	if group, ok := f.(domain.TabGroupField); ok {
		selected := group.Selected(state.Values)
		for _, t := range group.Tabs {
			isSelected := t.Name == selected.Name
			rf.Tabs = append(rf.Tabs, domain.RenderedTab{
				Name:     t.Name,
				Label:    t.Label,
				Selected: isSelected,
				Fields:   fi.renderFields(t.Fields, state, credential, visible && isSelected),
			})
		}
	}
	return rf
}

// Validate checks required-ness and kind constraints of every field the user
// can currently see and edit. Hidden fields never block submission.
func (fi *FormInterpreter) Validate(
	schema *domain.ConnectorSchema,
	state *domain.FormState,
	credential *domain.Credential,
) domain.FieldErrors {
	errs := make(domain.FieldErrors)

	if isEmpty(state.Values[domain.FieldConnectorName]) {
		errs[domain.FieldConnectorName] = msgNameRequired
	}

	check := func(f domain.Field) {
		spec := f.Spec()
		if isDisabled(spec, state.Values, credential) {
			return
		}
		value := state.Values[spec.Name]
		if spec.Required && isEmpty(value) {
			errs[spec.Name] = msgRequired
			return
		}
		if msg := checkKind(f, value); msg != "" {
			errs[spec.Name] = msg
		}
	}

	visitVisible(schema.Fields, state.Values, credential, check)
	if schema.AdvancedOffered(state.Values, credential) {
		visitVisible(schema.Advanced, state.Values, credential, check)
	}

	state.Errors = errs
	return errs
}

// checkKind applies the constraints a field kind imposes on non-empty values.
func checkKind(f domain.Field, value any) string {
	if isEmpty(value) {
		return ""
	}
	switch field := f.(type) {
	case domain.SelectField:
		if s, ok := value.(string); !ok || !field.HasOption(s) {
			return msgBadOption
		}
	case domain.NumberField:
		switch v := value.(type) {
		case int, int64, float64:
		case string:
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				return msgBadNumber
			}
		default:
			return msgBadNumber
		}
	case domain.TextField, domain.TextareaField, domain.CheckboxField,
		domain.ListField, domain.FileField, domain.TabGroupField:
	default:
		panic(fmt.Sprintf("unhandled field kind %T", f))
	}
	return ""
}

// BuildPayload applies transforms in declaration order. Only visible fields
// contribute, and only the selected sub-group of a tab group; the connector
// name and the tab selectors themselves are not part of the payload. Advanced
// fields are submitted only while the schema offers the advanced section.
func (fi *FormInterpreter) BuildPayload(
	schema *domain.ConnectorSchema,
	state *domain.FormState,
	credential *domain.Credential,
) domain.Payload {
	payload := make(domain.Payload)
	collect := func(f domain.Field) {
		spec := f.Spec()
		value, ok := state.Values[spec.Name]
		if !ok {
			return
		}
		if spec.Transform != nil {
			value = spec.Transform(value)
		}
		payload[spec.Name] = value
	}
	visitVisible(schema.Fields, state.Values, credential, collect)
	if schema.AdvancedOffered(state.Values, credential) {
		visitVisible(schema.Advanced, state.Values, credential, collect)
	}
	return payload
}

// SplitPayload separates credential fields from connector configuration.
func SplitPayload(schema *domain.ConnectorSchema, payload domain.Payload) (credential, config map[string]any) {
	credential = make(map[string]any)
	config = make(map[string]any)
	isCredential := make(map[string]bool)
	schema.WalkFields(func(f domain.Field) {
		if f.Spec().Credential {
			isCredential[f.Spec().Name] = true
		}
	})
	for k, v := range payload {
		if isCredential[k] {
			credential[k] = v
		} else {
			config[k] = v
		}
	}
	return credential, config
}

// visitVisible calls fn for every visible leaf field, descending into the
// selected tab of visible tab groups only.
func visitVisible(
	fields []domain.Field,
	values domain.FormValues,
	credential *domain.Credential,
	fn func(domain.Field),
) {
	for _, f := range fields {
		if !isVisible(f.Spec(), values, credential) {
			continue
		}
		if group, ok := f.(domain.TabGroupField); ok {
			visitVisible(group.Selected(values).Fields, values, credential, fn)
			continue
		}
		fn(f)
	}
}

func isVisible(spec domain.FieldSpec, values domain.FormValues, credential *domain.Credential) bool {
	return spec.VisibleWhen == nil || spec.VisibleWhen(values, credential)
}

func isDisabled(spec domain.FieldSpec, values domain.FormValues, credential *domain.Credential) bool {
	return spec.DisabledWhen != nil && spec.DisabledWhen(values, credential)
}

// isEmpty reports whether a raw value counts as missing: nil, a blank string
// or an empty list.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				return false
			}
		}
		return true
	default:
		return false
	}
}
