package driving

import "github.com/custodia-labs/sercha-workspace/internal/core/domain"

// FormInterpreter evaluates a schema against live form values.
type FormInterpreter interface {
	// NewFormState seeds a form from schema defaults, overridden by any
	// matching values of the existing credential.
	NewFormState(schema *domain.ConnectorSchema, credential *domain.Credential) *domain.FormState

	// Render computes visibility, disabled state and required-ness for every field.
	Render(schema *domain.ConnectorSchema, state *domain.FormState, credential *domain.Credential) *domain.RenderPlan

	// Validate returns an error per visible, enabled, required field that is empty.
	// The connector name is always required.
	Validate(schema *domain.ConnectorSchema, state *domain.FormState, credential *domain.Credential) domain.FieldErrors

	// ParseInput converts typed text into the value type of the field kind.
	ParseInput(field domain.Field, raw string) any

	// BuildPayload applies field transforms and returns the submission object.
	// Hidden fields and an advanced section that is not offered are left out.
	BuildPayload(schema *domain.ConnectorSchema, state *domain.FormState, credential *domain.Credential) domain.Payload
}
