package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// modeSchema has a token field only visible in oauth mode.
func modeSchema() *domain.ConnectorSchema {
	return &domain.ConnectorSchema{
		ID:   "mode_test",
		Name: "Mode test",
		Fields: []domain.Field{
			domain.SelectField{
				FieldSpec: domain.FieldSpec{Name: "mode", Default: "manual"},
				Options: []domain.Option{
					{Value: "manual", Label: "Manual"},
					{Value: "oauth", Label: "OAuth"},
				},
			},
			domain.TextField{FieldSpec: domain.FieldSpec{
				Name:        "token",
				Required:    true,
				VisibleWhen: domain.WhenEquals("mode", "oauth"),
			}},
		},
	}
}

// tabSchema has two tabs with one required field each.
func tabSchema() *domain.ConnectorSchema {
	return &domain.ConnectorSchema{
		ID:   "tab_test",
		Name: "Tab test",
		Fields: []domain.Field{
			domain.TabGroupField{
				FieldSpec:  domain.FieldSpec{Name: "scope"},
				DefaultTab: "folders",
				Tabs: []domain.Tab{
					{
						Name: "folders",
						Fields: []domain.Field{domain.TextField{FieldSpec: domain.FieldSpec{
							Name:      "folder_urls",
							Required:  true,
							Transform: splitList,
						}}},
					},
					{
						Name: "users",
						Fields: []domain.Field{domain.TextField{FieldSpec: domain.FieldSpec{
							Name:     "user_emails",
							Required: true,
						}}},
					},
				},
			},
		},
	}
}

func TestFormInterpreter_Validate_HiddenRequiredFieldDoesNotBlock(t *testing.T) {
	fi := NewFormInterpreter()
	state := domain.NewFormState()
	state.Set("mode", "manual")

	errs := fi.Validate(modeSchema(), state, nil)

	assert.Equal(t, []string{domain.FieldConnectorName}, errs.Names())
}

func TestFormInterpreter_Validate_VisibleRequiredFieldBlocks(t *testing.T) {
	fi := NewFormInterpreter()
	state := domain.NewFormState()
	state.Set(domain.FieldConnectorName, "My drive")
	state.Set("mode", "oauth")
	state.Set("token", "   ")

	errs := fi.Validate(modeSchema(), state, nil)

	assert.Equal(t, []string{"token"}, errs.Names())
	assert.Equal(t, errs, state.Errors)
}

func TestFormInterpreter_Validate_NameAlwaysRequired(t *testing.T) {
	fi := NewFormInterpreter()
	empty := &domain.ConnectorSchema{ID: "empty"}

	errs := fi.Validate(empty, domain.NewFormState(), nil)

	assert.Contains(t, errs, domain.FieldConnectorName)
}

func TestFormInterpreter_Validate_EmptyList(t *testing.T) {
	fi := NewFormInterpreter()
	schema := &domain.ConnectorSchema{
		ID: "list",
		Fields: []domain.Field{domain.ListField{FieldSpec: domain.FieldSpec{
			Name:     "channels",
			Required: true,
		}}},
	}
	state := domain.NewFormState()
	state.Set(domain.FieldConnectorName, "x")
	state.Set("channels", []string{" ", ""})

	errs := fi.Validate(schema, state, nil)

	assert.Contains(t, errs, "channels")
}

func TestFormInterpreter_Validate_OnlySelectedTab(t *testing.T) {
	fi := NewFormInterpreter()
	state := fi.NewFormState(tabSchema(), nil)
	state.Set(domain.FieldConnectorName, "x")

	errs := fi.Validate(tabSchema(), state, nil)

	assert.Equal(t, []string{"folder_urls"}, errs.Names())
}

func TestFormInterpreter_Validate_DisabledFieldSkipped(t *testing.T) {
	fi := NewFormInterpreter()
	schema := &domain.ConnectorSchema{
		ID: "disabled",
		Fields: []domain.Field{domain.TextField{FieldSpec: domain.FieldSpec{
			Name:         "token",
			Required:     true,
			DisabledWhen: func(domain.FormValues, *domain.Credential) bool { return true },
		}}},
	}
	state := domain.NewFormState()
	state.Set(domain.FieldConnectorName, "x")

	assert.Empty(t, fi.Validate(schema, state, nil))
}

func TestFormInterpreter_Validate_SelectOption(t *testing.T) {
	fi := NewFormInterpreter()
	state := domain.NewFormState()
	state.Set(domain.FieldConnectorName, "x")
	state.Set("mode", "carrier-pigeon")

	errs := fi.Validate(modeSchema(), state, nil)

	assert.Equal(t, msgBadOption, errs["mode"])
}

func TestFormInterpreter_BuildPayload_OmitsNonSelectedTab(t *testing.T) {
	fi := NewFormInterpreter()
	state := fi.NewFormState(tabSchema(), nil)
	state.Set("user_emails", "stale@example.com")
	state.Set("folder_urls", "https://a, https://b")

	payload := fi.BuildPayload(tabSchema(), state, nil)

	assert.NotContains(t, payload, "user_emails")
	assert.NotContains(t, payload, "scope")
	assert.NotContains(t, payload, domain.FieldConnectorName)
	assert.Equal(t, []string{"https://a", "https://b"}, payload["folder_urls"])
}

func TestFormInterpreter_BuildPayload_SwitchingTabs(t *testing.T) {
	fi := NewFormInterpreter()
	state := fi.NewFormState(tabSchema(), nil)
	state.Set("folder_urls", "https://a")
	state.Set("user_emails", "me@example.com")
	state.Set("scope", "users")

	payload := fi.BuildPayload(tabSchema(), state, nil)

	assert.Equal(t, domain.Payload{"user_emails": "me@example.com"}, payload)
}

func TestFormInterpreter_BuildPayload_TransformsInOrder(t *testing.T) {
	var order []string
	record := func(name string) domain.Transform {
		return func(v any) any {
			order = append(order, name)
			return strings.ToUpper(v.(string))
		}
	}
	schema := &domain.ConnectorSchema{
		ID: "order",
		Fields: []domain.Field{
			domain.TextField{FieldSpec: domain.FieldSpec{Name: "b", Transform: record("b")}},
			domain.TextField{FieldSpec: domain.FieldSpec{Name: "a", Transform: record("a")}},
			domain.TextField{FieldSpec: domain.FieldSpec{Name: "plain"}},
		},
	}
	fi := NewFormInterpreter()
	state := domain.NewFormState()
	state.Set("a", "x")
	state.Set("b", "y")
	state.Set("plain", "keep")

	payload := fi.BuildPayload(schema, state, nil)

	assert.Equal(t, []string{"b", "a"}, order)
	assert.Equal(t, domain.Payload{"a": "X", "b": "Y", "plain": "keep"}, payload)
}

func TestFormInterpreter_BuildPayload_OmitsHiddenFields(t *testing.T) {
	fi := NewFormInterpreter()
	state := domain.NewFormState()
	state.Set("mode", "manual")
	state.Set("token", "left over")

	payload := fi.BuildPayload(modeSchema(), state, nil)

	assert.Equal(t, domain.Payload{"mode": "manual"}, payload)
}

func TestFormInterpreter_BuildPayload_GatedAdvancedIsNotSubmitted(t *testing.T) {
	fi := NewFormInterpreter()
	schema := NewBuiltinSchemaRegistry().Get("google_drive")
	require.NotNil(t, schema)
	oauth := &domain.Credential{
		ID:     101,
		Kind:   domain.CredentialKindOAuth,
		Fields: map[string]string{"google_primary_admin": "admin@example.com"},
	}
	state := fi.NewFormState(schema, oauth)

	payload := fi.BuildPayload(schema, state, oauth)

	assert.NotContains(t, payload, "google_primary_admin")
	assert.Equal(t, true, payload["include_my_drives"])

	serviceAccount := &domain.Credential{ID: 102, Kind: domain.CredentialKindServiceAccount}
	payload = fi.BuildPayload(schema, state, serviceAccount)

	assert.Equal(t, "admin@example.com", payload["google_primary_admin"])
}

func TestFormInterpreter_NewFormState_SeedsDefaultsAndCredential(t *testing.T) {
	fi := NewFormInterpreter()
	schema := NewBuiltinSchemaRegistry().Get("google_drive")
	require.NotNil(t, schema)
	cred := &domain.Credential{
		ID:   7,
		Kind: domain.CredentialKindServiceAccount,
		Fields: map[string]string{
			"google_primary_admin": "admin@example.com",
			"include_my_drives":    "false",
		},
	}

	state := fi.NewFormState(schema, cred)

	assert.Equal(t, "general", state.Values["indexing_scope"])
	assert.Equal(t, false, state.Values["include_my_drives"])
	assert.Equal(t, "admin@example.com", state.Values["google_primary_admin"])
	assert.Equal(t, "", state.Values[domain.FieldConnectorName])
}

func TestFormInterpreter_Render_CredentialDrivesVisibility(t *testing.T) {
	fi := NewFormInterpreter()
	schema := NewBuiltinSchemaRegistry().Get("google_drive")
	require.NotNil(t, schema)

	visible := func(plan *domain.RenderPlan, name string) bool {
		for _, f := range plan.Inputs() {
			if f.Name == name {
				return true
			}
		}
		return false
	}

	oauth := &domain.Credential{Kind: domain.CredentialKindOAuth}
	state := fi.NewFormState(schema, oauth)
	plan := fi.Render(schema, state, oauth)
	assert.True(t, visible(plan, "include_files_shared_with_me"))
	assert.False(t, visible(plan, "include_shared_drives"))
	assert.False(t, plan.AdvancedOffered)

	sa := &domain.Credential{Kind: domain.CredentialKindServiceAccount}
	state = fi.NewFormState(schema, sa)
	plan = fi.Render(schema, state, sa)
	assert.False(t, visible(plan, "include_files_shared_with_me"))
	assert.True(t, visible(plan, "include_shared_drives"))
	assert.True(t, plan.AdvancedOffered)
}

func TestFormInterpreter_Render_TabsAndDisabled(t *testing.T) {
	fi := NewFormInterpreter()
	schema := NewBuiltinSchemaRegistry().Get("notion")
	require.NotNil(t, schema)
	state := fi.NewFormState(schema, nil)
	state.Set("root_page_id", "")

	plan := fi.Render(schema, state, nil)

	require.Equal(t, domain.FieldConnectorName, plan.Fields[0].Name)
	var recursive domain.RenderedField
	for _, f := range plan.Fields {
		if f.Name == "recursive_index_enabled" {
			recursive = f
		}
	}
	assert.True(t, recursive.Disabled)

	tabPlan := fi.Render(tabSchema(), fi.NewFormState(tabSchema(), nil), nil)
	group := tabPlan.Fields[1]
	require.Len(t, group.Tabs, 2)
	assert.True(t, group.Tabs[0].Selected)
	assert.True(t, group.Tabs[0].Fields[0].Visible)
	assert.False(t, group.Tabs[1].Fields[0].Visible)
}

func TestSplitPayload(t *testing.T) {
	schema := NewBuiltinSchemaRegistry().Get("slack")
	require.NotNil(t, schema)
	payload := domain.Payload{
		"slack_bot_token": "xoxb-1",
		"channels":        []string{"general"},
	}

	cred, cfg := SplitPayload(schema, payload)

	assert.Equal(t, map[string]any{"slack_bot_token": "xoxb-1"}, cred)
	assert.Equal(t, map[string]any{"channels": []string{"general"}}, cfg)
}

func TestFormInterpreter_ParseInput(t *testing.T) {
	fi := NewFormInterpreter()

	assert.Equal(t, true, fi.ParseInput(domain.CheckboxField{}, "true"))
	assert.Equal(t, false, fi.ParseInput(domain.CheckboxField{}, "maybe"))
	assert.Equal(t, []string{"a", "b"}, fi.ParseInput(domain.ListField{}, "a, b,,"))
	assert.Equal(t, "42", fi.ParseInput(domain.NumberField{}, "42"))
	assert.Equal(t, " x ", fi.ParseInput(domain.TextField{}, " x "))
}
