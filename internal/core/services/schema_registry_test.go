package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

func TestBuiltinSchemas_PassCheck(t *testing.T) {
	for _, s := range BuiltinSchemas() {
		s := s
		t.Run(s.ID, func(t *testing.T) {
			assert.NoError(t, s.Check())
			assert.NotEmpty(t, s.Name)
			assert.NotEmpty(t, s.Description)
		})
	}
}

func TestSchemaRegistry_Get(t *testing.T) {
	r := NewBuiltinSchemaRegistry()

	s := r.Get("google_drive")
	require.NotNil(t, s)
	assert.Equal(t, "Google Drive", s.Name)
}

func TestSchemaRegistry_Get_UnknownReturnsNil(t *testing.T) {
	r := NewBuiltinSchemaRegistry()

	assert.Nil(t, r.Get("does_not_exist"))
}

func TestSchemaRegistry_List_SortedByName(t *testing.T) {
	r := NewBuiltinSchemaRegistry()

	list := r.List()
	require.Len(t, list, len(BuiltinSchemas()))
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Name, list[i].Name)
	}
}

func TestNewSchemaRegistry_RejectsDuplicateFieldNames(t *testing.T) {
	bad := domain.ConnectorSchema{
		ID: "dup",
		Fields: []domain.Field{
			domain.TextField{FieldSpec: domain.FieldSpec{Name: "token"}},
			domain.TabGroupField{
				FieldSpec:  domain.FieldSpec{Name: "scope"},
				DefaultTab: "a",
				Tabs: []domain.Tab{{
					Name:   "a",
					Fields: []domain.Field{domain.TextField{FieldSpec: domain.FieldSpec{Name: "token"}}},
				}},
			},
		},
	}

	_, err := NewSchemaRegistry(bad)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewSchemaRegistry_RejectsReservedName(t *testing.T) {
	bad := domain.ConnectorSchema{
		ID:     "reserved",
		Fields: []domain.Field{domain.TextField{FieldSpec: domain.FieldSpec{Name: "name"}}},
	}

	_, err := NewSchemaRegistry(bad)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewSchemaRegistry_RejectsMissingDefaultTab(t *testing.T) {
	bad := domain.ConnectorSchema{
		ID: "tabs",
		Fields: []domain.Field{domain.TabGroupField{
			FieldSpec:  domain.FieldSpec{Name: "scope"},
			DefaultTab: "missing",
			Tabs:       []domain.Tab{{Name: "a"}},
		}},
	}

	_, err := NewSchemaRegistry(bad)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewSchemaRegistry_RejectsDuplicateSchema(t *testing.T) {
	s := domain.ConnectorSchema{ID: "web"}

	_, err := NewSchemaRegistry(s, s)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchema_EffectiveRefreshFreq(t *testing.T) {
	r := NewBuiltinSchemaRegistry()

	assert.Equal(t, domain.DefaultRefreshFreq, r.Get("gmail").EffectiveRefreshFreq())
	assert.NotEqual(t, domain.DefaultRefreshFreq, r.Get("slack").EffectiveRefreshFreq())
}
