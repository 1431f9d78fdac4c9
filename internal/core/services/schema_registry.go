package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// Ensure SchemaRegistry implements the interface.
var _ driving.SchemaRegistry = (*SchemaRegistry)(nil)

// SchemaRegistry holds the connector form definitions. It is populated once
// at construction and read-only afterwards.
type SchemaRegistry struct {
	schemas map[string]domain.ConnectorSchema
}

// NewSchemaRegistry creates a registry from the given schemas. Each schema is
// checked for structural errors; the first failure aborts construction.
func NewSchemaRegistry(schemas ...domain.ConnectorSchema) (*SchemaRegistry, error) {
	r := &SchemaRegistry{schemas: make(map[string]domain.ConnectorSchema, len(schemas))}
	for i := range schemas {
		s := schemas[i]
		if err := s.Check(); err != nil {
			return nil, err
		}
		if _, dup := r.schemas[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate schema %q", domain.ErrInvalidInput, s.ID)
		}
		r.schemas[s.ID] = s
	}
	return r, nil
}

// NewBuiltinSchemaRegistry creates a registry with every built-in connector type.
func NewBuiltinSchemaRegistry() *SchemaRegistry {
	r, err := NewSchemaRegistry(BuiltinSchemas()...)
	if err != nil {
		// Built-in schemas are covered by tests.
		panic(err)
	}
	return r
}

// Get returns the schema for a connector type, or nil when unknown.
func (r *SchemaRegistry) Get(connectorTypeID string) *domain.ConnectorSchema {
	s, ok := r.schemas[connectorTypeID]
	if !ok {
		return nil
	}
	return &s
}

// List returns all schemas ordered by display name.
func (r *SchemaRegistry) List() []domain.ConnectorSchema {
	out := make([]domain.ConnectorSchema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
