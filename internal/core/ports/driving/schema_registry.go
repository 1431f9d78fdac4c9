package driving

import "github.com/custodia-labs/sercha-workspace/internal/core/domain"

// SchemaRegistry looks up connector form definitions.
type SchemaRegistry interface {
	// Get returns the schema for a connector type, or nil when the type is not
	// configurable here.
	Get(connectorTypeID string) *domain.ConnectorSchema

	// List returns every registered schema ordered by display name.
	List() []domain.ConnectorSchema
}
