package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// ConnectorCreate is the request body for creating a connector.
type ConnectorCreate struct {
	Name                    string         `json:"name"`
	Source                  string         `json:"source"`
	InputType               string         `json:"input_type"`
	ConnectorSpecificConfig domain.Payload `json:"connector_specific_config"`
	RefreshFreq             int            `json:"refresh_freq"`
	PruneFreq               int            `json:"prune_freq"`
	AccessType              string         `json:"access_type"`
}

// NewConnectorCreate fills a ConnectorCreate with the given frequencies in seconds.
func NewConnectorCreate(name, source string, cfg domain.Payload, refresh, prune time.Duration) ConnectorCreate {
	return ConnectorCreate{
		Name:                    name,
		Source:                  source,
		InputType:               "poll",
		ConnectorSpecificConfig: cfg,
		RefreshFreq:             int(refresh.Seconds()),
		PruneFreq:               int(prune.Seconds()),
		AccessType:              string(domain.AccessPrivate),
	}
}

// CredentialCreate is the request body for creating a credential.
type CredentialCreate struct {
	Source         string         `json:"source"`
	Name           string         `json:"name,omitempty"`
	CredentialJSON domain.Payload `json:"credential_json"`
}

// CCPairCreate is the request body for binding a connector to a credential.
type CCPairCreate struct {
	ConnectorID  int    `json:"connector_id"`
	CredentialID int    `json:"credential_id"`
	Name         string `json:"name"`
	AccessType   string `json:"access_type"`
}

// IndexRequest triggers an index run for a connector.
type IndexRequest struct {
	FromBeginning bool  `json:"from_beginning"`
	CredentialIDs []int `json:"credential_ids"`
}

// ConnectorBackend is the system of record for connectors, credentials and CCPairs.
type ConnectorBackend interface {
	// ListConnectorStatus returns the raw status records of every CCPair visible to the user.
	ListConnectorStatus(ctx context.Context) ([]domain.ConnectorStatusRecord, error)

	// ListCredentials returns the user's credentials for a connector type.
	ListCredentials(ctx context.Context, source string) ([]domain.Credential, error)

	// CreateCredential creates a credential and returns its id.
	CreateCredential(ctx context.Context, req CredentialCreate) (int, error)

	// CreateConnector creates a connector and returns its id.
	CreateConnector(ctx context.Context, req ConnectorCreate) (int, error)

	// CreateCCPair binds a connector to a credential and returns the pair id.
	CreateCCPair(ctx context.Context, req CCPairCreate) (int, error)

	// TriggerIndex starts an index run for a connector.
	TriggerIndex(ctx context.Context, connectorID int, req IndexRequest) error

	// SetCCPairStatus requests a status change for a pair.
	SetCCPairStatus(ctx context.Context, ccPairID int, status domain.CCPairStatus) error

	// DeleteCCPair deletes a pair.
	DeleteCCPair(ctx context.Context, ccPairID int) error
}

// EntitlementBackend returns the user's usage and limit counters.
type EntitlementBackend interface {
	GetEntitlements(ctx context.Context) (*domain.Entitlement, error)
}

// UploadProgressFunc receives per-file progress during an upload batch.
// index is the file's position in the batch.
type UploadProgressFunc func(index int, percent int)

// DriveBackend owns the virtual drive namespace.
type DriveBackend interface {
	// List returns the entries of a directory.
	List(ctx context.Context, path string) ([]domain.DriveEntry, error)

	// Mkdir creates a directory.
	Mkdir(ctx context.Context, path string) error

	// Upload sends every file in one multipart request into dir.
	// A multi-status answer is not an error; it is reported through UploadResult.Partial.
	Upload(ctx context.Context, dir string, files []domain.UploadFile, progress UploadProgressFunc) (*domain.UploadResult, error)

	// Delete removes the given paths. A multi-status answer is not an error.
	Delete(ctx context.Context, paths []string) (*domain.DeleteResult, error)

	// Sync asks the backend to mirror drive contents into ingestion.
	Sync(ctx context.Context) error
}
