package driving

import (
	"context"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// CreateRequest carries a submitted creation dialog.
type CreateRequest struct {
	// Source is the connector-type id.
	Source string
	// Form holds the dialog's values. Errors are written back on validation failure.
	Form *domain.FormState
	// Credential is reused instead of creating a new one when set.
	Credential *domain.Credential
}

// ConnectorService creates CCPairs and runs guarded lifecycle actions on them.
type ConnectorService interface {
	// Create runs the quota gate, validates the form, builds the payload and
	// creates credential, connector and pair. The new pair starts SCHEDULED.
	Create(ctx context.Context, req CreateRequest) (*domain.CCPair, error)

	// ExistingCredential returns the newest credential for a connector type, or nil.
	ExistingCredential(ctx context.Context, source string) (*domain.Credential, error)

	// Index triggers an index run. fromBeginning requests a full reindex.
	Index(ctx context.Context, ccPairID int, fromBeginning bool) error

	// SetPaused requests a pause (true) or resume (false).
	SetPaused(ctx context.Context, ccPairID int, paused bool) error

	// TogglePause flips between paused and active.
	TogglePause(ctx context.Context, ccPairID int) error

	// Delete deletes a paused pair and removes it from the list.
	Delete(ctx context.Context, ccPairID int) error

	// Actions returns the action set of a pair from the current snapshot.
	Actions(ccPairID int) (domain.ActionSet, error)
}
