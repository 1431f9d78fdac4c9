package driving

import (
	"context"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// Reconciler owns the authoritative CCPair list and entitlement snapshot and
// keeps both aligned with the backend.
type Reconciler interface {
	// Start refreshes both collections, then keeps refreshing them on the
	// configured interval. It blocks until Stop is called or ctx is done.
	Start(ctx context.Context) error

	// Stop ends the loop and waits for in-flight refreshes.
	Stop() error

	// RefreshConnectors refreshes the CCPair list. It returns
	// domain.ErrRefreshInFlight without any I/O when a refresh is already running.
	RefreshConnectors(ctx context.Context) error

	// RefreshEntitlements refreshes the entitlement snapshot with the same guard.
	RefreshEntitlements(ctx context.Context) error

	// CCPairs returns a copy of the current list.
	CCPairs() []domain.CCPair

	// CCPair returns one pair from the current list.
	CCPair(id int) (domain.CCPair, bool)

	// Entitlement returns the current snapshot, or nil before the first success.
	Entitlement() *domain.Entitlement

	// MarkIndexing flags a pair as indexing until the next refresh.
	MarkIndexing(id int)

	// Remove drops a pair after its delete call succeeded.
	Remove(id int)

	// Updates returns a channel signalled after every change to either collection.
	Updates() <-chan struct{}
}
