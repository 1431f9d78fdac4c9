package domain

import "time"

// ActivityKind identifies a background loop whose outcomes are recorded.
type ActivityKind string

const (
	// ActivityConnectorRefresh is one refresh of the CCPair list.
	ActivityConnectorRefresh ActivityKind = "connector_refresh"
	// ActivityEntitlementRefresh is one refresh of the entitlement snapshot.
	ActivityEntitlementRefresh ActivityKind = "entitlement_refresh"
	// ActivityAutoSync is one auto-sync tick.
	ActivityAutoSync ActivityKind = "auto_sync"
	// ActivityUpload is one upload batch.
	ActivityUpload ActivityKind = "upload"
)

// ActivityResult represents the outcome of one background execution.
type ActivityResult struct {
	// Kind identifies which loop ran.
	Kind ActivityKind

	// StartedAt is when the execution started.
	StartedAt time.Time

	// EndedAt is when it completed.
	EndedAt time.Time

	// Success indicates whether it completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed counts items handled (CCPairs listed, files uploaded).
	ItemsProcessed int
}

// Duration returns how long the execution took.
func (r *ActivityResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// DefaultHistoryRetention is how many results are kept per kind.
const DefaultHistoryRetention = 100
