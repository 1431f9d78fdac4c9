package domain

import "fmt"

// Entitlement is the user's current usage and limit counters.
type Entitlement struct {
	ConnectorsUsed  int     `json:"connectors_used"`
	ConnectorsLimit int     `json:"connectors_limit"`
	StorageUsedGB   float64 `json:"storage_used_gb"`
	StorageGB       float64 `json:"storage_gb"`
}

// ConnectorsExhausted reports whether no further connector may be created.
// A negative limit means unlimited.
func (e *Entitlement) ConnectorsExhausted() bool {
	if e.ConnectorsLimit < 0 {
		return false
	}
	return e.ConnectorsUsed >= e.ConnectorsLimit
}

// StorageExhausted reports whether the storage allowance is used up.
// A negative allowance means unlimited.
func (e *Entitlement) StorageExhausted() bool {
	if e.StorageGB < 0 {
		return false
	}
	return e.StorageUsedGB >= e.StorageGB
}

// QuotaCheckpoint identifies where the quota gate is consulted.
type QuotaCheckpoint string

const (
	// CheckpointOpen runs before a creation dialog opens.
	CheckpointOpen QuotaCheckpoint = "open"
	// CheckpointSubmit runs before a creation payload is submitted.
	CheckpointSubmit QuotaCheckpoint = "submit"
	// CheckpointUpload runs before a drive upload batch starts.
	CheckpointUpload QuotaCheckpoint = "upload"
)

// QuotaDecision is the outcome of a quota gate check.
type QuotaDecision struct {
	Checkpoint QuotaCheckpoint
	Blocked    bool
	Message    string
}

// ConnectorLimitMessage renders the user-facing connector limit message.
func ConnectorLimitMessage(e *Entitlement) string {
	return fmt.Sprintf(
		"You have used %d/%d connectors. Upgrade your plan or purchase an add-on to connect more sources.",
		e.ConnectorsUsed, e.ConnectorsLimit)
}

// StorageLimitMessage renders the user-facing storage limit message.
func StorageLimitMessage(e *Entitlement) string {
	return fmt.Sprintf(
		"You have used %.1f/%.1f GB of storage. Free up space or purchase an add-on to upload more files.",
		e.StorageUsedGB, e.StorageGB)
}
