package driving

import (
	"context"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// QuotaGate decides whether entitlement limits block a request.
type QuotaGate interface {
	// CheckOpen is consulted before a creation dialog opens. It reads the
	// current snapshot without I/O.
	CheckOpen() domain.QuotaDecision

	// CheckSubmit is consulted before a creation payload is submitted. It
	// refreshes the snapshot first so a limit reached after the dialog opened
	// still blocks.
	CheckSubmit(ctx context.Context) domain.QuotaDecision

	// CheckUpload is consulted before a drive upload batch.
	CheckUpload(ctx context.Context) domain.QuotaDecision
}
