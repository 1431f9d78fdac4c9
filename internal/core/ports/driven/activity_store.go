package driven

import (
	"context"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// ActivityStore persists the outcomes of background loops so they can be
// inspected after the fact.
type ActivityStore interface {
	// RecordResult logs one execution result.
	RecordResult(ctx context.Context, result *domain.ActivityResult) error

	// GetHistory returns recent results for a kind.
	// Results are ordered by start time descending (most recent first).
	GetHistory(ctx context.Context, kind domain.ActivityKind, limit int) ([]domain.ActivityResult, error)

	// PruneHistory removes old results beyond the retention limit.
	// Keeps the most recent 'keep' results per kind.
	PruneHistory(ctx context.Context, keep int) error
}
