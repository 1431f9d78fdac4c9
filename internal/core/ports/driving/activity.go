package driving

import (
	"context"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// ActivityService exposes background loop history.
type ActivityService interface {
	// Recent returns the newest results for a kind, most recent first.
	Recent(ctx context.Context, kind domain.ActivityKind, limit int) ([]domain.ActivityResult, error)
}
