package services

import (
	"context"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// Ensure ActivityService implements the interface.
var _ driving.ActivityService = (*ActivityService)(nil)

// ActivityService reads background loop history.
type ActivityService struct {
	store driven.ActivityStore
}

// NewActivityService creates an activity service.
func NewActivityService(store driven.ActivityStore) *ActivityService {
	return &ActivityService{store: store}
}

// Recent returns the newest results for a kind. Without a store there is
// no history.
func (s *ActivityService) Recent(ctx context.Context, kind domain.ActivityKind, limit int) ([]domain.ActivityResult, error) {
	if s.store == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.store.GetHistory(ctx, kind, limit)
}
