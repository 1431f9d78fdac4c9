package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
)

// Ensure ActivityStore implements the interface.
var _ driven.ActivityStore = (*ActivityStore)(nil)

// ActivityStore is an in-memory implementation of driven.ActivityStore.
// It backs runs started with history disabled, and tests.
type ActivityStore struct {
	mu      sync.RWMutex
	results map[domain.ActivityKind][]domain.ActivityResult
}

// NewActivityStore creates a new in-memory activity store.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{
		results: make(map[domain.ActivityKind][]domain.ActivityResult),
	}
}

// RecordResult logs one execution result.
func (s *ActivityStore) RecordResult(_ context.Context, result *domain.ActivityResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.Kind] = append(s.results[result.Kind], *result)
	return nil
}

// GetHistory returns recent results for a kind, most recent first.
func (s *ActivityStore) GetHistory(_ context.Context, kind domain.ActivityKind, limit int) ([]domain.ActivityResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := s.sortedLocked(kind)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// PruneHistory keeps the most recent 'keep' results per kind.
func (s *ActivityStore) PruneHistory(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for kind := range s.results {
		sorted := s.sortedLocked(kind)
		if len(sorted) > keep {
			sorted = sorted[:keep]
		}
		s.results[kind] = sorted
	}
	return nil
}

// sortedLocked returns a copy of a kind's results, newest first.
func (s *ActivityStore) sortedLocked(kind domain.ActivityKind) []domain.ActivityResult {
	src := s.results[kind]
	out := make([]domain.ActivityResult, len(src))
	copy(out, src)
	// Reverse insertion order breaks ties, so equal timestamps list newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}
