package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
)

// timeLayout sorts lexically in time order. Times are stored in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// activityStore implements driven.ActivityStore.
type activityStore struct {
	store *Store
}

var _ driven.ActivityStore = (*activityStore)(nil)

// RecordResult logs one execution result.
func (s *activityStore) RecordResult(ctx context.Context, result *domain.ActivityResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO activity_results (kind, started_at, ended_at, success, error, items_processed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(result.Kind),
		formatTime(result.StartedAt),
		formatTime(result.EndedAt),
		boolToInt(result.Success),
		nullString(result.Error),
		result.ItemsProcessed)

	if err != nil {
		return fmt.Errorf("recording activity result: %w", err)
	}
	return nil
}

// GetHistory returns recent results for a kind, most recent first.
func (s *activityStore) GetHistory(ctx context.Context, kind domain.ActivityKind, limit int) ([]domain.ActivityResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT kind, started_at, ended_at, success, error, items_processed
		FROM activity_results
		WHERE kind = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("querying activity history: %w", err)
	}
	defer rows.Close()

	var results []domain.ActivityResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		result, err := scanActivityResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity history: %w", err)
	}

	return results, nil
}

// PruneHistory keeps the most recent 'keep' results per kind.
func (s *activityStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM activity_results
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY kind ORDER BY started_at DESC, id DESC) as rn
				FROM activity_results
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning activity history: %w", err)
	}
	return nil
}

// scanActivityResult scans one result row.
func scanActivityResult(rows *sql.Rows) (*domain.ActivityResult, error) {
	var result domain.ActivityResult
	var kind, startedAt, endedAt string
	var success int
	var errMsg sql.NullString

	if err := rows.Scan(&kind, &startedAt, &endedAt,
		&success, &errMsg, &result.ItemsProcessed); err != nil {
		return nil, fmt.Errorf("scanning activity result: %w", err)
	}

	result.Kind = domain.ActivityKind(kind)
	result.StartedAt = parseTime(startedAt)
	result.EndedAt = parseTime(endedAt)
	result.Success = success == 1
	if errMsg.Valid {
		result.Error = errMsg.String
	}

	return &result, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime returns the zero time for malformed values.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
