package store

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/model"
)

// DefaultActivityLimit is the page size used when a filter leaves Limit unset.
const DefaultActivityLimit = 20

// GetActivity returns a page of a task's activity, newest first. A page of
// exactly Limit rows means more may be available.
func (s *SQLiteStore) GetActivity(ctx context.Context, filter ActivityFilter) ([]model.Activity, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := "SELECT id, task_id, actor, type, payload, created_at FROM activity WHERE task_id = ?"
	args := []interface{}{filter.TaskID}
	if filter.Type != nil && *filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(*filter.Type))
	}
	query += " ORDER BY seq DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity for task %s: %w", filter.TaskID, err)
	}
	defer rows.Close()

	activity := []model.Activity{}
	for rows.Next() {
		var (
			a       model.Activity
			typ     string
			payload string
		)
		if err := rows.Scan(&a.ID, &a.TaskID, &a.Actor, &typ, &payload, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		a.Type = model.ActivityType(typ)
		a.Payload, err = model.DecodeActivityPayload(a.Type, []byte(payload))
		if err != nil {
			return nil, fmt.Errorf("decoding activity %s: %w", a.ID, err)
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}
