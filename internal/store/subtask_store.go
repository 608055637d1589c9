package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskboard/internal/model"
)

// GetSubtasks returns the subtasks of a task in creation order.
func (s *SQLiteStore) GetSubtasks(ctx context.Context, taskID string) ([]model.Subtask, error) {
	subtasks := []model.Subtask{}
	if err := s.db.SelectContext(ctx, &subtasks,
		"SELECT * FROM subtasks WHERE task_id = ? ORDER BY created_at, rowid",
		taskID); err != nil {
		return nil, fmt.Errorf("querying subtasks: %w", err)
	}
	return subtasks, nil
}

func (s *SQLiteStore) getSubtask(ctx context.Context, id string) (*model.Subtask, error) {
	var st model.Subtask
	if err := s.db.GetContext(ctx, &st, "SELECT * FROM subtasks WHERE id = ?", id); err != nil {
		return nil, notFound(err, "subtask", id)
	}
	return &st, nil
}

// CreateSubtask inserts a new subtask.
func (s *SQLiteStore) CreateSubtask(ctx context.Context, actor string, st model.Subtask) (*model.Subtask, error) {
	if strings.TrimSpace(st.Title) == "" {
		return nil, fmt.Errorf("subtask title must not be empty: %w", ErrInvalid)
	}
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	now := s.now()
	st.CreatedAt = now
	st.UpdatedAt = now
	st.CompletedAt = nil
	st.SetCompleted(st.Completed, now)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO subtasks (
				id, task_id, title, description, completed, completed_at,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID, st.TaskID, st.Title, st.Description, boolToInt(st.Completed),
			st.CompletedAt, st.CreatedAt, st.UpdatedAt,
		)
		if err != nil {
			return constraintErr(err, "creating subtask")
		}
		return s.recordActivity(ctx, tx, st.TaskID, actor,
			model.SubtaskAdded{SubtaskID: st.ID, Title: st.Title})
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateSubtask applies patch to a subtask. A completion change is recorded
// as completed or reopened, anything else as updated.
func (s *SQLiteStore) UpdateSubtask(
	ctx context.Context,
	actor string,
	id string,
	patch model.SubtaskPatch,
) (*model.Subtask, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("subtask title must not be empty: %w", ErrInvalid)
	}
	before, err := s.getSubtask(ctx, id)
	if err != nil {
		return nil, err
	}
	after := patch.Apply(*before, s.now())

	var activity model.ActivityPayload
	ref := model.SubtaskRef{SubtaskID: id, Title: after.Title}
	switch {
	case before.Completed != after.Completed && after.Completed:
		activity = model.SubtaskCompleted(ref)
	case before.Completed != after.Completed:
		activity = model.SubtaskReopened(ref)
	case before.Title != after.Title || !sameString(before.Description, after.Description):
		activity = model.SubtaskUpdated(ref)
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE subtasks SET
				title = ?, description = ?, completed = ?, completed_at = ?, updated_at = ?
			WHERE id = ?`,
			after.Title, after.Description, boolToInt(after.Completed),
			after.CompletedAt, after.UpdatedAt, id,
		)
		if err != nil {
			return constraintErr(err, "updating subtask "+id)
		}
		if activity == nil {
			return nil
		}
		return s.recordActivity(ctx, tx, after.TaskID, actor, activity)
	})
	if err != nil {
		return nil, err
	}
	return &after, nil
}

// DeleteSubtask removes a subtask.
func (s *SQLiteStore) DeleteSubtask(ctx context.Context, actor, id string) error {
	st, err := s.getSubtask(ctx, id)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM subtasks WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting subtask %s: %w", id, err)
		}
		return s.recordActivity(ctx, tx, st.TaskID, actor,
			model.SubtaskDeleted{SubtaskID: id, Title: st.Title})
	})
}
