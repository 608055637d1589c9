package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskboard/internal/model"
)

// CreateTag inserts a new workspace tag. Tag names are unique per workspace.
func (s *SQLiteStore) CreateTag(ctx context.Context, tag model.Tag) (*model.Tag, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return nil, fmt.Errorf("tag name must not be empty: %w", ErrInvalid)
	}
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	tag.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tags (id, name, color, workspace_id, created_at) VALUES (?, ?, ?, ?, ?)",
		tag.ID, tag.Name, tag.Color, tag.WorkspaceID, tag.CreatedAt,
	)
	if err != nil {
		return nil, constraintErr(err, "creating tag "+tag.Name)
	}
	return &tag, nil
}

// GetWorkspaceTags retrieves the tags of a workspace ordered by name.
func (s *SQLiteStore) GetWorkspaceTags(ctx context.Context, workspaceID string) ([]model.Tag, error) {
	tags := []model.Tag{}
	if err := s.db.SelectContext(ctx, &tags,
		"SELECT * FROM tags WHERE workspace_id = ? ORDER BY name", workspaceID); err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	return tags, nil
}

// GetTaskTags retrieves the tag assignments of a task joined with their tags.
func (s *SQLiteStore) GetTaskTags(ctx context.Context, taskID string) ([]model.TaskTag, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT tt.task_tag_id, tt.task_id, tt.tag_id, tt.assigned_at,
			t.id, t.name, t.color, t.workspace_id, t.created_at
		FROM task_tags tt
		INNER JOIN tags t ON t.id = tt.tag_id
		WHERE tt.task_id = ?
		ORDER BY tt.assigned_at, tt.rowid`, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying tags for task %s: %w", taskID, err)
	}
	defer rows.Close()

	taskTags := []model.TaskTag{}
	for rows.Next() {
		var tt model.TaskTag
		if err := rows.Scan(
			&tt.TaskTagID, &tt.TaskID, &tt.TagID, &tt.AssignedAt,
			&tt.Tag.ID, &tt.Tag.Name, &tt.Tag.Color, &tt.Tag.WorkspaceID, &tt.Tag.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning task tag row: %w", err)
		}
		taskTags = append(taskTags, tt)
	}
	return taskTags, rows.Err()
}

// AddTaskTag assigns a workspace tag to a task. Assigning the same tag twice
// is a conflict.
func (s *SQLiteStore) AddTaskTag(ctx context.Context, actor, taskID, tagID string) (*model.TaskTag, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	var tag model.Tag
	if err := s.db.GetContext(ctx, &tag, "SELECT * FROM tags WHERE id = ?", tagID); err != nil {
		return nil, notFound(err, "tag", tagID)
	}
	if tag.WorkspaceID != task.WorkspaceID {
		return nil, fmt.Errorf("tag %s belongs to another workspace: %w", tagID, ErrInvalid)
	}

	tt := model.TaskTag{
		TaskTagID:  uuid.New().String(),
		TaskID:     taskID,
		TagID:      tagID,
		AssignedAt: s.now(),
		Tag:        tag,
	}
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO task_tags (task_tag_id, task_id, tag_id, assigned_at) VALUES (?, ?, ?, ?)",
			tt.TaskTagID, tt.TaskID, tt.TagID, tt.AssignedAt,
		)
		if err != nil {
			return constraintErr(err, fmt.Sprintf("tagging task %s with %s", taskID, tag.Name))
		}
		return s.recordActivity(ctx, tx, taskID, actor, model.TagAdded{TagID: tagID, Name: tag.Name})
	})
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// RemoveTaskTag unassigns a tag from a task. Removing a tag that is not
// assigned returns ErrNotFound and changes nothing.
func (s *SQLiteStore) RemoveTaskTag(ctx context.Context, actor, taskID, tagID string) error {
	var name string
	err := s.db.GetContext(ctx, &name, `
		SELECT t.name FROM task_tags tt
		INNER JOIN tags t ON t.id = tt.tag_id
		WHERE tt.task_id = ? AND tt.tag_id = ?`, taskID, tagID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("tag %s on task %s: %w", tagID, taskID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up tag %s on task %s: %w", tagID, taskID, err)
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			"DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?", taskID, tagID)
		if err != nil {
			return fmt.Errorf("removing tag %s from task %s: %w", tagID, taskID, err)
		}
		if err := requireRows(result, "task tag", tagID); err != nil {
			return err
		}
		return s.recordActivity(ctx, tx, taskID, actor, model.TagRemoved{TagID: tagID, Name: name})
	})
}
