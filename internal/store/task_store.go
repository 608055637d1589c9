package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskboard/internal/model"
)

// taskSelect selects task columns plus the aggregates shown in lists.
const taskSelect = `
	SELECT tasks.*,
		(SELECT COUNT(*) FROM comments c WHERE c.task_id = tasks.id AND c.is_deleted = 0) AS comment_count,
		(SELECT COUNT(*) FROM subtasks st WHERE st.task_id = tasks.id) AS subtask_count,
		(SELECT COUNT(*) FROM subtasks st WHERE st.task_id = tasks.id AND st.completed = 1) AS subtask_done
	FROM tasks`

// CreateTask inserts a new task. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateTask(ctx context.Context, actor string, t model.Task) (*model.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return nil, fmt.Errorf("task title must not be empty: %w", ErrInvalid)
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !model.ValidStatus(t.Status) || !model.ValidPriority(t.Priority) {
		return nil, fmt.Errorf("task status %q or priority %q: %w", t.Status, t.Priority, ErrInvalid)
	}
	if t.CreatedBy == "" {
		t.CreatedBy = actor
	}

	// A task inherits its workspace from the list.
	var workspaceID string
	if err := s.db.GetContext(ctx, &workspaceID,
		"SELECT workspace_id FROM lists WHERE id = ?", t.ListID); err != nil {
		return nil, notFound(err, "list", t.ListID)
	}
	t.WorkspaceID = workspaceID

	now := s.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.CompletedAt = nil
	if t.Status == model.StatusCompleted {
		t.CompletedAt = &now
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (
				id, title, description, status, priority, due_date,
				list_id, workspace_id, created_by, assignee,
				created_at, updated_at, completed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
			t.ListID, t.WorkspaceID, t.CreatedBy, t.Assignee,
			t.CreatedAt, t.UpdatedAt, t.CompletedAt,
		)
		if err != nil {
			return constraintErr(err, "creating task")
		}
		return s.recordActivity(ctx, tx, t.ID, actor, model.TaskCreated{Title: t.Title})
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTask retrieves a single task by ID with its aggregates.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var t model.Task
	if err := s.db.GetContext(ctx, &t, taskSelect+" WHERE tasks.id = ?", id); err != nil {
		return nil, notFound(err, "task", id)
	}
	return &t, nil
}

// GetTasks retrieves tasks matching the filter.
func (s *SQLiteStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query, args := buildTaskQuery(filter)

	tasks := []model.Task{}
	if err := s.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies patch to a task and records one activity per changed
// field.
func (s *SQLiteStore) UpdateTask(
	ctx context.Context,
	actor string,
	id string,
	patch model.TaskPatch,
) (*model.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("task title must not be empty: %w", ErrInvalid)
	}
	if patch.Status != nil && !model.ValidStatus(*patch.Status) {
		return nil, fmt.Errorf("task status %q: %w", *patch.Status, ErrInvalid)
	}
	if patch.Priority != nil && !model.ValidPriority(*patch.Priority) {
		return nil, fmt.Errorf("task priority %q: %w", *patch.Priority, ErrInvalid)
	}

	before, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return before, nil
	}
	after := patch.Apply(*before, s.now())

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE tasks SET
				title = ?, description = ?, status = ?, priority = ?,
				due_date = ?, assignee = ?, updated_at = ?, completed_at = ?
			WHERE id = ?`,
			after.Title, after.Description, after.Status, after.Priority,
			after.DueDate, after.Assignee, after.UpdatedAt, after.CompletedAt,
			id,
		)
		if err != nil {
			return constraintErr(err, "updating task "+id)
		}
		for _, p := range taskChanges(*before, after) {
			if err := s.recordActivity(ctx, tx, id, actor, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &after, nil
}

// DeleteTask removes a task. Cascades to every task-scoped table.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return requireRows(result, "task", id)
}

// taskChanges lists the activity payloads describing how before became after.
func taskChanges(before, after model.Task) []model.ActivityPayload {
	var changes []model.ActivityPayload
	if before.Status != after.Status {
		changes = append(changes, model.StatusChanged{From: before.Status, To: after.Status})
	}
	if before.Priority != after.Priority {
		changes = append(changes, model.PriorityChanged{From: before.Priority, To: after.Priority})
	}
	if before.Title != after.Title {
		changes = append(changes, model.TitleChanged{From: before.Title, To: after.Title})
	}
	if before.Description != after.Description {
		changes = append(changes, model.DescriptionChanged{})
	}
	if !sameTime(before.DueDate, after.DueDate) {
		changes = append(changes, model.DueDateChanged{From: before.DueDate, To: after.DueDate})
	}
	if !sameString(before.Assignee, after.Assignee) {
		changes = append(changes, model.AssigneeChanged{From: before.Assignee, To: after.Assignee})
	}
	return changes
}

// buildTaskQuery constructs the SQL query and args for a TaskFilter.
func buildTaskQuery(filter TaskFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.WorkspaceID != nil {
		conditions = append(conditions, "tasks.workspace_id = ?")
		args = append(args, *filter.WorkspaceID)
	}
	if filter.ListID != nil {
		conditions = append(conditions, "tasks.list_id = ?")
		args = append(args, *filter.ListID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "tasks.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions,
			"(tasks.title LIKE ? OR tasks.description LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := taskSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// Sort.
	sortBy := "tasks.created_at"
	if filter.SortBy != "" {
		allowed := map[string]string{
			"priority":   "tasks.priority",
			"due_date":   "tasks.due_date",
			"created_at": "tasks.created_at",
			"updated_at": "tasks.updated_at",
			"title":      "tasks.title",
			"status":     "tasks.status",
		}
		if col, ok := allowed[filter.SortBy]; ok {
			sortBy = col
		}
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, tasks.id", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	return query, args
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
