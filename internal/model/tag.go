package model

import "time"

// Tag is a workspace-scoped label for categorizing tasks.
type Tag struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Color       string    `json:"color" db:"color"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TaskTag is the assignment of a tag to a task. A tag is assigned to a
// given task at most once.
type TaskTag struct {
	TaskTagID  string    `json:"task_tag_id" db:"task_tag_id"`
	TaskID     string    `json:"task_id" db:"task_id"`
	TagID      string    `json:"tag_id" db:"tag_id"`
	AssignedAt time.Time `json:"assigned_at" db:"assigned_at"`

	// Tag is populated by queries that join with tags.
	Tag Tag `json:"tag" db:"-"`
}
