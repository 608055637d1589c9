package model

import "time"

// Task status values.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Task priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a unit of work belonging to a list within a workspace.
type Task struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	ListID      string     `json:"list_id" db:"list_id"`
	WorkspaceID string     `json:"workspace_id" db:"workspace_id"`
	CreatedBy   string     `json:"created_by" db:"created_by"`
	Assignee    *string    `json:"assignee,omitempty" db:"assignee"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// Aggregates populated by list queries.
	CommentCount int `json:"comment_count" db:"comment_count"`
	SubtaskCount int `json:"subtask_count" db:"subtask_count"`
	SubtaskDone  int `json:"subtask_done" db:"subtask_done"`
}

// IsCompleted reports whether the task is in the completed state.
func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

// IsOverdue reports whether the task has a past due date and is still open.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.IsCompleted()
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Workspace is the top-level container scoping lists, tasks and tags.
type Workspace struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// List groups tasks inside a workspace.
type List struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Name        string    `json:"name" db:"name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
