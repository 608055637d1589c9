package api

import (
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// Request types. Fields tagged json:"-" travel in the URL path.

type CreateTaskRequest struct {
	ListID      string     `json:"list_id" validate:"required"`
	Title       string     `json:"title" validate:"notblank"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress completed"`
	Priority    string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Assignee    *string    `json:"assignee,omitempty"`
}

type UpdateTaskRequest struct {
	TaskID        string     `json:"-" path:"task_id" validate:"required"`
	Title         *string    `json:"title,omitempty" validate:"omitempty,notblank"`
	Description   *string    `json:"description,omitempty"`
	Status        *string    `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress completed"`
	Priority      *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	ClearDueDate  bool       `json:"clear_due_date,omitempty"`
	Assignee      *string    `json:"assignee,omitempty"`
	ClearAssignee bool       `json:"clear_assignee,omitempty"`
}

// Patch returns the task patch carried by the request.
func (r UpdateTaskRequest) Patch() model.TaskPatch {
	return model.TaskPatch{
		Title:         r.Title,
		Description:   r.Description,
		Status:        r.Status,
		Priority:      r.Priority,
		DueDate:       r.DueDate,
		ClearDueDate:  r.ClearDueDate,
		Assignee:      r.Assignee,
		ClearAssignee: r.ClearAssignee,
	}
}

type TaskQuery struct {
	WorkspaceID string
	ListID      string
	Status      string `validate:"omitempty,oneof=todo in_progress completed"`
	Query       string
}

type CreateCommentRequest struct {
	TaskID   string  `json:"-" path:"task_id" validate:"required"`
	Content  string  `json:"content" validate:"notblank"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,notblank"`
}

type UpdateCommentRequest struct {
	CommentID string `json:"-" path:"comment_id" validate:"required"`
	Content   string `json:"content" validate:"notblank"`
}

type CreateSubtaskRequest struct {
	TaskID      string  `json:"-" path:"task_id" validate:"required"`
	Title       string  `json:"title" validate:"notblank"`
	Description *string `json:"description,omitempty"`
}

type UpdateSubtaskRequest struct {
	SubtaskID   string  `json:"-" path:"subtask_id" validate:"required"`
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

type AddCollaboratorRequest struct {
	TaskID string `json:"-" path:"task_id" validate:"required"`
	UserID string `json:"user_id" validate:"notblank"`
	Role   string `json:"role" validate:"required,oneof=owner assignee reviewer observer"`
}

type UpdateCollaboratorRoleRequest struct {
	CollaboratorID string `json:"-" path:"collaborator_id" validate:"required"`
	Role           string `json:"role" validate:"required,oneof=owner assignee reviewer observer"`
}

type AddTagRequest struct {
	TaskID string `json:"-" path:"task_id" validate:"required"`
	TagID  string `json:"tag_id" validate:"notblank"`
}

type CreateTagRequest struct {
	WorkspaceID string `json:"-" path:"workspace_id" validate:"required"`
	Name        string `json:"name" validate:"notblank"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// ActivityQuery selects a page of a task's activity feed.
type ActivityQuery struct {
	TaskID string `path:"task_id" validate:"required"`
	Limit  int    `path:"limit" validate:"gte=1,lte=100"`
	Offset int    `path:"offset" validate:"gte=0"`
	Type   string `path:"type" validate:"omitempty,activitytype"`
}

type RequestFriendshipRequest struct {
	FriendID string `json:"friend_id" validate:"notblank"`
}

type RespondFriendshipRequest struct {
	FriendshipID string `json:"-" path:"friendship_id" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=accepted rejected"`
}
