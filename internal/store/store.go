package store

import (
	"context"
	"errors"

	"github.com/nhle/taskboard/internal/model"
)

// Sentinel errors returned by Store implementations. The server maps them
// to HTTP status codes.
var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid")
	ErrForbidden = errors.New("forbidden")
)

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	WorkspaceID *string
	ListID      *string
	Status      *string
	Query       *string
	SortBy      string
	SortDesc    bool
	Limit       int
	Offset      int
}

// ActivityFilter selects a page of a task's activity, newest first.
type ActivityFilter struct {
	TaskID string
	Type   *model.ActivityType
	Limit  int
	Offset int
}

// Store defines the persistence interface of the reference backend. Every
// mutation of a task or its sub-entities appends an Activity row in the
// same transaction, attributed to actor.
type Store interface {
	// === Workspaces and lists ===

	CreateWorkspace(ctx context.Context, w model.Workspace) (*model.Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*model.Workspace, error)
	GetWorkspaces(ctx context.Context) ([]model.Workspace, error)
	CreateList(ctx context.Context, l model.List) (*model.List, error)
	GetLists(ctx context.Context, workspaceID string) ([]model.List, error)

	// === Tasks ===

	CreateTask(ctx context.Context, actor string, t model.Task) (*model.Task, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	UpdateTask(ctx context.Context, actor, id string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error

	// === Comments ===

	GetComments(ctx context.Context, taskID string) ([]model.Comment, error)
	CreateComment(ctx context.Context, actor string, c model.Comment) (*model.Comment, error)
	UpdateComment(ctx context.Context, actor, id, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, actor, id string) (*model.Comment, error)

	// === Subtasks ===

	GetSubtasks(ctx context.Context, taskID string) ([]model.Subtask, error)
	CreateSubtask(ctx context.Context, actor string, s model.Subtask) (*model.Subtask, error)
	UpdateSubtask(ctx context.Context, actor, id string, patch model.SubtaskPatch) (*model.Subtask, error)
	DeleteSubtask(ctx context.Context, actor, id string) error

	// === Collaborators ===

	GetCollaborators(ctx context.Context, taskID string) ([]model.Collaborator, error)
	AddCollaborator(ctx context.Context, actor string, c model.Collaborator) (*model.Collaborator, error)
	UpdateCollaboratorRole(ctx context.Context, actor, id, role string) (*model.Collaborator, error)
	RemoveCollaborator(ctx context.Context, actor, id string) error

	// === Tags ===

	CreateTag(ctx context.Context, tag model.Tag) (*model.Tag, error)
	GetWorkspaceTags(ctx context.Context, workspaceID string) ([]model.Tag, error)
	GetTaskTags(ctx context.Context, taskID string) ([]model.TaskTag, error)
	AddTaskTag(ctx context.Context, actor, taskID, tagID string) (*model.TaskTag, error)
	RemoveTaskTag(ctx context.Context, actor, taskID, tagID string) error

	// === Activity ===

	GetActivity(ctx context.Context, filter ActivityFilter) ([]model.Activity, error)

	// === Friendships ===

	GetFriendships(ctx context.Context, userID string) ([]model.Friendship, error)
	RequestFriendship(ctx context.Context, userID, friendID string) (*model.Friendship, error)
	RespondFriendship(ctx context.Context, actor, id, status string) (*model.Friendship, error)
	RemoveFriendship(ctx context.Context, actor, id string) error
}
