package taskdetail

import (
	"context"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
)

// Backend is the subset of *api.Client the service drives.
type Backend interface {
	UserID() string

	ListWorkspaces(ctx context.Context) ([]model.Workspace, error)
	ListLists(ctx context.Context, workspaceID string) ([]model.List, error)
	ListTasks(ctx context.Context, q api.TaskQuery) ([]model.Task, error)
	GetTask(ctx context.Context, taskID string) (*model.Task, error)
	CreateTask(ctx context.Context, req api.CreateTaskRequest) (*model.Task, error)
	UpdateTask(ctx context.Context, req api.UpdateTaskRequest) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID string) error

	ListComments(ctx context.Context, taskID string) ([]model.Comment, error)
	CreateComment(ctx context.Context, req api.CreateCommentRequest) (*model.Comment, error)
	UpdateComment(ctx context.Context, req api.UpdateCommentRequest) (*model.Comment, error)
	DeleteComment(ctx context.Context, commentID string) (*model.Comment, error)

	ListSubtasks(ctx context.Context, taskID string) ([]model.Subtask, error)
	CreateSubtask(ctx context.Context, req api.CreateSubtaskRequest) (*model.Subtask, error)
	UpdateSubtask(ctx context.Context, req api.UpdateSubtaskRequest) (*model.Subtask, error)
	ToggleSubtask(ctx context.Context, s model.Subtask) (*model.Subtask, error)
	DeleteSubtask(ctx context.Context, subtaskID string) error

	ListCollaborators(ctx context.Context, taskID string) ([]model.Collaborator, error)
	AddCollaborator(ctx context.Context, req api.AddCollaboratorRequest) (*model.Collaborator, error)
	UpdateCollaboratorRole(ctx context.Context, req api.UpdateCollaboratorRoleRequest) (*model.Collaborator, error)
	RemoveCollaborator(ctx context.Context, collaboratorID string) error

	ListTaskTags(ctx context.Context, taskID string) ([]model.TaskTag, error)
	AddTag(ctx context.Context, req api.AddTagRequest) (*model.TaskTag, error)
	RemoveTag(ctx context.Context, taskID, tagID string) error
	ListWorkspaceTags(ctx context.Context, workspaceID string) ([]model.Tag, error)
	CreateWorkspaceTag(ctx context.Context, req api.CreateTagRequest) (*model.Tag, error)

	ListActivity(ctx context.Context, q api.ActivityQuery) (*api.ActivityPage, error)
}

var _ Backend = (*api.Client)(nil)
