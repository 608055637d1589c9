package api

import (
	"context"
	"net/url"

	"github.com/nhle/taskboard/internal/model"
)

// ListWorkspaces returns every workspace visible to the user.
func (c *Client) ListWorkspaces(ctx context.Context) ([]model.Workspace, error) {
	var out []model.Workspace
	if err := c.get(ctx, "/workspaces", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListLists returns the lists of a workspace.
func (c *Client) ListLists(ctx context.Context, workspaceID string) ([]model.List, error) {
	if err := c.check(struct {
		WorkspaceID string `path:"workspace_id" validate:"required"`
	}{workspaceID}); err != nil {
		return nil, err
	}
	var out []model.List
	if err := c.get(ctx, escape("workspaces", workspaceID, "lists"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTasks returns tasks matching q.
func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]model.Task, error) {
	if err := c.check(q); err != nil {
		return nil, err
	}
	params := url.Values{}
	if q.WorkspaceID != "" {
		params.Set("workspace_id", q.WorkspaceID)
	}
	if q.ListID != "" {
		params.Set("list_id", q.ListID)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Query != "" {
		params.Set("q", q.Query)
	}
	path := "/tasks"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out []model.Task
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	if err := c.checkID("task_id", taskID); err != nil {
		return nil, err
	}
	var out model.Task
	if err := c.get(ctx, escape("tasks", taskID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask creates a task in a list.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*model.Task, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Task
	if err := c.post(ctx, "/tasks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, req UpdateTaskRequest) (*model.Task, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Task
	if err := c.patch(ctx, escape("tasks", req.TaskID), req.Patch(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task and everything attached to it.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	if err := c.checkID("task_id", taskID); err != nil {
		return err
	}
	return c.delete(ctx, escape("tasks", taskID), nil)
}

// checkID rejects an empty identifier.
func (c *Client) checkID(field, id string) error {
	if id != "" {
		return nil
	}
	return &ValidationError{Fields: map[string]string{
		field: "The field '" + field + "' is required.",
	}}
}
