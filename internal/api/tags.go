package api

import (
	"context"

	"github.com/nhle/taskboard/internal/model"
)

// ListTaskTags returns the tags assigned to a task.
func (c *Client) ListTaskTags(ctx context.Context, taskID string) ([]model.TaskTag, error) {
	if err := c.checkID("task_id", taskID); err != nil {
		return nil, err
	}
	var out []model.TaskTag
	if err := c.get(ctx, escape("tasks", taskID, "tags"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddTag assigns a workspace tag to a task.
func (c *Client) AddTag(ctx context.Context, req AddTagRequest) (*model.TaskTag, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.TaskTag
	if err := c.post(ctx, escape("tasks", req.TaskID, "tags"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveTag unassigns a tag from a task.
func (c *Client) RemoveTag(ctx context.Context, taskID, tagID string) error {
	if err := c.checkID("task_id", taskID); err != nil {
		return err
	}
	if err := c.checkID("tag_id", tagID); err != nil {
		return err
	}
	return c.delete(ctx, escape("tasks", taskID, "tags", tagID), nil)
}

// ListWorkspaceTags returns the tags defined in a workspace.
func (c *Client) ListWorkspaceTags(ctx context.Context, workspaceID string) ([]model.Tag, error) {
	if err := c.checkID("workspace_id", workspaceID); err != nil {
		return nil, err
	}
	var out []model.Tag
	if err := c.get(ctx, escape("workspaces", workspaceID, "tags"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWorkspaceTag defines a new tag in a workspace.
func (c *Client) CreateWorkspaceTag(ctx context.Context, req CreateTagRequest) (*model.Tag, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Tag
	if err := c.post(ctx, escape("workspaces", req.WorkspaceID, "tags"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
