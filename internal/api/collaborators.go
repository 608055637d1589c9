package api

import (
	"context"

	"github.com/nhle/taskboard/internal/model"
)

// ListCollaborators returns the collaborators of a task.
func (c *Client) ListCollaborators(ctx context.Context, taskID string) ([]model.Collaborator, error) {
	if err := c.checkID("task_id", taskID); err != nil {
		return nil, err
	}
	var out []model.Collaborator
	if err := c.get(ctx, escape("tasks", taskID, "collaborators"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCollaborator grants a user a role on a task.
func (c *Client) AddCollaborator(ctx context.Context, req AddCollaboratorRequest) (*model.Collaborator, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Collaborator
	if err := c.post(ctx, escape("tasks", req.TaskID, "collaborators"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCollaboratorRole changes a collaborator's role.
func (c *Client) UpdateCollaboratorRole(ctx context.Context, req UpdateCollaboratorRoleRequest) (*model.Collaborator, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Collaborator
	if err := c.patch(ctx, escape("collaborators", req.CollaboratorID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveCollaborator revokes a collaborator.
func (c *Client) RemoveCollaborator(ctx context.Context, collaboratorID string) error {
	if err := c.checkID("collaborator_id", collaboratorID); err != nil {
		return err
	}
	return c.delete(ctx, escape("collaborators", collaboratorID), nil)
}
