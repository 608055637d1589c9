package api

import (
	"context"

	"github.com/nhle/taskboard/internal/model"
)

// ListSubtasks returns the subtasks of a task.
func (c *Client) ListSubtasks(ctx context.Context, taskID string) ([]model.Subtask, error) {
	if err := c.checkID("task_id", taskID); err != nil {
		return nil, err
	}
	var out []model.Subtask
	if err := c.get(ctx, escape("tasks", taskID, "subtasks"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSubtask adds a subtask to a task.
func (c *Client) CreateSubtask(ctx context.Context, req CreateSubtaskRequest) (*model.Subtask, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Subtask
	if err := c.post(ctx, escape("tasks", req.TaskID, "subtasks"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSubtask applies a partial update to a subtask.
func (c *Client) UpdateSubtask(ctx context.Context, req UpdateSubtaskRequest) (*model.Subtask, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Subtask
	if err := c.patch(ctx, escape("subtasks", req.SubtaskID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleSubtask flips the completion state of s.
func (c *Client) ToggleSubtask(ctx context.Context, s model.Subtask) (*model.Subtask, error) {
	done := !s.Completed
	return c.UpdateSubtask(ctx, UpdateSubtaskRequest{SubtaskID: s.ID, Completed: &done})
}

// DeleteSubtask removes a subtask.
func (c *Client) DeleteSubtask(ctx context.Context, subtaskID string) error {
	if err := c.checkID("subtask_id", subtaskID); err != nil {
		return err
	}
	return c.delete(ctx, escape("subtasks", subtaskID), nil)
}
