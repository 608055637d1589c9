package api

import (
	"context"

	"github.com/nhle/taskboard/internal/model"
)

// ListComments returns the flat comment list of a task in creation order.
func (c *Client) ListComments(ctx context.Context, taskID string) ([]model.Comment, error) {
	if err := c.checkID("task_id", taskID); err != nil {
		return nil, err
	}
	var out []model.Comment
	if err := c.get(ctx, escape("tasks", taskID, "comments"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateComment posts a comment, or a reply when ParentID is set.
func (c *Client) CreateComment(ctx context.Context, req CreateCommentRequest) (*model.Comment, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Comment
	if err := c.post(ctx, escape("tasks", req.TaskID, "comments"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateComment edits the content of a comment.
func (c *Client) UpdateComment(ctx context.Context, req UpdateCommentRequest) (*model.Comment, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Comment
	if err := c.patch(ctx, escape("comments", req.CommentID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteComment deletes a comment. When the backend keeps the row because it
// has replies, the logically deleted comment is returned; a hard delete
// returns nil.
func (c *Client) DeleteComment(ctx context.Context, commentID string) (*model.Comment, error) {
	if err := c.checkID("comment_id", commentID); err != nil {
		return nil, err
	}
	var out model.Comment
	if err := c.delete(ctx, escape("comments", commentID), &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}
