package api

import (
	"context"

	"github.com/nhle/taskboard/internal/model"
)

// ListFriendships returns every friendship the user is part of.
func (c *Client) ListFriendships(ctx context.Context) ([]model.Friendship, error) {
	var out []model.Friendship
	if err := c.get(ctx, "/friendships", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RequestFriendship sends a friend request.
func (c *Client) RequestFriendship(ctx context.Context, req RequestFriendshipRequest) (*model.Friendship, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Friendship
	if err := c.post(ctx, "/friendships", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RespondFriendship accepts or rejects a pending request.
func (c *Client) RespondFriendship(ctx context.Context, req RespondFriendshipRequest) (*model.Friendship, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out model.Friendship
	if err := c.patch(ctx, escape("friendships", req.FriendshipID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveFriendship deletes a friendship in any state.
func (c *Client) RemoveFriendship(ctx context.Context, friendshipID string) error {
	if err := c.checkID("friendship_id", friendshipID); err != nil {
		return err
	}
	return c.delete(ctx, escape("friendships", friendshipID), nil)
}
