package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/taskboard/internal/model"
)

const friendshipColumns = "id, user_id, friend_id, status, created_at"

// GetFriendships returns every friendship userID is part of.
func (s *SQLiteStore) GetFriendships(ctx context.Context, userID string) ([]model.Friendship, error) {
	friendships := []model.Friendship{}
	if err := s.db.SelectContext(ctx, &friendships,
		"SELECT "+friendshipColumns+" FROM friendships WHERE user_id = ? OR friend_id = ? ORDER BY created_at, id",
		userID, userID); err != nil {
		return nil, fmt.Errorf("querying friendships: %w", err)
	}
	return friendships, nil
}

func (s *SQLiteStore) getFriendship(ctx context.Context, id string) (*model.Friendship, error) {
	var f model.Friendship
	if err := s.db.GetContext(ctx, &f,
		"SELECT "+friendshipColumns+" FROM friendships WHERE id = ?", id); err != nil {
		return nil, notFound(err, "friendship", id)
	}
	return &f, nil
}

// RequestFriendship creates a pending friendship from userID to friendID.
// A second row for the same pair, in either direction, is a conflict.
func (s *SQLiteStore) RequestFriendship(ctx context.Context, userID, friendID string) (*model.Friendship, error) {
	if strings.TrimSpace(friendID) == "" || userID == friendID {
		return nil, fmt.Errorf("friend %q: %w", friendID, ErrInvalid)
	}
	f := model.Friendship{
		ID:        uuid.New().String(),
		UserID:    userID,
		FriendID:  friendID,
		Status:    model.FriendshipPending,
		CreatedAt: s.now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friendships (id, user_id, friend_id, pair_key, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.FriendID, model.PairKey(userID, friendID), f.Status, f.CreatedAt,
	)
	if err != nil {
		return nil, constraintErr(err, "requesting friendship with "+friendID)
	}
	return &f, nil
}

// RespondFriendship accepts or rejects a pending request. Only the
// requested user may respond.
func (s *SQLiteStore) RespondFriendship(ctx context.Context, actor, id, status string) (*model.Friendship, error) {
	f, err := s.getFriendship(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.FriendID != actor {
		return nil, fmt.Errorf("responding to friendship %s: %w", id, ErrForbidden)
	}
	if err := f.Transition(status); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalid)
	}

	if err := s.setFriendshipStatus(ctx, id, f.Status, status); err != nil {
		return nil, err
	}
	f.Status = status
	return f, nil
}

// setFriendshipStatus moves a friendship from one status to another. It
// fails with ErrConflict when the row is no longer in the from status.
func (s *SQLiteStore) setFriendshipStatus(ctx context.Context, id, from, to string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE friendships SET status = ? WHERE id = ? AND status = ?", to, id, from)
	if err != nil {
		return fmt.Errorf("updating friendship %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("friendship %s is no longer %s: %w", id, from, ErrConflict)
	}
	return nil
}

// RemoveFriendship deletes a friendship in any state. Either user may remove it.
func (s *SQLiteStore) RemoveFriendship(ctx context.Context, actor, id string) error {
	f, err := s.getFriendship(ctx, id)
	if err != nil {
		return err
	}
	if !f.Involves(actor) {
		return fmt.Errorf("removing friendship %s: %w", id, ErrForbidden)
	}
	result, err := s.db.ExecContext(ctx, "DELETE FROM friendships WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting friendship %s: %w", id, err)
	}
	return requireRows(result, "friendship", id)
}
