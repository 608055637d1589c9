package model

import (
	"fmt"
	"time"
)

// Friendship statuses.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
)

// Friendship is a social relationship between two users. At most one row
// exists per unordered {UserID, FriendID} pair.
type Friendship struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	FriendID  string    `json:"friend_id" db:"friend_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Involves reports whether userID is either side of the friendship.
func (f Friendship) Involves(userID string) bool {
	return f.UserID == userID || f.FriendID == userID
}

// Transition validates moving a friendship from its current status to next.
// Only pending friendships can be accepted or rejected. Removal deletes the
// row and is allowed from any status, so it is not modelled here.
func (f Friendship) Transition(next string) error {
	if f.Status != FriendshipPending {
		return fmt.Errorf("friendship %s is %s, cannot become %s", f.ID, f.Status, next)
	}
	switch next {
	case FriendshipAccepted, FriendshipRejected:
		return nil
	}
	return fmt.Errorf("invalid friendship status %q", next)
}

// PairKey returns an order-independent key for the two users. The first
// id is length-prefixed so distinct pairs never share a key, whatever
// characters the ids contain.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%s%s", len(a), a, b)
}
