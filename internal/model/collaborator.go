package model

import "time"

// Collaborator roles.
const (
	RoleOwner    = "owner"
	RoleAssignee = "assignee"
	RoleReviewer = "reviewer"
	RoleObserver = "observer"
)

// Collaborator is a user granted a role on a single task. There is at most
// one collaborator per (task, user).
type Collaborator struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"task_id" db:"task_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ValidRole reports whether r is a known collaborator role.
func ValidRole(r string) bool {
	switch r {
	case RoleOwner, RoleAssignee, RoleReviewer, RoleObserver:
		return true
	}
	return false
}
