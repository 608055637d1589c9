package model

import "time"

// Subtask is a checklist entry bound to a task. CompletedAt is set iff
// Completed is true.
type Subtask struct {
	ID          string     `json:"id" db:"id"`
	TaskID      string     `json:"task_id" db:"task_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// SetCompleted flips the completion state and keeps CompletedAt consistent.
func (s *Subtask) SetCompleted(done bool, now time.Time) {
	s.Completed = done
	if done {
		if s.CompletedAt == nil {
			t := now
			s.CompletedAt = &t
		}
		return
	}
	s.CompletedAt = nil
}
