package model

import "time"

// TaskPatch is a partial update of a task. Nil fields are left unchanged.
type TaskPatch struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	ClearDueDate  bool       `json:"clear_due_date,omitempty"`
	Assignee      *string    `json:"assignee,omitempty"`
	ClearAssignee bool       `json:"clear_assignee,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && !p.ClearDueDate &&
		p.Assignee == nil && !p.ClearAssignee
}

// Apply returns a copy of t with the patch applied. Status changes keep
// CompletedAt consistent.
func (p TaskPatch) Apply(t Task, now time.Time) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil && *p.Status != t.Status {
		t.Status = *p.Status
		if t.Status == StatusCompleted {
			completed := now
			t.CompletedAt = &completed
		} else {
			t.CompletedAt = nil
		}
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.ClearAssignee {
		t.Assignee = nil
	} else if p.Assignee != nil {
		a := *p.Assignee
		t.Assignee = &a
	}
	t.UpdatedAt = now
	return t
}

// SubtaskPatch is a partial update of a subtask.
type SubtaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Apply returns a copy of s with the patch applied.
func (p SubtaskPatch) Apply(s Subtask, now time.Time) Subtask {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		s.Description = &d
	}
	if p.Completed != nil {
		s.SetCompleted(*p.Completed, now)
	}
	s.UpdatedAt = now
	return s
}
