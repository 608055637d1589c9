package model

import "time"

// DeletedCommentContent replaces the content of a logically deleted comment.
const DeletedCommentContent = "[deleted]"

// Comment is a message on a task. ParentID, when set, references another
// comment on the same task.
type Comment struct {
	ID        string     `json:"id" db:"id"`
	TaskID    string     `json:"task_id" db:"task_id"`
	Author    string     `json:"author" db:"author"`
	ParentID  *string    `json:"parent_id,omitempty" db:"parent_id"`
	Content   string     `json:"content" db:"content"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty" db:"edited_at"`
	IsDeleted bool       `json:"is_deleted,omitempty" db:"is_deleted"`
}

// IsReply reports whether the comment has a parent.
func (c Comment) IsReply() bool { return c.ParentID != nil && *c.ParentID != "" }

// DisplayContent returns the text to show for the comment, withholding the
// content of deleted comments.
func (c Comment) DisplayContent() string {
	if c.IsDeleted {
		return DeletedCommentContent
	}
	return c.Content
}
