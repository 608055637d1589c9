package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskboard/internal/model"
)

const excerptLen = 80

// GetComments returns the flat comment list of a task in creation order.
func (s *SQLiteStore) GetComments(ctx context.Context, taskID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	if err := s.db.SelectContext(ctx, &comments,
		"SELECT * FROM comments WHERE task_id = ? ORDER BY created_at, rowid",
		taskID); err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	return comments, nil
}

func (s *SQLiteStore) getComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := s.db.GetContext(ctx, &c, "SELECT * FROM comments WHERE id = ?", id); err != nil {
		return nil, notFound(err, "comment", id)
	}
	return &c, nil
}

// CreateComment inserts a comment or reply. A parent must be a comment on
// the same task.
func (s *SQLiteStore) CreateComment(ctx context.Context, actor string, c model.Comment) (*model.Comment, error) {
	if strings.TrimSpace(c.Content) == "" {
		return nil, fmt.Errorf("comment content must not be empty: %w", ErrInvalid)
	}
	if c.ParentID != nil && *c.ParentID == "" {
		c.ParentID = nil
	}
	if c.ParentID != nil {
		parent, err := s.getComment(ctx, *c.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent comment: %w", ErrInvalid)
		}
		if parent.TaskID != c.TaskID {
			return nil, fmt.Errorf("parent comment %s belongs to another task: %w", parent.ID, ErrInvalid)
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.Author = actor
	c.CreatedAt = s.now()
	c.EditedAt = nil
	c.IsDeleted = false

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comments (id, task_id, author, parent_id, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.TaskID, c.Author, c.ParentID, c.Content, c.CreatedAt,
		)
		if err != nil {
			return constraintErr(err, "creating comment")
		}
		return s.recordActivity(ctx, tx, c.TaskID, actor, model.CommentAdded{
			CommentID: c.ID,
			ParentID:  c.ParentID,
			Excerpt:   excerpt(c.Content),
		})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateComment replaces the content of a comment. Only the author may edit,
// and deleted comments cannot be edited.
func (s *SQLiteStore) UpdateComment(ctx context.Context, actor, id, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment content must not be empty: %w", ErrInvalid)
	}
	c, err := s.getComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Author != actor {
		return nil, fmt.Errorf("editing comment %s: %w", id, ErrForbidden)
	}
	if c.IsDeleted {
		return nil, fmt.Errorf("comment %s is deleted: %w", id, ErrInvalid)
	}

	now := s.now()
	c.Content = content
	c.EditedAt = &now

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			"UPDATE comments SET content = ?, edited_at = ? WHERE id = ?",
			c.Content, c.EditedAt, id,
		)
		if err != nil {
			return fmt.Errorf("updating comment %s: %w", id, err)
		}
		return s.recordActivity(ctx, tx, c.TaskID, actor, model.CommentEdited{
			CommentID: c.ID,
			ParentID:  c.ParentID,
			Excerpt:   excerpt(c.Content),
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment removes a comment. A comment with replies is deleted
// logically: its content is withheld and the marked row is returned so the
// thread keeps its shape. Otherwise the row is removed and nil is returned.
func (s *SQLiteStore) DeleteComment(ctx context.Context, actor, id string) (*model.Comment, error) {
	c, err := s.getComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Author != actor {
		return nil, fmt.Errorf("deleting comment %s: %w", id, ErrForbidden)
	}

	var replies int
	if err := s.db.GetContext(ctx, &replies,
		"SELECT COUNT(*) FROM comments WHERE parent_id = ?", id); err != nil {
		return nil, fmt.Errorf("counting replies of %s: %w", id, err)
	}

	var kept *model.Comment
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if replies > 0 {
			if _, err := tx.ExecContext(ctx,
				"UPDATE comments SET is_deleted = 1, content = '' WHERE id = ?", id); err != nil {
				return fmt.Errorf("marking comment %s deleted: %w", id, err)
			}
			marked := *c
			marked.IsDeleted = true
			marked.Content = ""
			kept = &marked
		} else {
			if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id); err != nil {
				return fmt.Errorf("deleting comment %s: %w", id, err)
			}
		}
		return s.recordActivity(ctx, tx, c.TaskID, actor, model.CommentDeleted{
			CommentID: c.ID,
			ParentID:  c.ParentID,
		})
	})
	if err != nil {
		return nil, err
	}
	return kept, nil
}

// excerpt shortens content for activity payloads.
func excerpt(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	r := []rune(content)
	if len(r) <= excerptLen {
		return content
	}
	return string(r[:excerptLen-1]) + "…"
}
