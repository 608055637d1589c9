package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskboard/internal/model"
)

// GetCollaborators returns the collaborators of a task in the order they
// were added.
func (s *SQLiteStore) GetCollaborators(ctx context.Context, taskID string) ([]model.Collaborator, error) {
	collaborators := []model.Collaborator{}
	if err := s.db.SelectContext(ctx, &collaborators,
		"SELECT * FROM collaborators WHERE task_id = ? ORDER BY created_at, rowid",
		taskID); err != nil {
		return nil, fmt.Errorf("querying collaborators: %w", err)
	}
	return collaborators, nil
}

func (s *SQLiteStore) getCollaborator(ctx context.Context, id string) (*model.Collaborator, error) {
	var c model.Collaborator
	if err := s.db.GetContext(ctx, &c, "SELECT * FROM collaborators WHERE id = ?", id); err != nil {
		return nil, notFound(err, "collaborator", id)
	}
	return &c, nil
}

// AddCollaborator grants a user a role on a task. Adding a user twice is a
// conflict.
func (s *SQLiteStore) AddCollaborator(ctx context.Context, actor string, c model.Collaborator) (*model.Collaborator, error) {
	if strings.TrimSpace(c.UserID) == "" {
		return nil, fmt.Errorf("collaborator user must not be empty: %w", ErrInvalid)
	}
	if !model.ValidRole(c.Role) {
		return nil, fmt.Errorf("collaborator role %q: %w", c.Role, ErrInvalid)
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = s.now()

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collaborators (id, task_id, user_id, role, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.TaskID, c.UserID, c.Role, c.CreatedAt,
		)
		if err != nil {
			return constraintErr(err, "adding collaborator "+c.UserID)
		}
		return s.recordActivity(ctx, tx, c.TaskID, actor,
			model.CollaboratorAdded{UserID: c.UserID, Role: c.Role})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCollaboratorRole changes the role of a collaborator.
func (s *SQLiteStore) UpdateCollaboratorRole(ctx context.Context, actor, id, role string) (*model.Collaborator, error) {
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("collaborator role %q: %w", role, ErrInvalid)
	}
	c, err := s.getCollaborator(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Role == role {
		return c, nil
	}
	from := c.Role
	c.Role = role

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE collaborators SET role = ? WHERE id = ?", role, id); err != nil {
			return fmt.Errorf("updating collaborator %s: %w", id, err)
		}
		return s.recordActivity(ctx, tx, c.TaskID, actor,
			model.CollaboratorRoleChanged{UserID: c.UserID, From: from, To: role})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveCollaborator revokes a collaborator.
func (s *SQLiteStore) RemoveCollaborator(ctx context.Context, actor, id string) error {
	c, err := s.getCollaborator(ctx, id)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM collaborators WHERE id = ?", id); err != nil {
			return fmt.Errorf("removing collaborator %s: %w", id, err)
		}
		return s.recordActivity(ctx, tx, c.TaskID, actor,
			model.CollaboratorRemoved{UserID: c.UserID})
	})
}
