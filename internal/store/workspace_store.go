package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/taskboard/internal/model"
)

// CreateWorkspace inserts a new workspace.
func (s *SQLiteStore) CreateWorkspace(ctx context.Context, w model.Workspace) (*model.Workspace, error) {
	if strings.TrimSpace(w.Name) == "" {
		return nil, fmt.Errorf("workspace name must not be empty: %w", ErrInvalid)
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	w.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO workspaces (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)",
		w.ID, w.Name, w.OwnerID, w.CreatedAt,
	)
	if err != nil {
		return nil, constraintErr(err, "creating workspace")
	}
	return &w, nil
}

// GetWorkspace retrieves a workspace by ID.
func (s *SQLiteStore) GetWorkspace(ctx context.Context, id string) (*model.Workspace, error) {
	var w model.Workspace
	if err := s.db.GetContext(ctx, &w, "SELECT * FROM workspaces WHERE id = ?", id); err != nil {
		return nil, notFound(err, "workspace", id)
	}
	return &w, nil
}

// GetWorkspaces returns every workspace ordered by name.
func (s *SQLiteStore) GetWorkspaces(ctx context.Context) ([]model.Workspace, error) {
	workspaces := []model.Workspace{}
	if err := s.db.SelectContext(ctx, &workspaces,
		"SELECT * FROM workspaces ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("querying workspaces: %w", err)
	}
	return workspaces, nil
}

// CreateList inserts a new list into a workspace.
func (s *SQLiteStore) CreateList(ctx context.Context, l model.List) (*model.List, error) {
	if strings.TrimSpace(l.Name) == "" {
		return nil, fmt.Errorf("list name must not be empty: %w", ErrInvalid)
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO lists (id, workspace_id, name, created_at) VALUES (?, ?, ?, ?)",
		l.ID, l.WorkspaceID, l.Name, l.CreatedAt,
	)
	if err != nil {
		return nil, constraintErr(err, "creating list")
	}
	return &l, nil
}

// GetLists returns the lists of a workspace in creation order.
func (s *SQLiteStore) GetLists(ctx context.Context, workspaceID string) ([]model.List, error) {
	lists := []model.List{}
	if err := s.db.SelectContext(ctx, &lists,
		"SELECT * FROM lists WHERE workspace_id = ? ORDER BY created_at, id",
		workspaceID); err != nil {
		return nil, fmt.Errorf("querying lists: %w", err)
	}
	return lists, nil
}
