package taskdetail

import (
	"context"
	"time"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
)

// AddCollaborator grants userID a role on the task.
func (s *Service) AddCollaborator(ctx context.Context, taskID, userID, role string) (*model.Collaborator, error) {
	temp := model.Collaborator{ID: pendingID(), TaskID: taskID, UserID: userID, Role: role, CreatedAt: time.Now().UTC()}
	return createRow(ctx, s, collaboratorsKey(taskID), "adding collaborator", collaboratorID, temp,
		func(ctx context.Context) (*model.Collaborator, error) {
			return s.backend.AddCollaborator(ctx, api.AddCollaboratorRequest{TaskID: taskID, UserID: userID, Role: role})
		})
}

// ChangeRole changes a collaborator's role.
func (s *Service) ChangeRole(ctx context.Context, taskID, id, role string) (*model.Collaborator, error) {
	return updateRow(ctx, s, collaboratorsKey(taskID), "changing collaborator role", collaboratorID, id,
		func(c model.Collaborator) model.Collaborator {
			c.Role = role
			return c
		},
		func(ctx context.Context, _ model.Collaborator) (*model.Collaborator, error) {
			return s.backend.UpdateCollaboratorRole(ctx, api.UpdateCollaboratorRoleRequest{CollaboratorID: id, Role: role})
		})
}

// RemoveCollaborator revokes a collaborator's access to the task.
func (s *Service) RemoveCollaborator(ctx context.Context, taskID, id string) error {
	return removeRows(ctx, s, collaboratorsKey(taskID), "removing collaborator", collaboratorID,
		func(c model.Collaborator) bool { return c.ID == id },
		func(ctx context.Context) error { return s.backend.RemoveCollaborator(ctx, id) })
}
