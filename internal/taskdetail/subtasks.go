package taskdetail

import (
	"context"
	"time"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
)

// AddSubtask appends a subtask to a task.
func (s *Service) AddSubtask(ctx context.Context, taskID, title string) (*model.Subtask, error) {
	now := time.Now().UTC()
	temp := model.Subtask{ID: pendingID(), TaskID: taskID, Title: title, CreatedAt: now, UpdatedAt: now}
	return createRow(ctx, s, subtasksKey(taskID), "adding subtask", subtaskID, temp,
		func(ctx context.Context) (*model.Subtask, error) {
			return s.backend.CreateSubtask(ctx, api.CreateSubtaskRequest{TaskID: taskID, Title: title})
		})
}

// ToggleSubtask flips the completion of a subtask.
func (s *Service) ToggleSubtask(ctx context.Context, taskID, id string) (*model.Subtask, error) {
	now := time.Now().UTC()
	return updateRow(ctx, s, subtasksKey(taskID), "toggling subtask", subtaskID, id,
		func(st model.Subtask) model.Subtask {
			st.SetCompleted(!st.Completed, now)
			st.UpdatedAt = now
			return st
		},
		func(ctx context.Context, current model.Subtask) (*model.Subtask, error) {
			return s.backend.ToggleSubtask(ctx, current)
		})
}

// RenameSubtask changes the title of a subtask.
func (s *Service) RenameSubtask(ctx context.Context, taskID, id, title string) (*model.Subtask, error) {
	return updateRow(ctx, s, subtasksKey(taskID), "renaming subtask", subtaskID, id,
		func(st model.Subtask) model.Subtask {
			st.Title = title
			return st
		},
		func(ctx context.Context, _ model.Subtask) (*model.Subtask, error) {
			return s.backend.UpdateSubtask(ctx, api.UpdateSubtaskRequest{SubtaskID: id, Title: &title})
		})
}

// DeleteSubtask removes a subtask.
func (s *Service) DeleteSubtask(ctx context.Context, taskID, id string) error {
	return removeRows(ctx, s, subtasksKey(taskID), "deleting subtask", subtaskID,
		func(st model.Subtask) bool { return st.ID == id },
		func(ctx context.Context) error { return s.backend.DeleteSubtask(ctx, id) })
}
