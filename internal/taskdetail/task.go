package taskdetail

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/model"
)

// Tasks returns the tasks of a list, or of every list when listID is empty.
// The result is served from the cache unless it was invalidated.
func (s *Service) Tasks(ctx context.Context, listID string) ([]model.Task, error) {
	key := TaskListKey(listID)
	var tasks []model.Task
	found, err := s.cache.Get(key, &tasks)
	if err != nil {
		return nil, err
	}
	if found && !s.cache.Stale(key) {
		return tasks, nil
	}

	tasks, err = s.backend.ListTasks(ctx, api.TaskQuery{ListID: listID})
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if err := s.cache.Set(key, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Workspaces lists the workspaces visible to the user.
func (s *Service) Workspaces(ctx context.Context) ([]model.Workspace, error) {
	ws, err := s.backend.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading workspaces: %w", err)
	}
	return ws, nil
}

// Lists returns the lists of a workspace.
func (s *Service) Lists(ctx context.Context, workspaceID string) ([]model.List, error) {
	lists, err := s.backend.ListLists(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("loading lists: %w", err)
	}
	return lists, nil
}

// CreateTask creates a task in a list and adds it to the cached list view,
// when that list is loaded.
func (s *Service) CreateTask(ctx context.Context, req api.CreateTaskRequest) (*model.Task, error) {
	const action = "creating task"
	key := TaskListKey(req.ListID)
	s.cache.DependsOn(key, TaskListKey(""))

	created, err := s.backend.CreateTask(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	appendTask := cache.PatchOf(func(tasks []model.Task) []model.Task {
		return settleCreated(tasks, rowTaskID, "", *created)
	})
	m, err := s.cache.BeginPatch(key, func(data []byte) ([]byte, error) {
		if data == nil {
			return nil, nil
		}
		return appendTask(data)
	})
	if err != nil {
		return nil, err
	}
	if err := s.commit(m, action, nil); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTask applies a partial update to the task.
func (s *Service) UpdateTask(ctx context.Context, taskID string, patch model.TaskPatch) (*model.Task, error) {
	const action = "updating task"
	var current model.Task
	found, err := s.cache.Get(taskKey(taskID), &current)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s: task %s is not loaded", action, taskID)
	}

	now := time.Now().UTC()
	m, err := s.cache.BeginPatch(taskKey(taskID), cache.PatchOf(func(t model.Task) model.Task {
		return patch.Apply(t, now)
	}))
	if err != nil {
		return nil, err
	}

	updated, err := s.backend.UpdateTask(ctx, api.UpdateTaskRequest{
		TaskID:        taskID,
		Title:         patch.Title,
		Description:   patch.Description,
		Status:        patch.Status,
		Priority:      patch.Priority,
		DueDate:       patch.DueDate,
		ClearDueDate:  patch.ClearDueDate,
		Assignee:      patch.Assignee,
		ClearAssignee: patch.ClearAssignee,
	})
	if err != nil {
		return nil, s.fail(m, action, err, nil)
	}
	if err := s.commit(m, action, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// SetStatus moves the task to status.
func (s *Service) SetStatus(ctx context.Context, taskID, status string) (*model.Task, error) {
	return s.UpdateTask(ctx, taskID, model.TaskPatch{Status: &status})
}

// SetPriority changes the task's priority.
func (s *Service) SetPriority(ctx context.Context, taskID, priority string) (*model.Task, error) {
	return s.UpdateTask(ctx, taskID, model.TaskPatch{Priority: &priority})
}

// DeleteTask deletes the task and drops it from the cache.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	const action = "deleting task"
	m, err := s.cache.Begin(taskKey(taskID), nil)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteTask(ctx, taskID); err != nil {
		return s.fail(m, action, err, nil)
	}
	if err := s.commit(m, action, nil); err != nil {
		return err
	}
	s.cache.Delete(commentsKey(taskID))
	s.cache.Delete(subtasksKey(taskID))
	s.cache.Delete(collaboratorsKey(taskID))
	s.cache.Delete(tagsKey(taskID))
	s.cache.Delete(activityKey(taskID))
	return nil
}
