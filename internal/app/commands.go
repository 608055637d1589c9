package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/ui/taskform"
)

// workspacesLoadedMsg carries the workspaces visible to the user.
type workspacesLoadedMsg struct {
	workspaces []model.Workspace
	err        error
}

// taskCreatedMsg is sent after a task is created.
type taskCreatedMsg struct {
	task model.Task
	err  error
}

// createListResolvedMsg carries the list a new task goes into when none
// was selected.
type createListResolvedMsg struct {
	listID string
	err    error
}

func (m Model) loadWorkspaces() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ws, err := svc.Workspaces(context.Background())
		return workspacesLoadedMsg{workspaces: ws, err: err}
	}
}

// createTask persists a new task from the create form.
func (m Model) createTask(listID string, v taskform.Values) tea.Cmd {
	svc := m.svc
	logger := m.logger
	return func() tea.Msg {
		t, err := svc.CreateTask(context.Background(), v.CreateRequest(listID))
		if err != nil {
			logger.Warn("Creating task failed", zap.String("list_id", listID), zap.Error(err))
			return taskCreatedMsg{err: err}
		}
		return taskCreatedMsg{task: *t}
	}
}

// resolveListThenCreate finds a default list for a new task.
func (m Model) resolveListThenCreate() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		workspaces, err := svc.Workspaces(ctx)
		if err != nil {
			return createListResolvedMsg{err: err}
		}
		for _, ws := range workspaces {
			lists, err := svc.Lists(ctx, ws.ID)
			if err != nil {
				return createListResolvedMsg{err: err}
			}
			if len(lists) > 0 {
				return createListResolvedMsg{listID: lists[0].ID}
			}
		}
		return createListResolvedMsg{err: errors.New("no list to create the task in")}
	}
}
