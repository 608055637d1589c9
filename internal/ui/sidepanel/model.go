// Package sidepanel renders the task side panel: tabs over a task's
// sub-entities, permission-gated dialogs, and optimistic mutations that
// report back to the parent as messages.
package sidepanel

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/panel"
	"github.com/nhle/taskboard/internal/taskdetail"
	"github.com/nhle/taskboard/internal/thread"
	"github.com/nhle/taskboard/internal/ui/taskform"
)

// DetailLoadedMsg carries a loaded or refreshed task detail. Results for a
// task that is no longer shown are dropped.
type DetailLoadedMsg struct {
	TaskID string
	Detail *taskdetail.Detail
	Err    error
}

// MutationDoneMsg reports the outcome of a mutation started from the panel.
// Event, when set, is forwarded to the parent on success.
type MutationDoneMsg struct {
	TaskID string
	Action string
	Err    error
	Event  tea.Msg
}

// NewTaskMsg asks the parent to open the create form for a list.
type NewTaskMsg struct {
	ListID string
}

// tagsLoadedMsg carries the workspace tags offered by the add tag dialog.
type tagsLoadedMsg struct {
	TaskID string
	Tags   []model.Tag
	Err    error
}

// Options configure the panel.
type Options struct {
	// MarkdownStyle is the glamour style for descriptions ("dark",
	// "light", "notty"). Empty disables markdown rendering.
	MarkdownStyle string
}

// Model is the side panel component.
type Model struct {
	svc      *taskdetail.Service
	logger   *zap.Logger
	keys     *keys.KeyMap
	opts     Options
	state    *panel.State
	detail   *taskdetail.Detail
	loading  bool
	cursor   int
	viewport viewport.Model
	progress progress.Model
	renderer *glamour.TermRenderer

	taskForm taskform.Model
	dialog   dialogModel

	width  int
	height int
}

// New creates an empty side panel.
func New(svc *taskdetail.Service, logger *zap.Logger, k *keys.KeyMap, opts Options, width, height int) Model {
	m := Model{
		svc:      svc,
		logger:   logger,
		keys:     k,
		opts:     opts,
		state:    panel.New("", panel.Permissions{}),
		viewport: viewport.New(width, height),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		taskForm: taskform.New(width, height),
		dialog:   newDialogModel(),
	}
	m.SetSize(width, height)
	return m
}

// Open shows task t with the given permissions and starts loading it.
func (m *Model) Open(t model.Task, perms panel.Permissions) tea.Cmd {
	m.state.Show(t.ID, perms)
	m.detail = &taskdetail.Detail{Task: t}
	m.loading = true
	m.cursor = 0
	m.dialog.reset()
	m.syncViewport()
	return m.load(t.ID)
}

// Close hides the panel. In-flight results for the old task are ignored.
func (m *Model) Close() {
	m.state.Show("", panel.Permissions{})
	m.detail = nil
	m.dialog.reset()
}

// TaskID returns the shown task, empty when closed.
func (m Model) TaskID() string { return m.state.TaskID() }

// IsOpen reports whether a task is shown.
func (m Model) IsOpen() bool { return m.state.TaskID() != "" }

// State exposes the panel state for the parent.
func (m Model) State() *panel.State { return m.state }

// Detail returns the shown detail.
func (m Model) Detail() *taskdetail.Detail { return m.detail }

// SetPermissions replaces the caller-supplied permissions.
func (m *Model) SetPermissions(p panel.Permissions) {
	m.state.SetPermissions(p)
	if _, ok := m.state.VisibleDialog(); !ok {
		m.dialog.reset()
	}
}

// InDialog reports whether keyboard input belongs to an open dialog.
func (m Model) InDialog() bool {
	return m.taskForm.Active() || m.dialog.active()
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd { return nil }

// Update handles messages for the side panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		if !m.state.IsCurrent(msg.TaskID) {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			return m, notify(msg.TaskID, "loading task", msg.Err)
		}
		m.setDetail(msg.Detail)
		return m, nil

	case MutationDoneMsg:
		var cmds []tea.Cmd
		if msg.Err == nil && msg.Event != nil {
			event := msg.Event
			cmds = append(cmds, func() tea.Msg { return event })
		}
		if m.state.IsCurrent(msg.TaskID) {
			if _, deleted := msg.Event.(panel.TaskDeleted); deleted {
				m.Close()
				return m, tea.Batch(cmds...)
			}
			if d, err := m.svc.Snapshot(msg.TaskID); err == nil {
				m.setDetail(d)
			}
			if m.svc.Stale(msg.TaskID) {
				cmds = append(cmds, m.refresh(msg.TaskID))
			}
		}
		return m, tea.Batch(cmds...)

	case tagsLoadedMsg:
		if !m.state.IsCurrent(msg.TaskID) || !m.state.IsOpen(panel.DialogAddTag) {
			return m, nil
		}
		if msg.Err != nil {
			m.closeDialog(panel.DialogAddTag)
			return m, notify(msg.TaskID, "loading tags", msg.Err)
		}
		m.dialog.kind = panel.DialogAddTag
		m.dialog.taskID = msg.TaskID
		return m, m.dialog.startTag(m.assignableTags(msg.Tags), m.formWidth())

	case taskform.SubmittedMsg:
		if msg.TaskID == "" || !m.state.IsCurrent(msg.TaskID) {
			return m, nil
		}
		m.closeDialog(panel.DialogEditTask)
		patch := msg.Values.Patch(m.detail.Task)
		if patch.Empty() {
			return m, nil
		}
		return m, m.mutate("updating task", func(ctx context.Context, taskID string) (tea.Msg, error) {
			_, err := m.svc.UpdateTask(ctx, taskID, patch)
			return nil, err
		})

	case taskform.CancelMsg:
		if m.state.IsCurrent(msg.TaskID) {
			m.closeDialog(panel.DialogEditTask)
		}
		return m, nil

	case dialogDoneMsg:
		return m.submitDialog(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.InDialog() && key.Matches(keyMsg, m.keys.Back) {
		return m.abortDialog()
	}

	if m.taskForm.Active() {
		var cmd tea.Cmd
		m.taskForm, cmd = m.taskForm.Update(msg)
		return m, cmd
	}
	if m.dialog.active() {
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.detail != nil {
		return m.handleKeys(keyMsg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	task := m.detail.Task

	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.state.NextTab()
		m.cursor = 0
		m.syncViewport()
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.state.PrevTab()
		m.cursor = 0
		m.syncViewport()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if n := m.rowCount(); n > 0 {
			if m.cursor < n-1 {
				m.cursor++
			}
			m.syncViewport()
			return m, nil
		}
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.rowCount() > 0 {
			if m.cursor > 0 {
				m.cursor--
			}
			m.syncViewport()
			return m, nil
		}
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.ToggleStatus):
		ev, err := m.state.ToggleStatus(task)
		if err != nil {
			return m, notify(task.ID, "changing status", err)
		}
		return m, m.mutateWithEvent("changing status", ev, func(ctx context.Context, taskID string) error {
			_, err := m.svc.SetStatus(ctx, taskID, ev.To)
			return err
		})

	case key.Matches(msg, m.keys.CyclePriority):
		ev, err := m.state.ChangePriority(task, panel.NextPriority(task.Priority))
		if err != nil {
			return m, notify(task.ID, "changing priority", err)
		}
		return m, m.mutateWithEvent("changing priority", ev, func(ctx context.Context, taskID string) error {
			_, err := m.svc.SetPriority(ctx, taskID, ev.Priority)
			return err
		})

	case key.Matches(msg, m.keys.Edit):
		if err := m.state.OpenDialog(panel.DialogEditTask); err != nil {
			return m, notify(task.ID, "editing task", err)
		}
		m.taskForm.SetSize(m.width, m.height)
		return m, m.taskForm.StartEdit(task)

	case key.Matches(msg, m.keys.New):
		if err := m.state.OpenDialog(panel.DialogCreateTask); err != nil {
			return m, notify(task.ID, "creating task", err)
		}
		listID := task.ListID
		return m, func() tea.Msg { return NewTaskMsg{ListID: listID} }

	case key.Matches(msg, m.keys.Delete):
		return m, m.openDialog(panel.DialogConfirmDelete, func() tea.Cmd {
			return m.dialog.startConfirmDelete(task.Title, m.formWidth())
		})

	case key.Matches(msg, m.keys.AddComment):
		m.state.SelectTab(panel.TabComments)
		return m, m.openDialog(panel.DialogAddComment, func() tea.Cmd {
			return m.dialog.startComment(nil, m.formWidth())
		})

	case key.Matches(msg, m.keys.Reply):
		c, ok := m.selectedComment()
		if !ok || m.state.ActiveTab() != panel.TabComments {
			return m, nil
		}
		parent := c.ID
		if c.ParentID != nil {
			parent = *c.ParentID
		}
		return m, m.openDialog(panel.DialogAddComment, func() tea.Cmd {
			return m.dialog.startComment(&parent, m.formWidth())
		})

	case key.Matches(msg, m.keys.AddSubtask):
		m.state.SelectTab(panel.TabSubtasks)
		return m, m.openDialog(panel.DialogAddSubtask, func() tea.Cmd {
			return m.dialog.startSubtask(m.formWidth())
		})

	case key.Matches(msg, m.keys.ToggleSubtask):
		st, ok := m.selectedSubtask()
		if !ok {
			return m, nil
		}
		if !m.state.Permissions().Allows(panel.ActionManageSubtasks) {
			return m, notify(task.ID, "toggling subtask", panel.ErrNotPermitted)
		}
		return m, m.mutate("toggling subtask", func(ctx context.Context, taskID string) (tea.Msg, error) {
			_, err := m.svc.ToggleSubtask(ctx, taskID, st.ID)
			return nil, err
		})

	case key.Matches(msg, m.keys.AddTag):
		m.state.SelectTab(panel.TabTags)
		if err := m.state.OpenDialog(panel.DialogAddTag); err != nil {
			return m, notify(task.ID, "adding tag", err)
		}
		return m, m.loadWorkspaceTags(task)

	case key.Matches(msg, m.keys.AddMember):
		return m, m.openDialog(panel.DialogAddMember, func() tea.Cmd {
			return m.dialog.startMember(m.formWidth())
		})

	case key.Matches(msg, m.keys.AddCollaborator):
		m.state.SelectTab(panel.TabCollaborators)
		return m, m.openDialog(panel.DialogAddCollaborator, func() tea.Cmd {
			return m.dialog.startCollaborator(m.formWidth())
		})

	case key.Matches(msg, m.keys.CycleRole):
		c, ok := m.selectedCollaborator()
		if !ok {
			return m, nil
		}
		if !m.state.Permissions().Allows(panel.ActionManageCollaborators) {
			return m, notify(task.ID, "changing role", panel.ErrNotPermitted)
		}
		role := nextRole(c.Role)
		return m, m.mutate("changing role", func(ctx context.Context, taskID string) (tea.Msg, error) {
			_, err := m.svc.ChangeRole(ctx, taskID, c.ID, role)
			return nil, err
		})

	case key.Matches(msg, m.keys.Remove):
		return m, m.removeSelected()

	case key.Matches(msg, m.keys.LoadMore):
		if m.state.ActiveTab() != panel.TabActivity || !m.detail.ActivityHasMore {
			return m, nil
		}
		return m, m.fetch(func(ctx context.Context, taskID string) (*taskdetail.Detail, error) {
			return m.svc.LoadMoreActivity(ctx, taskID)
		})

	case key.Matches(msg, m.keys.FilterActivity):
		if m.state.ActiveTab() != panel.TabActivity {
			return m, nil
		}
		next := nextActivityFilter(m.detail.ActivityType)
		return m, m.fetch(func(ctx context.Context, taskID string) (*taskdetail.Detail, error) {
			return m.svc.FilterActivity(ctx, taskID, next)
		})

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load(task.ID)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// removeSelected deletes the highlighted row of the active tab.
func (m *Model) removeSelected() tea.Cmd {
	taskID := m.state.TaskID()
	perms := m.state.Permissions()

	switch m.state.ActiveTab() {
	case panel.TabComments:
		c, ok := m.selectedComment()
		if !ok || c.IsDeleted {
			return nil
		}
		if c.Author != m.svc.UserID() {
			return notify(taskID, "deleting comment", errors.New("only the author can delete a comment"))
		}
		return m.mutate("deleting comment", func(ctx context.Context, taskID string) (tea.Msg, error) {
			return nil, m.svc.DeleteComment(ctx, taskID, c.ID)
		})

	case panel.TabSubtasks:
		st, ok := m.selectedSubtask()
		if !ok {
			return nil
		}
		if !perms.Allows(panel.ActionManageSubtasks) {
			return notify(taskID, "deleting subtask", panel.ErrNotPermitted)
		}
		return m.mutate("deleting subtask", func(ctx context.Context, taskID string) (tea.Msg, error) {
			return nil, m.svc.DeleteSubtask(ctx, taskID, st.ID)
		})

	case panel.TabCollaborators:
		c, ok := m.selectedCollaborator()
		if !ok {
			return nil
		}
		if !perms.Allows(panel.ActionManageCollaborators) {
			return notify(taskID, "removing collaborator", panel.ErrNotPermitted)
		}
		return m.mutate("removing collaborator", func(ctx context.Context, taskID string) (tea.Msg, error) {
			return nil, m.svc.RemoveCollaborator(ctx, taskID, c.ID)
		})

	case panel.TabTags:
		tt, ok := m.selectedTag()
		if !ok {
			return nil
		}
		if !perms.Allows(panel.ActionManageTags) {
			return notify(taskID, "removing tag", panel.ErrNotPermitted)
		}
		return m.mutate("removing tag", func(ctx context.Context, taskID string) (tea.Msg, error) {
			return nil, m.svc.RemoveTag(ctx, taskID, tt.TagID)
		})
	}
	return nil
}

// abortDialog closes the visible dialog without submitting it.
func (m Model) abortDialog() (Model, tea.Cmd) {
	if m.taskForm.Active() {
		m.taskForm = taskform.New(m.width, m.height)
		m.closeDialog(panel.DialogEditTask)
		return m, nil
	}
	m.closeDialog(m.dialog.kind)
	return m, nil
}

// openDialog opens d when permitted and starts its form.
func (m *Model) openDialog(d panel.Dialog, start func() tea.Cmd) tea.Cmd {
	if err := m.state.OpenDialog(d); err != nil {
		return notify(m.state.TaskID(), "opening "+d.String(), err)
	}
	m.dialog.kind = d
	m.dialog.taskID = m.state.TaskID()
	return start()
}

func (m *Model) closeDialog(d panel.Dialog) {
	m.state.CloseDialog(d)
	if m.dialog.kind == d {
		m.dialog.reset()
	}
}

// submitDialog runs the mutation collected by a completed dialog.
func (m Model) submitDialog(msg dialogDoneMsg) (Model, tea.Cmd) {
	if !m.state.IsCurrent(msg.taskID) {
		return m, nil
	}
	v := msg.values

	if msg.kind == panel.DialogConfirmDelete && !msg.aborted && v.confirmed {
		m.dialog.reset()
		ev, err := m.state.ConfirmDelete()
		if err != nil {
			return m, notify(msg.taskID, "deleting task", err)
		}
		return m, m.mutateWithEvent("deleting task", ev, func(ctx context.Context, taskID string) error {
			return m.svc.DeleteTask(ctx, taskID)
		})
	}

	m.closeDialog(msg.kind)
	if msg.aborted {
		return m, nil
	}

	switch msg.kind {
	case panel.DialogAddComment:
		return m, m.mutate("adding comment", func(ctx context.Context, taskID string) (tea.Msg, error) {
			_, err := m.svc.AddComment(ctx, taskID, v.text, v.parentID)
			return nil, err
		})

	case panel.DialogAddSubtask:
		return m, m.mutate("adding subtask", func(ctx context.Context, taskID string) (tea.Msg, error) {
			_, err := m.svc.AddSubtask(ctx, taskID, v.text)
			return nil, err
		})

	case panel.DialogAddCollaborator:
		return m, m.mutate("adding collaborator", func(ctx context.Context, taskID string) (tea.Msg, error) {
			_, err := m.svc.AddCollaborator(ctx, taskID, v.text, v.role)
			return nil, err
		})

	case panel.DialogAddMember:
		assignee := v.text
		return m, m.mutate("assigning task", func(ctx context.Context, taskID string) (tea.Msg, error) {
			_, err := m.svc.UpdateTask(ctx, taskID, model.TaskPatch{Assignee: &assignee})
			return nil, err
		})

	case panel.DialogAddTag:
		tag, ok := v.tag()
		if !ok {
			return m, nil
		}
		return m, m.mutate("adding tag", func(ctx context.Context, taskID string) (tea.Msg, error) {
			_, err := m.svc.AddTag(ctx, taskID, tag)
			return nil, err
		})

	}
	return m, nil
}

// === Commands ===

func (m Model) load(taskID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		d, err := svc.Load(context.Background(), taskID)
		return DetailLoadedMsg{TaskID: taskID, Detail: d, Err: err}
	}
}

func (m Model) refresh(taskID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		d, err := svc.RefreshAggregates(context.Background(), taskID)
		return DetailLoadedMsg{TaskID: taskID, Detail: d, Err: err}
	}
}

func (m Model) fetch(fn func(context.Context, string) (*taskdetail.Detail, error)) tea.Cmd {
	taskID := m.state.TaskID()
	return func() tea.Msg {
		d, err := fn(context.Background(), taskID)
		return DetailLoadedMsg{TaskID: taskID, Detail: d, Err: err}
	}
}

func (m Model) loadWorkspaceTags(t model.Task) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		tags, err := svc.WorkspaceTags(context.Background(), t.WorkspaceID)
		return tagsLoadedMsg{TaskID: t.ID, Tags: tags, Err: err}
	}
}

// mutate runs fn for the shown task and reports the result. The optimistic
// write happens inside fn on the command goroutine.
func (m Model) mutate(action string, fn func(context.Context, string) (tea.Msg, error)) tea.Cmd {
	taskID := m.state.TaskID()
	logger := m.logger
	return func() tea.Msg {
		event, err := fn(context.Background(), taskID)
		if err != nil {
			logger.Warn("Panel action failed",
				zap.String("task_id", taskID),
				zap.String("action", action),
				zap.Error(err))
		}
		return MutationDoneMsg{TaskID: taskID, Action: action, Err: err, Event: event}
	}
}

func (m Model) mutateWithEvent(action string, event tea.Msg, fn func(context.Context, string) error) tea.Cmd {
	return m.mutate(action, func(ctx context.Context, taskID string) (tea.Msg, error) {
		if err := fn(ctx, taskID); err != nil {
			return nil, err
		}
		return event, nil
	})
}

// notify reports a failure that happened before any request was sent.
func notify(taskID, action string, err error) tea.Cmd {
	return func() tea.Msg {
		return MutationDoneMsg{TaskID: taskID, Action: action, Err: fmt.Errorf("%s: %w", action, err)}
	}
}

// === Selection ===

func (m *Model) setDetail(d *taskdetail.Detail) {
	if d == nil {
		return
	}
	m.detail = d
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.syncViewport()
}

// rowCount returns the number of selectable rows in the active tab.
func (m Model) rowCount() int {
	if m.detail == nil {
		return 0
	}
	switch m.state.ActiveTab() {
	case panel.TabSubtasks:
		return len(m.detail.Subtasks)
	case panel.TabComments:
		return len(thread.Flatten(m.detail.Threads))
	case panel.TabCollaborators:
		return len(m.detail.Collaborators)
	case panel.TabTags:
		return len(m.detail.Tags)
	}
	return 0
}

func (m Model) selectedComment() (model.Comment, bool) {
	if m.detail == nil || m.state.ActiveTab() != panel.TabComments {
		return model.Comment{}, false
	}
	flat := thread.Flatten(m.detail.Threads)
	if m.cursor >= len(flat) {
		return model.Comment{}, false
	}
	return flat[m.cursor], true
}

func (m Model) selectedSubtask() (model.Subtask, bool) {
	if m.detail == nil || m.state.ActiveTab() != panel.TabSubtasks || m.cursor >= len(m.detail.Subtasks) {
		return model.Subtask{}, false
	}
	return m.detail.Subtasks[m.cursor], true
}

func (m Model) selectedCollaborator() (model.Collaborator, bool) {
	if m.detail == nil || m.state.ActiveTab() != panel.TabCollaborators || m.cursor >= len(m.detail.Collaborators) {
		return model.Collaborator{}, false
	}
	return m.detail.Collaborators[m.cursor], true
}

func (m Model) selectedTag() (model.TaskTag, bool) {
	if m.detail == nil || m.state.ActiveTab() != panel.TabTags || m.cursor >= len(m.detail.Tags) {
		return model.TaskTag{}, false
	}
	return m.detail.Tags[m.cursor], true
}

// assignableTags drops tags already on the task.
func (m Model) assignableTags(all []model.Tag) []model.Tag {
	assigned := make(map[string]bool, len(m.detail.Tags))
	for _, tt := range m.detail.Tags {
		assigned[tt.TagID] = true
	}
	out := make([]model.Tag, 0, len(all))
	for _, t := range all {
		if !assigned[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

var roleCycle = []string{model.RoleObserver, model.RoleReviewer, model.RoleAssignee, model.RoleOwner}

func nextRole(current string) string {
	for i, r := range roleCycle {
		if r == current {
			return roleCycle[(i+1)%len(roleCycle)]
		}
	}
	return model.RoleObserver
}

// nextActivityFilter cycles through "all" and every activity type.
func nextActivityFilter(current string) string {
	if current == "" {
		return string(model.ActivityTypes[0])
	}
	for i, t := range model.ActivityTypes {
		if string(t) == current && i+1 < len(model.ActivityTypes) {
			return string(model.ActivityTypes[i+1])
		}
	}
	return ""
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	resized := width != m.width
	m.width = width
	m.height = height
	m.viewport.Width = max(width-4, 10)
	m.viewport.Height = max(height-4, 3)
	m.progress.Width = max(width-20, 10)
	m.taskForm.SetSize(width, height)
	if resized || m.renderer == nil {
		m.renderer = newRenderer(m.opts.MarkdownStyle, m.viewport.Width)
	}
	m.syncViewport()
}

func newRenderer(style string, width int) *glamour.TermRenderer {
	if style == "" {
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) formWidth() int {
	return max(m.width-6, 30)
}
