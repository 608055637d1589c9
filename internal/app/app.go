package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/panel"
	"github.com/nhle/taskboard/internal/taskdetail"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
	"github.com/nhle/taskboard/internal/ui/command"
	helpview "github.com/nhle/taskboard/internal/ui/help"
	"github.com/nhle/taskboard/internal/ui/listpicker"
	"github.com/nhle/taskboard/internal/ui/sidepanel"
	"github.com/nhle/taskboard/internal/ui/tagmgr"
	"github.com/nhle/taskboard/internal/ui/taskform"
	"github.com/nhle/taskboard/internal/ui/tasklist"
)

// focus is the pane receiving keyboard input.
type focus int

const (
	focusList focus = iota
	focusPanel
	focusHelp
	focusCreate
	focusLists
	focusTags
	focusCommand
)

// Options configure the root model.
type Options struct {
	// ListID restricts the task list to one list. Empty shows every list.
	ListID string

	// MarkdownStyle is passed to the side panel.
	MarkdownStyle string
}

// Model is the root Bubble Tea model: the task list on the left and the
// task side panel on the right.
type Model struct {
	svc    *taskdetail.Service
	logger *zap.Logger
	keys   *keys.KeyMap
	opts   Options

	layout     ui.Layout
	focus      focus
	prevFocus  focus
	taskList   tasklist.Model
	sidePanel  sidepanel.Model
	helpView   helpview.Model
	createForm taskform.Model
	lists      listpicker.Model
	tags       tagmgr.Model
	palette    command.Model

	workspaces map[string]model.Workspace
	listLabel  string
	toast      string
	ready      bool
}

// New creates the root model.
func New(svc *taskdetail.Service, logger *zap.Logger, opts Options) Model {
	k := keys.DefaultKeyMap()
	return Model{
		svc:        svc,
		logger:     logger,
		keys:       k,
		opts:       opts,
		taskList:   tasklist.New(svc, k, opts.ListID, 80, 24),
		sidePanel:  sidepanel.New(svc, logger, k, sidepanel.Options{MarkdownStyle: opts.MarkdownStyle}, 80, 24),
		helpView:   helpview.New(k, 80, 24),
		createForm: taskform.New(80, 24),
		lists:      listpicker.New(svc, k, 80, 24),
		tags:       tagmgr.New(svc, k, 80, 24),
		palette:    command.New(80, 24),
		workspaces: map[string]model.Workspace{},
		listLabel:  opts.ListID,
	}
}

// Init loads the task list and the workspaces used for permissions.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.taskList.Init(), m.loadWorkspaces())
}

// Update handles messages and routes keys to the focused pane.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize()
		return m, nil

	case workspacesLoadedMsg:
		if msg.err != nil {
			m.toast = msg.err.Error()
			return m, nil
		}
		for _, ws := range msg.workspaces {
			m.workspaces[ws.ID] = ws
		}
		m.syncPermissions()
		return m, nil

	case tasklist.TasksLoadedMsg:
		if msg.Err != nil {
			m.logger.Warn("Loading tasks failed", zap.Error(msg.Err))
			m.toast = msg.Err.Error()
		}
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd

	case tasklist.SelectedTaskMsg:
		m.focus = focusPanel
		m.resize()
		return m, m.sidePanel.Open(msg.Task, m.permissionsFor(msg.Task, nil))

	case sidepanel.DetailLoadedMsg:
		var cmd tea.Cmd
		m.sidePanel, cmd = m.sidePanel.Update(msg)
		m.syncPermissions()
		return m, cmd

	case sidepanel.MutationDoneMsg:
		var cmd tea.Cmd
		m.sidePanel, cmd = m.sidePanel.Update(msg)
		if msg.Err != nil {
			m.toast = msg.Err.Error()
			return m, cmd
		}
		m.syncPermissions()
		return m, tea.Batch(cmd, m.taskList.LoadTasks())

	case sidepanel.NewTaskMsg:
		return m, m.startCreate(msg.ListID)

	case taskform.SubmittedMsg:
		if msg.TaskID != "" {
			var cmd tea.Cmd
			m.sidePanel, cmd = m.sidePanel.Update(msg)
			return m, cmd
		}
		m.finishCreate()
		return m, m.createTask(msg.ListID, msg.Values)

	case taskform.CancelMsg:
		if msg.TaskID != "" {
			var cmd tea.Cmd
			m.sidePanel, cmd = m.sidePanel.Update(msg)
			return m, cmd
		}
		m.finishCreate()
		return m, nil

	case createListResolvedMsg:
		if msg.err != nil {
			m.finishCreate()
			m.toast = msg.err.Error()
			return m, nil
		}
		return m, m.createForm.StartCreate(msg.listID)

	case taskCreatedMsg:
		if msg.err != nil {
			m.toast = msg.err.Error()
			return m, nil
		}
		m.focus = focusPanel
		m.resize()
		return m, tea.Batch(
			m.taskList.LoadTasks(),
			m.sidePanel.Open(msg.task, m.permissionsFor(msg.task, nil)),
		)

	case listpicker.ChosenMsg:
		m.focus = focusList
		m.listLabel = msg.Label
		return m, m.taskList.SetListID(msg.ListID)

	case listpicker.ManageTagsMsg:
		m.focus = focusTags
		return m, m.tags.Open(msg.Workspace)

	case listpicker.CloseMsg, tagmgr.CloseMsg:
		m.focus = focusList
		return m, nil

	case command.CommandMsg:
		m.focus = m.prevFocus
		if msg.Err != nil {
			m.toast = msg.Err.Error()
			return m, nil
		}
		return m.execute(msg.Command)

	case panel.StatusChanged, panel.PriorityChanged:
		return m, m.taskList.LoadTasks()

	case panel.TaskDeleted:
		if m.focus == focusPanel {
			m.focus = focusList
		}
		m.resize()
		return m, m.taskList.LoadTasks()

	case tea.KeyMsg:
		m.toast = ""
		if next, cmd, handled := m.handleGlobalKeys(msg); handled {
			return next, cmd
		}
		return m.routeKey(msg)
	}

	// Anything else (form internals, spinner ticks) goes to every component
	// that may be waiting for it.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.sidePanel, cmd = m.sidePanel.Update(msg)
	cmds = append(cmds, cmd)
	m.taskList, cmd = m.taskList.Update(msg)
	cmds = append(cmds, cmd)
	if m.createForm.Active() {
		m.createForm, cmd = m.createForm.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.lists, cmd = m.lists.Update(msg)
	cmds = append(cmds, cmd)
	m.tags, cmd = m.tags.Update(msg)
	cmds = append(cmds, cmd)
	if m.focus == focusCommand {
		m.palette, cmd = m.palette.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleGlobalKeys handles keys that work regardless of the focused pane.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}
	if m.inputCaptured() {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.focus == focusHelp {
			m.focus = m.prevFocus
		} else {
			m.prevFocus = m.focus
			m.focus = focusHelp
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Quit) && m.focus == focusList:
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Command) && m.focus != focusCommand:
		m.prevFocus = m.focus
		m.focus = focusCommand
		return m, m.palette.Focus(), true
	}
	return m, nil, false
}

// inputCaptured reports whether a text input owns the keyboard.
func (m Model) inputCaptured() bool {
	switch m.focus {
	case focusCreate, focusCommand:
		return true
	case focusTags:
		return m.tags.Editing()
	case focusPanel:
		return m.sidePanel.InDialog()
	case focusList:
		return m.taskList.Searching()
	}
	return false
}

func (m Model) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.focus {
	case focusHelp:
		if key.Matches(msg, m.keys.Back) {
			m.focus = m.prevFocus
		}
		return m, nil

	case focusCreate:
		if key.Matches(msg, m.keys.Back) {
			m.finishCreate()
			return m, nil
		}
		m.createForm, cmd = m.createForm.Update(msg)
		return m, cmd

	case focusCommand:
		if key.Matches(msg, m.keys.Back) {
			m.palette.Blur()
			m.focus = m.prevFocus
			return m, nil
		}
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd

	case focusLists:
		m.lists, cmd = m.lists.Update(msg)
		return m, cmd

	case focusTags:
		m.tags, cmd = m.tags.Update(msg)
		return m, cmd

	case focusPanel:
		if !m.sidePanel.InDialog() && key.Matches(msg, m.keys.Back) {
			m.focus = focusList
			return m, nil
		}
		m.sidePanel, cmd = m.sidePanel.Update(msg)
		return m, cmd
	}

	if !m.taskList.Searching() {
		switch {
		case key.Matches(msg, m.keys.New):
			return m, m.startCreate(m.taskList.ListID())
		case key.Matches(msg, m.keys.Refresh):
			return m, m.reloadTasks()
		case key.Matches(msg, m.keys.Lists):
			return m, m.openLists()
		case key.Matches(msg, m.keys.Tags):
			return m, m.openTags()
		case key.Matches(msg, m.keys.NextTab) && m.sidePanel.IsOpen():
			m.focus = focusPanel
			return m, nil
		case key.Matches(msg, m.keys.Back) && m.sidePanel.IsOpen():
			m.sidePanel.Close()
			m.resize()
			return m, nil
		}
	}

	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

// startCreate opens the create form for listID. Without a list, the form
// targets the first list of the first workspace.
func (m *Model) startCreate(listID string) tea.Cmd {
	m.prevFocus = m.focus
	m.focus = focusCreate
	m.resize()
	if listID != "" {
		return m.createForm.StartCreate(listID)
	}
	return m.resolveListThenCreate()
}

func (m *Model) finishCreate() {
	m.createForm = taskform.New(m.layout.ContentWidth(), m.layout.ContentHeight())
	m.sidePanel.State().CloseDialog(panel.DialogCreateTask)
	m.focus = m.prevFocus
	if m.focus == focusCreate {
		m.focus = focusList
	}
	m.resize()
}

// permissionsFor derives the caller's rights on t. Workspace owners and the
// task creator own the task; owner and assignee collaborators may edit it.
func (m Model) permissionsFor(t model.Task, d *taskdetail.Detail) panel.Permissions {
	user := m.svc.UserID()
	perms := panel.Permissions{}
	if ws, ok := m.workspaces[t.WorkspaceID]; ok && ws.OwnerID == user {
		perms.IsOwner = true
	}
	if t.CreatedBy == user {
		perms.IsOwner = true
	}
	perms.CanEdit = perms.IsOwner
	if d != nil {
		for _, c := range d.Collaborators {
			if c.UserID == user && (c.Role == model.RoleOwner || c.Role == model.RoleAssignee) {
				perms.CanEdit = true
			}
		}
	}
	return perms
}

func (m *Model) syncPermissions() {
	d := m.sidePanel.Detail()
	if d == nil {
		return
	}
	m.sidePanel.SetPermissions(m.permissionsFor(d.Task, d))
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	m.helpView.SetSize(w, h)
	m.createForm.SetSize(w, h)
	m.lists.SetSize(w, h)
	m.tags.SetSize(w, h)
	m.palette.SetSize(w, h)

	if !m.sidePanel.IsOpen() {
		m.taskList.SetSize(w, h)
		return
	}
	listW, panelW := m.layout.Split()
	m.taskList.SetSize(listW, h)
	frameW, frameH := theme.PanelStyle.GetFrameSize()
	m.sidePanel.SetSize(panelW-frameW, h-frameH)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Taskboard", m.headerStatus())
	content := m.renderContent()

	statusBar := m.layout.RenderStatusBar(m.keyHints())
	if m.toast != "" {
		statusBar = m.layout.RenderError(m.toast)
	}
	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) renderContent() string {
	switch m.focus {
	case focusHelp:
		return m.helpView.View()
	case focusCreate:
		return m.createForm.View()
	case focusLists:
		return m.lists.View()
	case focusTags:
		return m.tags.View()
	case focusCommand:
		return lipgloss.JoinVertical(lipgloss.Left, m.palette.View(), m.taskList.View())
	}

	if !m.sidePanel.IsOpen() {
		return m.taskList.View()
	}

	style := theme.PanelStyle
	if m.focus == focusPanel {
		style = theme.FocusedPanelStyle
	}
	frameW, frameH := style.GetFrameSize()
	listW, panelW := m.layout.Split()
	side := style.
		Width(panelW - frameW + style.GetHorizontalPadding()).
		Height(m.layout.ContentHeight() - frameH + style.GetVerticalPadding()).
		Render(m.sidePanel.View())
	if listW == 0 {
		return side
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.taskList.View(), side)
}

func (m Model) headerStatus() string {
	parts := []string{"@" + m.svc.UserID()}
	if m.listLabel != "" {
		parts = append(parts, m.listLabel)
	}
	parts = append(parts, "sort: "+m.taskList.SortMode())
	return strings.Join(parts, " · ")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.focus {
	case focusHelp:
		return "? close help | esc back"
	case focusCreate:
		return "enter submit | esc cancel"
	case focusCommand:
		return "enter run | esc cancel"
	case focusLists:
		return "enter show | T tags | esc back"
	case focusTags:
		if m.tags.Editing() {
			return "enter submit | esc cancel"
		}
		return "n new | esc back"
	case focusPanel:
		if m.sidePanel.InDialog() {
			return "enter submit | esc cancel"
		}
		return m.panelHints()
	}
	if m.taskList.Searching() {
		return "enter apply | esc clear"
	}
	return "q quit | ? help | enter open | n new | / search | s sort | w lists | : command"
}

func (m Model) panelHints() string {
	base := "esc list | tab/shift+tab switch"
	switch m.sidePanel.State().ActiveTab() {
	case panel.TabSubtasks:
		return base + " | a add | space toggle | d delete"
	case panel.TabComments:
		return base + " | c comment | R reply | d delete"
	case panel.TabCollaborators:
		return base + " | m add | o role | d remove"
	case panel.TabTags:
		return base + " | t add | d remove"
	case panel.TabActivity:
		return base + " | L load more | f filter"
	}
	return fmt.Sprintf("%s | e edit | x status | p priority | A assign | D delete", base)
}

func (m *Model) openLists() tea.Cmd {
	m.focus = focusLists
	return m.lists.Open()
}

// openTags opens the tag manager for the workspace of the highlighted task,
// falling back to any known workspace.
func (m *Model) openTags() tea.Cmd {
	var ws model.Workspace
	if t, ok := m.taskList.Selected(); ok {
		ws = m.workspaces[t.WorkspaceID]
	}
	if ws.ID == "" {
		for _, w := range m.workspaces {
			if ws.ID == "" || w.Name < ws.Name {
				ws = w
			}
		}
	}
	if ws.ID == "" {
		m.toast = "no workspace to manage tags for"
		return nil
	}
	m.focus = focusTags
	return m.tags.Open(ws)
}

// reloadTasks drops the cached task list and loads it again.
func (m Model) reloadTasks() tea.Cmd {
	m.svc.Cache().Delete(taskdetail.TaskListKey(m.taskList.ListID()))
	return m.taskList.LoadTasks()
}

// execute runs a palette command.
func (m Model) execute(c command.Command) (tea.Model, tea.Cmd) {
	switch c.Name {
	case command.Quit:
		return m, tea.Quit
	case command.Refresh:
		return m, m.reloadTasks()
	case command.Lists:
		return m, m.openLists()
	case command.Tags:
		return m, m.openTags()
	case command.Help:
		m.prevFocus = m.focus
		m.focus = focusHelp
		return m, nil
	case command.All:
		m.listLabel = ""
		return m, m.taskList.SetListID("")
	case command.List:
		m.listLabel = c.Arg
		return m, m.taskList.SetListID(c.Arg)
	case command.Sort:
		cmd, err := m.taskList.SetSortMode(c.Arg)
		if err != nil {
			m.toast = err.Error()
		}
		return m, cmd
	}
	return m, nil
}
