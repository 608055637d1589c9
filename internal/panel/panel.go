// Package panel is the state machine behind the task side panel: which tab
// is active, which dialogs are open, and which actions the caller-supplied
// permissions allow. It performs no I/O.
package panel

import (
	"errors"
	"fmt"

	"github.com/nhle/taskboard/internal/model"
)

// ErrNotPermitted is returned when an action is gated off by the caller's
// permissions.
var ErrNotPermitted = errors.New("not permitted")

// Tab is one sub-view of the panel.
type Tab int

const (
	TabOverview Tab = iota
	TabSubtasks
	TabComments
	TabCollaborators
	TabTags
	TabActivity
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabOverview, TabSubtasks, TabComments, TabCollaborators, TabTags, TabActivity}

func (t Tab) String() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabSubtasks:
		return "Subtasks"
	case TabComments:
		return "Comments"
	case TabCollaborators:
		return "Collaborators"
	case TabTags:
		return "Tags"
	case TabActivity:
		return "Activity"
	}
	return fmt.Sprintf("Tab(%d)", int(t))
}

// Dialog is a modal the panel can open.
type Dialog int

const (
	DialogEditTask Dialog = iota
	DialogCreateTask
	DialogAddMember
	DialogAddSubtask
	DialogAddTag
	DialogAddCollaborator
	DialogConfirmDelete
	DialogAddComment
)

func (d Dialog) String() string {
	switch d {
	case DialogEditTask:
		return "edit task"
	case DialogCreateTask:
		return "create task"
	case DialogAddMember:
		return "add member"
	case DialogAddSubtask:
		return "add subtask"
	case DialogAddTag:
		return "add tag"
	case DialogAddCollaborator:
		return "add collaborator"
	case DialogConfirmDelete:
		return "confirm delete"
	case DialogAddComment:
		return "add comment"
	}
	return fmt.Sprintf("Dialog(%d)", int(d))
}

// Permissions are computed by the caller. IsOwner is true for the
// workspace owner or task creator. CanEdit additionally covers collaborators
// holding the owner or assignee role.
type Permissions struct {
	IsOwner bool
	CanEdit bool
}

// Action is a user operation the panel may gate.
type Action int

const (
	ActionEdit Action = iota
	ActionDelete
	ActionManageCollaborators
	ActionManageSubtasks
	ActionManageTags
	ActionComment
)

// Allows reports whether p permits a.
func (p Permissions) Allows(a Action) bool {
	switch a {
	case ActionDelete, ActionManageCollaborators:
		return p.IsOwner
	case ActionEdit, ActionManageSubtasks, ActionManageTags:
		return p.CanEdit
	case ActionComment:
		return true
	}
	return false
}

// dialogAction maps each dialog to the action it performs.
func dialogAction(d Dialog) Action {
	switch d {
	case DialogConfirmDelete:
		return ActionDelete
	case DialogAddMember, DialogAddCollaborator:
		return ActionManageCollaborators
	case DialogAddSubtask:
		return ActionManageSubtasks
	case DialogAddTag:
		return ActionManageTags
	case DialogAddComment:
		return ActionComment
	}
	return ActionEdit
}

// State is the panel for one task.
type State struct {
	taskID string
	perms  Permissions
	tab    Tab
	open   map[Dialog]bool

	// order records dialogs in the order they were opened.
	order []Dialog
}

// New creates a panel for taskID on the overview tab.
func New(taskID string, perms Permissions) *State {
	return &State{
		taskID: taskID,
		perms:  perms,
		tab:    TabOverview,
		open:   make(map[Dialog]bool),
	}
}

// TaskID returns the task the panel shows.
func (s *State) TaskID() string { return s.taskID }

// Permissions returns the permissions supplied by the caller.
func (s *State) Permissions() Permissions { return s.perms }

// SetPermissions replaces the permissions, closing dialogs they no longer
// allow.
func (s *State) SetPermissions(p Permissions) {
	s.perms = p
	for _, d := range append([]Dialog(nil), s.order...) {
		if !p.Allows(dialogAction(d)) {
			s.CloseDialog(d)
		}
	}
}

// Show switches the panel to another task. Tabs and dialogs reset.
func (s *State) Show(taskID string, perms Permissions) {
	s.taskID = taskID
	s.perms = perms
	s.tab = TabOverview
	s.CloseAll()
}

// IsCurrent reports whether results for taskID should still be applied.
func (s *State) IsCurrent(taskID string) bool {
	return taskID != "" && taskID == s.taskID
}

// === Tabs ===

// ActiveTab returns the displayed tab.
func (s *State) ActiveTab() Tab { return s.tab }

// SelectTab activates t. Unknown tabs are ignored.
func (s *State) SelectTab(t Tab) {
	if t < TabOverview || t > TabActivity {
		return
	}
	s.tab = t
}

// NextTab activates the tab to the right, wrapping around.
func (s *State) NextTab() {
	s.tab = Tabs[(int(s.tab)+1)%len(Tabs)]
}

// PrevTab activates the tab to the left, wrapping around.
func (s *State) PrevTab() {
	s.tab = Tabs[(int(s.tab)+len(Tabs)-1)%len(Tabs)]
}

// === Dialogs ===

// OpenDialog opens d if the permissions allow its action. Opening a dialog
// that is already open brings it to the front.
func (s *State) OpenDialog(d Dialog) error {
	if !s.perms.Allows(dialogAction(d)) {
		return fmt.Errorf("opening %s: %w", d, ErrNotPermitted)
	}
	s.removeFromOrder(d)
	s.open[d] = true
	s.order = append(s.order, d)
	return nil
}

// CloseDialog closes d. Closing a closed dialog does nothing.
func (s *State) CloseDialog(d Dialog) {
	delete(s.open, d)
	s.removeFromOrder(d)
}

// CloseAll closes every dialog.
func (s *State) CloseAll() {
	s.open = make(map[Dialog]bool)
	s.order = nil
}

// IsOpen reports whether d is open.
func (s *State) IsOpen(d Dialog) bool { return s.open[d] }

// VisibleDialog returns the most recently opened dialog still open.
func (s *State) VisibleDialog() (Dialog, bool) {
	if len(s.order) == 0 {
		return 0, false
	}
	return s.order[len(s.order)-1], true
}

func (s *State) removeFromOrder(d Dialog) {
	for i, o := range s.order {
		if o == d {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// === Task actions ===

// StatusChanged is emitted upward when the task status is toggled.
type StatusChanged struct {
	TaskID string
	From   string
	To     string
}

// PriorityChanged is emitted upward when the task priority changes.
type PriorityChanged struct {
	TaskID   string
	Priority string
}

// TaskDeleted is emitted upward when deletion is confirmed.
type TaskDeleted struct {
	TaskID string
}

// ToggledStatus returns the status a toggle moves to. Completed tasks go
// back to todo; todo and in progress both go to completed.
func ToggledStatus(current string) string {
	if current == model.StatusCompleted {
		return model.StatusTodo
	}
	return model.StatusCompleted
}

// ToggleStatus computes the status flip for t.
func (s *State) ToggleStatus(t model.Task) (StatusChanged, error) {
	if !s.perms.Allows(ActionEdit) {
		return StatusChanged{}, fmt.Errorf("changing status: %w", ErrNotPermitted)
	}
	return StatusChanged{TaskID: t.ID, From: t.Status, To: ToggledStatus(t.Status)}, nil
}

// NextPriority cycles low, medium, high.
func NextPriority(current string) string {
	switch current {
	case model.PriorityLow:
		return model.PriorityMedium
	case model.PriorityMedium:
		return model.PriorityHigh
	}
	return model.PriorityLow
}

// ChangePriority validates a priority change for t.
func (s *State) ChangePriority(t model.Task, priority string) (PriorityChanged, error) {
	if !s.perms.Allows(ActionEdit) {
		return PriorityChanged{}, fmt.Errorf("changing priority: %w", ErrNotPermitted)
	}
	if !model.ValidPriority(priority) {
		return PriorityChanged{}, fmt.Errorf("unknown priority %q", priority)
	}
	return PriorityChanged{TaskID: t.ID, Priority: priority}, nil
}

// ConfirmDelete resolves the confirm-delete dialog. It fails unless the
// dialog is open and the caller is an owner.
func (s *State) ConfirmDelete() (TaskDeleted, error) {
	if !s.perms.Allows(ActionDelete) {
		return TaskDeleted{}, fmt.Errorf("deleting task: %w", ErrNotPermitted)
	}
	if !s.IsOpen(DialogConfirmDelete) {
		return TaskDeleted{}, errors.New("delete was not confirmed")
	}
	s.CloseDialog(DialogConfirmDelete)
	return TaskDeleted{TaskID: s.taskID}, nil
}
