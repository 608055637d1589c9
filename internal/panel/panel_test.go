package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

var (
	owner  = Permissions{IsOwner: true, CanEdit: true}
	editor = Permissions{CanEdit: true}
	viewer = Permissions{}
)

func TestTabsSwitchLocally(t *testing.T) {
	s := New("t1", viewer)
	assert.Equal(t, TabOverview, s.ActiveTab())

	s.SelectTab(TabComments)
	assert.Equal(t, TabComments, s.ActiveTab())

	s.SelectTab(Tab(42))
	assert.Equal(t, TabComments, s.ActiveTab())

	s.SelectTab(TabActivity)
	s.NextTab()
	assert.Equal(t, TabOverview, s.ActiveTab())
	s.PrevTab()
	assert.Equal(t, TabActivity, s.ActiveTab())
}

func TestDialogsAreIndependentAndLastOpenedWins(t *testing.T) {
	s := New("t1", owner)

	_, visible := s.VisibleDialog()
	assert.False(t, visible)

	require.NoError(t, s.OpenDialog(DialogEditTask))
	require.NoError(t, s.OpenDialog(DialogAddTag))
	assert.True(t, s.IsOpen(DialogEditTask))
	assert.True(t, s.IsOpen(DialogAddTag))

	d, _ := s.VisibleDialog()
	assert.Equal(t, DialogAddTag, d)

	require.NoError(t, s.OpenDialog(DialogEditTask))
	d, _ = s.VisibleDialog()
	assert.Equal(t, DialogEditTask, d)

	s.CloseDialog(DialogEditTask)
	d, _ = s.VisibleDialog()
	assert.Equal(t, DialogAddTag, d)
	assert.False(t, s.IsOpen(DialogEditTask))
}

func TestPermissionsGateDialogs(t *testing.T) {
	s := New("t1", viewer)
	assert.ErrorIs(t, s.OpenDialog(DialogEditTask), ErrNotPermitted)
	assert.ErrorIs(t, s.OpenDialog(DialogConfirmDelete), ErrNotPermitted)
	assert.NoError(t, s.OpenDialog(DialogAddComment))

	s = New("t1", editor)
	assert.NoError(t, s.OpenDialog(DialogAddSubtask))
	assert.ErrorIs(t, s.OpenDialog(DialogAddCollaborator), ErrNotPermitted)

	require.NoError(t, s.OpenDialog(DialogEditTask))
	require.NoError(t, s.OpenDialog(DialogAddComment))
	s.SetPermissions(viewer)
	assert.False(t, s.IsOpen(DialogEditTask))
	assert.True(t, s.IsOpen(DialogAddComment))
}

func TestToggleStatusIsBinary(t *testing.T) {
	assert.Equal(t, model.StatusTodo, ToggledStatus(model.StatusCompleted))
	assert.Equal(t, model.StatusCompleted, ToggledStatus(model.StatusTodo))
	// In progress jumps straight to completed.
	assert.Equal(t, model.StatusCompleted, ToggledStatus(model.StatusInProgress))

	s := New("t1", editor)
	ev, err := s.ToggleStatus(model.Task{ID: "t1", Status: model.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, StatusChanged{TaskID: "t1", From: model.StatusInProgress, To: model.StatusCompleted}, ev)

	_, err = New("t1", viewer).ToggleStatus(model.Task{ID: "t1"})
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestChangePriority(t *testing.T) {
	s := New("t1", editor)
	ev, err := s.ChangePriority(model.Task{ID: "t1"}, model.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, ev.Priority)

	_, err = s.ChangePriority(model.Task{ID: "t1"}, "urgent")
	assert.Error(t, err)

	assert.Equal(t, model.PriorityMedium, NextPriority(model.PriorityLow))
	assert.Equal(t, model.PriorityLow, NextPriority(model.PriorityHigh))
}

func TestConfirmDeleteRequiresOwnerAndDialog(t *testing.T) {
	s := New("t1", owner)
	_, err := s.ConfirmDelete()
	assert.Error(t, err)

	require.NoError(t, s.OpenDialog(DialogConfirmDelete))
	ev, err := s.ConfirmDelete()
	require.NoError(t, err)
	assert.Equal(t, TaskDeleted{TaskID: "t1"}, ev)
	assert.False(t, s.IsOpen(DialogConfirmDelete))

	_, err = New("t1", editor).ConfirmDelete()
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestShowResetsAndStalenessCheck(t *testing.T) {
	s := New("t1", owner)
	s.SelectTab(TabTags)
	require.NoError(t, s.OpenDialog(DialogAddTag))

	s.Show("t2", viewer)
	assert.Equal(t, TabOverview, s.ActiveTab())
	_, visible := s.VisibleDialog()
	assert.False(t, visible)
	assert.False(t, s.IsCurrent("t1"))
	assert.True(t, s.IsCurrent("t2"))
	assert.False(t, s.IsCurrent(""))
}
