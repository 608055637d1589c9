package app

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/taskdetail"
	"github.com/nhle/taskboard/internal/ui/sidepanel"
)

func newTestModel(t *testing.T, user string) Model {
	t.Helper()
	svc := taskdetail.New(api.NewClient("http://127.0.0.1:0", user), cache.New(), zap.NewNop(), 20)
	return New(svc, zap.NewNop(), Options{})
}

func TestPermissionsFor(t *testing.T) {
	m := newTestModel(t, "alice")
	m.workspaces["ws-1"] = model.Workspace{ID: "ws-1", OwnerID: "olga"}

	task := model.Task{ID: "t1", WorkspaceID: "ws-1", CreatedBy: "bob"}

	perms := m.permissionsFor(task, nil)
	assert.False(t, perms.IsOwner)
	assert.False(t, perms.CanEdit)

	detail := &taskdetail.Detail{Collaborators: []model.Collaborator{
		{UserID: "alice", Role: model.RoleObserver},
	}}
	assert.False(t, m.permissionsFor(task, detail).CanEdit)

	detail.Collaborators[0].Role = model.RoleAssignee
	perms = m.permissionsFor(task, detail)
	assert.True(t, perms.CanEdit)
	assert.False(t, perms.IsOwner)

	task.CreatedBy = "alice"
	perms = m.permissionsFor(task, nil)
	assert.True(t, perms.IsOwner)
	assert.True(t, perms.CanEdit)

	owner := newTestModel(t, "olga")
	owner.workspaces["ws-1"] = model.Workspace{ID: "ws-1", OwnerID: "olga"}
	assert.True(t, owner.permissionsFor(model.Task{WorkspaceID: "ws-1", CreatedBy: "bob"}, nil).IsOwner)
}

func TestMutationFailureShowsToast(t *testing.T) {
	m := newTestModel(t, "alice")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	next, _ = m.Update(sidepanel.MutationDoneMsg{
		TaskID: "t1",
		Action: "adding tag",
		Err:    errors.New("adding tag: tag not found"),
	})
	m = next.(Model)
	require.Equal(t, "adding tag: tag not found", m.toast)
	assert.Contains(t, m.View(), "tag not found")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = next.(Model)
	assert.Empty(t, m.toast)
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, "alice")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	m = next.(Model)
	assert.Equal(t, focusHelp, m.focus)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.Equal(t, focusList, m.focus)
}

func TestQuitOnlyFromList(t *testing.T) {
	m := newTestModel(t, "alice")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)

	m.focus = focusHelp
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, cmd)
}
