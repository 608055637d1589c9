package sidepanel

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/panel"
	"github.com/nhle/taskboard/internal/taskdetail"
	"github.com/nhle/taskboard/tests/testutil"
)

func newPanel(t *testing.T, perms panel.Permissions) (Model, model.Task) {
	t.Helper()
	st := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, st, "Ship release")
	srv := testutil.NewTestServer(t, st)

	svc := taskdetail.New(api.NewClient(srv.URL, testutil.TestUser), cache.New(), zap.NewNop(), 20)
	m := New(svc, zap.NewNop(), keys.DefaultKeyMap(), Options{}, 80, 30)

	cmd := m.Open(fx.Task, perms)
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	require.NotNil(t, m.Detail())
	return m, fx.Task
}

func press(k string) tea.KeyMsg {
	switch k {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func mutationResult(t *testing.T, cmd tea.Cmd) MutationDoneMsg {
	t.Helper()
	require.NotNil(t, cmd)
	done, ok := cmd().(MutationDoneMsg)
	require.True(t, ok)
	return done
}

func TestDetailForAnotherTaskIsDropped(t *testing.T) {
	m, task := newPanel(t, panel.Permissions{})

	m, cmd := m.Update(DetailLoadedMsg{
		TaskID: "someone-else",
		Detail: &taskdetail.Detail{Task: model.Task{ID: "someone-else", Title: "Other"}},
	})
	assert.Nil(t, cmd)
	assert.Equal(t, task.ID, m.Detail().Task.ID)
}

func TestDetailAfterCloseIsDropped(t *testing.T) {
	m, task := newPanel(t, panel.Permissions{})
	load := m.load(task.ID)
	m.Close()

	m, _ = m.Update(load())
	assert.Nil(t, m.Detail())
	assert.False(t, m.IsOpen())
}

func TestDeleteRequiresOwner(t *testing.T) {
	m, _ := newPanel(t, panel.Permissions{CanEdit: true})

	m, cmd := m.Update(press("D"))
	done := mutationResult(t, cmd)
	assert.True(t, errors.Is(done.Err, panel.ErrNotPermitted))
	assert.False(t, m.State().IsOpen(panel.DialogConfirmDelete))
	assert.False(t, m.InDialog())
}

func TestToggleStatusEmitsEvent(t *testing.T) {
	m, task := newPanel(t, panel.Permissions{IsOwner: true, CanEdit: true})

	m, cmd := m.Update(press("x"))
	done := mutationResult(t, cmd)
	require.NoError(t, done.Err)

	ev, ok := done.Event.(panel.StatusChanged)
	require.True(t, ok)
	assert.Equal(t, task.ID, ev.TaskID)
	assert.Equal(t, model.StatusCompleted, ev.To)

	m, cmd = m.Update(done)
	assert.NotNil(t, cmd)
	assert.Equal(t, model.StatusCompleted, m.Detail().Task.Status)
}

func TestToggleStatusWithoutEditRights(t *testing.T) {
	m, _ := newPanel(t, panel.Permissions{})

	_, cmd := m.Update(press("x"))
	done := mutationResult(t, cmd)
	assert.True(t, errors.Is(done.Err, panel.ErrNotPermitted))
	assert.Nil(t, done.Event)
}

func TestAddSubtaskDialogSwitchesTab(t *testing.T) {
	m, _ := newPanel(t, panel.Permissions{CanEdit: true})

	m, _ = m.Update(press("a"))
	assert.Equal(t, panel.TabSubtasks, m.State().ActiveTab())
	assert.True(t, m.State().IsOpen(panel.DialogAddSubtask))
	assert.True(t, m.InDialog())

	m, _ = m.Update(press("esc"))
	assert.False(t, m.State().IsOpen(panel.DialogAddSubtask))
	assert.False(t, m.InDialog())
}

func TestSubmittedSubtaskUpdatesProgress(t *testing.T) {
	m, task := newPanel(t, panel.Permissions{CanEdit: true})

	m, _ = m.Update(press("a"))
	m, cmd := m.Update(dialogDoneMsg{
		kind:   panel.DialogAddSubtask,
		taskID: task.ID,
		values: dialogValues{text: "Write notes"},
	})
	done := mutationResult(t, cmd)
	require.NoError(t, done.Err)

	m, _ = m.Update(done)
	require.Len(t, m.Detail().Subtasks, 1)
	assert.Equal(t, "0/1", m.Detail().Progress.Badge())

	m, cmd = m.Update(press(" "))
	m, _ = m.Update(mutationResult(t, cmd))
	assert.Equal(t, "1/1", m.Detail().Progress.Badge())
	assert.Equal(t, 100, m.Detail().Progress.Percent())
}

func TestAddCommentReachesTree(t *testing.T) {
	m, task := newPanel(t, panel.Permissions{})

	m, _ = m.Update(press("c"))
	require.True(t, m.State().IsOpen(panel.DialogAddComment))
	m, cmd := m.Update(dialogDoneMsg{
		kind:   panel.DialogAddComment,
		taskID: task.ID,
		values: dialogValues{text: "Looks good"},
	})
	m, _ = m.Update(mutationResult(t, cmd))

	require.Len(t, m.Detail().Threads, 1)
	assert.Equal(t, "Looks good", m.Detail().Threads[0].Content)
	assert.Equal(t, panel.TabComments, m.State().ActiveTab())
}

func TestTabKeysCycle(t *testing.T) {
	m, _ := newPanel(t, panel.Permissions{})

	m, _ = m.Update(press("l"))
	assert.Equal(t, panel.TabSubtasks, m.State().ActiveTab())
	m, _ = m.Update(press("h"))
	m, _ = m.Update(press("h"))
	assert.Equal(t, panel.TabActivity, m.State().ActiveTab())
	assert.Contains(t, m.View(), "created the task")
}

func TestNextRole(t *testing.T) {
	assert.Equal(t, model.RoleReviewer, nextRole(model.RoleObserver))
	assert.Equal(t, model.RoleObserver, nextRole(model.RoleOwner))
	assert.Equal(t, model.RoleObserver, nextRole("unknown"))
}

func TestNextActivityFilter(t *testing.T) {
	first := string(model.ActivityTypes[0])
	last := string(model.ActivityTypes[len(model.ActivityTypes)-1])

	assert.Equal(t, first, nextActivityFilter(""))
	assert.Equal(t, string(model.ActivityTypes[1]), nextActivityFilter(first))
	assert.Equal(t, "", nextActivityFilter(last))
}

func TestRemoveTagWithoutRights(t *testing.T) {
	m, task := newPanel(t, panel.Permissions{})
	m.detail.Tags = []model.TaskTag{{TaskID: task.ID, TagID: "tag-1"}}
	m.state.SelectTab(panel.TabTags)

	_, cmd := m.Update(press("d"))
	done := mutationResult(t, cmd)
	assert.True(t, errors.Is(done.Err, panel.ErrNotPermitted))
}
