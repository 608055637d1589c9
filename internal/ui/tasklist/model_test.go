package tasklist

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
)

type fakeSource struct {
	tasks  []model.Task
	listID string
}

func (f *fakeSource) Tasks(_ context.Context, listID string) ([]model.Task, error) {
	f.listID = listID
	return f.tasks, nil
}

func sample() []model.Task {
	now := time.Now()
	return []model.Task{
		{ID: "1", Title: "Write docs", Status: model.StatusTodo, Priority: model.PriorityLow, UpdatedAt: now.Add(-time.Hour)},
		{ID: "2", Title: "Fix login", Status: model.StatusInProgress, Priority: model.PriorityHigh, UpdatedAt: now,
			SubtaskCount: 3, SubtaskDone: 2, CommentCount: 4},
		{ID: "3", Title: "Archive logs", Status: model.StatusCompleted, Priority: model.PriorityMedium, UpdatedAt: now.Add(-2 * time.Hour)},
	}
}

func TestBadges(t *testing.T) {
	assert.Equal(t, "[2/3] 4c", TaskItem{Task: sample()[1]}.Badges())
	assert.Empty(t, TaskItem{Task: sample()[0]}.Badges())
}

func TestLoadAndSelect(t *testing.T) {
	src := &fakeSource{tasks: sample()}
	m := New(src, keys.DefaultKeyMap(), "list-1", 80, 24)

	msg := m.LoadTasks()()
	assert.Equal(t, "list-1", src.listID)

	m, _ = m.Update(msg)
	selected, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "2", selected.ID, "most recently updated first")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedTaskMsg{Task: selected}, cmd())
}

func TestSortModes(t *testing.T) {
	tasks := sample()

	sortTasks(tasks, "title")
	assert.Equal(t, "3", tasks[0].ID)

	sortTasks(tasks, "priority")
	assert.Equal(t, []string{"2", "3", "1"}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})

	sortTasks(tasks, "status")
	assert.Equal(t, "2", tasks[0].ID)
	assert.Equal(t, "3", tasks[2].ID)
}

func TestFilterTasks(t *testing.T) {
	got := filterTasks(sample(), "LOG")
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}

func TestStaleListResultIsIgnored(t *testing.T) {
	src := &fakeSource{tasks: sample()}
	m := New(src, keys.DefaultKeyMap(), "list-1", 80, 24)

	old := m.LoadTasks()()
	m.SetListID("list-2")
	m, _ = m.Update(old)

	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Equal(t, "list-2", m.ListID())
}

func TestSetSortMode(t *testing.T) {
	m := New(&fakeSource{}, keys.DefaultKeyMap(), "", 80, 24)

	_, err := m.SetSortMode("due_date")
	require.NoError(t, err)
	assert.Equal(t, "due_date", m.SortMode())

	_, err = m.SetSortMode("color")
	assert.Error(t, err)
	assert.Equal(t, "due_date", m.SortMode())
}
