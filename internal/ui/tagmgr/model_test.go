package tagmgr

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
)

type fakeSource struct {
	tags    []model.Tag
	created []model.Tag
}

func (f *fakeSource) WorkspaceTags(context.Context, string) ([]model.Tag, error) {
	return f.tags, nil
}

func (f *fakeSource) CreateTag(_ context.Context, workspaceID, name, color string) (*model.Tag, error) {
	t := model.Tag{ID: "new", WorkspaceID: workspaceID, Name: name, Color: color}
	f.created = append(f.created, t)
	f.tags = append(f.tags, t)
	return &t, nil
}

func TestOpenLoadsWorkspaceTags(t *testing.T) {
	src := &fakeSource{tags: []model.Tag{{ID: "t1", Name: "bug", Color: "#FF0000"}}}
	m := New(src, keys.DefaultKeyMap(), 80, 24)

	cmd := m.Open(model.Workspace{ID: "ws1", Name: "Acme"})
	m, _ = m.Update(cmd())
	require.Len(t, m.tags, 1)
	assert.Contains(t, m.View(), "bug")
	assert.Contains(t, m.View(), "Tags in Acme")
}

func TestResultsForOtherWorkspaceAreDropped(t *testing.T) {
	src := &fakeSource{tags: []model.Tag{{ID: "t1", Name: "bug"}}}
	m := New(src, keys.DefaultKeyMap(), 80, 24)

	old := m.Open(model.Workspace{ID: "ws1"})
	m.Open(model.Workspace{ID: "ws2"})
	m, _ = m.Update(old())
	assert.Empty(t, m.tags)
}

func TestValidateName(t *testing.T) {
	m := New(&fakeSource{}, keys.DefaultKeyMap(), 80, 24)
	m.tags = []model.Tag{{Name: "Bug"}}

	assert.Error(t, m.validateName("  "))
	assert.Error(t, m.validateName("bug"))
	assert.NoError(t, m.validateName("feature"))
}

func TestValidateColor(t *testing.T) {
	assert.NoError(t, validateColor(""))
	assert.NoError(t, validateColor("#6bcb77"))
	assert.Error(t, validateColor("green"))
}

func TestSaveCreatesTag(t *testing.T) {
	src := &fakeSource{}
	m := New(src, keys.DefaultKeyMap(), 80, 24)
	m.Open(model.Workspace{ID: "ws1", Name: "Acme"})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	require.NotNil(t, cmd)
	assert.True(t, m.Editing())

	m.fb.name = " release "
	m.fb.color = ""
	msg := m.saveTag()()
	m, cmd = m.Update(msg)

	require.Len(t, src.created, 1)
	assert.Equal(t, "release", src.created[0].Name)
	assert.Equal(t, defaultColor, src.created[0].Color)
	assert.False(t, m.Editing())
	assert.NotNil(t, cmd)
}
