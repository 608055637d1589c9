package listpicker

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
)

type fakeSource struct{}

func (fakeSource) Workspaces(context.Context) ([]model.Workspace, error) {
	return []model.Workspace{{ID: "ws1", Name: "Acme"}, {ID: "ws2", Name: "Home"}}, nil
}

func (fakeSource) Lists(_ context.Context, workspaceID string) ([]model.List, error) {
	if workspaceID == "ws1" {
		return []model.List{{ID: "l1", WorkspaceID: "ws1", Name: "Backlog"}, {ID: "l2", WorkspaceID: "ws1", Name: "Sprint"}}, nil
	}
	return nil, nil
}

func loaded(t *testing.T) Model {
	t.Helper()
	m := New(fakeSource{}, keys.DefaultKeyMap(), 80, 24)
	cmd := m.Open()
	m, _ = m.Update(cmd())
	require.Len(t, m.entries, 5)
	return m
}

func TestCursorSkipsWorkspaceHeadings(t *testing.T) {
	m := loaded(t)
	assert.True(t, m.entries[m.selectedIdx].all)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	e, _ := m.selected()
	require.NotNil(t, e.list)
	assert.Equal(t, "l1", e.list.ID)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.True(t, m.entries[m.selectedIdx].all, "wraps past the empty workspace")
}

func TestSelectEmitsChosen(t *testing.T) {
	m := loaded(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, ChosenMsg{ListID: "l2", Label: "Acme / Sprint"}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("T")})
	require.NotNil(t, cmd)
	assert.Equal(t, ManageTagsMsg{Workspace: model.Workspace{ID: "ws1", Name: "Acme"}}, cmd())
}

func TestAllListsRow(t *testing.T) {
	m := loaded(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, ChosenMsg{Label: "all lists"}, cmd())
	assert.Contains(t, m.View(), "Backlog")
}
