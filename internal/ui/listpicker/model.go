// Package listpicker lets the user choose which list the task board shows.
package listpicker

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// Source reads workspaces and their lists.
type Source interface {
	Workspaces(ctx context.Context) ([]model.Workspace, error)
	Lists(ctx context.Context, workspaceID string) ([]model.List, error)
}

// ChosenMsg is sent when the user picks a list. An empty ListID means
// every list.
type ChosenMsg struct {
	ListID string
	Label  string
}

// ManageTagsMsg asks the parent to open the tag manager for a workspace.
type ManageTagsMsg struct {
	Workspace model.Workspace
}

// CloseMsg signals the parent to close the picker.
type CloseMsg struct{}

// entry is one row: the "all lists" row, a workspace heading or a list.
type entry struct {
	workspace model.Workspace
	list      *model.List
	all       bool
}

func (e entry) selectable() bool { return e.all || e.list != nil }

type loadedMsg struct {
	entries []entry
	err     error
}

// Model is the Bubble Tea model for the list picker.
type Model struct {
	source      Source
	keys        *keys.KeyMap
	entries     []entry
	selectedIdx int
	loading     bool
	statusMsg   string
	width       int
	height      int
}

// New creates a list picker.
func New(src Source, k *keys.KeyMap, width, height int) Model {
	return Model{source: src, keys: k, width: width, height: height}
}

// Open reloads workspaces and lists.
func (m *Model) Open() tea.Cmd {
	m.loading = true
	m.statusMsg = ""
	return m.load()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.entries = msg.entries
		m.selectedIdx = 0
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil

	case key.Matches(msg, m.keys.Select):
		e, ok := m.selected()
		if !ok || !e.selectable() {
			return m, nil
		}
		chosen := ChosenMsg{Label: "all lists"}
		if e.list != nil {
			chosen = ChosenMsg{ListID: e.list.ID, Label: e.workspace.Name + " / " + e.list.Name}
		}
		return m, func() tea.Msg { return chosen }

	case key.Matches(msg, m.keys.Tags):
		e, ok := m.selected()
		if !ok || e.all {
			return m, nil
		}
		ws := e.workspace
		return m, func() tea.Msg { return ManageTagsMsg{Workspace: ws} }

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	}
	return m, nil
}

// move steps the cursor by delta, skipping workspace headings.
func (m *Model) move(delta int) {
	n := len(m.entries)
	if n == 0 {
		return
	}
	i := m.selectedIdx
	for k := 0; k < n; k++ {
		i = (i + delta + n) % n
		if m.entries[i].selectable() {
			m.selectedIdx = i
			return
		}
	}
}

func (m Model) selected() (entry, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.entries) {
		return entry{}, false
	}
	return m.entries[m.selectedIdx], true
}

// View renders the picker.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Lists"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(theme.HelpStyle.Render("Loading…"))
	case len(m.entries) == 0:
		b.WriteString(theme.HelpStyle.Render("No workspaces."))
	}

	for i, e := range m.entries {
		var line string
		switch {
		case e.all:
			line = "All lists"
		case e.list == nil:
			line = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Render(e.workspace.Name)
			b.WriteString(line + "\n")
			continue
		default:
			line = "  " + e.list.Name
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(theme.ListItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("enter show | T workspace tags | r refresh | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) load() tea.Cmd {
	src := m.source
	return func() tea.Msg {
		ctx := context.Background()
		workspaces, err := src.Workspaces(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}

		entries := []entry{{all: true}}
		for _, ws := range workspaces {
			lists, err := src.Lists(ctx, ws.ID)
			if err != nil {
				return loadedMsg{err: err}
			}
			entries = append(entries, entry{workspace: ws})
			for i := range lists {
				entries = append(entries, entry{workspace: ws, list: &lists[i]})
			}
		}
		return loadedMsg{entries: entries}
	}
}
