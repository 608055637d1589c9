package tasklist

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// Source loads the tasks shown in the list.
type Source interface {
	Tasks(ctx context.Context, listID string) ([]model.Task, error)
}

// TasksLoadedMsg is sent when tasks have been loaded.
type TasksLoadedMsg struct {
	ListID string
	Tasks  []model.Task
	Err    error
}

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	Task model.Task
}

// sortModes defines the available sort modes cycled by the sort key.
var sortModes = []string{
	"updated_at",
	"priority",
	"due_date",
	"title",
	"status",
}

// Model is the task list view component.
type Model struct {
	list        list.Model
	source      Source
	keys        *keys.KeyMap
	listID      string
	tasks       []model.Task
	query       string
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new task list model showing the tasks of listID, or of
// every list when listID is empty.
func New(src Source, k *keys.KeyMap, listID string, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		source:      src,
		keys:        k,
		listID:      listID,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		if msg.Err != nil || msg.ListID != m.listID {
			return m, nil
		}
		m.tasks = msg.Tasks
		return m, m.refreshItems()

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		return m, m.refreshItems()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, m.refreshItems()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{Task: item.Task}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		return m, m.refreshItems()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SortMode returns the active sort column.
func (m Model) SortMode() string { return sortModes[m.sortIndex] }

// refreshItems filters and sorts the loaded tasks into the list.
func (m *Model) refreshItems() tea.Cmd {
	visible := filterTasks(m.tasks, m.query)
	sortTasks(visible, m.SortMode())

	items := make([]list.Item, len(visible))
	for i, t := range visible {
		items[i] = TaskItem{Task: t}
	}
	return m.list.SetItems(items)
}

// Selected returns the highlighted task.
func (m Model) Selected() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// ListID returns the list whose tasks are shown.
func (m Model) ListID() string { return m.listID }

// SetListID switches to another list, or to every list when listID is
// empty, and reloads.
func (m *Model) SetListID(listID string) tea.Cmd {
	m.listID = listID
	m.tasks = nil
	m.query = ""
	return tea.Batch(m.refreshItems(), m.LoadTasks())
}

// SetSortMode selects a sort column by name.
func (m *Model) SetSortMode(mode string) (tea.Cmd, error) {
	for i, s := range sortModes {
		if s == mode {
			m.sortIndex = i
			return m.refreshItems(), nil
		}
	}
	return nil, fmt.Errorf("unknown sort %q (want one of %s)", mode, strings.Join(sortModes, ", "))
}

func filterTasks(tasks []model.Task, query string) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	q := strings.ToLower(query)
	for _, t := range tasks {
		if q == "" ||
			strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

var priorityRank = map[string]int{
	model.PriorityHigh:   0,
	model.PriorityMedium: 1,
	model.PriorityLow:    2,
}

var statusRank = map[string]int{
	model.StatusInProgress: 0,
	model.StatusTodo:       1,
	model.StatusCompleted:  2,
}

func sortTasks(tasks []model.Task, mode string) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch mode {
		case "priority":
			return priorityRank[a.Priority] < priorityRank[b.Priority]
		case "due_date":
			if a.DueDate == nil || b.DueDate == nil {
				return a.DueDate != nil
			}
			return a.DueDate.Before(*b.DueDate)
		case "title":
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case "status":
			return statusRank[a.Status] < statusRank[b.Status]
		default:
			return a.UpdatedAt.After(b.UpdatedAt)
		}
	})
}

// View renders the task list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no tasks are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.query != "" {
		return style.Render("No matching tasks.\nPress / to change the search.")
	}

	return style.Render("No tasks yet.\n\nPress n to create one.")
}

// LoadTasks returns a tea.Cmd that loads the tasks of the current list.
func (m Model) LoadTasks() tea.Cmd {
	src := m.source
	listID := m.listID
	return func() tea.Msg {
		tasks, err := src.Tasks(context.Background(), listID)
		return TasksLoadedMsg{ListID: listID, Tasks: tasks, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
