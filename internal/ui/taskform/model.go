// Package taskform is the huh form used to create and edit tasks.
package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

const dateLayout = "2006-01-02"

// Values are the fields collected by the form.
type Values struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// SubmittedMsg is dispatched when the form completes. TaskID is empty for
// a new task.
type SubmittedMsg struct {
	TaskID string
	ListID string
	Values Values
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct {
	TaskID string
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    string
	status      string
	dueDate     string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	taskID string
	listID string
	width  int
	height int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium, status: model.StatusTodo},
		width:  width,
		height: height,
	}
}

// Active reports whether a form is being filled in.
func (m Model) Active() bool { return m.form != nil }

// StartCreate initializes the form for a new task in listID.
func (m *Model) StartCreate(listID string) tea.Cmd {
	m.taskID = ""
	m.listID = listID
	*m.fb = formBindings{priority: model.PriorityMedium, status: model.StatusTodo}
	m.form = m.build(false)
	return m.form.Init()
}

// StartEdit initializes the form with the fields of t.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.taskID = t.ID
	m.listID = t.ListID
	*m.fb = formBindings{
		title:       t.Title,
		description: t.Description,
		priority:    t.Priority,
		status:      t.Status,
	}
	if t.DueDate != nil {
		m.fb.dueDate = t.DueDate.Format(dateLayout)
	}
	m.form = m.build(true)
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		submitted := SubmittedMsg{TaskID: m.taskID, ListID: m.listID, Values: m.values()}
		return m, func() tea.Msg { return submitted }
	case huh.StateAborted:
		m.form = nil
		taskID := m.taskID
		return m, func() tea.Msg { return CancelMsg{TaskID: taskID} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.taskID != "" {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) build(edit bool) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Markdown supported").
			Value(&m.fb.description),
		huh.NewSelect[string]().
			Title("Priority").
			Options(
				huh.NewOption("High", model.PriorityHigh),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
	}
	if edit {
		fields = append(fields,
			huh.NewSelect[string]().
				Title("Status").
				Options(
					huh.NewOption("To do", model.StatusTodo),
					huh.NewOption("In progress", model.StatusInProgress),
					huh.NewOption("Completed", model.StatusCompleted),
				).
				Value(&m.fb.status),
		)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) values() Values {
	v := Values{
		Title:       strings.TrimSpace(m.fb.title),
		Description: m.fb.description,
		Status:      m.fb.status,
		Priority:    m.fb.priority,
	}
	if d := strings.TrimSpace(m.fb.dueDate); d != "" {
		if t, err := time.Parse(dateLayout, d); err == nil {
			v.DueDate = &t
		}
	}
	return v
}

// CreateRequest returns the request creating a task from v in listID.
func (v Values) CreateRequest(listID string) api.CreateTaskRequest {
	return api.CreateTaskRequest{
		ListID:      listID,
		Title:       v.Title,
		Description: v.Description,
		Priority:    v.Priority,
		DueDate:     v.DueDate,
	}
}

// Patch returns the changes v makes to t. Unchanged fields are left nil.
func (v Values) Patch(t model.Task) model.TaskPatch {
	var p model.TaskPatch
	if v.Title != t.Title {
		p.Title = &v.Title
	}
	if v.Description != t.Description {
		p.Description = &v.Description
	}
	if v.Status != "" && v.Status != t.Status {
		p.Status = &v.Status
	}
	if v.Priority != "" && v.Priority != t.Priority {
		p.Priority = &v.Priority
	}
	switch {
	case v.DueDate == nil && t.DueDate != nil:
		p.ClearDueDate = true
	case v.DueDate != nil && (t.DueDate == nil || !sameDay(*v.DueDate, *t.DueDate)):
		p.DueDate = v.DueDate
	}
	return p
}

func sameDay(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	_, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
