// Package tagmgr lists the tags of a workspace and creates new ones.
package tagmgr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// Source reads and creates workspace tags.
type Source interface {
	WorkspaceTags(ctx context.Context, workspaceID string) ([]model.Tag, error)
	CreateTag(ctx context.Context, workspaceID, name, color string) (*model.Tag, error)
}

// CloseMsg signals the parent to close the tag view.
type CloseMsg struct{}

// TagCreatedMsg signals that a workspace tag was created.
type TagCreatedMsg struct {
	Tag model.Tag
}

type tagMode int

const (
	modeList tagMode = iota
	modeForm
)

const defaultColor = "#6BCB77"

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type formBindings struct {
	name  string
	color string
}

type tagsLoadedMsg struct {
	workspaceID string
	tags        []model.Tag
	err         error
}

type tagSavedMsg struct {
	tag *model.Tag
	err error
}

// Model is the Bubble Tea model for workspace tags.
type Model struct {
	mode        tagMode
	source      Source
	keys        *keys.KeyMap
	workspace   model.Workspace
	tags        []model.Tag
	selectedIdx int
	form        *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new tag manager model.
func New(src Source, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:   modeList,
		source: src,
		keys:   k,
		fb:     &formBindings{},
		width:  width, height: height,
	}
}

// Open shows the tags of ws.
func (m *Model) Open(ws model.Workspace) tea.Cmd {
	m.workspace = ws
	m.mode = modeList
	m.tags = nil
	m.selectedIdx = 0
	m.statusMsg = ""
	return m.loadTags()
}

// Editing reports whether the create form owns the keyboard.
func (m Model) Editing() bool { return m.mode == modeForm }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tagsLoadedMsg:
		if msg.workspaceID != m.workspace.ID {
			return m, nil
		}
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.tags = msg.tags
		if m.selectedIdx >= len(m.tags) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.tags) - 1
		}
		return m, nil

	case tagSavedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Created %q", msg.tag.Name)
		tag := *msg.tag
		return m, tea.Batch(m.loadTags(), func() tea.Msg { return TagCreatedMsg{Tag: tag} })

	case tea.KeyMsg:
		if m.mode == modeForm {
			if key.Matches(msg, m.keys.Back) {
				m.mode = modeList
				m.form = nil
				return m, nil
			}
			return m.updateForm(msg)
		}
		return m.handleListKey(msg)
	}

	if m.mode == modeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.tags) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.tags)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.tags) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.tags) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.fb.name = ""
		m.fb.color = defaultColor
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTags()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Tag name").
				Value(&m.fb.name).
				Validate(m.validateName),
			huh.NewInput().
				Title("Color").
				Placeholder(defaultColor).
				Value(&m.fb.color).
				Validate(validateColor),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// validateName rejects empty names and names already used in the
// workspace.
func (m Model) validateName(s string) error {
	name := strings.TrimSpace(s)
	if name == "" {
		return errors.New("name is required")
	}
	for _, t := range m.tags {
		if strings.EqualFold(t.Name, name) {
			return fmt.Errorf("tag %q already exists", t.Name)
		}
	}
	return nil
}

func validateColor(s string) error {
	if s == "" || hexColor.MatchString(s) {
		return nil
	}
	return errors.New("color must look like #RRGGBB")
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
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
		return m, m.saveTag()
	case huh.StateAborted:
		m.form = nil
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the tag manager.
func (m Model) View() string {
	if m.mode == modeForm && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Tags in " + m.workspace.Name))
	b.WriteString("\n\n")

	if len(m.tags) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No tags yet. Press 'n' to create one."))
	} else {
		for i, t := range m.tags {
			label := theme.TagStyle(t.Color).Render(t.Name)
			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render("> " + label))
			} else {
				b.WriteString(theme.ListItemStyle.Render("  " + label))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("n new | r refresh | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func (m Model) loadTags() tea.Cmd {
	src := m.source
	wsID := m.workspace.ID
	return func() tea.Msg {
		tags, err := src.WorkspaceTags(context.Background(), wsID)
		return tagsLoadedMsg{workspaceID: wsID, tags: tags, err: err}
	}
}

func (m Model) saveTag() tea.Cmd {
	src := m.source
	fb := *m.fb
	wsID := m.workspace.ID
	return func() tea.Msg {
		color := fb.color
		if color == "" {
			color = defaultColor
		}
		tag, err := src.CreateTag(context.Background(), wsID, strings.TrimSpace(fb.name), color)
		return tagSavedMsg{tag: tag, err: err}
	}
}
