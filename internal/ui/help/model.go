// Package help renders the keyboard shortcut overlay: key bindings grouped
// by the screen they act on, followed by the ":" palette commands.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui/command"
)

var sectionTitle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)

// section is a titled group of bindings.
type section struct {
	title    string
	bindings []key.Binding
}

func sections(k *keys.KeyMap) []section {
	return []section{
		{"Task list", []key.Binding{k.Up, k.Down, k.Select, k.Search, k.CycleSort, k.New, k.Refresh}},
		{"Side panel", []key.Binding{k.NextTab, k.PrevTab, k.Edit, k.ToggleStatus, k.CyclePriority, k.Delete, k.Back}},
		{"Comments and subtasks", []key.Binding{k.AddComment, k.Reply, k.AddSubtask, k.ToggleSubtask, k.Remove}},
		{"People and tags", []key.Binding{k.AddMember, k.AddCollaborator, k.CycleRole, k.AddTag}},
		{"Activity", []key.Binding{k.LoadMore, k.FilterActivity}},
		{"Screens", []key.Binding{k.Lists, k.Tags, k.Command, k.Help, k.Quit}},
	}
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a help view for keys.
func New(keys *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   keys,
		help:   help.New(),
		width:  width,
		height: height,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) { return m, nil }

// View renders every section in two columns, then the palette commands.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Keyboard Shortcuts")

	var blocks []string
	for _, s := range sections(m.keys) {
		blocks = append(blocks, m.renderSection(s))
	}
	columnWidth := (m.width - 8) / 2
	if columnWidth < 24 {
		columnWidth = 24
	}
	left, right := splitColumns(blocks)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(columnWidth).Render(strings.Join(left, "\n\n")),
		lipgloss.NewStyle().Width(columnWidth).Render(strings.Join(right, "\n\n")),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, title, body, "", m.renderCommands())
	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

func (m Model) renderSection(s section) string {
	var b strings.Builder
	b.WriteString(sectionTitle.Render(s.title))
	for _, kb := range s.bindings {
		if !kb.Enabled() {
			continue
		}
		h := kb.Help()
		fmt.Fprintf(&b, "\n%s %s",
			m.help.Styles.FullKey.Width(12).Render(h.Key),
			m.help.Styles.FullDesc.Render(h.Desc))
	}
	return b.String()
}

func (m Model) renderCommands() string {
	var b strings.Builder
	b.WriteString(sectionTitle.Render("Commands"))
	for _, u := range command.Usages() {
		fmt.Fprintf(&b, "\n%s %s",
			m.help.Styles.FullKey.Width(16).Render(":"+u.Syntax),
			m.help.Styles.FullDesc.Render(u.Desc))
	}
	return b.String()
}

// splitColumns balances blocks across two columns by line count, keeping
// their order.
func splitColumns(blocks []string) (left, right []string) {
	total := 0
	for _, b := range blocks {
		total += lipgloss.Height(b)
	}
	lines := 0
	for _, b := range blocks {
		if lines < total/2 {
			left = append(left, b)
			lines += lipgloss.Height(b)
			continue
		}
		right = append(right, b)
	}
	return left, right
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
