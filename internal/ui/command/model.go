// Package command is the ":" command palette.
package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// Name identifies a palette command.
type Name string

const (
	Refresh Name = "refresh"
	Quit    Name = "quit"
	Lists   Name = "lists"
	Tags    Name = "tags"
	All     Name = "all"
	List    Name = "list"
	Sort    Name = "sort"
	Help    Name = "help"
)

// aliases maps accepted spellings to commands.
var aliases = map[string]Name{
	"refresh": Refresh, "r": Refresh, "sync": Refresh,
	"quit": Quit, "q": Quit,
	"lists": Lists, "ls": Lists,
	"tags": Tags,
	"all":  All,
	"list": List,
	"sort": Sort,
	"help": Help, "?": Help,
}

// Usage documents one command for the help overlay.
type Usage struct {
	Syntax string
	Desc   string
}

// Usages lists every command in the order the help overlay shows them.
func Usages() []Usage {
	return []Usage{
		{Syntax: string(List) + " ID", Desc: "show one list"},
		{Syntax: string(All), Desc: "show every list"},
		{Syntax: string(Sort) + " MODE", Desc: "sort tasks"},
		{Syntax: string(Lists), Desc: "choose a list"},
		{Syntax: string(Tags), Desc: "manage workspace tags"},
		{Syntax: string(Refresh), Desc: "reload tasks"},
		{Syntax: string(Help), Desc: "show this help"},
		{Syntax: string(Quit), Desc: "quit"},
	}
}

// Command is a parsed palette command.
type Command struct {
	Name Name
	Arg  string
}

// Parse turns palette input into a command.
func Parse(input string) (Command, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	name, ok := aliases[strings.ToLower(fields[0])]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}
	c := Command{Name: name, Arg: strings.Join(fields[1:], " ")}

	switch name {
	case List, Sort:
		if c.Arg == "" {
			return Command{}, fmt.Errorf("%s needs an argument", name)
		}
	default:
		if c.Arg != "" {
			return Command{}, fmt.Errorf("%s takes no argument", name)
		}
	}
	return c, nil
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Command Command
	Err     error
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "refresh, lists, tags, all, list <id>, sort <mode>, quit"
	ti.Prompt = ": "
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		input := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if input == "" {
			return m, nil
		}
		c, err := Parse(input)
		return m, func() tea.Msg { return CommandMsg{Command: c, Err: err} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Command"),
		m.input.View(),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() { m.input.Blur() }
