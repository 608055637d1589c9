package sidepanel

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/panel"
	"github.com/nhle/taskboard/internal/taskdetail"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/thread"
	"github.com/nhle/taskboard/internal/ui"
)

// View renders the side panel.
func (m Model) View() string {
	if m.detail == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Select a task to see its details.")
	}

	if m.taskForm.Active() {
		return m.taskForm.View()
	}

	header := m.renderHeader()
	tabs := m.renderTabs()

	body := m.viewport.View()
	if d, ok := m.state.VisibleDialog(); ok && m.dialog.active() && m.dialog.kind == d {
		body = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(m.dialog.title),
			m.dialog.View(),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, tabs, body)
}

func (m Model) renderHeader() string {
	t := m.detail.Task
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render(ui.Truncate(t.Title, m.width-4))

	status := theme.StatusStyle(t.Status).Render(strings.ReplaceAll(t.Status, "_", " "))
	priority := theme.PriorityStyle(t.Priority).Render(t.Priority)
	meta := status + " " + priority
	if m.loading {
		meta += theme.HelpStyle.Render("  loading…")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, meta)
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, len(panel.Tabs))
	for _, tab := range panel.Tabs {
		label := tabLabel(tab, m.detail)
		if tab == m.state.ActiveTab() {
			parts = append(parts, theme.ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, theme.TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func tabLabel(tab panel.Tab, d *taskdetail.Detail) string {
	switch tab {
	case panel.TabSubtasks:
		if d.Progress.Total > 0 {
			return fmt.Sprintf("%s %s", tab, d.Progress.Badge())
		}
	case panel.TabComments:
		if n := thread.CountComments(d.Threads); n > 0 {
			return fmt.Sprintf("%s %d", tab, n)
		}
	}
	return tab.String()
}

// syncViewport re-renders the active tab into the viewport.
func (m *Model) syncViewport() {
	if m.detail == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.renderTab())
}

func (m Model) renderTab() string {
	switch m.state.ActiveTab() {
	case panel.TabSubtasks:
		return m.renderSubtasks()
	case panel.TabComments:
		return m.renderComments()
	case panel.TabCollaborators:
		return m.renderCollaborators()
	case panel.TabTags:
		return m.renderTags()
	case panel.TabActivity:
		return m.renderActivity()
	}
	return m.renderOverview()
}

func (m Model) row(i int, line string) string {
	if i == m.cursor {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) renderOverview() string {
	t := m.detail.Task
	var b strings.Builder

	field := func(name, value string) {
		fmt.Fprintf(&b, "%s %s\n", theme.HelpStyle.Render(fmt.Sprintf("%-10s", name)), value)
	}

	field("Status", theme.StatusStyle(t.Status).Render(t.Status))
	field("Priority", theme.PriorityStyle(t.Priority).Render(t.Priority))
	if t.DueDate != nil {
		due := t.DueDate.Format("Mon Jan 02 2006")
		if t.IsOverdue(time.Now()) {
			due = theme.OverdueStyle.Render(due + " (overdue)")
		}
		field("Due", due)
	}
	if t.Assignee != nil {
		field("Assignee", *t.Assignee)
	}
	field("Created", fmt.Sprintf("%s by %s", ui.RelativeTime(t.CreatedAt), t.CreatedBy))
	if len(m.detail.Tags) > 0 {
		chips := make([]string, len(m.detail.Tags))
		for i, tt := range m.detail.Tags {
			chips[i] = theme.TagStyle(tt.Tag.Color).Render(tt.Tag.Name)
		}
		field("Tags", strings.Join(chips, " "))
	}

	if p := m.detail.Progress; p.Total > 0 {
		field("Subtasks", fmt.Sprintf("%s %s (%d%%)",
			m.progress.ViewAs(float64(p.Percent())/100), p.Badge(), p.Percent()))
	}

	b.WriteString("\n")
	b.WriteString(m.renderDescription(t.Description))
	return b.String()
}

func (m Model) renderDescription(desc string) string {
	if strings.TrimSpace(desc) == "" {
		return theme.HelpStyle.Render("No description.")
	}
	if m.renderer != nil {
		if out, err := m.renderer.Render(desc); err == nil {
			return out
		}
	}
	return desc
}

func (m Model) renderSubtasks() string {
	if len(m.detail.Subtasks) == 0 {
		return theme.HelpStyle.Render("No subtasks. Press a to add one.")
	}

	var b strings.Builder
	p := m.detail.Progress
	fmt.Fprintf(&b, "%s %s\n\n", m.progress.ViewAs(float64(p.Percent())/100), theme.BadgeStyle.Render(p.Badge()))

	for i, st := range m.detail.Subtasks {
		box := "[ ]"
		title := st.Title
		if st.Completed {
			box = "[x]"
			title = theme.DimmedStyle.Render(title)
		}
		if taskdetail.IsPending(st.ID) {
			title = theme.PendingStyle.Render(st.Title + " (saving)")
		}
		b.WriteString(m.row(i, box+" "+title))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderComments() string {
	if len(m.detail.Threads) == 0 {
		return theme.HelpStyle.Render("No comments yet. Press c to write one.")
	}

	var b strings.Builder
	i := 0
	for _, th := range m.detail.Threads {
		b.WriteString(m.row(i, m.commentLine(th.Comment, "")))
		b.WriteString("\n")
		i++
		for _, reply := range th.Replies {
			b.WriteString(m.row(i, m.commentLine(reply, "  ↳ ")))
			b.WriteString("\n")
			i++
		}
	}
	return b.String()
}

func (m Model) commentLine(c model.Comment, indent string) string {
	meta := fmt.Sprintf("%s · %s", c.Author, ui.RelativeTime(c.CreatedAt))
	if c.EditedAt != nil && !c.IsDeleted {
		meta += " · edited"
	}

	content := c.DisplayContent()
	switch {
	case c.IsDeleted:
		content = theme.DimmedStyle.Render(content)
	case taskdetail.IsPending(c.ID):
		content = theme.PendingStyle.Render(content)
		meta += " · sending"
	}
	return indent + theme.HelpStyle.Render(meta) + "\n" + indent + content
}

func (m Model) renderCollaborators() string {
	if len(m.detail.Collaborators) == 0 {
		return theme.HelpStyle.Render("No collaborators. Press m to add one.")
	}

	var b strings.Builder
	for i, c := range m.detail.Collaborators {
		line := fmt.Sprintf("%-20s %s", c.UserID, theme.RoleStyle(c.Role).Render(c.Role))
		if taskdetail.IsPending(c.ID) {
			line = theme.PendingStyle.Render(line)
		}
		b.WriteString(m.row(i, line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTags() string {
	if len(m.detail.Tags) == 0 {
		return theme.HelpStyle.Render("No tags. Press t to add one.")
	}

	var b strings.Builder
	for i, tt := range m.detail.Tags {
		b.WriteString(m.row(i, theme.TagStyle(tt.Tag.Color).Render(tt.Tag.Name)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderActivity() string {
	var b strings.Builder

	filter := "all"
	if m.detail.ActivityType != "" {
		filter = strings.ReplaceAll(m.detail.ActivityType, "_", " ")
	}
	b.WriteString(theme.HelpStyle.Render("showing: "+filter+" (f to change)"))
	b.WriteString("\n\n")

	if len(m.detail.Activity) == 0 {
		b.WriteString(theme.HelpStyle.Render("No activity."))
		return b.String()
	}

	for _, a := range m.detail.Activity {
		fmt.Fprintf(&b, "%s %s\n",
			theme.HelpStyle.Render(fmt.Sprintf("%-8s", ui.RelativeTime(a.CreatedAt))),
			model.FormatActivity(a))
	}
	if m.detail.ActivityHasMore {
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("L load more"))
	}
	return b.String()
}
