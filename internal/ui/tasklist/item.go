package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/thread"
	"github.com/nhle/taskboard/internal/ui"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Progress returns the subtask completion of the task.
func (i TaskItem) Progress() thread.Progress {
	return thread.Progress{Done: i.Task.SubtaskDone, Total: i.Task.SubtaskCount}
}

// Badges returns the compact counters shown after the title.
func (i TaskItem) Badges() string {
	var parts []string
	if i.Task.SubtaskCount > 0 {
		parts = append(parts, "["+i.Progress().Badge()+"]")
	}
	if i.Task.CommentCount > 0 {
		parts = append(parts, fmt.Sprintf("%dc", i.Task.CommentCount))
	}
	return strings.Join(parts, " ")
}

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	t := ti.Task

	prefix := statusGlyph(t.Status)
	priBadge := theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority))

	title := ui.Truncate(t.Title, m.Width()-20)

	badges := ""
	if b := ti.Badges(); b != "" {
		badges = " " + theme.BadgeStyle.Render(b)
	}

	due := ""
	if t.DueDate != nil {
		if t.IsOverdue(time.Now()) {
			due = theme.OverdueStyle.Render(" " + t.DueDate.Format("Jan 02"))
		} else {
			due = theme.HelpStyle.Render(" " + t.DueDate.Format("Jan 02"))
		}
	}

	line := fmt.Sprintf("%s %s %s%s%s", prefix, priBadge, title, badges, due)

	if t.IsCompleted() {
		line = theme.DimmedStyle.Render(line)
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

func statusGlyph(status string) string {
	switch status {
	case model.StatusCompleted:
		return "✓"
	case model.StatusInProgress:
		return "◐"
	default:
		return "○"
	}
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p string) string {
	switch p {
	case model.PriorityHigh:
		return "H"
	case model.PriorityMedium:
		return "M"
	case model.PriorityLow:
		return "L"
	default:
		return "?"
	}
}
