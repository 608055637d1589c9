package sidepanel

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/panel"
)

// dialogDoneMsg is sent when a dialog form completes or is aborted.
type dialogDoneMsg struct {
	kind    panel.Dialog
	taskID  string
	aborted bool
	values  dialogValues
}

// dialogBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type dialogBindings struct {
	text      string
	role      string
	tagID     string
	confirmed bool
}

// dialogValues is what a completed dialog collected.
type dialogValues struct {
	text      string
	role      string
	tagID     string
	confirmed bool
	parentID  *string
	tags      []model.Tag
}

func (v dialogValues) tag() (model.Tag, bool) {
	for _, t := range v.tags {
		if t.ID == v.tagID {
			return t, true
		}
	}
	return model.Tag{}, false
}

// dialogModel drives the huh form of the visible dialog.
type dialogModel struct {
	kind     panel.Dialog
	taskID   string
	form     *huh.Form
	b        *dialogBindings
	title    string
	parentID *string
	tags     []model.Tag
}

func newDialogModel() dialogModel {
	return dialogModel{b: &dialogBindings{}}
}

func (d dialogModel) active() bool { return d.form != nil }

func (d *dialogModel) reset() {
	d.form = nil
	d.title = ""
	d.parentID = nil
	d.tags = nil
	*d.b = dialogBindings{}
}

func (d *dialogModel) start(title string, width int, fields ...huh.Field) tea.Cmd {
	d.title = title
	d.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(width).WithShowHelp(false)
	return d.form.Init()
}

func (d *dialogModel) startComment(parentID *string, width int) tea.Cmd {
	*d.b = dialogBindings{}
	d.parentID = parentID
	title := "New comment"
	if parentID != nil {
		title = "Reply"
	}
	return d.start(title, width,
		huh.NewText().
			Title("Comment").
			Placeholder("Write a comment...").
			Value(&d.b.text).
			Validate(required("Comment")),
	)
}

func (d *dialogModel) startSubtask(width int) tea.Cmd {
	*d.b = dialogBindings{}
	return d.start("New subtask", width,
		huh.NewInput().
			Title("Title").
			Placeholder("What is the next step?").
			Value(&d.b.text).
			Validate(required("Title")),
	)
}

func (d *dialogModel) startMember(width int) tea.Cmd {
	*d.b = dialogBindings{}
	return d.start("Assign task", width,
		huh.NewInput().
			Title("User").
			Placeholder("user id").
			Value(&d.b.text).
			Validate(required("User")),
	)
}

func (d *dialogModel) startCollaborator(width int) tea.Cmd {
	*d.b = dialogBindings{role: model.RoleObserver}
	return d.start("Add collaborator", width,
		huh.NewInput().
			Title("User").
			Placeholder("user id").
			Value(&d.b.text).
			Validate(required("User")),
		huh.NewSelect[string]().
			Title("Role").
			Options(
				huh.NewOption("Observer", model.RoleObserver),
				huh.NewOption("Reviewer", model.RoleReviewer),
				huh.NewOption("Assignee", model.RoleAssignee),
				huh.NewOption("Owner", model.RoleOwner),
			).
			Value(&d.b.role),
	)
}

func (d *dialogModel) startTag(tags []model.Tag, width int) tea.Cmd {
	*d.b = dialogBindings{}
	d.tags = tags
	if len(tags) == 0 {
		done := dialogDoneMsg{kind: d.kind, taskID: d.taskID, aborted: true}
		return func() tea.Msg { return done }
	}
	opts := make([]huh.Option[string], len(tags))
	for i, t := range tags {
		opts[i] = huh.NewOption(t.Name, t.ID)
	}
	d.b.tagID = tags[0].ID
	return d.start("Add tag", width,
		huh.NewSelect[string]().
			Title("Tag").
			Options(opts...).
			Value(&d.b.tagID),
	)
}

func (d *dialogModel) startConfirmDelete(taskTitle string, width int) tea.Cmd {
	*d.b = dialogBindings{}
	return d.start("Delete task", width,
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", taskTitle)).
			Description("Comments, subtasks and activity go with it.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&d.b.confirmed),
	)
}

// Update forwards msg to the form and reports completion.
func (d dialogModel) Update(msg tea.Msg) (dialogModel, tea.Cmd) {
	if d.form == nil {
		return d, nil
	}

	mdl, cmd := d.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		d.form = f
	}

	switch d.form.State {
	case huh.StateCompleted:
		done := dialogDoneMsg{kind: d.kind, taskID: d.taskID, values: d.values()}
		d.form = nil
		return d, func() tea.Msg { return done }
	case huh.StateAborted:
		done := dialogDoneMsg{kind: d.kind, taskID: d.taskID, aborted: true}
		d.form = nil
		return d, func() tea.Msg { return done }
	}
	return d, cmd
}

func (d dialogModel) values() dialogValues {
	return dialogValues{
		text:      strings.TrimSpace(d.b.text),
		role:      d.b.role,
		tagID:     d.b.tagID,
		confirmed: d.b.confirmed,
		parentID:  d.parentID,
		tags:      d.tags,
	}
}

func (d dialogModel) View() string {
	if d.form == nil {
		return ""
	}
	return d.form.View()
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
