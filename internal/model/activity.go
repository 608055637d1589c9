package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ActivityType identifies the kind of change an Activity records.
type ActivityType string

// Activity types written by the backend.
const (
	ActivityTaskCreated             ActivityType = "task_created"
	ActivityTaskUpdated             ActivityType = "task_updated"
	ActivityStatusChanged           ActivityType = "status_changed"
	ActivityPriorityChanged         ActivityType = "priority_changed"
	ActivityTitleChanged            ActivityType = "title_changed"
	ActivityDescriptionChanged      ActivityType = "description_changed"
	ActivityDueDateChanged          ActivityType = "due_date_changed"
	ActivityAssigneeChanged         ActivityType = "assignee_changed"
	ActivityCommentAdded            ActivityType = "comment_added"
	ActivityCommentEdited           ActivityType = "comment_edited"
	ActivityCommentDeleted          ActivityType = "comment_deleted"
	ActivitySubtaskAdded            ActivityType = "subtask_added"
	ActivitySubtaskUpdated          ActivityType = "subtask_updated"
	ActivitySubtaskCompleted        ActivityType = "subtask_completed"
	ActivitySubtaskReopened         ActivityType = "subtask_reopened"
	ActivitySubtaskDeleted          ActivityType = "subtask_deleted"
	ActivityCollaboratorAdded       ActivityType = "collaborator_added"
	ActivityCollaboratorRoleChanged ActivityType = "collaborator_role_changed"
	ActivityCollaboratorRemoved     ActivityType = "collaborator_removed"
	ActivityTagAdded                ActivityType = "tag_added"
	ActivityTagRemoved              ActivityType = "tag_removed"
)

// ActivityTypes lists every known activity type in display order.
var ActivityTypes = []ActivityType{
	ActivityTaskCreated,
	ActivityTaskUpdated,
	ActivityStatusChanged,
	ActivityPriorityChanged,
	ActivityTitleChanged,
	ActivityDescriptionChanged,
	ActivityDueDateChanged,
	ActivityAssigneeChanged,
	ActivityCommentAdded,
	ActivityCommentEdited,
	ActivityCommentDeleted,
	ActivitySubtaskAdded,
	ActivitySubtaskUpdated,
	ActivitySubtaskCompleted,
	ActivitySubtaskReopened,
	ActivitySubtaskDeleted,
	ActivityCollaboratorAdded,
	ActivityCollaboratorRoleChanged,
	ActivityCollaboratorRemoved,
	ActivityTagAdded,
	ActivityTagRemoved,
}

// ActivityPayload is the type-specific body of an Activity. Each activity
// type has exactly one payload shape.
type ActivityPayload interface {
	ActivityType() ActivityType
}

// Activity is an immutable audit record of a change made to a task or one
// of its sub-entities.
type Activity struct {
	ID        string
	TaskID    string
	Actor     string
	Type      ActivityType
	Payload   ActivityPayload
	CreatedAt time.Time
}

// NewActivity builds an activity whose Type is taken from the payload.
func NewActivity(taskID, actor string, p ActivityPayload) Activity {
	return Activity{
		TaskID:  taskID,
		Actor:   actor,
		Type:    p.ActivityType(),
		Payload: p,
	}
}

// FieldChange is the shared shape of simple before/after edits.
type FieldChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TaskCreated is the payload of ActivityTaskCreated.
type TaskCreated struct {
	Title string `json:"title"`
}

// TaskUpdated is the payload of ActivityTaskUpdated.
type TaskUpdated struct {
	Fields []string `json:"fields"`
}

// StatusChanged is the payload of ActivityStatusChanged.
type StatusChanged FieldChange

// PriorityChanged is the payload of ActivityPriorityChanged.
type PriorityChanged FieldChange

// TitleChanged is the payload of ActivityTitleChanged.
type TitleChanged FieldChange

// DescriptionChanged is the payload of ActivityDescriptionChanged.
type DescriptionChanged struct{}

// DueDateChanged is the payload of ActivityDueDateChanged.
type DueDateChanged struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// AssigneeChanged is the payload of ActivityAssigneeChanged.
type AssigneeChanged struct {
	From *string `json:"from,omitempty"`
	To   *string `json:"to,omitempty"`
}

// CommentRef identifies the comment an activity is about.
type CommentRef struct {
	CommentID string  `json:"comment_id"`
	ParentID  *string `json:"parent_id,omitempty"`
	Excerpt   string  `json:"excerpt,omitempty"`
}

// CommentAdded is the payload of ActivityCommentAdded.
type CommentAdded CommentRef

// CommentEdited is the payload of ActivityCommentEdited.
type CommentEdited CommentRef

// CommentDeleted is the payload of ActivityCommentDeleted.
type CommentDeleted CommentRef

// SubtaskRef identifies the subtask an activity is about.
type SubtaskRef struct {
	SubtaskID string `json:"subtask_id"`
	Title     string `json:"title"`
}

// SubtaskAdded is the payload of ActivitySubtaskAdded.
type SubtaskAdded SubtaskRef

// SubtaskUpdated is the payload of ActivitySubtaskUpdated.
type SubtaskUpdated SubtaskRef

// SubtaskCompleted is the payload of ActivitySubtaskCompleted.
type SubtaskCompleted SubtaskRef

// SubtaskReopened is the payload of ActivitySubtaskReopened.
type SubtaskReopened SubtaskRef

// SubtaskDeleted is the payload of ActivitySubtaskDeleted.
type SubtaskDeleted SubtaskRef

// CollaboratorAdded is the payload of ActivityCollaboratorAdded.
type CollaboratorAdded struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// CollaboratorRoleChanged is the payload of ActivityCollaboratorRoleChanged.
type CollaboratorRoleChanged struct {
	UserID string `json:"user_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// CollaboratorRemoved is the payload of ActivityCollaboratorRemoved.
type CollaboratorRemoved struct {
	UserID string `json:"user_id"`
}

// TagRef identifies the tag an activity is about.
type TagRef struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name"`
}

// TagAdded is the payload of ActivityTagAdded.
type TagAdded TagRef

// TagRemoved is the payload of ActivityTagRemoved.
type TagRemoved TagRef

// UnknownActivity holds the raw payload of an activity type this build does
// not know about.
type UnknownActivity struct {
	Type ActivityType
	Raw  json.RawMessage
}

func (TaskCreated) ActivityType() ActivityType             { return ActivityTaskCreated }
func (TaskUpdated) ActivityType() ActivityType             { return ActivityTaskUpdated }
func (StatusChanged) ActivityType() ActivityType           { return ActivityStatusChanged }
func (PriorityChanged) ActivityType() ActivityType         { return ActivityPriorityChanged }
func (TitleChanged) ActivityType() ActivityType            { return ActivityTitleChanged }
func (DescriptionChanged) ActivityType() ActivityType      { return ActivityDescriptionChanged }
func (DueDateChanged) ActivityType() ActivityType          { return ActivityDueDateChanged }
func (AssigneeChanged) ActivityType() ActivityType         { return ActivityAssigneeChanged }
func (CommentAdded) ActivityType() ActivityType            { return ActivityCommentAdded }
func (CommentEdited) ActivityType() ActivityType           { return ActivityCommentEdited }
func (CommentDeleted) ActivityType() ActivityType          { return ActivityCommentDeleted }
func (SubtaskAdded) ActivityType() ActivityType            { return ActivitySubtaskAdded }
func (SubtaskUpdated) ActivityType() ActivityType          { return ActivitySubtaskUpdated }
func (SubtaskCompleted) ActivityType() ActivityType        { return ActivitySubtaskCompleted }
func (SubtaskReopened) ActivityType() ActivityType         { return ActivitySubtaskReopened }
func (SubtaskDeleted) ActivityType() ActivityType          { return ActivitySubtaskDeleted }
func (CollaboratorAdded) ActivityType() ActivityType       { return ActivityCollaboratorAdded }
func (CollaboratorRoleChanged) ActivityType() ActivityType { return ActivityCollaboratorRoleChanged }
func (CollaboratorRemoved) ActivityType() ActivityType     { return ActivityCollaboratorRemoved }
func (TagAdded) ActivityType() ActivityType                { return ActivityTagAdded }
func (TagRemoved) ActivityType() ActivityType              { return ActivityTagRemoved }
func (u UnknownActivity) ActivityType() ActivityType       { return u.Type }

// newPayload returns a pointer to a zero payload for the given type, or nil
// when the type is unknown.
func newPayload(t ActivityType) ActivityPayload {
	switch t {
	case ActivityTaskCreated:
		return &TaskCreated{}
	case ActivityTaskUpdated:
		return &TaskUpdated{}
	case ActivityStatusChanged:
		return &StatusChanged{}
	case ActivityPriorityChanged:
		return &PriorityChanged{}
	case ActivityTitleChanged:
		return &TitleChanged{}
	case ActivityDescriptionChanged:
		return &DescriptionChanged{}
	case ActivityDueDateChanged:
		return &DueDateChanged{}
	case ActivityAssigneeChanged:
		return &AssigneeChanged{}
	case ActivityCommentAdded:
		return &CommentAdded{}
	case ActivityCommentEdited:
		return &CommentEdited{}
	case ActivityCommentDeleted:
		return &CommentDeleted{}
	case ActivitySubtaskAdded:
		return &SubtaskAdded{}
	case ActivitySubtaskUpdated:
		return &SubtaskUpdated{}
	case ActivitySubtaskCompleted:
		return &SubtaskCompleted{}
	case ActivitySubtaskReopened:
		return &SubtaskReopened{}
	case ActivitySubtaskDeleted:
		return &SubtaskDeleted{}
	case ActivityCollaboratorAdded:
		return &CollaboratorAdded{}
	case ActivityCollaboratorRoleChanged:
		return &CollaboratorRoleChanged{}
	case ActivityCollaboratorRemoved:
		return &CollaboratorRemoved{}
	case ActivityTagAdded:
		return &TagAdded{}
	case ActivityTagRemoved:
		return &TagRemoved{}
	}
	return nil
}

// DecodeActivityPayload decodes raw JSON into the payload shape of t.
// Unknown types decode to UnknownActivity.
func DecodeActivityPayload(t ActivityType, raw []byte) (ActivityPayload, error) {
	p := newPayload(t)
	if p == nil {
		return UnknownActivity{Type: t, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", t, err)
		}
	}
	return derefPayload(p), nil
}

// derefPayload turns the pointer returned by newPayload back into a value so
// callers can type-switch on value types only.
func derefPayload(p ActivityPayload) ActivityPayload {
	switch v := p.(type) {
	case *TaskCreated:
		return *v
	case *TaskUpdated:
		return *v
	case *StatusChanged:
		return *v
	case *PriorityChanged:
		return *v
	case *TitleChanged:
		return *v
	case *DescriptionChanged:
		return *v
	case *DueDateChanged:
		return *v
	case *AssigneeChanged:
		return *v
	case *CommentAdded:
		return *v
	case *CommentEdited:
		return *v
	case *CommentDeleted:
		return *v
	case *SubtaskAdded:
		return *v
	case *SubtaskUpdated:
		return *v
	case *SubtaskCompleted:
		return *v
	case *SubtaskReopened:
		return *v
	case *SubtaskDeleted:
		return *v
	case *CollaboratorAdded:
		return *v
	case *CollaboratorRoleChanged:
		return *v
	case *CollaboratorRemoved:
		return *v
	case *TagAdded:
		return *v
	case *TagRemoved:
		return *v
	}
	return p
}

// activityJSON is the wire shape of an Activity.
type activityJSON struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	Actor     string          `json:"actor"`
	Type      ActivityType    `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EncodePayload returns the JSON encoding of the activity payload.
func (a Activity) EncodePayload() ([]byte, error) {
	if u, ok := a.Payload.(UnknownActivity); ok {
		if len(u.Raw) == 0 {
			return []byte("{}"), nil
		}
		return u.Raw, nil
	}
	if a.Payload == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a.Payload)
}

// MarshalJSON encodes the activity with its payload under "payload".
func (a Activity) MarshalJSON() ([]byte, error) {
	payload, err := a.EncodePayload()
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", a.Type, err)
	}
	return json.Marshal(activityJSON{
		ID:        a.ID,
		TaskID:    a.TaskID,
		Actor:     a.Actor,
		Type:      a.Type,
		Payload:   payload,
		CreatedAt: a.CreatedAt,
	})
}

// UnmarshalJSON decodes the activity, selecting the payload shape by type.
func (a *Activity) UnmarshalJSON(data []byte) error {
	var raw activityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := DecodeActivityPayload(raw.Type, raw.Payload)
	if err != nil {
		return err
	}
	*a = Activity{
		ID:        raw.ID,
		TaskID:    raw.TaskID,
		Actor:     raw.Actor,
		Type:      raw.Type,
		Payload:   payload,
		CreatedAt: raw.CreatedAt,
	}
	return nil
}

// FormatActivity renders a one-line, human-readable description of a.
func FormatActivity(a Activity) string {
	return a.Actor + " " + describePayload(a.Payload)
}

func describePayload(p ActivityPayload) string {
	switch v := p.(type) {
	case TaskCreated:
		return fmt.Sprintf("created the task %q", v.Title)
	case TaskUpdated:
		if len(v.Fields) == 0 {
			return "updated the task"
		}
		return "updated " + strings.Join(v.Fields, ", ")
	case StatusChanged:
		return fmt.Sprintf("changed status from %s to %s", label(v.From), label(v.To))
	case PriorityChanged:
		return fmt.Sprintf("changed priority from %s to %s", label(v.From), label(v.To))
	case TitleChanged:
		return fmt.Sprintf("renamed the task to %q", v.To)
	case DescriptionChanged:
		return "edited the description"
	case DueDateChanged:
		if v.To == nil {
			return "removed the due date"
		}
		return "set the due date to " + v.To.Format("2006-01-02")
	case AssigneeChanged:
		if v.To == nil {
			return "unassigned the task"
		}
		return "assigned the task to " + *v.To
	case CommentAdded:
		if v.ParentID != nil {
			return "replied to a comment"
		}
		return "added a comment"
	case CommentEdited:
		return "edited a comment"
	case CommentDeleted:
		return "deleted a comment"
	case SubtaskAdded:
		return fmt.Sprintf("added subtask %q", v.Title)
	case SubtaskUpdated:
		return fmt.Sprintf("updated subtask %q", v.Title)
	case SubtaskCompleted:
		return fmt.Sprintf("completed subtask %q", v.Title)
	case SubtaskReopened:
		return fmt.Sprintf("reopened subtask %q", v.Title)
	case SubtaskDeleted:
		return fmt.Sprintf("deleted subtask %q", v.Title)
	case CollaboratorAdded:
		return fmt.Sprintf("added %s as %s", v.UserID, v.Role)
	case CollaboratorRoleChanged:
		return fmt.Sprintf("changed %s from %s to %s", v.UserID, v.From, v.To)
	case CollaboratorRemoved:
		return "removed " + v.UserID
	case TagAdded:
		return fmt.Sprintf("added tag %q", v.Name)
	case TagRemoved:
		return fmt.Sprintf("removed tag %q", v.Name)
	case UnknownActivity:
		return "made a change (" + string(v.Type) + ")"
	case nil:
		return "made a change"
	default:
		return "made a change (" + string(p.ActivityType()) + ")"
	}
}

// label turns snake_case enum values into words.
func label(s string) string {
	if s == "" {
		return "none"
	}
	return strings.ReplaceAll(s, "_", " ")
}
