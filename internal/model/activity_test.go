package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryActivityTypeHasPayloadAndMessage(t *testing.T) {
	for _, typ := range ActivityTypes {
		p, err := DecodeActivityPayload(typ, []byte(`{}`))
		require.NoError(t, err, typ)

		_, unknown := p.(UnknownActivity)
		assert.False(t, unknown, "%s decodes as unknown", typ)
		assert.Equal(t, typ, p.ActivityType())

		msg := describePayload(p)
		assert.NotContains(t, msg, "made a change", "%s has no message", typ)
	}
}

func TestActivityJSONSelectsPayloadByType(t *testing.T) {
	raw := `{
		"id": "a1",
		"task_id": "t1",
		"actor": "bob",
		"type": "status_changed",
		"payload": {"from": "todo", "to": "in_progress"},
		"created_at": "2024-03-01T10:00:00Z"
	}`

	var a Activity
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	assert.Equal(t, ActivityStatusChanged, a.Type)
	assert.Equal(t, StatusChanged{From: "todo", To: "in_progress"}, a.Payload)
	assert.Equal(t, "bob changed status from todo to in progress", FormatActivity(a))
}

func TestActivityJSONUnknownTypeIsPreserved(t *testing.T) {
	raw := `{"id":"a1","task_id":"t1","actor":"bob","type":"task_archived","payload":{"x":1},"created_at":"2024-03-01T10:00:00Z"}`

	var a Activity
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	u, ok := a.Payload.(UnknownActivity)
	require.True(t, ok)
	assert.JSONEq(t, `{"x":1}`, string(u.Raw))

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), `"payload":{"x":1}`))
}

func TestFormatActivityReply(t *testing.T) {
	parent := "c1"
	a := NewActivity("t1", "carol", CommentAdded{CommentID: "c2", ParentID: &parent})
	assert.Equal(t, "carol replied to a comment", FormatActivity(a))

	due := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	a = NewActivity("t1", "carol", DueDateChanged{To: &due})
	assert.Equal(t, "carol set the due date to 2024-05-06", FormatActivity(a))
}
