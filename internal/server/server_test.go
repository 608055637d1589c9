package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/server"
	"github.com/nhle/taskboard/tests/testutil"
)

func send(t *testing.T, method, url, user string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(server.UserHeader, user)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var eb struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &eb))
	return eb.Error
}

func TestMissingTaskReturnsErrorEnvelope(t *testing.T) {
	s := testutil.NewTestStore(t)
	srv := testutil.NewTestServer(t, s)

	resp, body := send(t, http.MethodGet, srv.URL+"/api/v1/tasks/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, errorMessage(t, body), "not found")

	resp, body = send(t, http.MethodGet, srv.URL+"/api/v1/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "route not found", errorMessage(t, body))
}

func TestActorHeaderAttributesMutations(t *testing.T) {
	s := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, s, "Attribution")
	srv := testutil.NewTestServer(t, s)

	resp, body := send(t, http.MethodPost, srv.URL+"/api/v1/tasks/"+fx.Task.ID+"/comments", "bob",
		map[string]string{"content": "hi"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var c model.Comment
	require.NoError(t, json.Unmarshal(body, &c))
	assert.Equal(t, "bob", c.Author)

	resp, body = send(t, http.MethodPost, srv.URL+"/api/v1/tasks/"+fx.Task.ID+"/comments", "",
		map[string]string{"content": "default"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &c))
	assert.Equal(t, testutil.TestUser, c.Author)
}

func TestDeleteCommentStatusReflectsDeleteKind(t *testing.T) {
	s := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, s, "Threads")
	srv := testutil.NewTestServer(t, s)
	base := srv.URL + "/api/v1"

	var parent, reply model.Comment
	_, body := send(t, http.MethodPost, base+"/tasks/"+fx.Task.ID+"/comments", "",
		map[string]string{"content": "A"})
	require.NoError(t, json.Unmarshal(body, &parent))
	_, body = send(t, http.MethodPost, base+"/tasks/"+fx.Task.ID+"/comments", "",
		map[string]interface{}{"content": "B", "parent_id": parent.ID})
	require.NoError(t, json.Unmarshal(body, &reply))

	resp, body := send(t, http.MethodDelete, base+"/comments/"+parent.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var kept model.Comment
	require.NoError(t, json.Unmarshal(body, &kept))
	assert.True(t, kept.IsDeleted)

	resp, _ = send(t, http.MethodDelete, base+"/comments/"+reply.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBadRequestsAreRejected(t *testing.T) {
	s := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, s, "Validation")
	srv := testutil.NewTestServer(t, s)
	base := srv.URL + "/api/v1/tasks/" + fx.Task.ID

	resp, body := send(t, http.MethodGet, base+"/activity?limit=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, errorMessage(t, body))

	resp, _ = send(t, http.MethodPost, base+"/collaborators", "",
		map[string]string{"user_id": "bob", "role": "boss"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = send(t, http.MethodPatch, base, "", map[string]string{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConflictsAndForbidden(t *testing.T) {
	s := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, s, "Rules")
	srv := testutil.NewTestServer(t, s)
	base := srv.URL + "/api/v1"

	add := map[string]string{"user_id": "bob", "role": model.RoleObserver}
	resp, _ := send(t, http.MethodPost, base+"/tasks/"+fx.Task.ID+"/collaborators", "", add)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = send(t, http.MethodPost, base+"/tasks/"+fx.Task.ID+"/collaborators", "", add)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var f model.Friendship
	resp, body := send(t, http.MethodPost, base+"/friendships", "", map[string]string{"friend_id": "bob"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &f))

	resp, _ = send(t, http.MethodPatch, base+"/friendships/"+f.ID, "",
		map[string]string{"status": model.FriendshipAccepted})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = send(t, http.MethodPatch, base+"/friendships/"+f.ID, "bob",
		map[string]string{"status": model.FriendshipAccepted})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestActivityFeedNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, s, "Feed")
	srv := testutil.NewTestServer(t, s)
	base := srv.URL + "/api/v1/tasks/" + fx.Task.ID

	resp, _ := send(t, http.MethodPost, base+"/subtasks", "", map[string]string{"title": "step"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := send(t, http.MethodGet, base+"/activity?limit=20&offset=0", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var feed []model.Activity
	require.NoError(t, json.Unmarshal(body, &feed))
	require.Len(t, feed, 2)
	assert.Equal(t, model.SubtaskAdded{SubtaskID: feed[0].Payload.(model.SubtaskAdded).SubtaskID, Title: "step"}, feed[0].Payload)
	assert.Equal(t, model.ActivityTaskCreated, feed[1].Type)

	resp, body = send(t, http.MethodGet, base+"/activity?type=subtask_added", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &feed))
	assert.Len(t, feed, 1)
}
