package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/tests/testutil"
)

// stub answers every request with status and body and counts hits.
func stub(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestValidationNeverReachesNetwork(t *testing.T) {
	srv, hits := stub(t, http.StatusOK, "{}")
	c := api.NewClient(srv.URL, "alice")
	ctx := context.Background()

	_, err := c.CreateComment(ctx, api.CreateCommentRequest{TaskID: "t1", Content: "   "})
	var ve *api.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "content")

	_, err = c.CreateSubtask(ctx, api.CreateSubtaskRequest{TaskID: "t1"})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "title")

	_, err = c.AddCollaborator(ctx, api.AddCollaboratorRequest{TaskID: "t1", UserID: "bob", Role: "boss"})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "role")

	_, err = c.AddTag(ctx, api.AddTagRequest{TaskID: "t1"})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "tag_id")

	_, err = c.ListActivity(ctx, api.ActivityQuery{TaskID: "t1", Limit: 0})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "limit")

	_, err = c.ListActivity(ctx, api.ActivityQuery{TaskID: "t1", Limit: 20, Type: "exploded"})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "type")

	err = c.RemoveTag(ctx, "t1", "")
	require.ErrorAs(t, err, &ve)

	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestErrorPrefersServerMessage(t *testing.T) {
	srv, _ := stub(t, http.StatusConflict, `{"error":"already tagged"}`)
	c := api.NewClient(srv.URL, "alice")

	_, err := c.AddTag(context.Background(), api.AddTagRequest{TaskID: "t1", TagID: "g1"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "already tagged", apiErr.Message)
	assert.True(t, apiErr.Conflict())
}

func TestErrorFallsBackToGenericMessage(t *testing.T) {
	srv, _ := stub(t, http.StatusInternalServerError, "boom")
	c := api.NewClient(srv.URL, "alice")

	_, err := c.ListComments(context.Background(), "t1")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "request failed: internal server error", apiErr.Message)
}

func TestMalformedBodyIsRequestFailure(t *testing.T) {
	srv, _ := stub(t, http.StatusOK, "not json")
	c := api.NewClient(srv.URL, "alice")

	_, err := c.GetTask(context.Background(), "t1")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "malformed response from server", apiErr.Message)
}

func TestNetworkFailureIsRequestFailure(t *testing.T) {
	srv, _ := stub(t, http.StatusOK, "{}")
	url := srv.URL
	srv.Close()

	c := api.NewClient(url, "alice")
	_, err := c.ListSubtasks(context.Background(), "t1")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.Contains(t, apiErr.Message, "network error")
}

func TestBadBaseURLIsRequestFailure(t *testing.T) {
	c := api.NewClient("http://bad host", "alice")
	_, err := c.ListSubtasks(context.Background(), "t1")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.Contains(t, apiErr.Message, "building request failed")
}

func TestHeadersAreSent(t *testing.T) {
	var auth, user string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		user = r.Header.Get(api.UserHeader)
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := api.NewClient(srv.URL+"/", "carol", api.WithToken("s3cret"))
	_, err := c.ListFriendships(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", auth)
	assert.Equal(t, "carol", user)
}

func TestCreateThenListHasNoDuplicate(t *testing.T) {
	s := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, s, "Round trip")
	srv := testutil.NewTestServer(t, s)
	c := api.NewClient(srv.URL, testutil.TestUser)
	ctx := context.Background()

	created, err := c.CreateComment(ctx, api.CreateCommentRequest{TaskID: fx.Task.ID, Content: "first"})
	require.NoError(t, err)

	comments, err := c.ListComments(ctx, fx.Task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, created.ID, comments[0].ID)
}

func TestSubtaskToggleAndObserver(t *testing.T) {
	s := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, s, "Checklist")
	srv := testutil.NewTestServer(t, s)
	c := api.NewClient(srv.URL, testutil.TestUser)
	ctx := context.Background()

	st, err := c.CreateSubtask(ctx, api.CreateSubtaskRequest{TaskID: fx.Task.ID, Title: "one"})
	require.NoError(t, err)

	toggled, err := c.ToggleSubtask(ctx, *st)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.NotNil(t, toggled.CompletedAt)

	collab, err := c.AddCollaborator(ctx, api.AddCollaboratorRequest{
		TaskID: fx.Task.ID, UserID: "bob", Role: model.RoleObserver,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleObserver, collab.Role)

	list, err := c.ListCollaborators(ctx, fx.Task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].UserID)
}

func TestRemoveTagTwiceFailsOnce(t *testing.T) {
	s := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, s, "Tags")
	srv := testutil.NewTestServer(t, s)
	c := api.NewClient(srv.URL, testutil.TestUser)
	ctx := context.Background()

	tag, err := c.CreateWorkspaceTag(ctx, api.CreateTagRequest{WorkspaceID: fx.Workspace.ID, Name: "bug"})
	require.NoError(t, err)
	_, err = c.AddTag(ctx, api.AddTagRequest{TaskID: fx.Task.ID, TagID: tag.ID})
	require.NoError(t, err)

	require.NoError(t, c.RemoveTag(ctx, fx.Task.ID, tag.ID))
	err = c.RemoveTag(ctx, fx.Task.ID, tag.ID)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.NotFound())

	tags, err := c.ListTaskTags(ctx, fx.Task.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestListActivityReportsMore(t *testing.T) {
	s := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, s, "Paged")
	srv := testutil.NewTestServer(t, s)
	c := api.NewClient(srv.URL, testutil.TestUser)
	ctx := context.Background()

	for _, title := range []string{"a", "b"} {
		_, err := c.CreateSubtask(ctx, api.CreateSubtaskRequest{TaskID: fx.Task.ID, Title: title})
		require.NoError(t, err)
	}

	page, err := c.ListActivity(ctx, api.ActivityQuery{TaskID: fx.Task.ID, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	page, err = c.ListActivity(ctx, api.ActivityQuery{TaskID: fx.Task.ID, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, model.ActivityTaskCreated, page.Items[0].Type)
}
