package taskdetail_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/taskdetail"
	"github.com/nhle/taskboard/tests/testutil"
)

type harness struct {
	svc     *taskdetail.Service
	cache   *cache.Cache
	fixture testutil.Fixture
	store   interface {
		CreateTag(ctx context.Context, tag model.Tag) (*model.Tag, error)
	}
}

func newHarness(t *testing.T, wrap func(taskdetail.Backend) taskdetail.Backend) harness {
	t.Helper()
	st := testutil.NewTestStore(t)
	fx := testutil.SeedTask(t, st, "Ship release")
	srv := testutil.NewTestServer(t, st)

	var backend taskdetail.Backend = api.NewClient(srv.URL, testutil.TestUser)
	if wrap != nil {
		backend = wrap(backend)
	}
	c := cache.New()
	svc := taskdetail.New(backend, c, zap.NewNop(), 5)

	_, err := svc.Load(context.Background(), fx.Task.ID)
	require.NoError(t, err)
	return harness{svc: svc, cache: c, fixture: fx, store: st}
}

// failingSubtasks rejects every subtask write.
type failingSubtasks struct {
	taskdetail.Backend
}

func (failingSubtasks) CreateSubtask(context.Context, api.CreateSubtaskRequest) (*model.Subtask, error) {
	return nil, &api.Error{Status: 500, Message: "subtasks unavailable"}
}

func (failingSubtasks) ToggleSubtask(context.Context, model.Subtask) (*model.Subtask, error) {
	return nil, &api.Error{Status: 500, Message: "subtasks unavailable"}
}

func subtasksRaw(t *testing.T, c *cache.Cache, taskID string) []byte {
	t.Helper()
	raw, ok := c.Raw(cache.Key{Kind: cache.KindSubtasks, ID: taskID})
	require.True(t, ok)
	return raw
}

func TestAddCommentThenSnapshotHasNoDuplicate(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	taskID := h.fixture.Task.ID

	created, err := h.svc.AddComment(ctx, taskID, "first!", nil)
	require.NoError(t, err)
	assert.False(t, taskdetail.IsPending(created.ID))
	assert.Equal(t, testutil.TestUser, created.Author)

	d, err := h.svc.Snapshot(taskID)
	require.NoError(t, err)
	require.Len(t, d.Comments, 1)
	assert.Equal(t, created.ID, d.Comments[0].ID)
	require.Len(t, d.Threads, 1)

	reloaded, err := h.svc.Load(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, reloaded.Comments, 1)
	assert.Equal(t, created.ID, reloaded.Comments[0].ID)
}

func TestCommentCommitInvalidatesAggregates(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	taskID := h.fixture.Task.ID

	var invalidated []cache.Key
	unsubscribe := h.cache.OnInvalidate(func(k cache.Key) { invalidated = append(invalidated, k) })
	defer unsubscribe()

	tasks, err := h.svc.Tasks(ctx, h.fixture.List.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Zero(t, tasks[0].CommentCount)
	assert.False(t, h.svc.Stale(taskID))

	_, err = h.svc.AddComment(ctx, taskID, "counted", nil)
	require.NoError(t, err)
	assert.True(t, h.svc.Stale(taskID))
	assert.Contains(t, invalidated, taskdetail.TaskListKey(h.fixture.List.ID))

	tasks, err = h.svc.Tasks(ctx, h.fixture.List.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tasks[0].CommentCount)

	d, err := h.svc.RefreshAggregates(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Task.CommentCount)
	assert.False(t, h.svc.Stale(taskID))
	require.NotEmpty(t, d.Activity)
	assert.Equal(t, model.ActivityCommentAdded, d.Activity[0].Type)
}

func TestDeleteCommentWithRepliesIsLogical(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	taskID := h.fixture.Task.ID

	a, err := h.svc.AddComment(ctx, taskID, "A", nil)
	require.NoError(t, err)
	b, err := h.svc.AddComment(ctx, taskID, "B", &a.ID)
	require.NoError(t, err)

	require.NoError(t, h.svc.DeleteComment(ctx, taskID, a.ID))
	d, err := h.svc.Snapshot(taskID)
	require.NoError(t, err)
	require.Len(t, d.Threads, 1)
	assert.True(t, d.Threads[0].IsDeleted)
	assert.Empty(t, d.Threads[0].Content)
	require.Len(t, d.Threads[0].Replies, 1)
	assert.Equal(t, b.ID, d.Threads[0].Replies[0].ID)

	require.NoError(t, h.svc.DeleteComment(ctx, taskID, b.ID))
	d, err = h.svc.Snapshot(taskID)
	require.NoError(t, err)
	require.Len(t, d.Comments, 1)
	assert.Equal(t, a.ID, d.Comments[0].ID)
}

func TestEditCommentReplacesContent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	taskID := h.fixture.Task.ID

	c, err := h.svc.AddComment(ctx, taskID, "draft", nil)
	require.NoError(t, err)
	edited, err := h.svc.EditComment(ctx, taskID, c.ID, "final")
	require.NoError(t, err)
	assert.NotNil(t, edited.EditedAt)

	d, err := h.svc.Snapshot(taskID)
	require.NoError(t, err)
	require.Len(t, d.Comments, 1)
	assert.Equal(t, "final", d.Comments[0].Content)
}

func TestInvalidCommentLeavesCacheUntouched(t *testing.T) {
	h := newHarness(t, nil)
	taskID := h.fixture.Task.ID
	key := cache.Key{Kind: cache.KindComments, ID: taskID}
	before, _ := h.cache.Raw(key)

	_, err := h.svc.AddComment(context.Background(), taskID, "  ", nil)
	var ve *api.ValidationError
	require.ErrorAs(t, err, &ve)

	after, _ := h.cache.Raw(key)
	assert.Equal(t, before, after)
	assert.Zero(t, h.cache.Pending(key))
}

func TestToggleLastSubtaskCompletesProgress(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	taskID := h.fixture.Task.ID

	var last *model.Subtask
	for i, title := range []string{"write", "review", "merge"} {
		st, err := h.svc.AddSubtask(ctx, taskID, title)
		require.NoError(t, err)
		if i < 2 {
			_, err = h.svc.ToggleSubtask(ctx, taskID, st.ID)
			require.NoError(t, err)
		}
		last = st
	}

	d, err := h.svc.Snapshot(taskID)
	require.NoError(t, err)
	assert.Equal(t, "2/3", d.Progress.Badge())
	assert.Equal(t, 67, d.Progress.Percent())

	toggled, err := h.svc.ToggleSubtask(ctx, taskID, last.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.NotNil(t, toggled.CompletedAt)

	d, err = h.svc.Snapshot(taskID)
	require.NoError(t, err)
	assert.Equal(t, "3/3", d.Progress.Badge())
	assert.Equal(t, 100, d.Progress.Percent())
}

func TestFailedSubtaskWriteRestoresExactBytes(t *testing.T) {
	h := newHarness(t, func(b taskdetail.Backend) taskdetail.Backend { return failingSubtasks{b} })
	ctx := context.Background()
	taskID := h.fixture.Task.ID
	before := subtasksRaw(t, h.cache, taskID)

	_, err := h.svc.AddSubtask(ctx, taskID, "doomed")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "subtasks unavailable", apiErr.Message)

	assert.Equal(t, before, subtasksRaw(t, h.cache, taskID))
	assert.Zero(t, h.cache.Pending(cache.Key{Kind: cache.KindSubtasks, ID: taskID}))
	assert.False(t, h.svc.Stale(taskID))
}

func TestFailedToggleOfUnknownSubtask(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.ToggleSubtask(context.Background(), h.fixture.Task.ID, "missing")
	require.Error(t, err)
}

func TestAddObserverCollaborator(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	taskID := h.fixture.Task.ID

	c, err := h.svc.AddCollaborator(ctx, taskID, "bob", model.RoleObserver)
	require.NoError(t, err)

	d, err := h.svc.Snapshot(taskID)
	require.NoError(t, err)
	require.Len(t, d.Collaborators, 1)
	assert.Equal(t, "bob", d.Collaborators[0].UserID)
	assert.Equal(t, model.RoleObserver, d.Collaborators[0].Role)

	_, err = h.svc.ChangeRole(ctx, taskID, c.ID, model.RoleReviewer)
	require.NoError(t, err)
	_, err = h.svc.AddCollaborator(ctx, taskID, "bob", model.RoleAssignee)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Conflict())

	d, err = h.svc.Snapshot(taskID)
	require.NoError(t, err)
	require.Len(t, d.Collaborators, 1)
	assert.Equal(t, model.RoleReviewer, d.Collaborators[0].Role)

	require.NoError(t, h.svc.RemoveCollaborator(ctx, taskID, c.ID))
	d, err = h.svc.Snapshot(taskID)
	require.NoError(t, err)
	assert.Empty(t, d.Collaborators)
}

func TestRemoveTagTwiceFailsOnceAndRestores(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	taskID := h.fixture.Task.ID

	tag, err := h.store.CreateTag(ctx, model.Tag{Name: "urgent", Color: "#ff0000", WorkspaceID: h.fixture.Workspace.ID})
	require.NoError(t, err)
	tags, err := h.svc.WorkspaceTags(ctx, h.fixture.Workspace.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)

	assigned, err := h.svc.AddTag(ctx, taskID, *tag)
	require.NoError(t, err)
	assert.Equal(t, "urgent", assigned.Tag.Name)

	require.NoError(t, h.svc.RemoveTag(ctx, taskID, tag.ID))
	key := cache.Key{Kind: cache.KindTaskTags, ID: taskID}
	before, _ := h.cache.Raw(key)

	err = h.svc.RemoveTag(ctx, taskID, tag.ID)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())

	after, _ := h.cache.Raw(key)
	assert.Equal(t, before, after)
	d, err := h.svc.Snapshot(taskID)
	require.NoError(t, err)
	assert.Empty(t, d.Tags)
}

func TestSetStatusAndDeleteTask(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	taskID := h.fixture.Task.ID

	updated, err := h.svc.SetStatus(ctx, taskID, model.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	_, err = h.svc.SetPriority(ctx, taskID, "urgentest")
	var ve *api.ValidationError
	require.ErrorAs(t, err, &ve)
	d, err := h.svc.Snapshot(taskID)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, d.Task.Priority)

	require.NoError(t, h.svc.DeleteTask(ctx, taskID))
	_, err = h.svc.Snapshot(taskID)
	require.Error(t, err)

	err = h.svc.DeleteTask(ctx, taskID)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.NotFound())
}

func TestActivityPagingAndFilter(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	taskID := h.fixture.Task.ID

	for _, title := range []string{"a", "b", "c", "d", "e", "f"} {
		_, err := h.svc.AddSubtask(ctx, taskID, title)
		require.NoError(t, err)
	}

	d, err := h.svc.RefreshAggregates(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, d.Activity, 5)
	assert.True(t, d.ActivityHasMore)

	d, err = h.svc.LoadMoreActivity(ctx, taskID)
	require.NoError(t, err)
	assert.Len(t, d.Activity, 7)
	assert.False(t, d.ActivityHasMore)
	assert.Equal(t, model.ActivityTaskCreated, d.Activity[6].Type)

	d, err = h.svc.FilterActivity(ctx, taskID, string(model.ActivityTaskCreated))
	require.NoError(t, err)
	require.Len(t, d.Activity, 1)
	assert.Equal(t, string(model.ActivityTaskCreated), d.ActivityType)
	assert.False(t, d.ActivityHasMore)
}

// gate holds selected backend writes until the test releases them. A nil
// release lets the write through; an error fails it.
type gate struct {
	taskdetail.Backend
	started chan string
	release map[string]chan error
}

func newGate(names ...string) *gate {
	g := &gate{started: make(chan string), release: make(map[string]chan error)}
	for _, n := range names {
		g.release[n] = make(chan error)
	}
	return g
}

func (g *gate) wrap(b taskdetail.Backend) taskdetail.Backend {
	g.Backend = b
	return g
}

func (g *gate) hold(name string) error {
	ch, ok := g.release[name]
	if !ok {
		return nil
	}
	g.started <- name
	return <-ch
}

func (g *gate) CreateComment(ctx context.Context, req api.CreateCommentRequest) (*model.Comment, error) {
	if err := g.hold(req.Content); err != nil {
		return nil, err
	}
	return g.Backend.CreateComment(ctx, req)
}

func (g *gate) ToggleSubtask(ctx context.Context, st model.Subtask) (*model.Subtask, error) {
	if err := g.hold("toggle " + st.Title); err != nil {
		return nil, err
	}
	return g.Backend.ToggleSubtask(ctx, st)
}

type commentResult struct {
	comment *model.Comment
	err     error
}

func addCommentAsync(h harness, content string) <-chan commentResult {
	done := make(chan commentResult, 1)
	go func() {
		c, err := h.svc.AddComment(context.Background(), h.fixture.Task.ID, content, nil)
		done <- commentResult{comment: c, err: err}
	}()
	return done
}

func commentContents(comments []model.Comment) []string {
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.Content
	}
	return out
}

func TestOverlappingCommentsSettleInOrder(t *testing.T) {
	unavailable := &api.Error{Status: 503, Message: "comments unavailable"}

	tests := []struct {
		name  string
		order []string
		fail  map[string]bool
		want  []string
	}{
		{name: "earlier resolves first", order: []string{"one", "two"}, want: []string{"one", "two"}},
		{name: "later resolves first", order: []string{"two", "one"}, want: []string{"one", "two"}},
		{name: "earlier fails first", order: []string{"one", "two"}, fail: map[string]bool{"one": true}, want: []string{"two"}},
		{name: "earlier fails last", order: []string{"two", "one"}, fail: map[string]bool{"one": true}, want: []string{"two"}},
		{name: "later fails first", order: []string{"two", "one"}, fail: map[string]bool{"two": true}, want: []string{"one"}},
		{name: "later fails last", order: []string{"one", "two"}, fail: map[string]bool{"two": true}, want: []string{"one"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGate("one", "two")
			h := newHarness(t, g.wrap)
			taskID := h.fixture.Task.ID

			results := map[string]<-chan commentResult{}
			for _, content := range []string{"one", "two"} {
				results[content] = addCommentAsync(h, content)
				require.Equal(t, content, <-g.started)
			}

			created := map[string]string{}
			for _, content := range tt.order {
				var err error
				if tt.fail[content] {
					err = unavailable
				}
				g.release[content] <- err
				res := <-results[content]
				if tt.fail[content] {
					var apiErr *api.Error
					require.ErrorAs(t, res.err, &apiErr)
					continue
				}
				require.NoError(t, res.err)
				created[content] = res.comment.ID
			}

			d, err := h.svc.Snapshot(taskID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, commentContents(d.Comments))
			for _, c := range d.Comments {
				assert.False(t, taskdetail.IsPending(c.ID), "optimistic row %s left behind", c.ID)
				assert.Equal(t, created[c.Content], c.ID)
			}
			assert.Zero(t, h.cache.Pending(cache.Key{Kind: cache.KindComments, ID: taskID}))

			reloaded, err := h.svc.Load(context.Background(), taskID)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, commentContents(reloaded.Comments))
		})
	}
}

func TestFailedToggleKeepsSubtaskAddedMeanwhile(t *testing.T) {
	g := newGate("toggle write")
	h := newHarness(t, g.wrap)
	ctx := context.Background()
	taskID := h.fixture.Task.ID

	st, err := h.svc.AddSubtask(ctx, taskID, "write")
	require.NoError(t, err)

	toggled := make(chan error, 1)
	go func() {
		_, err := h.svc.ToggleSubtask(ctx, taskID, st.ID)
		toggled <- err
	}()
	require.Equal(t, "toggle write", <-g.started)

	d, err := h.svc.Snapshot(taskID)
	require.NoError(t, err)
	assert.Equal(t, "1/1", d.Progress.Badge())

	added, err := h.svc.AddSubtask(ctx, taskID, "review")
	require.NoError(t, err)

	g.release["toggle write"] <- &api.Error{Status: 500, Message: "subtasks unavailable"}
	var apiErr *api.Error
	require.ErrorAs(t, <-toggled, &apiErr)

	d, err = h.svc.Snapshot(taskID)
	require.NoError(t, err)
	require.Len(t, d.Subtasks, 2)
	assert.Equal(t, st.ID, d.Subtasks[0].ID)
	assert.False(t, d.Subtasks[0].Completed)
	assert.Equal(t, added.ID, d.Subtasks[1].ID)
	assert.Equal(t, "0/2", d.Progress.Badge())
	assert.Zero(t, h.cache.Pending(cache.Key{Kind: cache.KindSubtasks, ID: taskID}))
}
