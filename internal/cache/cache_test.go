package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

var taskKey = Key{Kind: KindTask, ID: "t1"}

func TestRollbackRestoresExactBytes(t *testing.T) {
	c := New()
	require.NoError(t, c.Set(taskKey, item{ID: "t1", Title: "Original"}))
	before, ok := c.Raw(taskKey)
	require.True(t, ok)

	m, err := c.Begin(taskKey, item{ID: "t1", Title: "Optimistic", Done: true})
	require.NoError(t, err)

	var got item
	found, err := c.Get(taskKey, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Optimistic", got.Title)

	require.NoError(t, m.Rollback())
	after, ok := c.Raw(taskKey)
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, StateRolledBack, m.State())
}

func TestRollbackRestoresAbsence(t *testing.T) {
	c := New()
	m, err := c.Begin(taskKey, item{ID: "tmp"})
	require.NoError(t, err)
	require.NoError(t, m.Rollback())

	_, ok := c.Raw(taskKey)
	assert.False(t, ok)
}

func TestBeginWithNilRemovesEntry(t *testing.T) {
	c := New()
	require.NoError(t, c.Set(taskKey, item{ID: "t1"}))

	m, err := c.Begin(taskKey, nil)
	require.NoError(t, err)
	_, ok := c.Raw(taskKey)
	assert.False(t, ok)

	require.NoError(t, m.Rollback())
	_, ok = c.Raw(taskKey)
	assert.True(t, ok)
}

func TestCommitReplacesWithAuthoritative(t *testing.T) {
	c := New()
	m, err := c.Begin(taskKey, item{ID: "tmp", Title: "draft"})
	require.NoError(t, err)
	require.NoError(t, m.Commit(item{ID: "t1", Title: "draft"}))

	var got item
	_, err = c.Get(taskKey, &got)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, StateCommitted, m.State())
	assert.Zero(t, c.Pending(taskKey))
}

func TestCommitNilConfirmsOptimistic(t *testing.T) {
	c := New()
	m, err := c.Begin(taskKey, item{ID: "t1", Title: "kept"})
	require.NoError(t, err)
	require.NoError(t, m.Commit(nil))

	var got item
	_, err = c.Get(taskKey, &got)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Title)
}

func TestEarlierCommitDoesNotOverwriteLaterMutation(t *testing.T) {
	c := New()
	require.NoError(t, c.Set(taskKey, item{ID: "t1", Title: "v0"}))

	first, err := c.Begin(taskKey, item{ID: "t1", Title: "v1"})
	require.NoError(t, err)
	second, err := c.Begin(taskKey, item{ID: "t1", Title: "v2"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Pending(taskKey))

	require.NoError(t, first.Commit(item{ID: "t1", Title: "server v1"}))

	var got item
	_, err = c.Get(taskKey, &got)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)

	// The later mutation now falls back to the confirmed first write.
	require.NoError(t, second.Rollback())
	_, err = c.Get(taskKey, &got)
	require.NoError(t, err)
	assert.Equal(t, "server v1", got.Title)
}

func TestEarlierRollbackLeavesLaterOwner(t *testing.T) {
	c := New()
	require.NoError(t, c.Set(taskKey, item{ID: "t1", Title: "v0"}))
	before, _ := c.Raw(taskKey)

	first, err := c.Begin(taskKey, item{ID: "t1", Title: "v1"})
	require.NoError(t, err)
	second, err := c.Begin(taskKey, item{ID: "t1", Title: "v2"})
	require.NoError(t, err)

	require.NoError(t, first.Rollback())
	var got item
	_, err = c.Get(taskKey, &got)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)

	require.NoError(t, second.Rollback())
	after, _ := c.Raw(taskKey)
	assert.Equal(t, before, after)
}

func TestInvalidTransitions(t *testing.T) {
	c := New()

	idle := c.Prepare(taskKey)
	assert.Equal(t, StateIdle, idle.State())
	assert.ErrorIs(t, idle.Commit(item{}), ErrInvalidTransition)
	assert.ErrorIs(t, idle.Rollback(), ErrInvalidTransition)

	require.NoError(t, idle.Apply(item{ID: "x"}))
	assert.Equal(t, StatePending, idle.State())
	assert.ErrorIs(t, idle.Apply(item{ID: "y"}), ErrInvalidTransition)

	require.NoError(t, idle.Commit(nil))
	assert.ErrorIs(t, idle.Commit(nil), ErrInvalidTransition)
	assert.ErrorIs(t, idle.Rollback(), ErrInvalidTransition)

	m, err := c.Begin(taskKey, item{ID: "z"})
	require.NoError(t, err)
	require.NoError(t, m.Rollback())
	assert.ErrorIs(t, m.Commit(nil), ErrInvalidTransition)
}

func TestCommitInvalidatesAggregates(t *testing.T) {
	c := New()
	listKey := Key{Kind: KindTaskList, ID: "l1"}
	commentsKey := Key{Kind: KindComments, ID: "t1"}
	c.DependsOn(commentsKey, taskKey, listKey)
	c.DependsOn(commentsKey, taskKey)

	require.NoError(t, c.Set(taskKey, item{ID: "t1"}))
	require.NoError(t, c.Set(listKey, []item{{ID: "t1"}}))

	var mu sync.Mutex
	var seen []Key
	unsubscribe := c.OnInvalidate(func(k Key) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, k)
	})

	m, err := c.Begin(commentsKey, []item{{ID: "c1"}})
	require.NoError(t, err)
	assert.False(t, c.Stale(taskKey))

	require.NoError(t, m.Commit(nil))
	assert.True(t, c.Stale(taskKey))
	assert.True(t, c.Stale(listKey))
	assert.ElementsMatch(t, []Key{taskKey, listKey}, seen)

	require.NoError(t, c.Set(taskKey, item{ID: "t1"}))
	assert.False(t, c.Stale(taskKey))

	unsubscribe()
	m, err = c.Begin(commentsKey, []item{})
	require.NoError(t, err)
	require.NoError(t, m.Commit(nil))
	assert.Len(t, seen, 2)
	assert.True(t, c.Stale(taskKey))
}

func TestConcurrentMutations(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := c.Begin(taskKey, item{ID: "t1", Done: i%2 == 0})
			if err != nil {
				t.Error(err)
				return
			}
			if i%3 == 0 {
				_ = m.Rollback()
				return
			}
			_ = m.Commit(item{ID: "t1"})
		}(i)
	}
	wg.Wait()
	assert.Zero(t, c.Pending(taskKey))
}

var listKey = Key{Kind: KindComments, ID: "t1"}

func appendItem(it item) Patch {
	return PatchOf(func(items []item) []item { return append(items, it) })
}

func replaceItem(id string, it item) Patch {
	return PatchOf(func(items []item) []item {
		out := make([]item, 0, len(items))
		for _, cur := range items {
			if cur.ID == id {
				cur = it
			}
			out = append(out, cur)
		}
		return out
	})
}

func dropItem(id string) Patch {
	return PatchOf(func(items []item) []item {
		out := make([]item, 0, len(items))
		for _, cur := range items {
			if cur.ID != id {
				out = append(out, cur)
			}
		}
		return out
	})
}

func listIDs(t *testing.T, c *Cache) []string {
	t.Helper()
	var items []item
	_, err := c.Get(listKey, &items)
	require.NoError(t, err)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestCommitPatchKeepsEarlierConfirmedRow(t *testing.T) {
	c := New()
	require.NoError(t, c.Set(listKey, []item{}))

	first, err := c.BeginPatch(listKey, appendItem(item{ID: "tmp-1"}))
	require.NoError(t, err)
	second, err := c.BeginPatch(listKey, appendItem(item{ID: "tmp-2"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"tmp-1", "tmp-2"}, listIDs(t, c))

	require.NoError(t, first.CommitPatch(replaceItem("tmp-1", item{ID: "c1"})))
	assert.Equal(t, []string{"c1", "tmp-2"}, listIDs(t, c))

	require.NoError(t, second.CommitPatch(replaceItem("tmp-2", item{ID: "c2"})))
	assert.Equal(t, []string{"c1", "c2"}, listIDs(t, c))
	assert.Zero(t, c.Pending(listKey))
}

func TestLaterRollbackKeepsEarlierConfirmedRow(t *testing.T) {
	c := New()
	require.NoError(t, c.Set(listKey, []item{}))

	first, err := c.BeginPatch(listKey, appendItem(item{ID: "tmp-1"}))
	require.NoError(t, err)
	second, err := c.BeginPatch(listKey, appendItem(item{ID: "tmp-2"}))
	require.NoError(t, err)

	require.NoError(t, first.CommitPatch(replaceItem("tmp-1", item{ID: "c1"})))
	require.NoError(t, second.RollbackPatch(dropItem("tmp-2")))
	assert.Equal(t, []string{"c1"}, listIDs(t, c))
}

func TestEarlierRollbackPatchDropsOnlyItsRow(t *testing.T) {
	c := New()
	require.NoError(t, c.Set(listKey, []item{{ID: "a"}}))
	before, _ := c.Raw(listKey)

	first, err := c.BeginPatch(listKey, appendItem(item{ID: "tmp-1"}))
	require.NoError(t, err)
	second, err := c.BeginPatch(listKey, appendItem(item{ID: "tmp-2"}))
	require.NoError(t, err)

	require.NoError(t, first.RollbackPatch(dropItem("tmp-1")))
	assert.Equal(t, []string{"a", "tmp-2"}, listIDs(t, c))

	// The first rollback rewrote the entry, so the second undoes its own
	// row rather than restoring a snapshot.
	require.NoError(t, second.RollbackPatch(dropItem("tmp-2")))
	assert.Equal(t, []string{"a"}, listIDs(t, c))
	after, _ := c.Raw(listKey)
	assert.Equal(t, before, after)
}

func TestRollbackPatchIsExactWhenUntouched(t *testing.T) {
	c := New()
	require.NoError(t, c.Set(listKey, []item{{ID: "a", Title: "kept"}}))
	before, _ := c.Raw(listKey)

	m, err := c.BeginPatch(listKey, dropItem("a"))
	require.NoError(t, err)
	require.NoError(t, m.RollbackPatch(appendItem(item{ID: "a"})))

	after, _ := c.Raw(listKey)
	assert.Equal(t, before, after)
	assert.ErrorIs(t, m.CommitPatch(nil), ErrInvalidTransition)
}

func TestCommitPatchLeavesAbsentEntryAbsent(t *testing.T) {
	c := New()
	m, err := c.BeginPatch(listKey, func([]byte) ([]byte, error) { return nil, nil })
	require.NoError(t, err)
	require.NoError(t, m.CommitPatch(appendItem(item{ID: "c1"})))

	_, ok := c.Raw(listKey)
	assert.False(t, ok)
}
