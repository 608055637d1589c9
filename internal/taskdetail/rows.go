package taskdetail

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/model"
)

// Row identity per cached collection.
func commentID(c model.Comment) string           { return c.ID }
func subtaskID(s model.Subtask) string           { return s.ID }
func collaboratorID(c model.Collaborator) string { return c.ID }
func taskTagID(t model.TaskTag) string           { return t.TaskTagID }
func tagID(t model.Tag) string                   { return t.ID }
func rowTaskID(t model.Task) string              { return t.ID }

// indexOf returns the position of the row with id, or -1.
func indexOf[T any](rows []T, idOf func(T) string, id string) int {
	for i, r := range rows {
		if idOf(r) == id {
			return i
		}
	}
	return -1
}

// mapByID returns a copy of rows with the row id replaced by fn's result,
// or removed when fn returns nil.
func mapByID[T any](rows []T, idOf func(T) string, id string, fn func(T) *T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if idOf(r) != id {
			out = append(out, r)
			continue
		}
		if next := fn(r); next != nil {
			out = append(out, *next)
		}
	}
	return out
}

// replaceByID swaps the row id for row, leaving rows unchanged when id is
// absent.
func replaceByID[T any](rows []T, idOf func(T) string, id string, row T) []T {
	return mapByID(rows, idOf, id, func(T) *T { return &row })
}

// settleCreated swaps the optimistic row tempID for the server's row. When
// the optimistic row is gone, as after a reload, created is appended unless
// it is already present.
func settleCreated[T any](rows []T, idOf func(T) string, tempID string, created T) []T {
	if indexOf(rows, idOf, tempID) >= 0 {
		return replaceByID(rows, idOf, tempID, created)
	}
	if indexOf(rows, idOf, idOf(created)) >= 0 {
		return rows
	}
	return append(append(make([]T, 0, len(rows)+1), rows...), created)
}

// removedRow remembers a row taken out of a collection and where it was.
type removedRow[T any] struct {
	index int
	row   T
}

// removeWhere returns rows without those matching, and what it removed.
func removeWhere[T any](rows []T, match func(T) bool) ([]T, []removedRow[T]) {
	out := make([]T, 0, len(rows))
	var removed []removedRow[T]
	for i, r := range rows {
		if match(r) {
			removed = append(removed, removedRow[T]{index: i, row: r})
			continue
		}
		out = append(out, r)
	}
	return out, removed
}

// restoreRows puts removed rows back: a row still present is replaced, a
// missing one is reinserted at its old position or at the end.
func restoreRows[T any](rows []T, idOf func(T) string, removed []removedRow[T]) []T {
	out := append(make([]T, 0, len(rows)+len(removed)), rows...)
	for _, r := range removed {
		id := idOf(r.row)
		if indexOf(out, idOf, id) >= 0 {
			out = replaceByID(out, idOf, id, r.row)
			continue
		}
		at := r.index
		if at > len(out) {
			at = len(out)
		}
		out = append(out[:at], append([]T{r.row}, out[at:]...)...)
	}
	return out
}

// createRow optimistically appends temp to the collection at key, sends
// the write and settles the server's row in place of temp.
func createRow[T any](ctx context.Context, s *Service, key cache.Key, action string, idOf func(T) string, temp T,
	send func(context.Context) (*T, error)) (*T, error) {
	tempID := idOf(temp)
	m, err := s.cache.BeginPatch(key, cache.PatchOf(func(rows []T) []T {
		return append(append(make([]T, 0, len(rows)+1), rows...), temp)
	}))
	if err != nil {
		return nil, err
	}

	created, err := send(ctx)
	if err != nil {
		return nil, s.fail(m, action, err, cache.PatchOf(func(rows []T) []T {
			return mapByID(rows, idOf, tempID, func(T) *T { return nil })
		}))
	}
	if err := s.reconcile(m, action, cache.PatchOf(func(rows []T) []T {
		return settleCreated(rows, idOf, tempID, *created)
	})); err != nil {
		return nil, err
	}
	return created, nil
}

// updateRow optimistically rewrites the row id with change, sends the
// write with the row as it was, and settles the server's row. It fails
// without contacting the server when the row is not loaded.
func updateRow[T any](ctx context.Context, s *Service, key cache.Key, action string, idOf func(T) string, id string,
	change func(T) T, send func(context.Context, T) (*T, error)) (*T, error) {
	var original T
	found := false
	m, err := s.cache.BeginPatch(key, cache.PatchOf(func(rows []T) []T {
		return mapByID(rows, idOf, id, func(r T) *T {
			original, found = r, true
			next := change(r)
			return &next
		})
	}))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, s.fail(m, action, fmt.Errorf("%s is not loaded", id), nil)
	}

	updated, err := send(ctx, original)
	if err != nil {
		return nil, s.fail(m, action, err, cache.PatchOf(func(rows []T) []T {
			return replaceByID(rows, idOf, id, original)
		}))
	}
	if err := s.reconcile(m, action, cache.PatchOf(func(rows []T) []T {
		return replaceByID(rows, idOf, id, *updated)
	})); err != nil {
		return nil, err
	}
	return updated, nil
}

// removeRows optimistically drops the rows matching from the collection at
// key and sends the delete. A failure puts the rows back where they were.
func removeRows[T any](ctx context.Context, s *Service, key cache.Key, action string, idOf func(T) string,
	match func(T) bool, send func(context.Context) error) error {
	var removed []removedRow[T]
	m, err := s.cache.BeginPatch(key, cache.PatchOf(func(rows []T) []T {
		var out []T
		out, removed = removeWhere(rows, match)
		return out
	}))
	if err != nil {
		return err
	}

	if err := send(ctx); err != nil {
		return s.fail(m, action, err, cache.PatchOf(func(rows []T) []T {
			return restoreRows(rows, idOf, removed)
		}))
	}
	return s.reconcile(m, action, cache.PatchOf(func(rows []T) []T {
		out, _ := removeWhere(rows, match)
		return out
	}))
}
