package testutil

import (
	"context"
	"testing"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// TestUser is the acting user seeded by the helpers.
const TestUser = "alice"

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Fixture is a workspace with one list and one task owned by TestUser.
type Fixture struct {
	Workspace model.Workspace
	List      model.List
	Task      model.Task
}

// SeedTask creates a workspace, a list and a task in s.
func SeedTask(t *testing.T, s store.Store, title string) Fixture {
	t.Helper()
	ctx := context.Background()

	ws, err := s.CreateWorkspace(ctx, model.Workspace{Name: "Acme", OwnerID: TestUser})
	if err != nil {
		t.Fatalf("seeding workspace: %v", err)
	}
	list, err := s.CreateList(ctx, model.List{WorkspaceID: ws.ID, Name: "Backlog"})
	if err != nil {
		t.Fatalf("seeding list: %v", err)
	}
	task, err := s.CreateTask(ctx, TestUser, model.Task{Title: title, ListID: list.ID})
	if err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	return Fixture{Workspace: *ws, List: *list, Task: *task}
}
