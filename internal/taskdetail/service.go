// Package taskdetail runs task side panel reads and writes: it loads a
// task's sub-entities through the API client into the cache, applies every
// mutation optimistically, and reconciles or rolls back on the response.
package taskdetail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/thread"
)

// Service coordinates the client and the cache for one user session.
type Service struct {
	backend  Backend
	cache    *cache.Cache
	logger   *zap.Logger
	pageSize int
}

// New creates a service. pageSize bounds activity pages.
func New(backend Backend, c *cache.Cache, logger *zap.Logger, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Service{
		backend:  backend,
		cache:    c,
		logger:   logger,
		pageSize: pageSize,
	}
}

// UserID returns the acting user.
func (s *Service) UserID() string { return s.backend.UserID() }

// Cache returns the underlying cache.
func (s *Service) Cache() *cache.Cache { return s.cache }

// Detail is everything the side panel renders for one task.
type Detail struct {
	Task            model.Task
	Comments        []model.Comment
	Threads         []thread.Thread
	Subtasks        []model.Subtask
	Progress        thread.Progress
	Collaborators   []model.Collaborator
	Tags            []model.TaskTag
	Activity        []model.Activity
	ActivityHasMore bool
	ActivityType    string
}

// activityState is the cached activity feed of a task.
type activityState struct {
	Items   []model.Activity `json:"items"`
	HasMore bool             `json:"has_more"`
	Type    string           `json:"type"`
}

func taskKey(id string) cache.Key          { return cache.Key{Kind: cache.KindTask, ID: id} }
func commentsKey(id string) cache.Key      { return cache.Key{Kind: cache.KindComments, ID: id} }
func subtasksKey(id string) cache.Key      { return cache.Key{Kind: cache.KindSubtasks, ID: id} }
func collaboratorsKey(id string) cache.Key { return cache.Key{Kind: cache.KindCollaborators, ID: id} }
func tagsKey(id string) cache.Key          { return cache.Key{Kind: cache.KindTaskTags, ID: id} }
func activityKey(id string) cache.Key      { return cache.Key{Kind: cache.KindActivity, ID: id} }

// TaskListKey is the cache key of the task list for a list id, or of all
// tasks when listID is empty.
func TaskListKey(listID string) cache.Key {
	return cache.Key{Kind: cache.KindTaskList, ID: listID}
}

// Load fetches a task and every sub-entity the panel shows, replacing
// whatever the cache held for it.
func (s *Service) Load(ctx context.Context, taskID string) (*Detail, error) {
	task, err := s.backend.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}
	comments, err := s.backend.ListComments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading comments: %w", err)
	}
	subtasks, err := s.backend.ListSubtasks(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading subtasks: %w", err)
	}
	collaborators, err := s.backend.ListCollaborators(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading collaborators: %w", err)
	}
	tags, err := s.backend.ListTaskTags(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	page, err := s.backend.ListActivity(ctx, api.ActivityQuery{TaskID: taskID, Limit: s.pageSize})
	if err != nil {
		return nil, fmt.Errorf("loading activity: %w", err)
	}

	s.declareAggregates(*task)

	for key, v := range map[cache.Key]interface{}{
		taskKey(taskID):          task,
		commentsKey(taskID):      comments,
		subtasksKey(taskID):      subtasks,
		collaboratorsKey(taskID): collaborators,
		tagsKey(taskID):          tags,
		activityKey(taskID):      activityState{Items: page.Items, HasMore: page.HasMore},
	} {
		if err := s.cache.Set(key, v); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("Loaded task detail",
		zap.String("task_id", taskID),
		zap.Int("comments", len(comments)),
		zap.Int("subtasks", len(subtasks)))

	return s.Snapshot(taskID)
}

// declareAggregates registers which aggregate views each sub-entity feeds.
func (s *Service) declareAggregates(t model.Task) {
	aggregates := []cache.Key{taskKey(t.ID), TaskListKey(t.ListID), TaskListKey(""), activityKey(t.ID)}
	for _, k := range []cache.Key{commentsKey(t.ID), subtasksKey(t.ID)} {
		s.cache.DependsOn(k, aggregates...)
	}
	for _, k := range []cache.Key{collaboratorsKey(t.ID), tagsKey(t.ID)} {
		s.cache.DependsOn(k, activityKey(t.ID))
	}
	s.cache.DependsOn(taskKey(t.ID), TaskListKey(t.ListID), TaskListKey(""), activityKey(t.ID))
}

// Snapshot assembles the detail for taskID from the cache.
func (s *Service) Snapshot(taskID string) (*Detail, error) {
	d := &Detail{}
	found, err := s.cache.Get(taskKey(taskID), &d.Task)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("task %s is not loaded", taskID)
	}

	if _, err := s.cache.Get(commentsKey(taskID), &d.Comments); err != nil {
		return nil, err
	}
	if _, err := s.cache.Get(subtasksKey(taskID), &d.Subtasks); err != nil {
		return nil, err
	}
	if _, err := s.cache.Get(collaboratorsKey(taskID), &d.Collaborators); err != nil {
		return nil, err
	}
	if _, err := s.cache.Get(tagsKey(taskID), &d.Tags); err != nil {
		return nil, err
	}
	var feed activityState
	if _, err := s.cache.Get(activityKey(taskID), &feed); err != nil {
		return nil, err
	}

	d.Threads = thread.BuildTree(d.Comments)
	d.Progress = thread.SubtaskProgress(d.Subtasks)
	d.Activity = feed.Items
	d.ActivityHasMore = feed.HasMore
	d.ActivityType = feed.Type
	return d, nil
}

// Stale reports whether any aggregate the panel shows for taskID was
// invalidated since it was loaded.
func (s *Service) Stale(taskID string) bool {
	return s.cache.Stale(taskKey(taskID)) || s.cache.Stale(activityKey(taskID))
}

// RefreshAggregates reloads the task row and the first activity page,
// keeping the current activity filter.
func (s *Service) RefreshAggregates(ctx context.Context, taskID string) (*Detail, error) {
	task, err := s.backend.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("refreshing task: %w", err)
	}
	var feed activityState
	if _, err := s.cache.Get(activityKey(taskID), &feed); err != nil {
		return nil, err
	}
	page, err := s.backend.ListActivity(ctx, api.ActivityQuery{TaskID: taskID, Limit: s.pageSize, Type: feed.Type})
	if err != nil {
		return nil, fmt.Errorf("refreshing activity: %w", err)
	}

	if err := s.cache.Set(taskKey(taskID), task); err != nil {
		return nil, err
	}
	if err := s.cache.Set(activityKey(taskID), activityState{
		Items: page.Items, HasMore: page.HasMore, Type: feed.Type,
	}); err != nil {
		return nil, err
	}
	return s.Snapshot(taskID)
}

// fail rolls m back with undo and wraps err with action. A nil undo
// restores whole-value entries.
func (s *Service) fail(m *cache.Mutation, action string, err error, undo cache.Patch) error {
	if rbErr := m.RollbackPatch(undo); rbErr != nil {
		s.logger.Error("Rollback failed", zap.Stringer("key", m.Key()), zap.Error(rbErr))
	}
	s.logger.Warn("Mutation failed", zap.String("action", action), zap.Error(err))
	return fmt.Errorf("%s: %w", action, err)
}

// commit resolves m with the server's view of the entry. A nil value keeps
// the optimistic write.
func (s *Service) commit(m *cache.Mutation, action string, authoritative interface{}) error {
	if err := m.Commit(authoritative); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}

// reconcile resolves m by rewriting the entry as it is now.
func (s *Service) reconcile(m *cache.Mutation, action string, p cache.Patch) error {
	if err := m.CommitPatch(p); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}
