package taskdetail

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/api"
)

// LoadMoreActivity appends the next page of the task's activity feed.
func (s *Service) LoadMoreActivity(ctx context.Context, taskID string) (*Detail, error) {
	var feed activityState
	if _, err := s.cache.Get(activityKey(taskID), &feed); err != nil {
		return nil, err
	}
	if !feed.HasMore {
		return s.Snapshot(taskID)
	}

	page, err := s.backend.ListActivity(ctx, api.ActivityQuery{
		TaskID: taskID,
		Limit:  s.pageSize,
		Offset: len(feed.Items),
		Type:   feed.Type,
	})
	if err != nil {
		return nil, fmt.Errorf("loading more activity: %w", err)
	}

	feed.Items = append(feed.Items, page.Items...)
	feed.HasMore = page.HasMore
	if err := s.cache.Set(activityKey(taskID), feed); err != nil {
		return nil, err
	}
	return s.Snapshot(taskID)
}

// FilterActivity reloads the first page of the feed restricted to one
// activity type. An empty type shows every activity.
func (s *Service) FilterActivity(ctx context.Context, taskID, activityType string) (*Detail, error) {
	page, err := s.backend.ListActivity(ctx, api.ActivityQuery{
		TaskID: taskID,
		Limit:  s.pageSize,
		Type:   activityType,
	})
	if err != nil {
		return nil, fmt.Errorf("filtering activity: %w", err)
	}

	feed := activityState{Items: page.Items, HasMore: page.HasMore, Type: activityType}
	if err := s.cache.Set(activityKey(taskID), feed); err != nil {
		return nil, err
	}
	return s.Snapshot(taskID)
}
