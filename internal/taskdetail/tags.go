package taskdetail

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/model"
)

func workspaceTagsKey(id string) cache.Key {
	return cache.Key{Kind: cache.KindWorkspaceTags, ID: id}
}

// WorkspaceTags returns the tags defined in a workspace, fetching them on
// first use.
func (s *Service) WorkspaceTags(ctx context.Context, workspaceID string) ([]model.Tag, error) {
	var tags []model.Tag
	found, err := s.cache.Get(workspaceTagsKey(workspaceID), &tags)
	if err != nil {
		return nil, err
	}
	if found && !s.cache.Stale(workspaceTagsKey(workspaceID)) {
		return tags, nil
	}

	tags, err = s.backend.ListWorkspaceTags(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("loading workspace tags: %w", err)
	}
	if err := s.cache.Set(workspaceTagsKey(workspaceID), tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag defines a new tag in a workspace.
func (s *Service) CreateTag(ctx context.Context, workspaceID, name, color string) (*model.Tag, error) {
	temp := model.Tag{ID: pendingID(), Name: name, Color: color, WorkspaceID: workspaceID, CreatedAt: time.Now().UTC()}
	return createRow(ctx, s, workspaceTagsKey(workspaceID), "creating tag", tagID, temp,
		func(ctx context.Context) (*model.Tag, error) {
			return s.backend.CreateWorkspaceTag(ctx, api.CreateTagRequest{WorkspaceID: workspaceID, Name: name, Color: color})
		})
}

// AddTag assigns a workspace tag to the task.
func (s *Service) AddTag(ctx context.Context, taskID string, tag model.Tag) (*model.TaskTag, error) {
	temp := model.TaskTag{
		TaskTagID:  pendingID(),
		TaskID:     taskID,
		TagID:      tag.ID,
		AssignedAt: time.Now().UTC(),
		Tag:        tag,
	}
	return createRow(ctx, s, tagsKey(taskID), "adding tag", taskTagID, temp,
		func(ctx context.Context) (*model.TaskTag, error) {
			assigned, err := s.backend.AddTag(ctx, api.AddTagRequest{TaskID: taskID, TagID: tag.ID})
			if err != nil {
				return nil, err
			}
			if assigned.Tag.ID == "" {
				assigned.Tag = tag
			}
			return assigned, nil
		})
}

// RemoveTag unassigns a tag from the task. Removing a tag that is already
// gone fails once and restores the previous tag list.
func (s *Service) RemoveTag(ctx context.Context, taskID, id string) error {
	return removeRows(ctx, s, tagsKey(taskID), "removing tag", taskTagID,
		func(tt model.TaskTag) bool { return tt.TagID == id },
		func(ctx context.Context) error { return s.backend.RemoveTag(ctx, taskID, id) })
}
