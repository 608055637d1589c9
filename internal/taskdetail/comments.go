package taskdetail

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/model"
)

// pendingPrefix marks ids of optimistic rows not yet confirmed.
const pendingPrefix = "pending-"

// IsPending reports whether id belongs to an unconfirmed optimistic row.
func IsPending(id string) bool {
	return len(id) > len(pendingPrefix) && id[:len(pendingPrefix)] == pendingPrefix
}

func pendingID() string { return pendingPrefix + uuid.New().String() }

// AddComment posts a comment, or a reply when parentID is set.
func (s *Service) AddComment(ctx context.Context, taskID, content string, parentID *string) (*model.Comment, error) {
	temp := model.Comment{
		ID:        pendingID(),
		TaskID:    taskID,
		Author:    s.UserID(),
		ParentID:  parentID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	return createRow(ctx, s, commentsKey(taskID), "adding comment", commentID, temp,
		func(ctx context.Context) (*model.Comment, error) {
			return s.backend.CreateComment(ctx, api.CreateCommentRequest{
				TaskID:   taskID,
				Content:  content,
				ParentID: parentID,
			})
		})
}

// EditComment replaces the content of a comment.
func (s *Service) EditComment(ctx context.Context, taskID, id, content string) (*model.Comment, error) {
	now := time.Now().UTC()
	return updateRow(ctx, s, commentsKey(taskID), "editing comment", commentID, id,
		func(c model.Comment) model.Comment {
			c.Content = content
			c.EditedAt = &now
			return c
		},
		func(ctx context.Context, _ model.Comment) (*model.Comment, error) {
			return s.backend.UpdateComment(ctx, api.UpdateCommentRequest{CommentID: id, Content: content})
		})
}

// DeleteComment deletes a comment. A comment with replies stays in the
// thread as a deleted marker; one without replies disappears.
func (s *Service) DeleteComment(ctx context.Context, taskID, id string) error {
	const action = "deleting comment"
	var removed []removedRow[model.Comment]
	m, err := s.cache.BeginPatch(commentsKey(taskID), cache.PatchOf(func(cs []model.Comment) []model.Comment {
		out, gone := removeWhere(cs, func(c model.Comment) bool { return c.ID == id })
		removed = gone
		if len(gone) == 0 || !hasReplies(cs, id) {
			return out
		}
		return mapByID(cs, commentID, id, func(c model.Comment) *model.Comment {
			c.IsDeleted = true
			c.Content = ""
			return &c
		})
	}))
	if err != nil {
		return err
	}

	kept, err := s.backend.DeleteComment(ctx, id)
	if err != nil {
		return s.fail(m, action, err, cache.PatchOf(func(cs []model.Comment) []model.Comment {
			return restoreRows(cs, commentID, removed)
		}))
	}
	return s.reconcile(m, action, cache.PatchOf(func(cs []model.Comment) []model.Comment {
		return mapByID(cs, commentID, id, func(model.Comment) *model.Comment { return kept })
	}))
}

func hasReplies(comments []model.Comment, id string) bool {
	for _, c := range comments {
		if c.ParentID != nil && *c.ParentID == id {
			return true
		}
	}
	return false
}
