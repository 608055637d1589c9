package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/nhle/taskboard/internal/model"
)

// ActivityPage is one page of a task's activity feed, newest first.
type ActivityPage struct {
	Items []model.Activity

	// HasMore is set when the page came back full, so another may follow.
	HasMore bool
}

// ListActivity fetches a page of a task's activity.
func (c *Client) ListActivity(ctx context.Context, q ActivityQuery) (*ActivityPage, error) {
	if err := c.check(q); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", strconv.Itoa(q.Offset))
	if q.Type != "" {
		params.Set("type", q.Type)
	}

	var items []model.Activity
	path := escape("tasks", q.TaskID, "activity") + "?" + params.Encode()
	if err := c.get(ctx, path, &items); err != nil {
		return nil, err
	}
	return &ActivityPage{Items: items, HasMore: len(items) == q.Limit}, nil
}
