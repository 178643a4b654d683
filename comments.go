package livecache

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// TaskComments returns the comment thread for a task: root comments newest
// first, each carrying its replies oldest first.
func (c *Client) TaskComments(ctx context.Context, taskID models.ID) ([]*models.Comment, error) {
	return c.comments(ctx, cache.Filter{"task_id": taskID.String()})
}

// ProjectComments returns the comment thread for a project.
func (c *Client) ProjectComments(ctx context.Context, projectID models.ID) ([]*models.Comment, error) {
	return c.comments(ctx, cache.Filter{"project_id": projectID.String()})
}

func (c *Client) comments(ctx context.Context, filter cache.Filter) ([]*models.Comment, error) {
	rows, err := c.list(ctx, models.KindComment, filter)
	if err != nil {
		return nil, err
	}
	flat, err := recordsAs[*models.Comment](rows)
	if err != nil {
		return nil, err
	}
	return models.Threads(flat), nil
}

// CreateComment posts a comment. Threads are a single level deep: a reply to
// a reply is flattened at creation, re-parented to the thread root with the
// quoted author's name prefixed to the content, so no comment ever nests
// below depth two.
func (c *Client) CreateComment(ctx context.Context, cm *models.Comment) (*models.Comment, error) {
	if !cm.ParentID.IsZero() {
		parent, err := c.findComment(ctx, cm)
		if err != nil {
			return nil, err
		}
		if parent != nil && !parent.ParentID.IsZero() {
			cm = cm.Clone().(*models.Comment)
			cm.ParentID = parent.ParentID
			if name := authorName(parent); name != "" {
				cm.Content = "Replying to " + name + ": " + cm.Content
			}
		}
	}
	return recordAs[*models.Comment](c.exec.Create(ctx, cm))
}

func (c *Client) UpdateComment(ctx context.Context, id models.ID, fields map[string]any) (*models.Comment, error) {
	return recordAs[*models.Comment](c.exec.Update(ctx, models.KindComment, id, fields))
}

func (c *Client) DeleteComment(ctx context.Context, id models.ID) error {
	return c.exec.Delete(ctx, models.KindComment, id)
}

// findComment locates the parent of cm in the cached comment lists, falling
// back to a remote fetch. A missing parent is not an error; the comment is
// then posted with its ParentID as given.
func (c *Client) findComment(ctx context.Context, cm *models.Comment) (*models.Comment, error) {
	for _, ke := range c.store.AllOf(models.KindComment) {
		if ke.Key.Detail() {
			continue
		}
		if idx := cache.IndexOfID(ke.Entry.List, cm.ParentID); idx >= 0 {
			return ke.Entry.List[idx].(*models.Comment), nil
		}
	}
	rec, err := c.remote.SelectOne(ctx, models.KindComment, cm.ParentID)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.(*models.Comment), nil
}

func authorName(cm *models.Comment) string {
	if cm.User == nil {
		return ""
	}
	if cm.User.Name != "" {
		return cm.User.Name
	}
	return cm.User.Email
}
