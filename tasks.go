package livecache

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
	"github.com/boardkit/livecache/pkg/mutate"
)

// Tasks lists the tasks matching filter; project_id and status are the
// recognized fields.
func (c *Client) Tasks(ctx context.Context, filter cache.Filter) ([]*models.Task, error) {
	rows, err := c.list(ctx, models.KindTask, filter)
	if err != nil {
		return nil, err
	}
	return recordsAs[*models.Task](rows)
}

// Task returns one task, or nil without error when it does not exist.
func (c *Client) Task(ctx context.Context, id models.ID) (*models.Task, error) {
	return recordAs[*models.Task](c.get(ctx, models.KindTask, id))
}

// CreateTask creates t optimistically. The returned task carries the server
// id; t itself is never modified.
func (c *Client) CreateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	return recordAs[*models.Task](c.exec.Create(ctx, t))
}

func (c *Client) UpdateTask(ctx context.Context, id models.ID, fields map[string]any) (*models.Task, error) {
	return recordAs[*models.Task](c.exec.Update(ctx, models.KindTask, id, fields))
}

func (c *Client) DeleteTask(ctx context.Context, id models.ID) error {
	return c.exec.Delete(ctx, models.KindTask, id)
}

// ReorderTasks moves a task within its board column. Failures of superseded
// reorders are suppressed; only the most recent invocation may roll back.
func (c *Client) ReorderTasks(ctx context.Context, r mutate.Reorder) error {
	return c.exec.ReorderTasks(ctx, r)
}

// MoveTask moves a task to another column, updating status and positions.
func (c *Client) MoveTask(ctx context.Context, m mutate.Move) error {
	return c.exec.MoveTask(ctx, m)
}
