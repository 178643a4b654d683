package livecache

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// Projects lists projects, optionally filtered by user_id.
func (c *Client) Projects(ctx context.Context, filter cache.Filter) ([]*models.Project, error) {
	rows, err := c.list(ctx, models.KindProject, filter)
	if err != nil {
		return nil, err
	}
	return recordsAs[*models.Project](rows)
}

// Project returns one project, or nil without error when it does not exist.
func (c *Client) Project(ctx context.Context, id models.ID) (*models.Project, error) {
	return recordAs[*models.Project](c.get(ctx, models.KindProject, id))
}

func (c *Client) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	return recordAs[*models.Project](c.exec.Create(ctx, p))
}

func (c *Client) UpdateProject(ctx context.Context, id models.ID, fields map[string]any) (*models.Project, error) {
	return recordAs[*models.Project](c.exec.Update(ctx, models.KindProject, id, fields))
}

func (c *Client) DeleteProject(ctx context.Context, id models.ID) error {
	return c.exec.Delete(ctx, models.KindProject, id)
}
