package livecache

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// Members lists the members of a project.
func (c *Client) Members(ctx context.Context, projectID models.ID) ([]*models.ProjectMember, error) {
	rows, err := c.list(ctx, models.KindMember, cache.Filter{"project_id": projectID.String()})
	if err != nil {
		return nil, err
	}
	return recordsAs[*models.ProjectMember](rows)
}

func (c *Client) AddMember(ctx context.Context, m *models.ProjectMember) (*models.ProjectMember, error) {
	return recordAs[*models.ProjectMember](c.exec.Create(ctx, m))
}

func (c *Client) UpdateMemberRole(ctx context.Context, id models.ID, role models.MemberRole) (*models.ProjectMember, error) {
	return recordAs[*models.ProjectMember](c.exec.Update(ctx, models.KindMember, id, map[string]any{"role": string(role)}))
}

func (c *Client) RemoveMember(ctx context.Context, id models.ID) error {
	return c.exec.Delete(ctx, models.KindMember, id)
}
