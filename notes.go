package livecache

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// Notes lists notes matching filter; project_id and is_archived are the
// recognized fields.
func (c *Client) Notes(ctx context.Context, filter cache.Filter) ([]*models.Note, error) {
	rows, err := c.list(ctx, models.KindNote, filter)
	if err != nil {
		return nil, err
	}
	return recordsAs[*models.Note](rows)
}

// Note returns one note, or nil without error when it does not exist.
func (c *Client) Note(ctx context.Context, id models.ID) (*models.Note, error) {
	return recordAs[*models.Note](c.get(ctx, models.KindNote, id))
}

func (c *Client) CreateNote(ctx context.Context, n *models.Note) (*models.Note, error) {
	return recordAs[*models.Note](c.exec.Create(ctx, n))
}

func (c *Client) UpdateNote(ctx context.Context, id models.ID, fields map[string]any) (*models.Note, error) {
	return recordAs[*models.Note](c.exec.Update(ctx, models.KindNote, id, fields))
}

// ArchiveNote flips the archived flag, which also moves the note between the
// archived and unarchived list views once the change settles.
func (c *Client) ArchiveNote(ctx context.Context, id models.ID, archived bool) (*models.Note, error) {
	return c.UpdateNote(ctx, id, map[string]any{"is_archived": archived})
}

func (c *Client) DeleteNote(ctx context.Context, id models.ID) error {
	return c.exec.Delete(ctx, models.KindNote, id)
}
