package livecache

import (
	"context"
	"fmt"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// Todos lists the todo items for a project.
func (c *Client) Todos(ctx context.Context, filter cache.Filter) ([]*models.TodoItem, error) {
	rows, err := c.list(ctx, models.KindTodo, filter)
	if err != nil {
		return nil, err
	}
	return recordsAs[*models.TodoItem](rows)
}

func (c *Client) CreateTodo(ctx context.Context, t *models.TodoItem) (*models.TodoItem, error) {
	return recordAs[*models.TodoItem](c.exec.Create(ctx, t))
}

func (c *Client) UpdateTodo(ctx context.Context, id models.ID, fields map[string]any) (*models.TodoItem, error) {
	return recordAs[*models.TodoItem](c.exec.Update(ctx, models.KindTodo, id, fields))
}

// ToggleTodo flips the completed flag of a todo item. The current state is
// read from the cache when possible, falling back to a remote fetch.
func (c *Client) ToggleTodo(ctx context.Context, id models.ID) (*models.TodoItem, error) {
	current, err := c.findTodo(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return c.UpdateTodo(ctx, id, map[string]any{"completed": !current.Completed})
}

func (c *Client) DeleteTodo(ctx context.Context, id models.ID) error {
	return c.exec.Delete(ctx, models.KindTodo, id)
}

// ClearCompletedTodos deletes every completed todo item, optimistically
// removing them from all cached lists first.
func (c *Client) ClearCompletedTodos(ctx context.Context) error {
	return c.exec.ClearCompletedTodos(ctx)
}

func (c *Client) findTodo(ctx context.Context, id models.ID) (*models.TodoItem, error) {
	for _, ke := range c.store.AllOf(models.KindTodo) {
		if ke.Key.Detail() {
			continue
		}
		if idx := cache.IndexOfID(ke.Entry.List, id); idx >= 0 {
			return ke.Entry.List[idx].(*models.TodoItem), nil
		}
	}
	return recordAs[*models.TodoItem](c.get(ctx, models.KindTodo, id))
}
