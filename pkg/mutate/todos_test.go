package mutate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

func todo(id string, completed bool) *models.TodoItem {
	return &models.TodoItem{
		ID:        models.ServerID(id),
		Text:      id,
		Completed: completed,
		ProjectID: models.ServerID("projects:1"),
	}
}

func TestClearCompletedTodos(t *testing.T) {
	exec, store, remote, _ := newTestExecutor(t)
	key := cache.ListKey(models.KindTodo, cache.Filter{"project_id": "projects:1"})
	store.Set(key, cache.Entry{
		List:  []models.Record{todo("todos:1", true), todo("todos:2", false), todo("todos:3", true)},
		State: cache.Fresh,
	})

	require.NoError(t, exec.ClearCompletedTodos(context.Background()))

	entry, _ := store.Get(key)
	require.Len(t, entry.List, 1)
	assert.Equal(t, "todos:2", entry.List[0].(*models.TodoItem).Text)
	assert.Equal(t, cache.Stale, entry.State, "batch deletes settle with a refetch")

	ids := map[string]bool{}
	for _, id := range remote.Deletes {
		ids[id.String()] = true
	}
	assert.Equal(t, map[string]bool{"todos:1": true, "todos:3": true}, ids)
}

func TestClearCompletedTodosRollback(t *testing.T) {
	exec, store, remote, notify := newTestExecutor(t)
	key := cache.ListKey(models.KindTodo, cache.Filter{"project_id": "projects:1"})
	store.Set(key, cache.Entry{
		List:  []models.Record{todo("todos:1", true), todo("todos:2", true)},
		State: cache.Fresh,
	})

	calls := 0
	remote.DeleteFn = func(context.Context, models.Kind, models.ID) error {
		calls++
		if calls == 2 {
			return errRemote
		}
		return nil
	}

	err := exec.ClearCompletedTodos(context.Background())
	require.ErrorIs(t, err, errRemote)

	// The batch partially succeeded; the cache shows the pre-clear contents
	// but stale, so the next read reconciles with what actually survived.
	entry, _ := store.Get(key)
	assert.Len(t, entry.List, 2)
	assert.Equal(t, cache.Stale, entry.State)
	require.Len(t, notify.failures, 1)
}

func TestClearCompletedTodosNothingToDo(t *testing.T) {
	exec, store, remote, _ := newTestExecutor(t)
	key := cache.ListKey(models.KindTodo, cache.Filter{"project_id": "projects:1"})
	store.Set(key, cache.Entry{List: []models.Record{todo("todos:1", false)}, State: cache.Fresh})

	require.NoError(t, exec.ClearCompletedTodos(context.Background()))
	assert.Empty(t, remote.Deletes)
}
