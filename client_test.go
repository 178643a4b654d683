package livecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/livecache/internal/fakes"
	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/connection"
	"github.com/boardkit/livecache/pkg/models"
)

func newTestClient(t *testing.T) (*Client, *fakes.Remote, *fakes.Feed) {
	t.Helper()
	remote := &fakes.Remote{}
	feed := fakes.NewFeed()
	client, err := FromServices(remote, feed, connection.StaticSession{User: models.ServerID("users:1")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return client, remote, feed
}

func TestListCachesUntilStale(t *testing.T) {
	client, remote, _ := newTestClient(t)
	ctx := context.Background()

	selects := 0
	remote.SelectFn = func(context.Context, models.Kind, map[string]string) ([]models.Record, error) {
		selects++
		return []models.Record{&models.Task{
			ID:        models.ServerID("tasks:1"),
			Title:     "one",
			Status:    models.StatusTodo,
			ProjectID: models.ServerID("projects:1"),
		}}, nil
	}

	filter := cache.Filter{"project_id": "projects:1"}
	first, err := client.Tasks(ctx, filter)
	require.NoError(t, err)
	second, err := client.Tasks(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, selects, "fresh entries are served from the cache")
	assert.Equal(t, first, second)

	client.Store().Invalidate(cache.ListKey(models.KindTask, filter))
	_, err = client.Tasks(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, selects, "stale entries are refetched")
}

func TestDetailAbsentMeansDeleted(t *testing.T) {
	client, remote, _ := newTestClient(t)
	ctx := context.Background()
	id := models.ServerID("tasks:1")

	remote.Seed(&models.Task{ID: id, Title: "here", ProjectID: models.ServerID("projects:1")})
	got, err := client.Task(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, client.DeleteTask(ctx, id))

	// A deleted record reads as nil without error and without a refetch.
	remote.SelectOneFn = func(context.Context, models.Kind, models.ID) (models.Record, error) {
		t.Fatal("absent entries must not trigger a fetch")
		return nil, nil
	}
	got, err = client.Task(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRealtimeFeedReachesCache(t *testing.T) {
	client, _, feed := newTestClient(t)
	key := cache.ListKey(models.KindNote, cache.Filter{"project_id": "projects:1"})
	client.Store().Set(key, cache.Entry{List: []models.Record{}, State: cache.Fresh})

	feed.Emit(connection.Notification{
		Kind:   models.KindNote,
		Action: connection.ActionInsert,
		New: map[string]any{
			"id":         "notes:1",
			"title":      "from another client",
			"project_id": "projects:1",
		},
	})

	require.Eventually(t, func() bool {
		entry, _ := client.Store().Get(key)
		return len(entry.List) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCreateCommentFlattensNestedReply(t *testing.T) {
	client, remote, _ := newTestClient(t)
	ctx := context.Background()

	root := &models.Comment{
		ID:      models.ServerID("comments:root"),
		Content: "root",
		TaskID:  models.ServerID("tasks:1"),
	}
	reply := &models.Comment{
		ID:       models.ServerID("comments:reply"),
		Content:  "reply",
		TaskID:   models.ServerID("tasks:1"),
		ParentID: root.ID,
		User:     &models.User{ID: models.ServerID("users:2"), Name: "Sam Doe"},
	}
	remote.Seed(root, reply)

	created, err := client.CreateComment(ctx, &models.Comment{
		Content:  "nested",
		TaskID:   models.ServerID("tasks:1"),
		ParentID: reply.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, root.ID, created.ParentID, "replies to replies re-parent onto the thread root")
	assert.Equal(t, "Replying to Sam Doe: nested", created.Content)
}

func TestCreateCommentDirectReplyUnchanged(t *testing.T) {
	client, remote, _ := newTestClient(t)
	ctx := context.Background()

	root := &models.Comment{ID: models.ServerID("comments:root"), Content: "root", TaskID: models.ServerID("tasks:1")}
	remote.Seed(root)

	created, err := client.CreateComment(ctx, &models.Comment{
		Content:  "direct",
		TaskID:   models.ServerID("tasks:1"),
		ParentID: root.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, root.ID, created.ParentID)
	assert.Equal(t, "direct", created.Content)
}

func TestToggleTodo(t *testing.T) {
	client, remote, _ := newTestClient(t)
	ctx := context.Background()
	id := models.ServerID("todos:1")
	remote.Seed(&models.TodoItem{ID: id, Text: "buy milk", Completed: false})

	toggled, err := client.ToggleTodo(ctx, id)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = client.ToggleTodo(ctx, id)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
}

func TestToggleTodoMissing(t *testing.T) {
	client, _, _ := newTestClient(t)
	_, err := client.ToggleTodo(context.Background(), models.ServerID("todos:gone"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTaskCommentsAreThreaded(t *testing.T) {
	client, remote, _ := newTestClient(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	taskID := models.ServerID("tasks:1")

	remote.Seed(
		&models.Comment{ID: models.ServerID("comments:a"), Content: "a", TaskID: taskID, CreatedAt: base},
		&models.Comment{ID: models.ServerID("comments:b"), Content: "b", TaskID: taskID, CreatedAt: base.Add(time.Hour)},
		&models.Comment{ID: models.ServerID("comments:r"), Content: "r", TaskID: taskID,
			ParentID: models.ServerID("comments:a"), CreatedAt: base.Add(2 * time.Hour)},
	)

	roots, err := client.TaskComments(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "b", roots[0].Content)
	assert.Equal(t, "a", roots[1].Content)
	require.Len(t, roots[1].Replies, 1)
	assert.Equal(t, "r", roots[1].Replies[0].Content)
}

func TestCloseStopsIngestor(t *testing.T) {
	remote := &fakes.Remote{}
	feed := fakes.NewFeed()
	client, err := FromServices(remote, feed, connection.StaticSession{User: models.ServerID("users:1")})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, client.Close(ctx))
}
