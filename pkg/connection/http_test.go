package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/livecache/pkg/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRESTClient(Config{
		BaseURL:         srv.URL,
		Token:           "secret",
		Namespace:       "test",
		Timeout:         10 * time.Second,
		RetryMaxElapsed: 5 * time.Second,
	})
}

func TestSelectDecodesRows(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/key/tasks", r.URL.Path)
		assert.Equal(t, "projects:1", r.URL.Query().Get("project_id"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "test", r.Header.Get("NS"))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "tasks:1", "title": "one", "status": "todo", "project_id": "projects:1"},
			{"id": "tasks:2", "title": "two", "status": "todo", "project_id": "projects:1"},
		})
	})

	rows, err := client.Select(context.Background(), models.KindTask, map[string]string{"project_id": "projects:1"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "one", rows[0].(*models.Task).Title)
}

func TestSelectOneMissingIsNilNil(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	rec, err := client.SelectOne(context.Background(), models.KindTask, models.ServerID("tasks:404"))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestInsertPostsRecord(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/key/notes", r.URL.Path)
		var row map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		row["id"] = "notes:1"
		_ = json.NewEncoder(w).Encode(row)
	})

	created, err := client.Insert(context.Background(), models.KindNote, &models.Note{Title: "hello"})
	require.NoError(t, err)
	assert.Equal(t, models.ServerID("notes:1"), created.RecordID())
	assert.Equal(t, "hello", created.(*models.Note).Title)
}

func TestRetryOnServerError(t *testing.T) {
	calls := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"id":"tasks:1","title":"ok"}`))
	})

	rec, err := client.SelectOne(context.Background(), models.KindTask, models.ServerID("tasks:1"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "5xx responses are retried")
	assert.Equal(t, "ok", rec.(*models.Task).Title)
}

func TestNoRetryOnClientError(t *testing.T) {
	calls := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad field", http.StatusUnprocessableEntity)
	})

	_, err := client.Update(context.Background(), models.KindTask, models.ServerID("tasks:1"), map[string]any{"bogus": 1})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx responses are not retried")
}
