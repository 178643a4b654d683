package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boardkit/livecache/pkg/models"
)

func TestMatches(t *testing.T) {
	rec := task("tasks:1", "projects:1", models.StatusTodo)

	assert.True(t, Matches(rec, nil), "empty filter matches everything")
	assert.True(t, Matches(rec, Filter{"project_id": "projects:1"}))
	assert.True(t, Matches(rec, Filter{"project_id": "projects:1", "status": "todo"}))
	assert.False(t, Matches(rec, Filter{"project_id": "projects:2"}))
	assert.False(t, Matches(rec, Filter{"status": "complete"}))
	assert.False(t, Matches(rec, Filter{"nonsense": "x"}), "unknown fields never match")
}

func TestNormalizeFilterDropsUnknownFields(t *testing.T) {
	f := NormalizeFilter(models.KindTask, Filter{"project_id": "projects:1", "color": "red"})
	assert.Equal(t, Filter{"project_id": "projects:1"}, f)
}

func TestListKeyCanonicalOrder(t *testing.T) {
	a := ListKey(models.KindTask, Filter{"status": "todo", "project_id": "projects:1"})
	b := ListKey(models.KindTask, Filter{"project_id": "projects:1", "status": "todo"})
	assert.Equal(t, a.String(), b.String())
}

func TestDetailKey(t *testing.T) {
	k := DetailKey(models.KindNote, models.ServerID("notes:1"))
	assert.True(t, k.Detail())
	assert.False(t, ListKey(models.KindNote, nil).Detail())
}
