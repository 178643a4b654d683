package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/livecache/pkg/models"
)

func task(id, project string, status models.TaskStatus) *models.Task {
	return &models.Task{
		ID:        models.ServerID(id),
		Title:     id,
		Status:    status,
		ProjectID: models.ServerID(project),
	}
}

func TestStoreSetGet(t *testing.T) {
	s := New()
	key := ListKey(models.KindTask, Filter{"project_id": "projects:1"})

	_, ok := s.Get(key)
	assert.False(t, ok)

	s.Set(key, Entry{List: []models.Record{task("tasks:1", "projects:1", models.StatusTodo)}, State: Fresh})
	entry, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, Fresh, entry.State)
	require.Len(t, entry.List, 1)
}

func TestStoreSnapshotIsolation(t *testing.T) {
	s := New()
	key := ListKey(models.KindTask, nil)
	s.Set(key, Entry{List: []models.Record{task("tasks:1", "projects:1", models.StatusTodo)}, State: Fresh})

	before, _ := s.Get(key)

	// A later Set must not alter a previously read Entry.
	s.Set(key, Entry{List: []models.Record{}, State: Fresh})
	assert.Len(t, before.List, 1)
}

func TestAllOfFiltersByKindAndSorts(t *testing.T) {
	s := New()
	s.Set(ListKey(models.KindTask, Filter{"project_id": "projects:2"}), Entry{State: Fresh})
	s.Set(ListKey(models.KindTask, Filter{"project_id": "projects:1"}), Entry{State: Fresh})
	s.Set(ListKey(models.KindNote, nil), Entry{State: Fresh})
	s.Set(DetailKey(models.KindTask, models.ServerID("tasks:9")), Entry{State: Fresh})

	got := s.AllOf(models.KindTask)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Key.String(), got[i].Key.String())
	}
}

func TestModify(t *testing.T) {
	s := New()
	key := ListKey(models.KindTask, nil)

	// Declining the write on a missing entry leaves the store empty.
	s.Modify(key, func(e Entry, ok bool) (Entry, bool) {
		assert.False(t, ok)
		return e, false
	})
	_, ok := s.Get(key)
	assert.False(t, ok)

	// Accepting the write creates the entry.
	s.Modify(key, func(e Entry, ok bool) (Entry, bool) {
		return Entry{List: []models.Record{}, State: Fresh}, true
	})
	entry, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, Fresh, entry.State)
}

func TestModifyConcurrentMergesLoseNothing(t *testing.T) {
	s := New()
	key := ListKey(models.KindTask, nil)
	s.Set(key, Entry{List: []models.Record{}, State: Fresh})

	const writers = 64
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Modify(key, func(e Entry, ok bool) (Entry, bool) {
				list := make([]models.Record, len(e.List), len(e.List)+1)
				copy(list, e.List)
				e.List = append(list, task(fmt.Sprintf("tasks:%d", i), "projects:1", models.StatusTodo))
				return e, true
			})
		}(i)
	}
	wg.Wait()

	entry, _ := s.Get(key)
	assert.Len(t, entry.List, writers, "every concurrent merge must survive")
}

func TestInvalidateSkipsAbsent(t *testing.T) {
	s := New()
	key := DetailKey(models.KindTask, models.ServerID("tasks:1"))
	s.Set(key, Entry{State: Absent})

	s.Invalidate(key)
	entry, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, Absent, entry.State)
}

func TestInvalidateKeepsContents(t *testing.T) {
	s := New()
	key := ListKey(models.KindTask, nil)
	s.Set(key, Entry{List: []models.Record{task("tasks:1", "projects:1", models.StatusTodo)}, State: Fresh})

	s.Invalidate(key)
	entry, _ := s.Get(key)
	assert.Equal(t, Stale, entry.State)
	assert.Len(t, entry.List, 1)
}

func TestInvalidateMatching(t *testing.T) {
	s := New()
	inP1 := ListKey(models.KindTask, Filter{"project_id": "projects:1"})
	inP2 := ListKey(models.KindTask, Filter{"project_id": "projects:2"})
	detail := DetailKey(models.KindTask, models.ServerID("tasks:1"))
	s.Set(inP1, Entry{State: Fresh})
	s.Set(inP2, Entry{State: Fresh})
	s.Set(detail, Entry{Item: task("tasks:1", "projects:1", models.StatusTodo), State: Fresh})

	s.InvalidateMatching(task("tasks:1", "projects:1", models.StatusTodo))

	e1, _ := s.Get(inP1)
	e2, _ := s.Get(inP2)
	ed, _ := s.Get(detail)
	assert.Equal(t, Stale, e1.State)
	assert.Equal(t, Fresh, e2.State, "non-matching list must stay fresh")
	assert.Equal(t, Fresh, ed.State, "detail entries are not touched")
}

func TestInvalidateKind(t *testing.T) {
	s := New()
	s.Set(ListKey(models.KindTodo, nil), Entry{State: Fresh})
	s.Set(ListKey(models.KindTodo, Filter{"project_id": "projects:1"}), Entry{State: Fresh})
	s.Set(ListKey(models.KindTask, nil), Entry{State: Fresh})

	s.InvalidateKind(models.KindTodo)

	for _, ke := range s.AllOf(models.KindTodo) {
		assert.Equal(t, Stale, ke.Entry.State)
	}
	taskEntry, _ := s.Get(ListKey(models.KindTask, nil))
	assert.Equal(t, Fresh, taskEntry.State)
}
