package mutate

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// ClearCompletedTodos removes every completed todo item from the cached todo
// lists, then deletes them remotely one at a time, aborting on the first
// failure. The whole kind is invalidated at settlement either way: the batch
// may have partially succeeded, so a refetch is the only safe reconciliation.
func (e *Executor) ClearCompletedTodos(ctx context.Context) error {
	if _, err := e.session.UserID(ctx); err != nil {
		return err
	}

	var snap snapshot
	doomed := make([]models.ID, 0)
	seen := make(map[string]bool)
	for _, ke := range e.store.AllOf(models.KindTodo) {
		if ke.Key.Detail() {
			continue
		}
		e.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
			if !ok {
				return entry, false
			}
			kept := make([]models.Record, 0, len(entry.List))
			for _, rec := range entry.List {
				todo, isTodo := rec.(*models.TodoItem)
				if isTodo && todo.Completed {
					if !seen[todo.RecordID().String()] {
						seen[todo.RecordID().String()] = true
						doomed = append(doomed, todo.RecordID())
					}
					continue
				}
				kept = append(kept, rec)
			}
			if len(kept) == len(entry.List) {
				return entry, false
			}
			snap.add(cache.Keyed{Key: ke.Key, Entry: entry})
			entry.List = kept
			return entry, true
		})
	}

	var failed error
	for _, id := range doomed {
		if err := e.remote.Delete(ctx, models.KindTodo, id); err != nil {
			failed = err
			break
		}
	}

	if failed != nil {
		snap.restore(e.store)
		e.notify.Failure("failed to clear completed todos", failed)
	}
	e.store.InvalidateKind(models.KindTodo)
	return failed
}
