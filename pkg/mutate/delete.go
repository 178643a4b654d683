package mutate

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// Delete removes a record from every cached list and flips its detail entry
// to Absent before issuing the remote delete, so readers can tell deleted
// from not yet fetched. On failure the snapshot is restored; on success the
// speculative removal is final and nothing else happens.
func (e *Executor) Delete(ctx context.Context, kind models.Kind, id models.ID) error {
	if _, err := e.session.UserID(ctx); err != nil {
		return err
	}

	var snap snapshot
	for _, ke := range e.store.AllOf(kind) {
		if ke.Key.Detail() {
			if ke.Key.ID != id {
				continue
			}
			e.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
				if !ok {
					return entry, false
				}
				snap.add(cache.Keyed{Key: ke.Key, Entry: entry})
				return cache.Entry{State: cache.Absent}, true
			})
			continue
		}
		e.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
			if !ok || cache.IndexOfID(entry.List, id) < 0 {
				return entry, false
			}
			snap.add(cache.Keyed{Key: ke.Key, Entry: entry})
			entry.List = cache.RemoveID(entry.List, id)
			return entry, true
		})
	}

	if err := e.remote.Delete(ctx, kind, id); err != nil {
		snap.restore(e.store)
		e.notify.Failure("failed to delete "+label(kind), err)
		return err
	}
	return nil
}
