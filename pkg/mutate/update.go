package mutate

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// Update patches a record optimistically in every cached entry holding it,
// then reconciles those entries with the authoritative server response, which
// wins over the local patch (server-computed fields included). Settlement
// re-evaluates list membership: a patch that changes a filter field moves the
// record out of lists it no longer satisfies and into ones it now does, the
// same correction the realtime ingestor applies. A successful update does not
// trigger a refetch: field edits are high-frequency and the response is
// sufficient truth. A failed update restores the snapshot and marks the
// touched entries stale so the cache reconverges even if the local patch
// modeled the change imperfectly.
func (e *Executor) Update(ctx context.Context, kind models.Kind, id models.ID, fields map[string]any) (models.Record, error) {
	if _, err := e.session.UserID(ctx); err != nil {
		return nil, err
	}
	now := e.now()

	var snap snapshot
	for _, ke := range e.store.AllOf(kind) {
		if ke.Key.Detail() {
			if ke.Key.ID != id {
				continue
			}
			e.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
				if !ok || entry.Item == nil {
					return entry, false
				}
				snap.add(cache.Keyed{Key: ke.Key, Entry: entry})
				entry.Item = entry.Item.Merge(fields, now)
				return entry, true
			})
			continue
		}
		e.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
			idx := cache.IndexOfID(entry.List, id)
			if !ok || idx < 0 {
				return entry, false
			}
			snap.add(cache.Keyed{Key: ke.Key, Entry: entry})
			list := make([]models.Record, len(entry.List))
			copy(list, entry.List)
			list[idx] = list[idx].Merge(fields, now)
			entry.List = list
			return entry, true
		})
	}

	updated, err := e.remote.Update(ctx, kind, id, fields)
	if err != nil {
		snap.restore(e.store)
		e.invalidateContaining(kind, id)
		e.notify.Failure("failed to update "+label(kind), err)
		return nil, err
	}

	pol := models.PolicyFor(kind)
	for _, ke := range e.store.AllOf(kind) {
		if ke.Key.Detail() {
			if ke.Key.ID != updated.RecordID() {
				continue
			}
			e.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
				if !ok || entry.Item == nil {
					return entry, false
				}
				entry.Item = updated
				return entry, true
			})
			continue
		}
		e.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
			if !ok {
				return entry, false
			}
			idx := cache.IndexOfID(entry.List, id)
			belongs := cache.Matches(updated, ke.Key.Filter)
			switch {
			case idx >= 0 && !belongs:
				entry.List = cache.RemoveID(entry.List, id)
			case idx < 0 && belongs:
				entry.List = cache.Insert(entry.List, updated, pol.Order)
			case idx >= 0:
				entry.List = cache.ReplaceID(entry.List, id, updated)
			default:
				return entry, false
			}
			return entry, true
		})
	}
	return updated, nil
}

func (e *Executor) invalidateContaining(kind models.Kind, id models.ID) {
	for _, ke := range e.store.AllOf(kind) {
		if ke.Key.Detail() {
			if ke.Key.ID == id {
				e.store.Invalidate(ke.Key)
			}
			continue
		}
		if cache.IndexOfID(ke.Entry.List, id) >= 0 {
			e.store.Invalidate(ke.Key)
		}
	}
}
