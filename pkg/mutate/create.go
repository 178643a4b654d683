package mutate

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// Create runs the optimistic create protocol: an optimistic placeholder with
// a temporary id is inserted into every cached list it belongs in, the remote
// create is issued, and on success the placeholder is replaced by the server
// record (de-duplicated by id against a possible realtime echo). On failure
// every touched entry is restored from the snapshot. Either way, matching
// list entries are marked stale at settlement to correct drift the optimistic
// phase could not model, such as server-assigned positions.
func (e *Executor) Create(ctx context.Context, rec models.Record) (models.Record, error) {
	user, err := e.session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	kind := rec.RecordKind()
	pol := models.PolicyFor(kind)
	now := e.now()

	ph := rec.Stamped(models.NewTempID(), user, now)
	if pol.Positioned {
		ph = ph.Merge(map[string]any{"position": e.nextPosition(kind, ph)}, now)
	}

	var snap snapshot
	for _, ke := range e.store.AllOf(kind) {
		if ke.Key.Detail() || !cache.Matches(ph, ke.Key.Filter) {
			continue
		}
		e.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
			if !ok {
				return entry, false
			}
			snap.add(cache.Keyed{Key: ke.Key, Entry: entry})
			entry.List = cache.Insert(entry.List, ph, pol.Order)
			return entry, true
		})
	}

	created, err := e.remote.Insert(ctx, kind, ph)
	if err != nil {
		snap.restore(e.store)
		e.store.InvalidateMatching(ph)
		e.log.Warn("create rolled back", "kind", string(kind), "error", err)
		e.notify.Failure("failed to create "+label(kind), err)
		return nil, err
	}

	for _, ke := range e.store.AllOf(kind) {
		if ke.Key.Detail() {
			if ke.Key.ID == created.RecordID() {
				e.store.Set(ke.Key, cache.Entry{Item: created, State: cache.Fresh})
			}
			continue
		}
		e.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
			if !ok {
				return entry, false
			}
			if cache.IndexOfID(entry.List, ph.RecordID()) < 0 &&
				cache.IndexOfID(entry.List, created.RecordID()) < 0 {
				return entry, false
			}
			entry.List = cache.DedupByID(cache.ReplaceID(entry.List, ph.RecordID(), created))
			return entry, true
		})
	}

	e.store.InvalidateMatching(created)
	return created, nil
}

// nextPosition approximates the server's position assignment for a new
// record: one past the longest cached list the record belongs in. The
// settlement invalidation corrects any mismatch.
func (e *Executor) nextPosition(kind models.Kind, rec models.Record) int {
	longest := 0
	for _, ke := range e.store.AllOf(kind) {
		if ke.Key.Detail() || !cache.Matches(rec, ke.Key.Filter) {
			continue
		}
		if len(ke.Entry.List) > longest {
			longest = len(ke.Entry.List)
		}
	}
	return longest + 1
}
