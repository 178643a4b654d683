package cache

import (
	"sort"
	"sync"

	"github.com/boardkit/livecache/pkg/models"
)

// Store is the entity store: an addressable in-memory cache of query results
// keyed by (kind, filter) or (kind, id). It owns every entry; mutations and
// the realtime ingestor read and write through it and follow a copy-on-write
// discipline for list contents, which is what makes mutation snapshots cheap
// (an Entry value captured before a write never changes underneath its
// holder).
//
// The store itself does no I/O and never suspends. All access is guarded by a
// mutex; concurrent merges from the executor and the ingestor goroutines go
// through Modify so no read-modify-write can lose a write that landed in
// between.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Keyed
}

func New() *Store {
	return &Store{entries: make(map[string]Keyed)}
}

// Get returns the entry for a key, if cached.
func (s *Store) Get(k Key) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ke, ok := s.entries[k.String()]
	return ke.Entry, ok
}

// Set replaces the entry for a key. Callers must pass a fresh Entry (new list
// slice, new item) rather than a modified version of a previously read one.
func (s *Store) Set(k Key, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[k.String()] = Keyed{Key: k, Entry: e}
}

// Modify atomically applies fn to the entry for k. fn receives the current
// entry and whether it exists, and returns the replacement; returning false
// leaves the store untouched. Merging write paths (the mutation executor and
// the realtime ingestor run on separate goroutines) must go through Modify
// rather than Get+Set, otherwise a write landing between the read and the
// write-back is silently lost. fn runs under the store lock, so it must not
// block or touch the store, and it must build fresh list slices per the
// copy-on-write rule.
func (s *Store) Modify(k Key, fn func(e Entry, ok bool) (Entry, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ks := k.String()
	ke, ok := s.entries[ks]
	if next, write := fn(ke.Entry, ok); write {
		s.entries[ks] = Keyed{Key: k, Entry: next}
	}
}

// Drop removes an entry outright.
func (s *Store) Drop(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, k.String())
}

// AllOf returns every cached entry of a kind, list and detail alike, in a
// deterministic order. Used to fan an update out to every query that may hold
// the affected record.
func (s *Store) AllOf(kind models.Kind) []Keyed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Keyed
	for _, ke := range s.entries {
		if ke.Key.Kind == kind {
			out = append(out, ke)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}

// Invalidate marks an entry stale so the next read refetches it. Contents are
// kept so the UI has something to show meanwhile. Unknown keys are ignored.
func (s *Store) Invalidate(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ks := k.String()
	ke, ok := s.entries[ks]
	if !ok || ke.Entry.State == Absent {
		return
	}
	ke.Entry.State = Stale
	s.entries[ks] = ke
}

// InvalidateMatching marks stale every list entry of the record's kind whose
// filter the record satisfies. Called at mutation settlement to correct drift
// the optimistic phase could not model (server-assigned ordering and the
// like).
func (s *Store) InvalidateMatching(rec models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ks, ke := range s.entries {
		if ke.Key.Kind != rec.RecordKind() || ke.Key.Detail() {
			continue
		}
		if !Matches(rec, ke.Key.Filter) {
			continue
		}
		if ke.Entry.State == Absent {
			continue
		}
		ke.Entry.State = Stale
		s.entries[ks] = ke
	}
}

// InvalidateKind marks stale every list entry of a kind regardless of filter.
func (s *Store) InvalidateKind(kind models.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ks, ke := range s.entries {
		if ke.Key.Kind != kind || ke.Key.Detail() || ke.Entry.State == Absent {
			continue
		}
		ke.Entry.State = Stale
		s.entries[ks] = ke
	}
}
