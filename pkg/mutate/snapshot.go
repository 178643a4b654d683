package mutate

import "github.com/boardkit/livecache/pkg/cache"

// snapshot captures the prior contents of every entry a mutation is about to
// touch. Entry values are immutable under the store's copy-on-write rule, so
// holding them is enough; restore writes back exactly the pre-mutation state.
// A snapshot belongs to a single in-flight mutation and is dropped at
// settlement.
type snapshot struct {
	entries []cache.Keyed
}

func (s *snapshot) add(ke cache.Keyed) {
	s.entries = append(s.entries, ke)
}

func (s *snapshot) restore(store *cache.Store) {
	for _, ke := range s.entries {
		store.Set(ke.Key, ke.Entry)
	}
}
