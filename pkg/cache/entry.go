package cache

import "github.com/boardkit/livecache/pkg/models"

// State describes how much an entry's contents can be trusted.
type State int

const (
	// Fresh entries reflect the last successful reconciliation.
	Fresh State = iota
	// Stale entries are marked for refetch; their contents remain readable
	// until the refetch lands.
	Stale
	// Absent records a confirmed deletion or not-found, which the UI must be
	// able to tell apart from never-fetched.
	Absent
)

// Entry is one cached query result: either an ordered record list or a single
// record. Entries are replaced wholesale, never mutated in place, so any
// previously returned Entry value remains a valid snapshot.
type Entry struct {
	List  []models.Record
	Item  models.Record
	State State
}

// Keyed pairs an entry with its key, for type-level fan-out.
type Keyed struct {
	Key   Key
	Entry Entry
}
