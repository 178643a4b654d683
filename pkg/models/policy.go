package models

// Order is where a freshly created record lands in a cached list.
type Order int

const (
	// OrderAppend places new records at the end of a list. Tasks, todos and
	// members read oldest-first.
	OrderAppend Order = iota
	// OrderPrepend places new records at the start. Notes, projects and
	// comments read newest-first.
	OrderPrepend
)

// Policy captures the per-kind divergence that the mutation executor and the
// realtime ingestor must agree on. Expressing it as data keeps the two code
// paths from drifting apart the way per-entity copies would.
type Policy struct {
	Order Order

	// DetailSync controls whether realtime UPDATE events may overwrite a
	// cached detail entry. Task and comment details are owned by whoever is
	// actively editing them and only change through direct update responses;
	// the other kinds have no contended editing surface and take realtime
	// updates on details too.
	DetailSync bool

	// FilterFields are the wire fields a list query may filter on. The query
	// key router matches records against these and nothing else.
	FilterFields []string

	// Positioned marks kinds that carry a server-assigned position column,
	// which the optimistic phase can only approximate.
	Positioned bool
}

var policies = map[Kind]Policy{
	KindProject: {
		Order:        OrderPrepend,
		DetailSync:   true,
		FilterFields: []string{"user_id"},
	},
	KindTask: {
		Order:        OrderAppend,
		DetailSync:   false,
		FilterFields: []string{"project_id", "status"},
		Positioned:   true,
	},
	KindTodo: {
		Order:        OrderAppend,
		DetailSync:   true,
		FilterFields: []string{"project_id"},
		Positioned:   true,
	},
	KindNote: {
		Order:        OrderPrepend,
		DetailSync:   true,
		FilterFields: []string{"project_id", "is_archived"},
	},
	KindComment: {
		Order:        OrderPrepend,
		DetailSync:   false,
		FilterFields: []string{"task_id", "project_id"},
	},
	KindMember: {
		Order:        OrderAppend,
		DetailSync:   true,
		FilterFields: []string{"project_id", "user_id"},
	},
}

// PolicyFor returns the merge policy for a kind. Unknown kinds get a zero
// policy (append, no detail sync, no filterable fields).
func PolicyFor(kind Kind) Policy {
	return policies[kind]
}
