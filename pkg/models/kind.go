package models

// Kind names a remote collection. The string value is the collection name on
// the wire, both for CRUD calls and for realtime feed subscriptions.
type Kind string

const (
	KindProject Kind = "projects"
	KindTask    Kind = "tasks"
	KindTodo    Kind = "todos"
	KindNote    Kind = "notes"
	KindComment Kind = "comments"
	KindMember  Kind = "project_members"
)

// Kinds lists every collection the engine synchronizes.
func Kinds() []Kind {
	return []Kind{KindProject, KindTask, KindTodo, KindNote, KindComment, KindMember}
}

func (k Kind) Valid() bool {
	switch k {
	case KindProject, KindTask, KindTodo, KindNote, KindComment, KindMember:
		return true
	}
	return false
}
