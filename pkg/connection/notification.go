package connection

import "github.com/boardkit/livecache/pkg/models"

// Action is the change type carried by a feed event.
type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Notification is one server-pushed change event. Old and New are raw rows in
// the collection's wire shape; which of the two is populated depends on the
// action (INSERT has New, DELETE has Old, UPDATE has both).
type Notification struct {
	Kind   models.Kind    `json:"collection"`
	Action Action         `json:"eventType"`
	Old    map[string]any `json:"old,omitempty"`
	New    map[string]any `json:"new,omitempty"`
}
