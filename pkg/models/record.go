package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is the behavior shared by every synchronized entity. Records are
// treated as immutable once handed to the cache: every modification goes
// through Clone, Stamped or Merge, all of which return fresh copies. That
// discipline is what keeps mutation snapshots valid for rollback.
type Record interface {
	RecordID() ID
	RecordKind() Kind
	CreatedAtTime() time.Time
	UpdatedAtTime() time.Time

	// Clone returns a deep copy of the record.
	Clone() Record

	// Stamped returns a copy with identity and timestamps set. Used to build
	// optimistic placeholders from caller-supplied payloads.
	Stamped(id ID, user ID, now time.Time) Record

	// Merge returns a copy with the named wire fields applied and UpdatedAt
	// bumped to now. Unknown fields are ignored.
	Merge(fields map[string]any, now time.Time) Record

	// FilterValue reports the record's value for a filterable field, used by
	// the query key router for list membership decisions.
	FilterValue(field string) (string, bool)

	// ContentKey identifies the record by its user-entered content. A server
	// row and the optimistic placeholder that produced it share a content key
	// even though their ids can never match.
	ContentKey() string
}

// Blank returns a zero record of the given kind, ready to be decoded into.
func Blank(kind Kind) (Record, error) {
	switch kind {
	case KindProject:
		return &Project{}, nil
	case KindTask:
		return &Task{}, nil
	case KindTodo:
		return &TodoItem{}, nil
	case KindNote:
		return &Note{}, nil
	case KindComment:
		return &Comment{}, nil
	case KindMember:
		return &ProjectMember{}, nil
	}
	return nil, fmt.Errorf("unknown record kind %q", kind)
}

// Decode converts a wire row into a typed record. Rows arrive as generic maps
// from both the remote data service and the realtime feed.
func Decode(kind Kind, row map[string]any) (Record, error) {
	rec, err := Blank(kind)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encoding %s row: %w", kind, err)
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decoding %s row: %w", kind, err)
	}
	return rec, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		// JSON numbers decode as float64.
		return int(n)
	}
	return 0
}

func asTimePtr(v any) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return &t
	case *time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}

func asID(v any) ID {
	switch id := v.(type) {
	case ID:
		return id
	case string:
		return ParseID(id)
	}
	return ID{}
}

func asStrings(v any) []string {
	switch vs := v.(type) {
	case []string:
		return cloneStrings(vs)
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			out = append(out, asString(item))
		}
		return out
	}
	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
