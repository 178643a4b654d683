package models

import (
	"encoding/json"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// tempMarker prefixes the string form of optimistic ids. The marker is an
// encoding detail; code must use Temporary() rather than inspecting strings.
const tempMarker = "temp:"

// ID identifies a persisted record. Server-assigned ids round-trip through the
// wire untouched. Optimistic placeholder ids are generated locally and carry a
// tag bit, so id-based de-duplication is a total function instead of a string
// prefix heuristic that could collide with a legitimate server id.
type ID struct {
	value string
	temp  bool
}

// ServerID wraps an id assigned by the remote data service.
func ServerID(s string) ID {
	return ID{value: s}
}

// NewTempID mints a fresh optimistic id for a record whose creation is in
// flight. No two calls return equal ids.
func NewTempID() ID {
	return ID{value: uuid.NewString(), temp: true}
}

// ParseID reverses String. Only strings produced by String carry the
// temporary marker; everything else is treated as a server id.
func ParseID(s string) ID {
	if rest, ok := strings.CutPrefix(s, tempMarker); ok {
		return ID{value: rest, temp: true}
	}
	return ID{value: s}
}

func (id ID) String() string {
	if id.temp {
		return tempMarker + id.value
	}
	return id.value
}

// Temporary reports whether the id is an optimistic placeholder id.
func (id ID) Temporary() bool { return id.temp }

func (id ID) IsZero() bool { return id.value == "" }

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = ParseID(s)
	return nil
}

func (id ID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(id.String())
}

func (id *ID) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = ParseID(s)
	return nil
}
