package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID represents a JSON-RPC ID which must be either a string or number
type ID struct {
	value any
}

// NewID creates a JSON-RPC ID from a string or number
func NewID(id any) (ID, error) {
	switch v := id.(type) {
	case ID:
		return v, nil
	case string:
		return ID{value: v}, nil
	case int:
		return ID{value: uint64(v)}, nil
	case int64:
		return ID{value: uint64(v)}, nil
	case uint64:
		return ID{value: v}, nil
	case nil:
		return ID{}, fmt.Errorf("id cannot be null")
	default:
		return ID{}, fmt.Errorf("id must be string or number, got %T", id)
	}
}

// Value returns the underlying string or uint64
func (id ID) Value() any {
	return id.value
}

// IsNil reports whether the ID was absent or null on the wire
func (id ID) IsNil() bool {
	return id.value == nil
}

// Equal compares two IDs for equality
func (id ID) Equal(other ID) bool {
	return id.value == other.value
}

func (id ID) String() string {
	switch v := id.value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	default:
		return "null"
	}
}

var _ json.Marshaler = ID{}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

var _ json.Unmarshaler = &ID{}

// UnmarshalJSON implements json.Unmarshaler. Servers answer with null when
// the request could not be parsed, so null is accepted and leaves the ID nil.
func (id *ID) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		id.value = v
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < 0 {
			return fmt.Errorf("id must be a non-negative integer, got %s", v)
		}
		id.value = uint64(n)
	case nil:
		id.value = nil
	default:
		return fmt.Errorf("id must be string or number, got %T", raw)
	}
	return nil
}
