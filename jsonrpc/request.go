package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Version is the only JSON-RPC protocol version Ethereum nodes speak
const Version = "2.0"

// Request represents a JSON-RPC request object
type Request struct {
	Version string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// NewRequest creates a new Request object. Params are encoded as a
// positional array; a nil or empty list is sent as [].
func NewRequest(id uint64, method string, params ...any) (Request, error) {
	if params == nil {
		params = []any{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return Request{}, fmt.Errorf("error encoding params for %s: %w", method, err)
	}

	return Request{
		Version: Version,
		ID:      ID{value: id},
		Method:  method,
		Params:  data,
	}, nil
}
