package jsonrpc

import "encoding/json"

// Response represents a JSON-RPC response object
type Response struct {
	Version string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// null is what an absent result decodes to
var null = json.RawMessage("null")

// NewResponse creates a new Response object
func NewResponse(id any, result any, err *Error) (Response, error) {
	respID, idErr := NewID(id)
	if idErr != nil {
		return Response{}, idErr
	}

	resp := Response{
		Version: Version,
		ID:      respID,
		Error:   err,
	}
	if err == nil {
		data, merr := json.Marshal(result)
		if merr != nil {
			return Response{}, merr
		}
		resp.Result = data
	}
	return resp, nil
}

// IsNull reports whether the response carries no result value
func (r Response) IsNull() bool {
	return len(r.Result) == 0 || string(r.Result) == string(null)
}

// Value returns the raw result, normalizing an absent result to null
func (r Response) Value() json.RawMessage {
	if r.IsNull() {
		return null
	}
	return r.Result
}
