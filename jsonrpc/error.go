package jsonrpc

import (
	"fmt"
)

// ErrorCode represents a JSON-RPC error code
type ErrorCode int

// JSON-RPC 2.0 error codes as defined in https://www.jsonrpc.org/specification
const (
	// Parse error (-32700)
	// Invalid JSON was received by the server.
	ErrParse ErrorCode = -32700

	// Invalid Request (-32600)
	// The JSON sent is not a valid Request object.
	ErrInvalidRequest ErrorCode = -32600

	// Method not found (-32601)
	// The method does not exist / is not available.
	ErrMethodNotFound ErrorCode = -32601

	// Invalid params (-32602)
	// Invalid method parameter(s).
	ErrInvalidParams ErrorCode = -32602

	// Internal error (-32603)
	// Internal JSON-RPC error.
	ErrInternal ErrorCode = -32603

	// Server error (-32000 to -32099)
	// Ethereum nodes use -32000 for most execution failures
	// (nonce too low, insufficient funds, header not found).
	ErrServer ErrorCode = -32000

	// Execution reverted (3)
	// Returned by eth_call and eth_estimateGas; Data carries the revert payload.
	ErrExecutionReverted ErrorCode = 3
)

// errorDetails maps error codes to their standard messages
var errorDetails = map[ErrorCode]string{
	ErrParse:             "Parse error",
	ErrInvalidRequest:    "Invalid Request",
	ErrMethodNotFound:    "Method not found",
	ErrInvalidParams:     "Invalid params",
	ErrInternal:          "Internal error",
	ErrServer:            "Server error",
	ErrExecutionReverted: "execution reverted",
}

// Error represents a JSON-RPC error object
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

var _ error = &Error{}

// Error returns the message reported by the remote endpoint.
// Revert data is appended when present so callers can decode it.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultMessage(e.Code)
	}
	if data, ok := e.Data.(string); ok && data != "" && e.Code == ErrExecutionReverted {
		return fmt.Sprintf("%s (data: %s)", msg, data)
	}
	return msg
}

// NewError creates a new JSON-RPC error with the given code and optional data
func NewError(code ErrorCode, data any) *Error {
	return &Error{
		Code:    code,
		Message: defaultMessage(code),
		Data:    data,
	}
}

func defaultMessage(code ErrorCode) string {
	if msg, ok := errorDetails[code]; ok {
		return msg
	}
	if code >= -32099 && code <= -32000 {
		return "Server error"
	}
	return "Unknown error"
}
