package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		params   []any
		expected string
	}{
		{
			name:     "no params",
			method:   "eth_blockNumber",
			expected: `{"jsonrpc":"2.0","id":1,"method":"eth_blockNumber","params":[]}`,
		},
		{
			name:     "positional params",
			method:   "eth_getBalance",
			params:   []any{"0xabc", "latest"},
			expected: `{"jsonrpc":"2.0","id":1,"method":"eth_getBalance","params":["0xabc","latest"]}`,
		},
		{
			name:     "object param",
			method:   "eth_estimateGas",
			params:   []any{map[string]string{"to": "0xabc"}},
			expected: `{"jsonrpc":"2.0","id":1,"method":"eth_estimateGas","params":[{"to":"0xabc"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(1, tt.method, tt.params...)
			require.NoError(t, err)

			data, err := json.Marshal(req)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestNewRequest_UnencodableParams(t *testing.T) {
	_, err := NewRequest(1, "eth_call", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eth_call")
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
		wantErr  bool
	}{
		{name: "number", input: `7`, expected: uint64(7)},
		{name: "string", input: `"abc"`, expected: "abc"},
		{name: "null", input: `null`, expected: nil},
		{name: "negative", input: `-1`, wantErr: true},
		{name: "fraction", input: `1.5`, wantErr: true},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id.Value())
		})
	}
}

func TestResponse_Value(t *testing.T) {
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":1}`), &resp))
	assert.True(t, resp.IsNull())
	assert.Equal(t, "null", string(resp.Value()))

	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`), &resp))
	assert.True(t, resp.IsNull())

	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x10"}`), &resp))
	assert.False(t, resp.IsNull())
	assert.Equal(t, `"0x10"`, string(resp.Value()))
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "remote message",
			err:      &Error{Code: ErrServer, Message: "header not found"},
			expected: "header not found",
		},
		{
			name:     "default message",
			err:      NewError(ErrMethodNotFound, nil),
			expected: "Method not found",
		},
		{
			name:     "implementation defined server range",
			err:      &Error{Code: -32005},
			expected: "Server error",
		},
		{
			name:     "revert data",
			err:      &Error{Code: ErrExecutionReverted, Message: "execution reverted", Data: "0x08c379a0"},
			expected: "execution reverted (data: 0x08c379a0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
