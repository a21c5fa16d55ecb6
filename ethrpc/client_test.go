package ethrpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopwork-ai/evm-mcp/jsonrpc"
)

// newNode starts a fake node that answers every request with handle's result or error
func newNode(t *testing.T, handle func(req jsonrpc.Request) (any, *jsonrpc.Error)) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req jsonrpc.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		assert.Equal(t, jsonrpc.Version, req.Version)

		result, rpcErr := handle(req)
		resp, err := jsonrpc.NewResponse(req.ID, result, rpcErr)
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("ws://localhost:8546")
	assert.Error(t, err)

	_, err = NewClient("http://localhost:8545", WithHTTPClient(nil))
	assert.Error(t, err)

	c, err := NewClient("https://mainnet.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://mainnet.example.com", c.URL())
}

func TestClient_Call(t *testing.T) {
	var gotParams []json.RawMessage
	ts := newNode(t, func(req jsonrpc.Request) (any, *jsonrpc.Error) {
		assert.NoError(t, json.Unmarshal(req.Params, &gotParams))
		switch req.Method {
		case "eth_getBalance":
			return "0xde0b6b3a7640000", nil
		case "eth_getBlockByNumber":
			return nil, nil
		default:
			return nil, jsonrpc.NewError(jsonrpc.ErrMethodNotFound, nil)
		}
	})

	client, err := NewClient(ts.URL, WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	result, err := client.Call(context.Background(), "eth_getBalance", "0xabc", "latest")
	require.NoError(t, err)
	assert.Equal(t, `"0xde0b6b3a7640000"`, string(result))
	require.Len(t, gotParams, 2)
	assert.Equal(t, `"0xabc"`, string(gotParams[0]))
	assert.Equal(t, `"latest"`, string(gotParams[1]))

	result, err = client.Call(context.Background(), "eth_getBlockByNumber", "0x1", false)
	require.NoError(t, err)
	assert.Equal(t, "null", string(result))
}

func TestClient_CallNoParams(t *testing.T) {
	ts := newNode(t, func(req jsonrpc.Request) (any, *jsonrpc.Error) {
		assert.Equal(t, "[]", string(req.Params))
		return "0x10", nil
	})

	client, err := NewClient(ts.URL)
	require.NoError(t, err)

	result, err := client.Call(context.Background(), "eth_blockNumber")
	require.NoError(t, err)
	assert.Equal(t, `"0x10"`, string(result))
}

func TestClient_CallErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		expected string
	}{
		{
			name: "json-rpc error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"header not found"}}`))
			},
			expected: "RPC call failed: header not found",
		},
		{
			name: "http status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "invalid project id", http.StatusUnauthorized)
			},
			expected: "RPC call failed: 401 Unauthorized: invalid project id",
		},
		{
			name: "json-rpc error with http status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32005,"message":"daily request count exceeded"}}`))
			},
			expected: "RPC call failed: daily request count exceeded",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>bad gateway</html>`))
			},
			expected: "RPC call failed: invalid response:",
		},
		{
			name: "mismatched id",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":99,"result":"0x1"}`))
			},
			expected: "RPC call failed: response id 99 does not match request id 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			client, err := NewClient(ts.URL)
			require.NoError(t, err)

			_, err = client.Call(context.Background(), "eth_blockNumber")
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), tt.expected), "got %q", err.Error())
			assert.Equal(t, 1, strings.Count(err.Error(), ErrorPrefix))

			var callErr *Error
			require.True(t, errors.As(err, &callErr))
			assert.Equal(t, "eth_blockNumber", callErr.Method)
		})
	}
}

func TestClient_CallUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client, err := NewClient(url)
	require.NoError(t, err)

	_, err = client.Call(context.Background(), "eth_chainId")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), ErrorPrefix))
}

func TestClient_CallTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer ts.Close()

	client, err := NewClient(ts.URL, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	require.NoError(t, err)

	_, err = client.Call(context.Background(), "eth_gasPrice")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), ErrorPrefix))
}

func TestClient_SingleAttempt(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	client, err := NewClient(ts.URL, WithHTTPClient(retryClient.StandardClient()))
	require.NoError(t, err)

	_, err = client.Call(context.Background(), "net_version")
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "RPC call failed: 503 Service Unavailable: upstream unavailable", err.Error())
}

func TestClient_IncrementsIDs(t *testing.T) {
	var ids []any
	ts := newNode(t, func(req jsonrpc.Request) (any, *jsonrpc.Error) {
		ids = append(ids, req.ID.Value())
		return true, nil
	})

	client, err := NewClient(ts.URL)
	require.NoError(t, err)

	for range 3 {
		_, err := client.Call(context.Background(), "net_listening")
		require.NoError(t, err)
	}
	assert.Equal(t, []any{uint64(1), uint64(2), uint64(3)}, ids)
}
