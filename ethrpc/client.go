// Package ethrpc is a minimal JSON-RPC 2.0 client for Ethereum-compatible
// nodes. Each call is a single POST; the client itself never retries.
package ethrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/loopwork-ai/evm-mcp/jsonrpc"
)

// ErrorPrefix is prepended once to every failure surfaced by Call
const ErrorPrefix = "RPC call failed: "

// maxResponseSize bounds how much of a response body is read
const maxResponseSize = 128 * 1024 * 1024

// Caller invokes a JSON-RPC method with positional parameters
type Caller interface {
	Call(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// Error is returned by Client.Call for any failed call
type Error struct {
	Method string
	Cause  error
}

func (e *Error) Error() string {
	return ErrorPrefix + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPError reports a non-2xx response from the endpoint
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return e.Status
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Body)
}

// Client holds the single configured connection to a node
type Client struct {
	url    string
	client *http.Client
	logger *slog.Logger
	nextID atomic.Uint64
}

var _ Caller = (*Client)(nil)

// ClientOption configures a Client
type ClientOption func(*Client) error

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.client = client
		return nil
	}
}

// WithLogger sets the logger used for per-call debug output
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// NewClient creates a client for the endpoint at url
func NewClient(url string, opts ...ClientOption) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("rpc url cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("unsupported rpc url scheme: %s", url)
	}

	c := &Client{
		url:    url,
		client: http.DefaultClient,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// URL returns the endpoint this client talks to
func (c *Client) URL() string {
	return c.url
}

// Call invokes method with params and returns the raw JSON result.
// A null or missing result is returned as the literal null.
func (c *Client) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	start := time.Now()

	result, err := c.call(ctx, id, method, params)
	if err != nil {
		c.logger.Debug("rpc call failed", "method", method, "id", id, "duration", time.Since(start), "error", err)
		return nil, &Error{Method: method, Cause: err}
	}

	c.logger.Debug("rpc call", "method", method, "id", id, "duration", time.Since(start), "bytes", len(result))
	return result, nil
}

func (c *Client) call(ctx context.Context, id uint64, method string, params []any) (json.RawMessage, error) {
	request, err := jsonrpc.NewRequest(id, method, params...)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Some nodes put a JSON-RPC error in a non-2xx body
		if rpcErr := decodeError(data); rpcErr != nil {
			return nil, rpcErr
		}
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	var response jsonrpc.Response
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	if response.Error != nil {
		return nil, response.Error
	}
	if !response.ID.IsNil() && !response.ID.Equal(request.ID) {
		return nil, fmt.Errorf("response id %s does not match request id %s", response.ID, request.ID)
	}
	return response.Value(), nil
}

func decodeError(data []byte) *jsonrpc.Error {
	var response jsonrpc.Response
	if err := json.Unmarshal(data, &response); err != nil {
		return nil
	}
	return response.Error
}
