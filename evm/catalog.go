// Package evm is the catalog of Ethereum JSON-RPC tools. Each tool validates
// its input, calls one RPC method and renders the result as text.
package evm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/loopwork-ai/evm-mcp/ethrpc"
)

// ErrUnknownTool is returned by Catalog.Call for names not in the catalog
var ErrUnknownTool = errors.New("unknown tool")

// handlerFunc runs a tool against normalized arguments
type handlerFunc func(ctx context.Context, c *Catalog, args json.RawMessage) (string, error)

// Tool describes one RPC method exposed as a tool
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema

	// ReadOnly is false for tools that change chain state
	ReadOnly bool

	resolved *jsonschema.Resolved
	handler  handlerFunc
}

// Catalog is the fixed set of tools bound to one RPC endpoint.
// It is safe for concurrent use.
type Catalog struct {
	rpc   ethrpc.Caller
	now   func() time.Time
	tools []*Tool
	index map[string]*Tool
}

// CatalogOption configures a Catalog
type CatalogOption func(*Catalog)

// WithClock sets the time source used for capture timestamps
func WithClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		c.now = now
	}
}

// NewCatalog creates the catalog of all tools backed by rpc
func NewCatalog(rpc ethrpc.Caller, opts ...CatalogOption) (*Catalog, error) {
	if rpc == nil {
		return nil, fmt.Errorf("rpc caller cannot be nil")
	}

	c := &Catalog{
		rpc:   rpc,
		now:   time.Now,
		index: make(map[string]*Tool),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, t := range definitions() {
		if _, exists := c.index[t.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name: %q", t.Name)
		}
		resolved, err := t.Schema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("error resolving schema for %s: %w", t.Name, err)
		}
		t.resolved = resolved
		c.tools = append(c.tools, t)
		c.index[t.Name] = t
	}
	return c, nil
}

// Tools returns the tools in registration order
func (c *Catalog) Tools() []*Tool {
	return append([]*Tool(nil), c.tools...)
}

// Lookup returns a tool by name, or nil if not found
func (c *Catalog) Lookup(name string) *Tool {
	return c.index[name]
}

// Call runs the named tool. The only error is ErrUnknownTool; every other
// failure is reported in the returned text.
func (c *Catalog) Call(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t := c.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return c.Run(ctx, t, args), nil
}

// Run executes t and converts any failure into "Error: <message>"
func (c *Catalog) Run(ctx context.Context, t *Tool, args json.RawMessage) string {
	text, err := c.run(ctx, t, args)
	if err != nil {
		return "Error: " + err.Error()
	}
	return text
}

func (c *Catalog) run(ctx context.Context, t *Tool, args json.RawMessage) (string, error) {
	normalized, err := t.normalize(args)
	if err != nil {
		return "", err
	}
	return t.handler(ctx, c, normalized)
}

// normalize applies schema defaults and validates the arguments
func (t *Tool) normalize(args json.RawMessage) (json.RawMessage, error) {
	v := make(map[string]any)
	if trimmed := bytes.TrimSpace(args); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	if err := t.resolved.ApplyDefaults(&v); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := t.resolved.Validate(v); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return json.Marshal(v)
}

// handle adapts a typed tool function to a handlerFunc
func handle[T any](fn func(ctx context.Context, c *Catalog, in T) (string, error)) handlerFunc {
	return func(ctx context.Context, c *Catalog, args json.RawMessage) (string, error) {
		var in T
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		return fn(ctx, c, in)
	}
}
