package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/loopwork-ai/evm-mcp/evm"
)

// DefaultName is the implementation name reported to MCP clients
const DefaultName = "evm-mcp"

// Server exposes an evm.Catalog as MCP tools
type Server struct {
	catalog  *evm.Catalog
	logger   *slog.Logger
	info     sdk.Implementation
	chainID  *big.Int
	disabled map[string]bool

	server *sdk.Server
	tools  []string
}

// ServerOption configures a Server
type ServerOption func(*Server) error

// WithCatalog sets the tool catalog served by the server
func WithCatalog(catalog *evm.Catalog) ServerOption {
	return func(s *Server) error {
		if catalog == nil {
			return fmt.Errorf("catalog cannot be nil")
		}
		s.catalog = catalog
		return nil
	}
}

// WithLogger sets the logger for the server
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithServerInfo sets the server name and version
func WithServerInfo(name, version string) ServerOption {
	return func(s *Server) error {
		s.info = sdk.Implementation{Name: name, Version: version}
		return nil
	}
}

// WithChainID sets the chain the server advertises in its instructions
func WithChainID(id uint64) ServerOption {
	return func(s *Server) error {
		s.chainID = new(big.Int).SetUint64(id)
		return nil
	}
}

// WithDisabledTools hides the named tools. Every name must exist in the catalog.
func WithDisabledTools(names ...string) ServerOption {
	return func(s *Server) error {
		for _, name := range names {
			s.disabled[name] = true
		}
		return nil
	}
}

// NewServer creates a new MCP server instance
func NewServer(opts ...ServerOption) (*Server, error) {
	s := &Server{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		info:     sdk.Implementation{Name: DefaultName, Version: "dev"},
		disabled: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	for name := range s.disabled {
		if s.catalog.Lookup(name) == nil {
			return nil, fmt.Errorf("cannot disable unknown tool %q", name)
		}
	}

	s.server = sdk.NewServer(&s.info, &sdk.ServerOptions{
		Instructions: s.instructions(),
	})
	s.registerTools()

	return s, nil
}

func (s *Server) instructions() string {
	text := "Query an EVM-compatible blockchain through its JSON-RPC interface. " +
		"Each tool calls the RPC method of the same name."
	if s.chainID != nil {
		text += fmt.Sprintf(" The configured chain is %s (chain ID %s).", evm.ChainName(s.chainID), s.chainID)
	}
	return text
}

func (s *Server) registerTools() {
	for _, t := range s.catalog.Tools() {
		if s.disabled[t.Name] {
			s.logger.Debug("tool disabled", "tool", t.Name)
			continue
		}
		s.server.AddTool(toolDefinition(t), s.handler(t))
		s.tools = append(s.tools, t.Name)
	}
	s.logger.Info("registered tools", "count", len(s.tools))
}

func toolDefinition(t *evm.Tool) *sdk.Tool {
	openWorld := true
	destructive := !t.ReadOnly
	return &sdk.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.Schema,
		Annotations: &sdk.ToolAnnotations{
			ReadOnlyHint:    t.ReadOnly,
			DestructiveHint: &destructive,
			OpenWorldHint:   &openWorld,
		},
	}
}

// handler runs a catalog tool. Failures are reported as text, never as
// protocol errors.
func (s *Server) handler(t *evm.Tool) sdk.ToolHandler {
	return func(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
		start := time.Now()
		text := s.catalog.Run(ctx, t, req.Params.Arguments)
		s.logger.Debug("tool call", "tool", t.Name, "duration", time.Since(start))

		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: text}},
		}, nil
	}
}

// Tools returns the names of the registered tools in order
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// Run serves the MCP protocol over transport until the client disconnects
// or ctx is cancelled.
func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	s.logger.Info("starting server", "name", s.info.Name, "version", s.info.Version, "tools", len(s.tools))

	err := s.server.Run(ctx, transport)
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
