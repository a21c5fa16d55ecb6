package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/loopwork-ai/evm-mcp/ethrpc"
	"github.com/loopwork-ai/evm-mcp/evm"
	"github.com/loopwork-ai/evm-mcp/internal"
	"github.com/loopwork-ai/evm-mcp/internal/config"
	"github.com/loopwork-ai/evm-mcp/mcp"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	configPath    string
	rpcURL        string
	chainID       uint64
	headers       []string
	disabledTools []string
	timeout       time.Duration
	retries       int
	verbose       bool
	httpAddr      string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "evm-mcp",
		Short: "An MCP server for Ethereum JSON-RPC",
		Long: `evm-mcp is a CLI tool that provides an MCP stdio transport for an Ethereum JSON-RPC node.
Each tool forwards to the RPC method of the same name and returns a readable summary.

The node endpoint is read from, in increasing order of precedence:
- the config file given by --config
- the RPC_URL or ETHEREUM_RPC_URL environment variable
- the --rpc-url flag

Endpoint and header values may be 1Password references (op://vault/item/field).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &opts)
		},
	}

	opts.bind(cmd)
	cmd.Version = fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date)
	return cmd
}

func (o *options) bind(cmd *cobra.Command) {
	defaults := config.DefaultConfig()

	flags := cmd.Flags()
	flags.StringVarP(&o.configPath, "config", "c", "", "Path to a YAML or JSON config file")
	flags.StringVar(&o.rpcURL, "rpc-url", "", "Ethereum JSON-RPC endpoint URL")
	flags.Uint64Var(&o.chainID, "chain-id", defaults.ChainID, "Chain ID reported to clients")
	flags.StringArrayVarP(&o.headers, "header", "H", nil, "Header sent with every RPC request, as 'Name: value' (repeatable)")
	flags.StringSliceVar(&o.disabledTools, "disable-tool", nil, "Tool to hide from clients (repeatable)")
	flags.DurationVar(&o.timeout, "timeout", defaults.Timeout, "HTTP request timeout")
	flags.IntVar(&o.retries, "retries", defaults.Retries, "Maximum number of retries for failed requests")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Enable verbose logging to stderr")
	flags.StringVar(&o.httpAddr, "http", "", "Serve streamable HTTP on this address instead of stdio (e.g. ':8080')")
}

// load resolves the configuration: defaults, then the config file, then the
// environment, then flags set on the command line.
func (o *options) load(cmd *cobra.Command, getenv func(string) string) (*config.Config, http.Header, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("rpc-url") {
		cfg.RPCURL = o.rpcURL
	}
	if flags.Changed("chain-id") {
		cfg.ChainID = o.chainID
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("retries") {
		cfg.Retries = o.retries
	}
	if flags.Changed("verbose") {
		cfg.Verbose = o.verbose
	}
	if flags.Changed("http") {
		cfg.HTTPAddr = o.httpAddr
	}
	cfg.DisabledTools = append(cfg.DisabledTools, o.disabledTools...)

	headers := make(http.Header)
	for name, value := range cfg.Headers {
		headers.Set(name, value)
	}
	flagHeaders, err := internal.ParseHeaders(o.headers)
	if err != nil {
		return nil, nil, err
	}
	for name, values := range flagHeaders {
		headers[name] = values
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, headers, nil
}

func run(cmd *cobra.Command, opts *options) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, headers, err := opts.load(cmd, os.Getenv)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	if !cfg.Verbose {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rpcURL, isSecret, err := internal.ResolveSecretReference(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("error resolving RPC URL: %w", err)
		}
		if isSecret {
			logger.Info("resolved RPC URL from 1Password")
		}
		if err := internal.ResolveHeaders(ctx, headers); err != nil {
			return err
		}

		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = cfg.Retries
		retryClient.RetryWaitMin = 1 * time.Second
		retryClient.RetryWaitMax = 30 * time.Second
		retryClient.HTTPClient.Timeout = cfg.Timeout
		retryClient.Logger = logger
		// Report the node's own response once retries are exhausted
		retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
		if len(headers) > 0 {
			retryClient.HTTPClient.Transport = &internal.HeaderTransport{
				Base:    retryClient.HTTPClient.Transport,
				Headers: headers,
			}
		}

		rpc, err := ethrpc.NewClient(rpcURL,
			ethrpc.WithHTTPClient(retryClient.StandardClient()),
			ethrpc.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("error creating RPC client: %w", err)
		}

		catalog, err := evm.NewCatalog(rpc)
		if err != nil {
			return fmt.Errorf("error creating tool catalog: %w", err)
		}

		server, err := mcp.NewServer(
			mcp.WithCatalog(catalog),
			mcp.WithLogger(logger),
			mcp.WithServerInfo(mcp.DefaultName, version),
			mcp.WithChainID(cfg.ChainID),
			mcp.WithDisabledTools(cfg.DisabledTools...),
		)
		if err != nil {
			return fmt.Errorf("error creating server: %w", err)
		}

		if cfg.HTTPAddr != "" {
			return server.ListenAndServe(ctx, cfg.HTTPAddr)
		}

		var logw io.Writer
		if cfg.Verbose {
			logw = os.Stderr
		}
		return server.Run(ctx, mcp.NewStdioTransport(os.Stdin, os.Stdout, logw))
	})

	return g.Wait()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
