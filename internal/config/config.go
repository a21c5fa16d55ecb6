package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingRPCURL is returned when no RPC endpoint is configured
var ErrMissingRPCURL = errors.New("RPC URL is required: set RPC_URL or ETHEREUM_RPC_URL, or pass --rpc-url")

// Environment variables read by ApplyEnv
const (
	EnvRPCURL         = "RPC_URL"
	EnvEthereumRPCURL = "ETHEREUM_RPC_URL"
	EnvChainID        = "CHAIN_ID"
)

// Config represents the configuration for the evm-mcp server
type Config struct {
	// RPCURL is the JSON-RPC endpoint of the node
	RPCURL string `yaml:"rpcUrl"`

	// ChainID is the chain the server reports in its instructions
	ChainID uint64 `yaml:"chainId"`

	// Headers are added to every request sent to the node
	Headers map[string]string `yaml:"headers"`

	// DisabledTools lists tools that are not exposed
	DisabledTools []string `yaml:"disabledTools"`

	Timeout  time.Duration `yaml:"timeout"`
	Retries  int           `yaml:"retries"`
	Verbose  bool          `yaml:"verbose"`
	HTTPAddr string        `yaml:"httpAddr"`
}

// DefaultConfig returns a configuration for Ethereum mainnet with no endpoint
func DefaultConfig() *Config {
	return &Config{
		ChainID:       1,
		Headers:       map[string]string{},
		DisabledTools: []string{},
		Timeout:       60 * time.Second,
	}
}

// LoadFile loads configuration from a file
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load loads YAML or JSON configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	config := DefaultConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config data: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if config.Headers == nil {
		config.Headers = map[string]string{}
	}

	return config, nil
}

// ApplyEnv overlays values from the environment. RPC_URL takes precedence
// over ETHEREUM_RPC_URL.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if url := getenv(EnvRPCURL); url != "" {
		c.RPCURL = url
	} else if url := getenv(EnvEthereumRPCURL); url != "" {
		c.RPCURL = url
	}

	if s := strings.TrimSpace(getenv(EnvChainID)); s != "" {
		id, err := ParseChainID(s)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvChainID, err)
		}
		c.ChainID = id
	}
	return nil
}

// ParseChainID parses a decimal or 0x-prefixed chain ID
func ParseChainID(s string) (uint64, error) {
	base := 10
	digits := s
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		base, digits = 16, hex
	}
	id, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("chain ID must be a positive integer: %q", s)
	}
	return id, nil
}

// Validate checks that the configuration can be used to start the server
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCURL) == "" {
		return ErrMissingRPCURL
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative: %s", c.Timeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries cannot be negative: %d", c.Retries)
	}
	return nil
}
