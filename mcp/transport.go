package mcp

import (
	"io"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewStdioTransport creates a newline-delimited JSON-RPC transport over in and
// out. When logw is non-nil every message is also copied to it.
func NewStdioTransport(in io.Reader, out io.Writer, logw io.Writer) sdk.Transport {
	var transport sdk.Transport = &sdk.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}
	if logw != nil {
		transport = &sdk.LoggingTransport{Transport: transport, Writer: logw}
	}
	return transport
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
