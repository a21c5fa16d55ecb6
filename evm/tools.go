package evm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// timestampLayout matches JavaScript's Date.toISOString in UTC
const timestampLayout = "2006-01-02T15:04:05.000Z"

func definitions() []*Tool {
	return []*Tool{
		{
			Name:        "web3_clientVersion",
			Description: "Returns the current client version",
			Schema:      object(nil, nil),
			ReadOnly:    true,
			handler:     handle(clientVersion),
		},
		{
			Name:        "web3_sha3",
			Description: "Returns Keccak-256 hash of the given data",
			Schema: object([]string{"data"}, map[string]*jsonschema.Schema{
				"data": stringProp("Data to hash (hex string starting with 0x)"),
			}),
			ReadOnly: true,
			handler:  handle(sha3),
		},
		{
			Name:        "eth_blockNumber",
			Description: "Returns the number of the most recent block",
			Schema:      object(nil, nil),
			ReadOnly:    true,
			handler:     handle(blockNumber),
		},
		{
			Name:        "eth_getBalance",
			Description: "Returns the balance of the account of given address",
			Schema: object([]string{"address"}, map[string]*jsonschema.Schema{
				"address":     stringProp("Address to check balance for"),
				"blockNumber": blockProp(blockDescription),
			}),
			ReadOnly: true,
			handler:  handle(getBalance),
		},
		{
			Name:        "eth_getTransactionCount",
			Description: "Returns the number of transactions sent from an address",
			Schema: object([]string{"address"}, map[string]*jsonschema.Schema{
				"address":     stringProp("Address to check transaction count for"),
				"blockNumber": blockProp(blockDescription),
			}),
			ReadOnly: true,
			handler:  handle(getTransactionCount),
		},
		{
			Name:        "eth_getBlockByNumber",
			Description: "Returns information about a block by block number",
			Schema: object(nil, map[string]*jsonschema.Schema{
				"blockNumber":         blockProp("Block number (hex) or 'latest', 'earliest', 'pending'"),
				"includeTransactions": boolProp("Include full transaction objects", false),
			}),
			ReadOnly: true,
			handler:  handle(getBlockByNumber),
		},
		{
			Name:        "eth_getTransactionByHash",
			Description: "Returns the information about a transaction requested by transaction hash",
			Schema: object([]string{"txHash"}, map[string]*jsonschema.Schema{
				"txHash": stringProp("Transaction hash"),
			}),
			ReadOnly: true,
			handler:  handle(getTransactionByHash),
		},
		{
			Name:        "eth_getTransactionReceipt",
			Description: "Returns the receipt of a transaction by transaction hash",
			Schema: object([]string{"txHash"}, map[string]*jsonschema.Schema{
				"txHash": stringProp("Transaction hash"),
			}),
			ReadOnly: true,
			handler:  handle(getTransactionReceipt),
		},
		{
			Name:        "eth_call",
			Description: "Executes a new message call immediately without creating a transaction",
			Schema: object([]string{"to", "data"}, map[string]*jsonschema.Schema{
				"to":          stringProp("Contract address"),
				"data":        stringProp("Data to send (hex string)"),
				"blockNumber": blockProp(blockDescription),
				"from":        stringProp("From address (optional)"),
				"value":       stringProp("Value in wei (optional)"),
				"gas":         stringProp("Gas limit (optional)"),
				"gasPrice":    stringProp("Gas price (optional)"),
			}),
			ReadOnly: true,
			handler:  handle(call),
		},
		{
			Name:        "eth_estimateGas",
			Description: "Generates and returns an estimate of how much gas is necessary",
			Schema: object(nil, map[string]*jsonschema.Schema{
				"to":       stringProp("Contract address (optional for contract creation)"),
				"data":     stringProp("Data to send (hex string)"),
				"from":     stringProp("From address"),
				"value":    stringProp("Value in wei"),
				"gas":      stringProp("Gas limit"),
				"gasPrice": stringProp("Gas price"),
			}),
			ReadOnly: true,
			handler:  handle(estimateGas),
		},
		{
			Name:        "eth_sendRawTransaction",
			Description: "Creates new message call transaction or a contract creation",
			Schema: object([]string{"signedTransactionData"}, map[string]*jsonschema.Schema{
				"signedTransactionData": stringProp("Signed transaction data (hex string)"),
			}),
			handler: handle(sendRawTransaction),
		},
		{
			Name:        "eth_gasPrice",
			Description: "Returns the current price per gas in wei",
			Schema:      object(nil, nil),
			ReadOnly:    true,
			handler:     handle(gasPrice),
		},
		{
			Name:        "eth_getCode",
			Description: "Returns code at a given address",
			Schema: object([]string{"address"}, map[string]*jsonschema.Schema{
				"address":     stringProp("Contract address"),
				"blockNumber": blockProp(blockDescription),
			}),
			ReadOnly: true,
			handler:  handle(getCode),
		},
		{
			Name:        "eth_getStorageAt",
			Description: "Returns the value from a storage position at a given address",
			Schema: object([]string{"address", "position"}, map[string]*jsonschema.Schema{
				"address":     stringProp("Contract address"),
				"position":    stringProp("Storage position (hex string)"),
				"blockNumber": blockProp(blockDescription),
			}),
			ReadOnly: true,
			handler:  handle(getStorageAt),
		},
		{
			Name:        "eth_getLogs",
			Description: "Returns an array of all logs matching a given filter object",
			Schema: object(nil, map[string]*jsonschema.Schema{
				"fromBlock": stringProp("Starting block (hex or 'latest', 'earliest', 'pending')"),
				"toBlock":   stringProp("Ending block (hex or 'latest', 'earliest', 'pending')"),
				"address":   stringProp("Contract address (optional)"),
				"topics":    stringArrayProp("Array of topic filters (optional)"),
			}),
			ReadOnly: true,
			handler:  handle(getLogs),
		},
		{
			Name:        "eth_chainId",
			Description: "Returns the chain ID of the current network",
			Schema:      object(nil, nil),
			ReadOnly:    true,
			handler:     handle(chainID),
		},
		{
			Name:        "net_version",
			Description: "Returns the current network id",
			Schema:      object(nil, nil),
			ReadOnly:    true,
			handler:     handle(netVersion),
		},
		{
			Name:        "net_listening",
			Description: "Returns true if client is actively listening for network connections",
			Schema:      object(nil, nil),
			ReadOnly:    true,
			handler:     handle(netListening),
		},
		{
			Name:        "net_peerCount",
			Description: "Returns number of peers currently connected to the client",
			Schema:      object(nil, nil),
			ReadOnly:    true,
			handler:     handle(netPeerCount),
		},
	}
}

type noArgs struct{}

type addressArgs struct {
	Address     string `json:"address"`
	BlockNumber string `json:"blockNumber"`
}

type hashArgs struct {
	TxHash string `json:"txHash"`
}

type txArgs struct {
	To          string `json:"to"`
	Data        string `json:"data"`
	BlockNumber string `json:"blockNumber"`
	From        string `json:"from"`
	Value       string `json:"value"`
	Gas         string `json:"gas"`
	GasPrice    string `json:"gasPrice"`
}

// object builds the transaction object sent to eth_call and eth_estimateGas.
// Required keys are always set; optional keys are left out when empty.
func (a txArgs) object(required []string, optional ...string) *Fields {
	values := map[string]string{
		"to":       a.To,
		"data":     a.Data,
		"from":     a.From,
		"value":    a.Value,
		"gas":      a.Gas,
		"gasPrice": a.GasPrice,
	}
	tx := NewFields()
	for _, k := range required {
		tx.Set(k, values[k])
	}
	for _, k := range optional {
		if v := values[k]; v != "" {
			tx.Set(k, v)
		}
	}
	return tx
}

// block returns the normalized selector, falling back to the latest block
func block(selector string) string {
	if selector == "" {
		return Latest
	}
	return NormalizeBlock(selector)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("unexpected result %s: expected a string", raw)
	}
	return s, nil
}

// quantity decodes a hex quantity result into its hex and decimal forms
func quantity(raw json.RawMessage) (string, string, error) {
	hex, err := decodeString(raw)
	if err != nil {
		return "", "", err
	}
	n, err := ParseQuantity(hex)
	if err != nil {
		return "", "", err
	}
	return hex, n.String(), nil
}

func clientVersion(ctx context.Context, c *Catalog, _ noArgs) (string, error) {
	result, err := c.rpc.Call(ctx, "web3_clientVersion")
	if err != nil {
		return "", err
	}
	return Format("Web3 Client Version", result), nil
}

func sha3(ctx context.Context, c *Catalog, in struct {
	Data string `json:"data"`
}) (string, error) {
	result, err := c.rpc.Call(ctx, "web3_sha3", in.Data)
	if err != nil {
		return "", err
	}
	return Format("Keccak-256 Hash", result), nil
}

func blockNumber(ctx context.Context, c *Catalog, _ noArgs) (string, error) {
	result, err := c.rpc.Call(ctx, "eth_blockNumber")
	if err != nil {
		return "", err
	}
	hex, decimal, err := quantity(result)
	if err != nil {
		return "", err
	}
	return Format("Latest Block Number", NewFields(
		"hex", hex,
		"decimal", decimal,
		"timestamp", c.now().UTC().Format(timestampLayout),
	)), nil
}

func getBalance(ctx context.Context, c *Catalog, in addressArgs) (string, error) {
	blk := block(in.BlockNumber)
	result, err := c.rpc.Call(ctx, "eth_getBalance", in.Address, blk)
	if err != nil {
		return "", err
	}
	hex, err := decodeString(result)
	if err != nil {
		return "", err
	}
	wei, err := ParseQuantity(hex)
	if err != nil {
		return "", err
	}
	return Format("Account Balance", NewFields(
		"address", in.Address,
		"balance_wei", hex,
		"balance_eth", FormatEther(wei),
		"block", blk,
	)), nil
}

func getTransactionCount(ctx context.Context, c *Catalog, in addressArgs) (string, error) {
	blk := block(in.BlockNumber)
	result, err := c.rpc.Call(ctx, "eth_getTransactionCount", in.Address, blk)
	if err != nil {
		return "", err
	}
	hex, decimal, err := quantity(result)
	if err != nil {
		return "", err
	}
	return Format("Transaction Count (Nonce)", NewFields(
		"address", in.Address,
		"nonce_hex", hex,
		"nonce_decimal", decimal,
		"block", blk,
	)), nil
}

// blockSummaryFields are the block header fields reported, in order
var blockSummaryFields = []string{"number", "hash", "parentHash", "timestamp", "gasLimit", "gasUsed"}

func getBlockByNumber(ctx context.Context, c *Catalog, in struct {
	BlockNumber         string `json:"blockNumber"`
	IncludeTransactions bool   `json:"includeTransactions"`
}) (string, error) {
	blk := block(in.BlockNumber)
	result, err := c.rpc.Call(ctx, "eth_getBlockByNumber", blk, in.IncludeTransactions)
	if err != nil {
		return "", err
	}
	if isNull(result) {
		return fmt.Sprintf("Block not found: %s", blk), nil
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(result, &header); err != nil {
		return "", fmt.Errorf("invalid block: %w", err)
	}

	info := NewFields()
	for _, key := range blockSummaryFields {
		if v, ok := header[key]; ok {
			info.Set(key, v)
		}
	}
	var txs []json.RawMessage
	if raw, ok := header["transactions"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &txs); err != nil {
			return "", fmt.Errorf("invalid block transactions: %w", err)
		}
	}
	info.Set("transactionCount", len(txs))
	if v, ok := header["baseFeePerGas"]; ok {
		info.Set("baseFeePerGas", v)
	}

	return Format("Block Information", info), nil
}

func getTransactionByHash(ctx context.Context, c *Catalog, in hashArgs) (string, error) {
	result, err := c.rpc.Call(ctx, "eth_getTransactionByHash", in.TxHash)
	if err != nil {
		return "", err
	}
	if isNull(result) {
		return fmt.Sprintf("Transaction not found: %s", in.TxHash), nil
	}
	return Format("Transaction Information", result), nil
}

func getTransactionReceipt(ctx context.Context, c *Catalog, in hashArgs) (string, error) {
	result, err := c.rpc.Call(ctx, "eth_getTransactionReceipt", in.TxHash)
	if err != nil {
		return "", err
	}
	if isNull(result) {
		return fmt.Sprintf("Transaction receipt not found: %s", in.TxHash), nil
	}
	return Format("Transaction Receipt", result), nil
}

func call(ctx context.Context, c *Catalog, in txArgs) (string, error) {
	blk := block(in.BlockNumber)
	tx := in.object([]string{"to", "data"}, "from", "value", "gas", "gasPrice")
	result, err := c.rpc.Call(ctx, "eth_call", tx, blk)
	if err != nil {
		return "", err
	}
	return Format("Contract Call Result", NewFields(
		"result", result,
		"to", in.To,
		"data", in.Data,
		"block", blk,
	)), nil
}

func estimateGas(ctx context.Context, c *Catalog, in txArgs) (string, error) {
	tx := in.object(nil, "to", "data", "from", "value", "gas", "gasPrice")
	result, err := c.rpc.Call(ctx, "eth_estimateGas", tx)
	if err != nil {
		return "", err
	}
	hex, decimal, err := quantity(result)
	if err != nil {
		return "", err
	}
	return Format("Gas Estimate", NewFields(
		"gas_estimate_hex", hex,
		"gas_estimate_decimal", decimal,
		"transaction_object", tx,
	)), nil
}

func sendRawTransaction(ctx context.Context, c *Catalog, in struct {
	SignedTransactionData string `json:"signedTransactionData"`
}) (string, error) {
	result, err := c.rpc.Call(ctx, "eth_sendRawTransaction", in.SignedTransactionData)
	if err != nil {
		return "", err
	}
	return Format("Raw Transaction Sent", NewFields(
		"transaction_hash", result,
		"status", "Transaction submitted successfully",
	)), nil
}

func gasPrice(ctx context.Context, c *Catalog, _ noArgs) (string, error) {
	result, err := c.rpc.Call(ctx, "eth_gasPrice")
	if err != nil {
		return "", err
	}
	hex, err := decodeString(result)
	if err != nil {
		return "", err
	}
	wei, err := ParseQuantity(hex)
	if err != nil {
		return "", err
	}
	return Format("Current Gas Price", NewFields(
		"gas_price_hex", hex,
		"gas_price_wei", wei.String(),
		"gas_price_gwei", FormatGwei(wei),
	)), nil
}

func getCode(ctx context.Context, c *Catalog, in addressArgs) (string, error) {
	blk := block(in.BlockNumber)
	result, err := c.rpc.Call(ctx, "eth_getCode", in.Address, blk)
	if err != nil {
		return "", err
	}
	code, err := decodeString(result)
	if err != nil {
		return "", err
	}
	digits := code
	if len(digits) >= 2 && strings.EqualFold(digits[:2], "0x") {
		digits = digits[2:]
	}
	return Format("Contract Code", NewFields(
		"address", in.Address,
		"code", code,
		"code_length", len(code),
		"code_size_bytes", len(digits)/2,
		"block", blk,
	)), nil
}

func getStorageAt(ctx context.Context, c *Catalog, in struct {
	Address     string `json:"address"`
	Position    string `json:"position"`
	BlockNumber string `json:"blockNumber"`
}) (string, error) {
	blk := block(in.BlockNumber)
	result, err := c.rpc.Call(ctx, "eth_getStorageAt", in.Address, in.Position, blk)
	if err != nil {
		return "", err
	}
	return Format("Storage Value", NewFields(
		"address", in.Address,
		"position", in.Position,
		"value", result,
		"block", blk,
	)), nil
}

func getLogs(ctx context.Context, c *Catalog, in struct {
	FromBlock string   `json:"fromBlock"`
	ToBlock   string   `json:"toBlock"`
	Address   string   `json:"address"`
	Topics    []string `json:"topics"`
}) (string, error) {
	filter := NewFields()
	if in.FromBlock != "" {
		filter.Set("fromBlock", NormalizeBlock(in.FromBlock))
	}
	if in.ToBlock != "" {
		filter.Set("toBlock", NormalizeBlock(in.ToBlock))
	}
	if in.Address != "" {
		filter.Set("address", in.Address)
	}
	if in.Topics != nil {
		filter.Set("topics", in.Topics)
	}

	result, err := c.rpc.Call(ctx, "eth_getLogs", filter)
	if err != nil {
		return "", err
	}
	var logs []json.RawMessage
	if err := json.Unmarshal(result, &logs); err != nil || logs == nil {
		return "", fmt.Errorf("unexpected result %s: expected an array of logs", result)
	}
	return Format("Event Logs", NewFields(
		"logs_count", len(logs),
		"logs", result,
		"filter", filter,
	)), nil
}

func chainID(ctx context.Context, c *Catalog, _ noArgs) (string, error) {
	result, err := c.rpc.Call(ctx, "eth_chainId")
	if err != nil {
		return "", err
	}
	hex, err := decodeString(result)
	if err != nil {
		return "", err
	}
	id, err := ParseQuantity(hex)
	if err != nil {
		return "", err
	}
	return Format("Network Chain ID", NewFields(
		"chain_id_hex", hex,
		"chain_id_decimal", id.String(),
		"chain_name", ChainName(id),
	)), nil
}

func netVersion(ctx context.Context, c *Catalog, _ noArgs) (string, error) {
	result, err := c.rpc.Call(ctx, "net_version")
	if err != nil {
		return "", err
	}
	return Format("Network Version", NewFields("network_id", result)), nil
}

func netListening(ctx context.Context, c *Catalog, _ noArgs) (string, error) {
	result, err := c.rpc.Call(ctx, "net_listening")
	if err != nil {
		return "", err
	}
	return Format("Network Status", NewFields("is_listening", result)), nil
}

func netPeerCount(ctx context.Context, c *Catalog, _ noArgs) (string, error) {
	result, err := c.rpc.Call(ctx, "net_peerCount")
	if err != nil {
		return "", err
	}
	hex, decimal, err := quantity(result)
	if err != nil {
		return "", err
	}
	return Format("Connected Peers", NewFields(
		"peer_count_hex", hex,
		"peer_count_decimal", decimal,
	)), nil
}
