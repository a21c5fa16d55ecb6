package evm

import "math/big"

// UnknownNetwork is reported for chain IDs missing from the table
const UnknownNetwork = "Unknown Network"

var chainNames = map[uint64]string{
	1:        "Ethereum Mainnet",
	5:        "Goerli Testnet",
	10:       "Optimism",
	56:       "BNB Smart Chain",
	97:       "BNB Smart Chain Testnet",
	100:      "Gnosis Chain",
	137:      "Polygon Mainnet",
	324:      "zkSync Era",
	420:      "Optimism Sepolia",
	8453:     "Base",
	17000:    "Holesky Testnet",
	42161:    "Arbitrum One",
	43114:    "Avalanche C-Chain",
	59144:    "Linea",
	80001:    "Polygon Mumbai Testnet",
	84532:    "Base Sepolia",
	421614:   "Arbitrum Sepolia",
	11155111: "Sepolia Testnet",
}

// ChainName returns the human name of a chain ID
func ChainName(id *big.Int) string {
	if id == nil || !id.IsUint64() {
		return UnknownNetwork
	}
	if name, ok := chainNames[id.Uint64()]; ok {
		return name
	}
	return UnknownNetwork
}
