// Package chain describes the networks a verdict can be anchored on and talks to a
// wallet over JSON-RPC.
package chain

import (
	"fmt"
	"strings"
)

// Network describes an EVM network in the shape wallets expect
type Network struct {
	ChainID     string
	Name        string
	RPCURL      string
	ExplorerURL string
	Symbol      string
	Decimals    int
}

// Known networks
var (
	BaseSepolia = Network{
		ChainID:     "0x14a34", // 84532
		Name:        "Base Sepolia",
		RPCURL:      "https://sepolia.base.org",
		ExplorerURL: "https://sepolia.basescan.org",
		Symbol:      "ETH",
		Decimals:    18,
	}
	BaseMainnet = Network{
		ChainID:     "0x2105", // 8453
		Name:        "Base",
		RPCURL:      "https://mainnet.base.org",
		ExplorerURL: "https://basescan.org",
		Symbol:      "ETH",
		Decimals:    18,
	}
)

var networks = map[string]Network{
	BaseSepolia.ChainID: BaseSepolia,
	BaseMainnet.ChainID: BaseMainnet,
}

// IsValidChainID reports whether chainID names a network verdicts can be anchored on
func IsValidChainID(chainID string) bool {
	_, ok := networks[strings.ToLower(chainID)]
	return ok
}

// NetworkByID looks up a known network by its hex chain ID
func NetworkByID(chainID string) (Network, bool) {
	n, ok := networks[strings.ToLower(chainID)]
	return n, ok
}

// WithOverrides returns a copy of n with any non-empty override applied
func (n Network) WithOverrides(rpcURL, explorerURL string) Network {
	if rpcURL != "" {
		n.RPCURL = rpcURL
	}
	if explorerURL != "" {
		n.ExplorerURL = strings.TrimRight(explorerURL, "/")
	}
	return n
}

// TxURL links to a transaction on the network's block explorer
func (n Network) TxURL(hash string) string {
	return fmt.Sprintf("%s/tx/%s", n.ExplorerURL, hash)
}

// AddressURL links to an address on the network's block explorer
func (n Network) AddressURL(address string) string {
	return fmt.Sprintf("%s/address/%s", n.ExplorerURL, address)
}
