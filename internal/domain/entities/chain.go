package entities

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Network is the single EVM network the dApp operates on
type Network struct {
	ChainID     uint64         `json:"chainId"`
	Name        string         `json:"chainName"`
	RPCURL      string         `json:"rpcUrl"`
	ExplorerURL string         `json:"explorerUrl"`
	Currency    NativeCurrency `json:"nativeCurrency"`
}

// NativeCurrency describes the gas token of a network
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// HexChainID returns the chain id in the 0x-prefixed form wallets expect (1301 -> 0x515)
func (n Network) HexChainID() string {
	return hexutil.EncodeUint64(n.ChainID)
}

// GetCAIP2ID returns the CAIP-2 formatted chain ID
func (n Network) GetCAIP2ID() string {
	return "eip155:" + strconv.FormatUint(n.ChainID, 10)
}

// AddressURL links an address on the network's block explorer
func (n Network) AddressURL(address string) string {
	return n.ExplorerURL + "/address/" + address
}

// SwitchChainParams is the wallet_switchEthereumChain payload
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

// AddChainParams is the wallet_addEthereumChain payload
type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

// AddChainParams builds the registration payload for the network
func (n Network) AddChainParams() AddChainParams {
	return AddChainParams{
		ChainID:           n.HexChainID(),
		ChainName:         n.Name,
		NativeCurrency:    n.Currency,
		RPCURLs:           []string{n.RPCURL},
		BlockExplorerURLs: []string{n.ExplorerURL},
	}
}
