// Package network holds the static table of Starknet networks the server can
// talk to. The table is fixed at build time; the only runtime input is an
// optional RPC URL override per network, applied when the Registry is built.
package network

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownNetwork = errors.New("network: unknown network")

// UnknownError reports a network name missing from the registry.
type UnknownError struct {
	Name  string
	Valid []string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("network: unknown network %q (supported: %s)", e.Name, strings.Join(e.Valid, ", "))
}

func (e *UnknownError) Unwrap() error { return ErrUnknownNetwork }

const (
	Mainnet = "mainnet"
	Sepolia = "sepolia"
)

// Token is an ERC-20 contract known to exist on a network.
type Token struct {
	Symbol   string
	Name     string
	Address  string
	Decimals uint8
}

// Network describes one Starknet network.
type Network struct {
	Name          string
	DisplayName   string
	ChainID       string // hex-encoded short string, e.g. 0x534e5f4d41494e
	ChainName     string // SN_MAIN, SN_SEPOLIA
	RPCURL        string
	ExplorerURL   string
	StarknetIDAPI string
	Tokens        []Token
}

// Token looks up a known token by symbol, case-insensitively.
func (n Network) Token(symbol string) (Token, bool) {
	for _, t := range n.Tokens {
		if strings.EqualFold(t.Symbol, strings.TrimSpace(symbol)) {
			return t, true
		}
	}
	return Token{}, false
}

// TokenByAddress looks up a known token by its canonical contract address.
func (n Network) TokenByAddress(addr string) (Token, bool) {
	for _, t := range n.Tokens {
		if t.Address == addr {
			return t, true
		}
	}
	return Token{}, false
}

// ExplorerTxURL links a transaction hash on the network's block explorer.
func (n Network) ExplorerTxURL(hash string) string {
	return n.ExplorerURL + "/tx/" + hash
}

// ExplorerContractURL links a contract or account on the block explorer.
func (n Network) ExplorerContractURL(addr string) string {
	return n.ExplorerURL + "/contract/" + addr
}

func (n Network) clone() Network {
	n.Tokens = slices.Clone(n.Tokens)
	return n
}

// Native tokens share addresses across mainnet and sepolia.
const (
	ETHAddress  = "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"
	STRKAddress = "0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"
)

var nativeTokens = []Token{
	{Symbol: "ETH", Name: "Ether", Address: ETHAddress, Decimals: 18},
	{Symbol: "STRK", Name: "Starknet Token", Address: STRKAddress, Decimals: 18},
}

func builtin() []Network {
	return []Network{
		{
			Name:          Mainnet,
			DisplayName:   "Starknet Mainnet",
			ChainID:       "0x534e5f4d41494e",
			ChainName:     "SN_MAIN",
			RPCURL:        "https://free-rpc.nethermind.io/mainnet-juno",
			ExplorerURL:   "https://voyager.online",
			StarknetIDAPI: "https://api.starknet.id",
			Tokens: append(slices.Clone(nativeTokens),
				Token{Symbol: "USDC", Name: "USD Coin", Address: "0x053c91253bc9682c04929ca02ed00b3e423f6710d2ee7e0d5ebb06f3ecf368a8", Decimals: 6},
				Token{Symbol: "USDT", Name: "Tether USD", Address: "0x068f5c6a61780768455de69077e07e89787839bf8166decfbf92b645209c0fb8", Decimals: 6},
			),
		},
		{
			Name:          Sepolia,
			DisplayName:   "Starknet Sepolia",
			ChainID:       "0x534e5f5345504f4c4941",
			ChainName:     "SN_SEPOLIA",
			RPCURL:        "https://free-rpc.nethermind.io/sepolia-juno",
			ExplorerURL:   "https://sepolia.voyager.online",
			StarknetIDAPI: "https://sepolia.api.starknet.id",
			Tokens:        slices.Clone(nativeTokens),
		},
	}
}

// Registry is an immutable, case-insensitive lookup table of networks.
type Registry struct {
	networks []Network
}

// NewRegistry builds the registry from the built-in table. rpcOverrides maps
// a network name to the RPC URL to use instead of the default; empty values
// and unknown names are ignored.
func NewRegistry(rpcOverrides map[string]string) *Registry {
	nets := builtin()
	for i := range nets {
		for name, url := range rpcOverrides {
			if url != "" && strings.EqualFold(name, nets[i].Name) {
				nets[i].RPCURL = url
			}
		}
	}
	return &Registry{networks: nets}
}

// Lookup returns the network with the given name, ignoring case and
// surrounding whitespace.
func (r *Registry) Lookup(name string) (Network, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, n := range r.networks {
		if n.Name == key {
			return n.clone(), nil
		}
	}
	return Network{}, &UnknownError{Name: name, Valid: r.Names()}
}

// Default returns mainnet.
func (r *Registry) Default() Network {
	n, err := r.Lookup(Mainnet)
	if err != nil {
		panic("network: mainnet missing from registry")
	}
	return n
}

// Names lists the supported network names in table order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.networks))
	for i, n := range r.networks {
		names[i] = n.Name
	}
	return names
}

// All returns a copy of every network in table order.
func (r *Registry) All() []Network {
	out := make([]Network, len(r.networks))
	for i, n := range r.networks {
		out[i] = n.clone()
	}
	return out
}
