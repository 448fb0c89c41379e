package mcpserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mbd888/starknet-mcp/internal/felt"
	"github.com/mbd888/starknet-mcp/internal/network"
	"github.com/mbd888/starknet-mcp/internal/starknet"
	"github.com/mbd888/starknet-mcp/internal/validation"
)

// networkArg returns the network named by the "network" argument, or the
// default network when it is absent.
func (h *Handlers) networkArg(req mcp.CallToolRequest) (network.Network, error) {
	name := strings.TrimSpace(req.GetString("network", ""))
	if name == "" {
		name = h.defaultNetwork
	}
	return h.networks.Lookup(name)
}

// clientArg returns the network and its RPC client.
func (h *Handlers) clientArg(ctx context.Context, req mcp.CallToolRequest) (network.Network, *starknet.Client, error) {
	n, err := h.networkArg(req)
	if err != nil {
		return network.Network{}, nil, err
	}
	c, err := h.pool.Client(ctx, n.Name)
	if err != nil {
		return network.Network{}, nil, err
	}
	return n, c, nil
}

// identifierArg reads a required address-or-name argument and resolves it.
func (h *Handlers) identifierArg(ctx context.Context, req mcp.CallToolRequest, key string, n network.Network) (felt.Address, string, error) {
	raw := validation.SanitizeString(req.GetString(key, ""), validation.MaxStringLength)
	if err := validation.Validate(
		validation.Required(key, raw),
		validation.ValidIdentifier(key, raw),
	); err != nil {
		return "", raw, err
	}
	addr, err := h.resolver.Resolve(ctx, raw, n.Name)
	return addr, raw, err
}

// blockArg reads the "block" argument, which may be a string or a number.
func blockArg(req mcp.CallToolRequest) (starknet.BlockID, error) {
	switch v := req.GetArguments()["block"].(type) {
	case nil:
		return starknet.Latest, nil
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return starknet.BlockID{}, fmt.Errorf("%w: %v", starknet.ErrInvalidBlockID, v)
		}
		return starknet.BlockNumber(uint64(v)), nil
	case string:
		return starknet.ParseBlockID(v)
	default:
		return starknet.BlockID{}, fmt.Errorf("%w: %v", starknet.ErrInvalidBlockID, v)
	}
}

// calldataArg accepts a JSON array of strings or numbers, or a single
// comma-separated string.
func calldataArg(req mcp.CallToolRequest, key string) ([]string, error) {
	var words []string
	switch v := req.GetArguments()[key].(type) {
	case nil:
		return nil, nil
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				words = append(words, part)
			}
		}
	case []any:
		for i, item := range v {
			switch w := item.(type) {
			case string:
				words = append(words, strings.TrimSpace(w))
			case float64:
				if w < 0 || w != float64(uint64(w)) {
					return nil, fmt.Errorf("%s[%d]: %w", key, i, felt.ErrInvalidFelt)
				}
				words = append(words, strconv.FormatUint(uint64(w), 10))
			default:
				return nil, fmt.Errorf("%s[%d]: %w", key, i, felt.ErrInvalidFelt)
			}
		}
	default:
		return nil, fmt.Errorf("%s: %w", key, felt.ErrInvalidFelt)
	}

	if err := validation.Validate(validation.MaxItems(key, len(words), validation.MaxCalldataWords)); err != nil {
		return nil, err
	}
	return words, nil
}

// tokenArg resolves a token symbol or address. Tokens missing from the
// network's table have their symbol and decimals read from the contract.
func (h *Handlers) tokenArg(ctx context.Context, c *starknet.Client, n network.Network, token string) (network.Token, error) {
	token = strings.TrimSpace(token)
	if t, ok := n.Token(token); ok {
		return t, nil
	}

	addr, err := felt.NormalizeAddress(token)
	if err != nil {
		symbols := make([]string, len(n.Tokens))
		for i, t := range n.Tokens {
			symbols[i] = t.Symbol
		}
		return network.Token{}, fmt.Errorf("%w %q on %s: use a contract address or one of %s",
			ErrUnknownToken, token, n.Name, strings.Join(symbols, ", "))
	}
	if t, ok := n.TokenByAddress(addr.String()); ok {
		return t, nil
	}

	decimals, err := c.Decimals(ctx, addr)
	if err != nil {
		return network.Token{}, err
	}
	symbol, err := c.Symbol(ctx, addr)
	if err != nil {
		// Some tokens omit symbol(); the balance is still meaningful.
		symbol = addr.Short()
	}
	return network.Token{Symbol: symbol, Address: addr.String(), Decimals: decimals}, nil
}
