package starknet

import (
	"context"
	"math/big"

	"github.com/mbd888/starknet-mcp/internal/felt"
)

// TokenInfo is what an ERC-20 contract reports about itself.
type TokenInfo struct {
	Address     felt.Address
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// BalanceOf returns owner's raw balance of token. Both u256 (two words) and
// legacy felt (one word) return shapes are accepted.
func (c *Client) BalanceOf(ctx context.Context, token, owner felt.Address) (*big.Int, error) {
	words, err := c.Call(ctx, token, "balanceOf", []string{owner.Felt()}, Latest)
	if err != nil {
		return nil, err
	}
	v, _, err := felt.DecodeUint(words)
	if err != nil {
		return nil, &ResponseError{Contract: token, EntryPoint: "balanceOf", Err: err}
	}
	return v, nil
}

// Decimals returns the token's decimals.
func (c *Client) Decimals(ctx context.Context, token felt.Address) (uint8, error) {
	words, err := c.Call(ctx, token, "decimals", nil, Latest)
	if err != nil {
		return 0, err
	}
	v, _, err := felt.DecodeUint(words)
	if err != nil {
		return 0, &ResponseError{Contract: token, EntryPoint: "decimals", Err: err}
	}
	if !v.IsUint64() || v.Uint64() > 255 {
		return 0, &ResponseError{Contract: token, EntryPoint: "decimals", Err: &felt.RangeError{Value: v, Bits: 8}}
	}
	return uint8(v.Uint64()), nil
}

// Symbol returns the token symbol, stored either as a short string or a
// ByteArray.
func (c *Client) Symbol(ctx context.Context, token felt.Address) (string, error) {
	return c.text(ctx, token, "symbol")
}

// Name returns the token name.
func (c *Client) Name(ctx context.Context, token felt.Address) (string, error) {
	return c.text(ctx, token, "name")
}

// TotalSupply returns the raw total supply.
func (c *Client) TotalSupply(ctx context.Context, token felt.Address) (*big.Int, error) {
	words, err := c.Call(ctx, token, "totalSupply", nil, Latest)
	if err != nil {
		return nil, err
	}
	v, _, err := felt.DecodeUint(words)
	if err != nil {
		return nil, &ResponseError{Contract: token, EntryPoint: "totalSupply", Err: err}
	}
	return v, nil
}

// TokenInfo reads name, symbol, decimals and total supply.
func (c *Client) TokenInfo(ctx context.Context, token felt.Address) (*TokenInfo, error) {
	info := &TokenInfo{Address: token}
	var err error
	if info.Name, err = c.Name(ctx, token); err != nil {
		return nil, err
	}
	if info.Symbol, err = c.Symbol(ctx, token); err != nil {
		return nil, err
	}
	if info.Decimals, err = c.Decimals(ctx, token); err != nil {
		return nil, err
	}
	if info.TotalSupply, err = c.TotalSupply(ctx, token); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) text(ctx context.Context, token felt.Address, entryPoint string) (string, error) {
	words, err := c.Call(ctx, token, entryPoint, nil, Latest)
	if err != nil {
		return "", err
	}
	s, _, err := felt.DecodeText(words)
	if err != nil {
		return "", &ResponseError{Contract: token, EntryPoint: entryPoint, Err: err}
	}
	return s, nil
}
