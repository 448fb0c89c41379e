package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/mbd888/starknet-mcp/internal/amount"
	"github.com/mbd888/starknet-mcp/internal/felt"
	"github.com/mbd888/starknet-mcp/internal/network"
	"github.com/mbd888/starknet-mcp/internal/pagination"
	"github.com/mbd888/starknet-mcp/internal/starknet"
	"github.com/mbd888/starknet-mcp/internal/starknetid"
	"github.com/mbd888/starknet-mcp/internal/validation"
)

const (
	defaultTxPageSize = 50
	maxTxPageSize     = 500
	blockPreviewTxs   = 20
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	networks       *network.Registry
	pool           *starknet.Pool
	resolver       *starknetid.Resolver
	defaultNetwork string
	logger         *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	def := d.DefaultNetwork
	if def == "" {
		def = network.Mainnet
	}
	return &Handlers{
		networks:       d.Networks,
		pool:           d.Pool,
		resolver:       d.Resolver,
		defaultNetwork: def,
		logger:         logger,
	}
}

// HandleGetSupportedNetworks lists the registry.
func (h *Handlers) HandleGetSupportedNetworks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nets := h.networks.All()
	out := make([]networkView, len(nets))
	for i, n := range nets {
		out[i] = newNetworkView(n, n.Name == h.defaultNetwork)
	}
	return jsonResult(map[string]any{"networks": out})
}

// HandleGetChainInfo queries chain id, head, spec version and sync state
// concurrently.
func (h *Handlers) HandleGetChainInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError("get chain info", err), nil
	}

	info, err := chainInfo(ctx, n, c)
	if err != nil {
		return toolError("get chain info", err), nil
	}
	return jsonResult(info)
}

// HandleGetNativeBalances returns ETH and STRK balances.
func (h *Handlers) HandleGetNativeBalances(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError("get balances", err), nil
	}
	owner, input, err := h.identifierArg(ctx, req, "address", n)
	if err != nil {
		return toolError("get balances", err), nil
	}

	balances, err := h.nativeBalances(ctx, c, n, owner)
	if err != nil {
		return toolError("get balances", err), nil
	}
	return jsonResult(map[string]any{
		"network":  n.Name,
		"address":  owner,
		"input":    input,
		"balances": balances,
	})
}

// HandleGetETHBalance returns the ETH balance.
func (h *Handlers) HandleGetETHBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.singleBalance(ctx, req, "ETH")
}

// HandleGetSTRKBalance returns the STRK balance.
func (h *Handlers) HandleGetSTRKBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.singleBalance(ctx, req, "STRK")
}

// HandleGetTokenBalance returns the balance of any ERC-20 token.
func (h *Handlers) HandleGetTokenBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token := req.GetString("token", "")
	if err := validation.Validate(validation.Required("token", token)); err != nil {
		return toolError("get token balance", err), nil
	}
	return h.singleBalance(ctx, req, token)
}

func (h *Handlers) singleBalance(ctx context.Context, req mcp.CallToolRequest, token string) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError("get balance", err), nil
	}
	owner, input, err := h.identifierArg(ctx, req, "address", n)
	if err != nil {
		return toolError("get balance", err), nil
	}
	tok, err := h.tokenArg(ctx, c, n, token)
	if err != nil {
		return toolError("get balance", err), nil
	}

	bal, err := balanceOf(ctx, c, tok, owner)
	if err != nil {
		return toolError("get balance", err), nil
	}
	return jsonResult(map[string]any{
		"network": n.Name,
		"address": owner,
		"input":   input,
		"balance": bal,
	})
}

// HandleGetTokenInfo reads token metadata from the contract.
func (h *Handlers) HandleGetTokenInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError("get token info", err), nil
	}
	token := req.GetString("token", "")
	if err := validation.Validate(validation.Required("token", token)); err != nil {
		return toolError("get token info", err), nil
	}
	tok, err := h.tokenArg(ctx, c, n, token)
	if err != nil {
		return toolError("get token info", err), nil
	}

	info, err := c.TokenInfo(ctx, felt.Address(tok.Address))
	if err != nil {
		return toolError("get token info", err), nil
	}
	return jsonResult(map[string]any{
		"network":        n.Name,
		"address":        info.Address,
		"name":           info.Name,
		"symbol":         info.Symbol,
		"decimals":       info.Decimals,
		"totalSupply":    amount.Trim(amount.Format(info.TotalSupply, info.Decimals)),
		"totalSupplyRaw": info.TotalSupply.String(),
		"explorer":       n.ExplorerContractURL(info.Address.String()),
	})
}

// HandleResolveName resolves a StarknetID name to an address.
func (h *Handlers) HandleResolveName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := h.networkArg(req)
	if err != nil {
		return toolError("resolve name", err), nil
	}
	addr, input, err := h.identifierArg(ctx, req, "name", n)
	if err != nil {
		return toolError("resolve name", err), nil
	}
	return jsonResult(map[string]any{
		"network":  n.Name,
		"input":    input,
		"kind":     starknetid.Classify(input).String(),
		"address":  addr,
		"explorer": n.ExplorerContractURL(addr.String()),
	})
}

// HandleLookupAddress finds the primary name of an address.
func (h *Handlers) HandleLookupAddress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := h.networkArg(req)
	if err != nil {
		return toolError("look up address", err), nil
	}
	address := req.GetString("address", "")
	if err := validation.Validate(
		validation.Required("address", address),
		validation.ValidAddress("address", address),
	); err != nil {
		return toolError("look up address", err), nil
	}
	addr, _ := felt.NormalizeAddress(address)

	name, err := h.resolver.ReverseLookup(ctx, addr.String(), n.Name)
	if errors.Is(err, starknetid.ErrNotFound) {
		return jsonResult(map[string]any{"network": n.Name, "address": addr, "name": nil})
	}
	if err != nil {
		return toolError("look up address", err), nil
	}
	return jsonResult(map[string]any{"network": n.Name, "address": addr, "name": name})
}

// HandleValidateName checks name syntax without a lookup.
func (h *Handlers) HandleValidateName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if err := validation.Validate(validation.Required("name", name)); err != nil {
		return toolError("validate name", err), nil
	}
	canonical := starknetid.CanonicalName(name)
	valid := starknetid.IsValidName(canonical)
	out := map[string]any{"name": name, "valid": valid}
	if valid {
		out["canonical"] = canonical
	} else {
		out["reason"] = "a name is one label of 1-31 characters from a-z, 0-9 and '-', optionally followed by .stark"
	}
	return jsonResult(out)
}

// HandleGetBlock returns a block header with a preview of its transactions.
func (h *Handlers) HandleGetBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError("get block", err), nil
	}
	id, err := blockArg(req)
	if err != nil {
		return toolError("get block", err), nil
	}

	b, err := c.BlockWithTxHashes(ctx, id)
	if err != nil {
		return toolError("get block", err), nil
	}
	return jsonResult(newBlockView(n, id, b, blockPreviewTxs))
}

// HandleGetBlockTransactions pages through a block's transaction hashes.
func (h *Handlers) HandleGetBlockTransactions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError("get block transactions", err), nil
	}
	id, err := blockArg(req)
	if err != nil {
		return toolError("get block transactions", err), nil
	}
	limit := req.GetInt("limit", defaultTxPageSize)
	switch {
	case limit <= 0:
		limit = defaultTxPageSize
	case limit > maxTxPageSize:
		limit = maxTxPageSize
	}

	b, err := c.BlockWithTxHashes(ctx, id)
	if err != nil {
		return toolError("get block transactions", err), nil
	}

	// Pending blocks have no hash; scope their cursors to the parent.
	scope := n.Name + ":" + b.BlockHash
	if b.BlockHash == "" {
		scope = n.Name + ":pending:" + b.ParentHash
	}
	page, err := pagination.Slice(b.Transactions, scope, req.GetString("cursor", ""), limit)
	if err != nil {
		return toolError("get block transactions", err), nil
	}
	return jsonResult(map[string]any{
		"network":      n.Name,
		"block":        id.String(),
		"blockNumber":  b.BlockNumber,
		"blockHash":    b.BlockHash,
		"transactions": page,
	})
}

// HandleGetTransaction returns a transaction.
func (h *Handlers) HandleGetTransaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.txLookup(ctx, req, "get transaction", func(c *starknet.Client, hash string) (json.RawMessage, error) {
		return c.TransactionByHash(ctx, hash)
	})
}

// HandleGetTransactionReceipt returns a receipt.
func (h *Handlers) HandleGetTransactionReceipt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.txLookup(ctx, req, "get transaction receipt", func(c *starknet.Client, hash string) (json.RawMessage, error) {
		return c.TransactionReceipt(ctx, hash)
	})
}

// HandleGetTransactionStatus returns finality and execution status.
func (h *Handlers) HandleGetTransactionStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.txLookup(ctx, req, "get transaction status", func(c *starknet.Client, hash string) (json.RawMessage, error) {
		st, err := c.TransactionStatus(ctx, hash)
		if err != nil {
			return nil, err
		}
		return json.Marshal(st)
	})
}

func (h *Handlers) txLookup(ctx context.Context, req mcp.CallToolRequest, action string, fetch func(*starknet.Client, string) (json.RawMessage, error)) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError(action, err), nil
	}
	hash := strings.TrimSpace(req.GetString("hash", ""))
	if err := validation.Validate(
		validation.Required("hash", hash),
		validation.ValidFelt("hash", hash),
	); err != nil {
		return toolError(action, err), nil
	}

	raw, err := fetch(c, hash)
	if err != nil {
		return toolError(action, err), nil
	}

	var sb strings.Builder
	sb.WriteString(formatJSON(raw))
	fmt.Fprintf(&sb, "\n\nExplorer: %s", n.ExplorerTxURL(canonicalHash(hash)))
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleCallContract runs a read-only call.
func (h *Handlers) HandleCallContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError("call contract", err), nil
	}
	contract, _, err := h.identifierArg(ctx, req, "contract", n)
	if err != nil {
		return toolError("call contract", err), nil
	}
	entrypoint := strings.TrimSpace(req.GetString("entrypoint", ""))
	if err := validation.Validate(
		validation.Required("entrypoint", entrypoint),
		validation.MaxLength("entrypoint", entrypoint, 256),
	); err != nil {
		return toolError("call contract", err), nil
	}
	calldata, err := calldataArg(req, "calldata")
	if err != nil {
		return toolError("call contract", err), nil
	}
	id, err := blockArg(req)
	if err != nil {
		return toolError("call contract", err), nil
	}

	words, err := c.Call(ctx, contract, entrypoint, calldata, id)
	if err != nil {
		return toolError("call contract", err), nil
	}

	out := map[string]any{
		"network":    n.Name,
		"contract":   contract,
		"entrypoint": entrypoint,
		"selector":   felt.Hex(felt.Selector(entrypoint)),
		"block":      id.String(),
		"result":     words,
	}
	if v, shape, err := felt.DecodeUint(words); err == nil {
		out["decoded"] = map[string]string{"value": v.String(), "shape": shape.String()}
	}
	return jsonResult(out)
}

// HandleGetNonce returns an account nonce.
func (h *Handlers) HandleGetNonce(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.accountRead(ctx, req, "get nonce", "nonce", func(c *starknet.Client, addr felt.Address, id starknet.BlockID) (string, error) {
		return c.Nonce(ctx, addr, id)
	})
}

// HandleGetClassHash returns the class hash at an address.
func (h *Handlers) HandleGetClassHash(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.accountRead(ctx, req, "get class hash", "classHash", func(c *starknet.Client, addr felt.Address, id starknet.BlockID) (string, error) {
		return c.ClassHashAt(ctx, addr, id)
	})
}

// HandleGetStorageAt reads a storage slot.
func (h *Handlers) HandleGetStorageAt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := strings.TrimSpace(req.GetString("key", ""))
	if err := validation.Validate(
		validation.Required("key", key),
		validation.ValidFelt("key", key),
	); err != nil {
		return toolError("get storage", err), nil
	}
	return h.accountRead(ctx, req, "get storage", "value", func(c *starknet.Client, addr felt.Address, id starknet.BlockID) (string, error) {
		return c.StorageAt(ctx, addr, key, id)
	})
}

func (h *Handlers) accountRead(ctx context.Context, req mcp.CallToolRequest, action, field string, read func(*starknet.Client, felt.Address, starknet.BlockID) (string, error)) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError(action, err), nil
	}
	addr, _, err := h.identifierArg(ctx, req, "address", n)
	if err != nil {
		return toolError(action, err), nil
	}
	id, err := blockArg(req)
	if err != nil {
		return toolError(action, err), nil
	}

	v, err := read(c, addr, id)
	if err != nil {
		return toolError(action, err), nil
	}
	return jsonResult(map[string]any{
		"network": n.Name,
		"address": addr,
		"block":   id.String(),
		field:     v,
	})
}

// HandlePrepareTransfer builds an unsigned ERC-20 transfer call.
func (h *Handlers) HandlePrepareTransfer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError("prepare transfer", err), nil
	}
	amt := strings.TrimSpace(req.GetString("amount", ""))
	if err := validation.Validate(
		validation.Required("amount", amt),
		validation.ValidAmount("amount", amt),
	); err != nil {
		return toolError("prepare transfer", err), nil
	}
	recipient, input, err := h.identifierArg(ctx, req, "recipient", n)
	if err != nil {
		return toolError("prepare transfer", err), nil
	}
	tok, err := h.tokenArg(ctx, c, n, req.GetString("token", "ETH"))
	if err != nil {
		return toolError("prepare transfer", err), nil
	}

	raw, err := amount.Parse(amt, tok.Decimals)
	if err != nil {
		return toolError("prepare transfer", err), nil
	}
	words, err := felt.SplitUint256(raw)
	if err != nil {
		return toolError("prepare transfer", err), nil
	}

	out := map[string]any{
		"network":   n.Name,
		"token":     tok.Symbol,
		"recipient": recipient,
		"input":     input,
		"amount":    amount.Trim(amount.Format(raw, tok.Decimals)),
		"rawAmount": raw.String(),
		"call": map[string]any{
			"contractAddress": felt.Address(tok.Address).Felt(),
			"entrypoint":      "transfer",
			"selector":        felt.Hex(felt.Selector("transfer")),
			"calldata":        append([]string{recipient.Felt()}, words.Calldata()...),
		},
	}

	if senderArg := req.GetString("sender", ""); senderArg != "" {
		sender, err := h.resolver.Resolve(ctx, senderArg, n.Name)
		if err != nil {
			return toolError("prepare transfer", err), nil
		}
		bal, err := c.BalanceOf(ctx, felt.Address(tok.Address), sender)
		if err != nil {
			return toolError("prepare transfer", err), nil
		}
		out["sender"] = sender
		out["senderBalance"] = amount.Trim(amount.Format(bal, tok.Decimals))
		if bal.Cmp(raw) < 0 {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Insufficient balance: %s holds %s %s, transfer needs %s",
				sender.Short(), amount.Trim(amount.Format(bal, tok.Decimals)), tok.Symbol,
				amount.Trim(amount.Format(raw, tok.Decimals)))), nil
		}
	}
	return jsonResult(out)
}

// HandleSubmitInvoke forwards a signed INVOKE transaction.
func (h *Handlers) HandleSubmitInvoke(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, c, err := h.clientArg(ctx, req)
	if err != nil {
		return toolError("submit transaction", err), nil
	}
	tx, ok := req.GetArguments()["transaction"].(map[string]any)
	if !ok || len(tx) == 0 {
		return mcp.NewToolResultError("transaction is required and must be an object"), nil
	}
	if t, _ := tx["type"].(string); t != "" && !strings.EqualFold(t, "INVOKE") {
		return mcp.NewToolResultError(fmt.Sprintf("only INVOKE transactions are accepted, got %q", t)), nil
	}
	if sig, _ := tx["signature"].([]any); len(sig) == 0 {
		return mcp.NewToolResultError("transaction has no signature; sign it with a wallet first"), nil
	}

	raw, err := json.Marshal(tx)
	if err != nil {
		return toolError("submit transaction", err), nil
	}
	hash, err := c.AddInvokeTransaction(ctx, raw)
	if err != nil {
		return toolError("submit transaction", err), nil
	}
	return jsonResult(map[string]any{
		"network":         n.Name,
		"transactionHash": hash,
		"explorer":        n.ExplorerTxURL(hash),
	})
}

// --- Shared queries ---

type chainInfoView struct {
	Network        string               `json:"network"`
	ChainID        string               `json:"chainId"`
	ChainName      string               `json:"chainName"`
	ChainIDMatches bool                 `json:"chainIdMatches"`
	BlockNumber    uint64               `json:"blockNumber"`
	SpecVersion    string               `json:"specVersion"`
	Syncing        bool                 `json:"syncing"`
	SyncStatus     *starknet.SyncStatus `json:"syncStatus,omitempty"`
}

func chainInfo(ctx context.Context, n network.Network, c *starknet.Client) (*chainInfoView, error) {
	info := &chainInfoView{Network: n.Name, ChainName: n.ChainName}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		info.ChainID, err = c.ChainID(gctx)
		return err
	})
	g.Go(func() (err error) {
		info.BlockNumber, err = c.BlockNumber(gctx)
		return err
	})
	g.Go(func() (err error) {
		info.SpecVersion, err = c.SpecVersion(gctx)
		return err
	})
	g.Go(func() (err error) {
		info.SyncStatus, err = c.Syncing(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	info.Syncing = info.SyncStatus != nil
	info.ChainIDMatches = strings.EqualFold(canonicalHash(info.ChainID), canonicalHash(n.ChainID))
	return info, nil
}

type balanceView struct {
	Token    string `json:"token"`
	Contract string `json:"contract"`
	Balance  string `json:"balance"`
	Raw      string `json:"raw"`
	Decimals uint8  `json:"decimals"`
}

func balanceOf(ctx context.Context, c *starknet.Client, tok network.Token, owner felt.Address) (balanceView, error) {
	raw, err := c.BalanceOf(ctx, felt.Address(tok.Address), owner)
	if err != nil {
		return balanceView{}, err
	}
	return newBalanceView(tok, raw), nil
}

func newBalanceView(tok network.Token, raw *big.Int) balanceView {
	return balanceView{
		Token:    tok.Symbol,
		Contract: tok.Address,
		Balance:  amount.Format(raw, tok.Decimals),
		Raw:      raw.String(),
		Decimals: tok.Decimals,
	}
}

// nativeBalances fetches ETH and STRK concurrently.
func (h *Handlers) nativeBalances(ctx context.Context, c *starknet.Client, n network.Network, owner felt.Address) ([]balanceView, error) {
	symbols := []string{"ETH", "STRK"}
	out := make([]balanceView, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	for i, sym := range symbols {
		tok, ok := n.Token(sym)
		if !ok {
			return nil, fmt.Errorf("%w %q on %s", ErrUnknownToken, sym, n.Name)
		}
		g.Go(func() error {
			bal, err := balanceOf(gctx, c, tok, owner)
			if err != nil {
				return err
			}
			out[i] = bal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
