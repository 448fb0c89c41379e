package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mbd888/starknet-mcp/internal/starknet"
)

const uriScheme = "starknet://"

// Resource definitions. Templated resources take the network as the first
// path segment, e.g. starknet://sepolia/block/latest.

var ResourceNetworks = mcp.NewResource(uriScheme+"networks", "Supported networks",
	mcp.WithResourceDescription("Networks this server can query, with chain ids, explorers and known tokens"),
	mcp.WithMIMEType("application/json"),
)

var ResourceChain = mcp.NewResourceTemplate(uriScheme+"{network}/chain", "Chain info",
	mcp.WithTemplateDescription("Chain id, latest block, spec version and sync status of a network"),
	mcp.WithTemplateMIMEType("application/json"),
)

var ResourceBlock = mcp.NewResourceTemplate(uriScheme+"{network}/block/{block}", "Block",
	mcp.WithTemplateDescription("Block header by number, hash, 'latest' or 'pending'"),
	mcp.WithTemplateMIMEType("application/json"),
)

var ResourceTransaction = mcp.NewResourceTemplate(uriScheme+"{network}/tx/{hash}", "Transaction",
	mcp.WithTemplateDescription("Transaction with its status"),
	mcp.WithTemplateMIMEType("application/json"),
)

var ResourceBalances = mcp.NewResourceTemplate(uriScheme+"{network}/address/{identifier}/balances", "Native balances",
	mcp.WithTemplateDescription("ETH and STRK balances of an address or StarknetID name"),
	mcp.WithTemplateMIMEType("application/json"),
)

// parseResourceURI splits starknet://{network}/{rest...} into the network
// and the remaining path segments.
func parseResourceURI(uri string) (string, []string, error) {
	rest, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return "", nil, fmt.Errorf("resource uri must start with %s: %q", uriScheme, uri)
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		return "", nil, fmt.Errorf("malformed resource uri %q", uri)
	}
	return parts[0], parts[1:], nil
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(b)},
	}, nil
}

// ReadNetworks serves starknet://networks.
func (h *Handlers) ReadNetworks(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	nets := h.networks.All()
	out := make([]networkView, len(nets))
	for i, n := range nets {
		out[i] = newNetworkView(n, n.Name == h.defaultNetwork)
	}
	return jsonContents(req.Params.URI, map[string]any{"networks": out})
}

// ReadChain serves starknet://{network}/chain.
func (h *Handlers) ReadChain(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name, parts, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if len(parts) != 1 || parts[0] != "chain" {
		return nil, fmt.Errorf("malformed resource uri %q", req.Params.URI)
	}
	n, err := h.networks.Lookup(name)
	if err != nil {
		return nil, err
	}
	c, err := h.pool.Client(ctx, n.Name)
	if err != nil {
		return nil, err
	}
	info, err := chainInfo(ctx, n, c)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, info)
}

// ReadBlock serves starknet://{network}/block/{block}.
func (h *Handlers) ReadBlock(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name, parts, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if len(parts) != 2 || parts[0] != "block" {
		return nil, fmt.Errorf("malformed resource uri %q", req.Params.URI)
	}
	id, err := starknet.ParseBlockID(parts[1])
	if err != nil {
		return nil, err
	}
	n, err := h.networks.Lookup(name)
	if err != nil {
		return nil, err
	}
	c, err := h.pool.Client(ctx, n.Name)
	if err != nil {
		return nil, err
	}
	b, err := c.BlockWithTxHashes(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, newBlockView(n, id, b, len(b.Transactions)))
}

// ReadTransaction serves starknet://{network}/tx/{hash}.
func (h *Handlers) ReadTransaction(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name, parts, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if len(parts) != 2 || parts[0] != "tx" {
		return nil, fmt.Errorf("malformed resource uri %q", req.Params.URI)
	}
	n, err := h.networks.Lookup(name)
	if err != nil {
		return nil, err
	}
	c, err := h.pool.Client(ctx, n.Name)
	if err != nil {
		return nil, err
	}
	tx, err := c.TransactionByHash(ctx, parts[1])
	if err != nil {
		return nil, err
	}
	status, err := c.TransactionStatus(ctx, parts[1])
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, map[string]any{
		"network":     n.Name,
		"transaction": tx,
		"status":      status,
		"explorer":    n.ExplorerTxURL(canonicalHash(parts[1])),
	})
}

// ReadBalances serves starknet://{network}/address/{identifier}/balances.
func (h *Handlers) ReadBalances(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name, parts, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 || parts[0] != "address" || parts[2] != "balances" {
		return nil, fmt.Errorf("malformed resource uri %q", req.Params.URI)
	}
	n, err := h.networks.Lookup(name)
	if err != nil {
		return nil, err
	}
	owner, err := h.resolver.Resolve(ctx, parts[1], n.Name)
	if err != nil {
		return nil, err
	}
	c, err := h.pool.Client(ctx, n.Name)
	if err != nil {
		return nil, err
	}
	balances, err := h.nativeBalances(ctx, c, n, owner)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, map[string]any{
		"network":  n.Name,
		"address":  owner,
		"input":    parts[1],
		"balances": balances,
	})
}
