// Package starknet is a JSON-RPC client for Starknet nodes.
//
// Calls go through go-ethereum's transport-agnostic rpc.Client, so HTTP(S)
// and WebSocket endpoints both work. Every call is guarded by a per-network
// circuit breaker, retried on transport failures, traced and counted.
package starknet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mbd888/starknet-mcp/internal/circuitbreaker"
	"github.com/mbd888/starknet-mcp/internal/felt"
	"github.com/mbd888/starknet-mcp/internal/metrics"
	"github.com/mbd888/starknet-mcp/internal/network"
	"github.com/mbd888/starknet-mcp/internal/retry"
	"github.com/mbd888/starknet-mcp/internal/traces"
)

// caller is the subset of *rpc.Client the client needs.
type caller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
	Close()
}

// Options tune every client built from them.
type Options struct {
	Timeout    time.Duration // per attempt; 0 means 30s
	Retry      retry.Policy
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Timeout: 30 * time.Second,
		Retry:   retry.DefaultPolicy,
	}
}

// Client talks to one network's JSON-RPC endpoint.
type Client struct {
	network string
	rpc     caller
	opts    Options
	breaker *circuitbreaker.Breaker
	logger  *slog.Logger
}

// Dial connects to n's RPC endpoint. HTTP endpoints connect lazily.
func Dial(ctx context.Context, n network.Network, opts Options, breaker *circuitbreaker.Breaker) (*Client, error) {
	if n.RPCURL == "" {
		return nil, fmt.Errorf("starknet: no rpc url for network %s", n.Name)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	rc, err := rpc.DialOptions(ctx, n.RPCURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("starknet: dial %s: %w", n.Name, err)
	}
	return newClient(n.Name, rc, opts, breaker), nil
}

func newClient(networkName string, rc caller, opts Options, breaker *circuitbreaker.Breaker) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		network: networkName,
		rpc:     rc,
		opts:    opts,
		breaker: breaker,
		logger:  logger.With("network", networkName),
	}
}

// Network returns the name of the network the client is bound to.
func (c *Client) Network() string { return c.network }

// Close releases the underlying connection.
func (c *Client) Close() { c.rpc.Close() }

func (c *Client) call(ctx context.Context, result any, method string, args ...any) (err error) {
	if err := c.breaker.Guard(c.network); err != nil {
		metrics.RPCCallsTotal.WithLabelValues(c.network, method, "circuit_open").Inc()
		return &RPCError{Network: c.network, Method: method, Err: err}
	}

	ctx, span := traces.StartSpan(ctx, "starknet."+method, traces.Network(c.network), traces.RPCMethod(method))
	defer func() { traces.End(span, err) }()

	start := time.Now()
	err = retry.Do(ctx, c.opts.Retry, func(attempt int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()

		callErr := c.rpc.CallContext(attemptCtx, result, method, args...)
		if callErr == nil {
			return nil
		}
		var appErr rpc.Error
		if errors.As(callErr, &appErr) {
			return retry.Permanent(callErr)
		}
		if attempt+1 < c.opts.Retry.MaxAttempts {
			c.logger.Debug("rpc call failed, retrying", "method", method, "attempt", attempt+1, "error", callErr)
		}
		return callErr
	})
	metrics.RPCCallDuration.WithLabelValues(c.network, method).Observe(time.Since(start).Seconds())

	if err == nil {
		c.breaker.RecordSuccess(c.network)
		metrics.RPCCallsTotal.WithLabelValues(c.network, method, "ok").Inc()
		return nil
	}

	rerr := &RPCError{Network: c.network, Method: method, Err: err}
	var appErr rpc.Error
	if errors.As(err, &appErr) {
		// The node answered; the endpoint itself is healthy.
		c.breaker.RecordSuccess(c.network)
		rerr.Code = appErr.ErrorCode()
		var dataErr rpc.DataError
		if errors.As(err, &dataErr) {
			rerr.Data = dataErr.ErrorData()
		}
		metrics.RPCCallsTotal.WithLabelValues(c.network, method, "rpc_error").Inc()
		return rerr
	}

	if ctx.Err() == nil {
		c.breaker.RecordFailure(c.network)
	}
	metrics.RPCCallsTotal.WithLabelValues(c.network, method, "transport_error").Inc()
	c.logger.Warn("rpc call failed", "method", method, "error", err)
	return rerr
}

// ChainID returns the chain id as a hex felt, e.g. 0x534e5f4d41494e.
func (c *Client) ChainID(ctx context.Context) (string, error) {
	var id string
	if err := c.call(ctx, &id, "starknet_chainId"); err != nil {
		return "", err
	}
	return id, nil
}

// BlockNumber returns the latest accepted block height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	if err := c.call(ctx, &n, "starknet_blockNumber"); err != nil {
		return 0, err
	}
	return n, nil
}

// SpecVersion returns the JSON-RPC spec version the node implements.
func (c *Client) SpecVersion(ctx context.Context) (string, error) {
	var v string
	if err := c.call(ctx, &v, "starknet_specVersion"); err != nil {
		return "", err
	}
	return v, nil
}

// Syncing returns nil when the node is not syncing.
func (c *Client) Syncing(ctx context.Context) (*SyncStatus, error) {
	var raw json.RawMessage
	if err := c.call(ctx, &raw, "starknet_syncing"); err != nil {
		return nil, err
	}
	var syncing bool
	if json.Unmarshal(raw, &syncing) == nil {
		return nil, nil
	}
	var status SyncStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("starknet: decode sync status: %w", err)
	}
	return &status, nil
}

// BlockWithTxHashes returns a block header and its transaction hashes.
func (c *Client) BlockWithTxHashes(ctx context.Context, id BlockID) (*Block, error) {
	var b Block
	if err := c.call(ctx, &b, "starknet_getBlockWithTxHashes", id); err != nil {
		return nil, err
	}
	return &b, nil
}

// TransactionByHash returns the transaction as the node reports it. The shape
// depends on the transaction type and version.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (json.RawMessage, error) {
	h, err := canonicalFelt(hash)
	if err != nil {
		return nil, err
	}
	var tx json.RawMessage
	if err := c.call(ctx, &tx, "starknet_getTransactionByHash", h); err != nil {
		return nil, err
	}
	return tx, nil
}

// TransactionReceipt returns the receipt as the node reports it.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (json.RawMessage, error) {
	h, err := canonicalFelt(hash)
	if err != nil {
		return nil, err
	}
	var receipt json.RawMessage
	if err := c.call(ctx, &receipt, "starknet_getTransactionReceipt", h); err != nil {
		return nil, err
	}
	return receipt, nil
}

// TransactionStatus returns finality and execution status.
func (c *Client) TransactionStatus(ctx context.Context, hash string) (*TxStatus, error) {
	h, err := canonicalFelt(hash)
	if err != nil {
		return nil, err
	}
	var status TxStatus
	if err := c.call(ctx, &status, "starknet_getTransactionStatus", h); err != nil {
		return nil, err
	}
	return &status, nil
}

// Call executes a read-only entry point and returns the raw result felts.
func (c *Client) Call(ctx context.Context, contract felt.Address, entryPoint string, calldata []string, id BlockID) ([]string, error) {
	data := make([]string, len(calldata))
	for i, word := range calldata {
		h, err := canonicalFelt(word)
		if err != nil {
			return nil, fmt.Errorf("calldata[%d]: %w", i, err)
		}
		data[i] = h
	}
	req := FunctionCall{
		ContractAddress:    contract.Felt(),
		EntryPointSelector: felt.Hex(felt.Selector(entryPoint)),
		Calldata:           data,
	}
	var out []string
	if err := c.call(ctx, &out, "starknet_call", req, id); err != nil {
		return nil, err
	}
	return out, nil
}

// Nonce returns the account nonce as a hex felt.
func (c *Client) Nonce(ctx context.Context, addr felt.Address, id BlockID) (string, error) {
	var nonce string
	if err := c.call(ctx, &nonce, "starknet_getNonce", id, addr.Felt()); err != nil {
		return "", err
	}
	return nonce, nil
}

// ClassHashAt returns the class hash deployed at addr.
func (c *Client) ClassHashAt(ctx context.Context, addr felt.Address, id BlockID) (string, error) {
	var hash string
	if err := c.call(ctx, &hash, "starknet_getClassHashAt", id, addr.Felt()); err != nil {
		return "", err
	}
	return hash, nil
}

// StorageAt reads one storage slot of addr.
func (c *Client) StorageAt(ctx context.Context, addr felt.Address, key string, id BlockID) (string, error) {
	k, err := canonicalFelt(key)
	if err != nil {
		return "", err
	}
	var value string
	if err := c.call(ctx, &value, "starknet_getStorageAt", addr.Felt(), k, id); err != nil {
		return "", err
	}
	return value, nil
}

// AddInvokeTransaction submits a signed INVOKE transaction and returns its hash.
func (c *Client) AddInvokeTransaction(ctx context.Context, tx json.RawMessage) (string, error) {
	if !json.Valid(tx) {
		return "", errors.New("starknet: invoke transaction is not valid JSON")
	}
	var res invokeResult
	if err := c.call(ctx, &res, "starknet_addInvokeTransaction", tx); err != nil {
		return "", err
	}
	return res.TransactionHash, nil
}

func canonicalFelt(s string) (string, error) {
	v, err := felt.Parse(s)
	if err != nil {
		return "", err
	}
	return felt.Hex(v), nil
}
