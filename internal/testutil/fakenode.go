// Package testutil provides shared test infrastructure: an in-process
// Starknet JSON-RPC node backed by httptest.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mbd888/starknet-mcp/internal/felt"
)

// RPCError is a JSON-RPC error object returned by a handler.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Handler answers one JSON-RPC method.
type Handler func(params []json.RawMessage) (any, *RPCError)

type callKey struct {
	contract string
	selector string
}

// FakeNode is a minimal Starknet node. Methods without a handler answer
// with code -32601.
type FakeNode struct {
	*httptest.Server

	mu             sync.Mutex
	handlers       map[string]Handler
	contracts      map[callKey]func(calldata []string) []string
	calls          map[string]int
	transportFails int
}

// NewFakeNode starts a node that answers starknet_chainId with chainID and
// routes starknet_call to functions registered with Contract.
func NewFakeNode(t *testing.T, chainID string) *FakeNode {
	t.Helper()
	n := &FakeNode{
		handlers:  make(map[string]Handler),
		contracts: make(map[callKey]func([]string) []string),
		calls:     make(map[string]int),
	}
	n.Result("starknet_chainId", chainID)
	n.Handle("starknet_call", n.handleCall)
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.Close)
	return n
}

// Handle installs h for method.
func (n *FakeNode) Handle(method string, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

// Result makes method always return result.
func (n *FakeNode) Result(method string, result any) {
	n.Handle(method, func([]json.RawMessage) (any, *RPCError) { return result, nil })
}

// Fail makes method always return a JSON-RPC error.
func (n *FakeNode) Fail(method string, code int, message string) {
	n.Handle(method, func([]json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: code, Message: message}
	})
}

// FailTransport answers the next count requests with HTTP 503.
func (n *FakeNode) FailTransport(count int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transportFails = count
}

// Contract registers fn as the implementation of entryPoint on contract.
func (n *FakeNode) Contract(contract, entryPoint string, fn func(calldata []string) []string) {
	key := callKey{contract: canonical(contract), selector: felt.Hex(felt.Selector(entryPoint))}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contracts[key] = fn
}

// Returns registers a constant result for entryPoint on contract.
func (n *FakeNode) Returns(contract, entryPoint string, words ...string) {
	n.Contract(contract, entryPoint, func([]string) []string { return words })
}

// Calls reports how many requests reached method, transport failures included.
func (n *FakeNode) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

type request struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

func (n *FakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	if n.transportFails > 0 {
		n.transportFails--
		n.mu.Unlock()
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	h, ok := n.handlers[req.Method]
	n.mu.Unlock()

	resp := response{JSONRPC: "2.0", ID: req.ID}
	if !ok {
		resp.Error = &RPCError{Code: -32601, Message: "Method not found"}
	} else {
		result, rpcErr := h(req.Params)
		if rpcErr != nil {
			resp.Error = rpcErr
		} else {
			// A nil result must still be sent as "result": null.
			if result == nil {
				result = json.RawMessage("null")
			}
			resp.Result = result
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type functionCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

func (n *FakeNode) handleCall(params []json.RawMessage) (any, *RPCError) {
	if len(params) == 0 {
		return nil, &RPCError{Code: -32602, Message: "Invalid params"}
	}
	var fc functionCall
	if err := json.Unmarshal(params[0], &fc); err != nil {
		return nil, &RPCError{Code: -32602, Message: "Invalid params"}
	}

	n.mu.Lock()
	fn, ok := n.contracts[callKey{contract: canonical(fc.ContractAddress), selector: canonical(fc.EntryPointSelector)}]
	known := false
	for key := range n.contracts {
		if key.contract == canonical(fc.ContractAddress) {
			known = true
			break
		}
	}
	n.mu.Unlock()

	if !ok {
		if !known {
			return nil, &RPCError{Code: 20, Message: "Contract not found"}
		}
		return nil, &RPCError{Code: 40, Message: "Contract error", Data: "entry point not found"}
	}
	return fn(fc.Calldata), nil
}

func canonical(s string) string {
	v, err := felt.Parse(s)
	if err != nil {
		return s
	}
	return felt.Hex(v)
}
