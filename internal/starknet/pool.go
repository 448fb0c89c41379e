package starknet

import (
	"context"
	"sync"

	"github.com/mbd888/starknet-mcp/internal/circuitbreaker"
	"github.com/mbd888/starknet-mcp/internal/metrics"
	"github.com/mbd888/starknet-mcp/internal/network"
)

// Pool holds at most one client per network, dialled on first use.
type Pool struct {
	networks *network.Registry
	opts     Options
	breaker  *circuitbreaker.Breaker

	mu      sync.Mutex
	clients map[string]*Client
	dial    func(context.Context, network.Network) (*Client, error)
}

// NewPool creates an empty pool. breaker may be nil.
func NewPool(networks *network.Registry, opts Options, breaker *circuitbreaker.Breaker) *Pool {
	p := &Pool{
		networks: networks,
		opts:     opts,
		breaker:  breaker,
		clients:  make(map[string]*Client),
	}
	p.dial = func(ctx context.Context, n network.Network) (*Client, error) {
		return Dial(ctx, n, p.opts, p.breaker)
	}
	return p
}

// Client returns the client for networkName, dialling it if needed. Dial
// failures are not cached.
func (p *Pool) Client(ctx context.Context, networkName string) (*Client, error) {
	n, err := p.networks.Lookup(networkName)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[n.Name]; ok {
		return c, nil
	}
	c, err := p.dial(ctx, n)
	if err != nil {
		return nil, err
	}
	p.clients[n.Name] = c
	metrics.RPCClients.Set(float64(len(p.clients)))
	return c, nil
}

// Len returns the number of dialled clients.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// Close closes and forgets every client.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, c := range p.clients {
		c.Close()
		delete(p.clients, name)
	}
	metrics.RPCClients.Set(0)
}
