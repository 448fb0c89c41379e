package starknetid

import (
	"sync"

	"github.com/mbd888/starknet-mcp/internal/metrics"
	"github.com/mbd888/starknet-mcp/internal/network"
)

// Factory builds the directory handle for a network.
type Factory func(network.Network) (Directory, error)

// Cache memoises one Directory per network name for the life of the process.
// Only a handful of networks exist, so entries are never evicted; Reset exists
// for tests.
type Cache struct {
	mu      sync.Mutex
	factory Factory
	handles map[string]Directory
}

// NewCache creates an empty cache that builds handles with factory.
func NewCache(factory Factory) *Cache {
	return &Cache{
		factory: factory,
		handles: make(map[string]Directory),
	}
}

// Get returns the cached handle for n, building it on first use.
func (c *Cache) Get(n network.Network) (Directory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.handles[n.Name]; ok {
		return d, nil
	}
	d, err := c.factory(n)
	if err != nil {
		return nil, err
	}
	c.handles[n.Name] = d
	metrics.DirectoryHandles.Set(float64(len(c.handles)))
	return d, nil
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

// Reset drops every cached handle.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.handles = make(map[string]Directory)
	c.mu.Unlock()
	metrics.DirectoryHandles.Set(0)
}
