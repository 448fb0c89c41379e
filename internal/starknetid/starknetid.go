// Package starknetid resolves StarknetID names (e.g. "vitalik.stark") to
// addresses and back.
//
// Names are looked up through a Directory, one per network, memoised in an
// explicit Cache that the caller owns. Domain encoding is the directory's
// business; this package only validates and canonicalizes the name.
package starknetid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mbd888/starknet-mcp/internal/felt"
	"github.com/mbd888/starknet-mcp/internal/network"
)

// Suffix is the root domain every StarknetID name lives under.
const Suffix = ".stark"

var (
	ErrUnresolvable = errors.New("starknetid: identifier could not be resolved")
	ErrInvalidName  = errors.New("starknetid: invalid name")
	ErrNotFound     = errors.New("starknetid: no record")
)

var nameLabel = regexp.MustCompile(`^[a-z0-9-]{1,31}$`)

// ResolveError reports a lookup that produced no usable result. It matches
// ErrUnresolvable with errors.Is and unwraps to the underlying cause.
type ResolveError struct {
	Identifier string
	Network    string
	Err        error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("starknetid: cannot resolve %q on %s: %v", e.Identifier, e.Network, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

func (e *ResolveError) Is(target error) bool { return target == ErrUnresolvable }

// Kind classifies a user-supplied identifier.
type Kind int

const (
	KindAddress Kind = iota
	KindName
)

func (k Kind) String() string {
	if k == KindAddress {
		return "address"
	}
	return "name"
}

// Classify treats anything that normalizes as an address as an address and
// everything else as a name.
func Classify(identifier string) Kind {
	if felt.IsAddress(identifier) {
		return KindAddress
	}
	return KindName
}

// IsValidName reports whether candidate is a single lowercase label of 1-31
// characters from [a-z0-9-], with or without the .stark suffix.
func IsValidName(candidate string) bool {
	return nameLabel.MatchString(strings.TrimSuffix(candidate, Suffix))
}

// CanonicalName trims and lowercases a name and appends .stark if missing.
func CanonicalName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if !strings.HasSuffix(n, Suffix) {
		n += Suffix
	}
	return n
}

// Directory is a name service endpoint for a single network.
type Directory interface {
	// AddressOf returns the address a domain points to.
	AddressOf(ctx context.Context, domain string) (string, error)
	// NameOf returns the primary domain of an address.
	NameOf(ctx context.Context, addr felt.Address) (string, error)
}

// Resolver turns identifiers into addresses using per-network directories.
type Resolver struct {
	networks *network.Registry
	cache    *Cache
	logger   *slog.Logger
}

// NewResolver creates a resolver backed by the given registry and cache.
func NewResolver(networks *network.Registry, cache *Cache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{networks: networks, cache: cache, logger: logger}
}

// Resolve returns the canonical address for an address or a StarknetID name.
// Names whose lookup fails, returns nothing, or returns the zero address
// yield a *ResolveError.
func (r *Resolver) Resolve(ctx context.Context, identifier, networkName string) (felt.Address, error) {
	net, err := r.networks.Lookup(networkName)
	if err != nil {
		return "", err
	}
	if addr, err := felt.NormalizeAddress(identifier); err == nil {
		return addr, nil
	}

	name := CanonicalName(identifier)
	if !IsValidName(name) {
		return "", &ResolveError{Identifier: identifier, Network: net.Name, Err: ErrInvalidName}
	}

	dir, err := r.cache.Get(net)
	if err != nil {
		return "", &ResolveError{Identifier: identifier, Network: net.Name, Err: err}
	}

	raw, err := dir.AddressOf(ctx, name)
	if err != nil {
		r.logger.Debug("starknetid lookup failed", "name", name, "network", net.Name, "error", err)
		return "", &ResolveError{Identifier: identifier, Network: net.Name, Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return "", &ResolveError{Identifier: identifier, Network: net.Name, Err: ErrNotFound}
	}

	addr, err := felt.NormalizeAddress(raw)
	if err != nil {
		return "", &ResolveError{Identifier: identifier, Network: net.Name, Err: err}
	}
	if addr.IsZero() {
		return "", &ResolveError{Identifier: identifier, Network: net.Name, Err: ErrNotFound}
	}
	return addr, nil
}

// ReverseLookup returns the primary .stark name of an address.
func (r *Resolver) ReverseLookup(ctx context.Context, address, networkName string) (string, error) {
	addr, err := felt.NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	net, err := r.networks.Lookup(networkName)
	if err != nil {
		return "", err
	}

	dir, err := r.cache.Get(net)
	if err != nil {
		return "", &ResolveError{Identifier: address, Network: net.Name, Err: err}
	}
	name, err := dir.NameOf(ctx, addr)
	if err != nil {
		return "", &ResolveError{Identifier: address, Network: net.Name, Err: err}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ResolveError{Identifier: address, Network: net.Name, Err: ErrNotFound}
	}
	return name, nil
}
