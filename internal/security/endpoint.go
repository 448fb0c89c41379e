package security

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

var (
	ErrRPCScheme      = errors.New("rpc url: scheme must be http, https, ws or wss")
	ErrRPCHost        = errors.New("rpc url: missing host")
	ErrRPCPrivateHost = errors.New("rpc url: host is not publicly routable")
)

// rpcSchemes are the transports go-ethereum's rpc.DialContext understands.
var rpcSchemes = map[string]bool{"http": true, "https": true, "ws": true, "wss": true}

// internalHostSuffixes name hosts that never point at a public node.
var internalHostSuffixes = []string{"localhost", ".local", ".internal", "metadata.google"}

// HostResolver resolves a hostname to addresses. *net.Resolver satisfies it.
type HostResolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// RPCEndpointPolicy decides which node URLs the server may dial.
type RPCEndpointPolicy struct {
	// AllowPrivate admits loopback and private hosts, e.g. a local devnet.
	AllowPrivate bool
	Resolver     HostResolver
}

// ValidateRPCURL checks rawURL with the default resolver.
func ValidateRPCURL(ctx context.Context, rawURL string, allowPrivate bool) error {
	p := RPCEndpointPolicy{AllowPrivate: allowPrivate, Resolver: net.DefaultResolver}
	return p.Check(ctx, rawURL)
}

// Check returns nil when rawURL is a dialable node endpoint under p.
func (p RPCEndpointPolicy) Check(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("rpc url: %w", err)
	}
	if !rpcSchemes[strings.ToLower(u.Scheme)] {
		return fmt.Errorf("%w: got %q", ErrRPCScheme, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ErrRPCHost
	}
	if p.AllowPrivate {
		return nil
	}

	for _, suffix := range internalHostSuffixes {
		if host == strings.TrimPrefix(suffix, ".") || strings.HasSuffix(host, suffix) {
			return fmt.Errorf("%w: %s", ErrRPCPrivateHost, host)
		}
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		return publicAddr(host, addr)
	}
	if p.Resolver == nil {
		return nil
	}
	addrs, err := p.Resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return fmt.Errorf("rpc url: resolve %s: %w", host, err)
	}
	for _, addr := range addrs {
		if err := publicAddr(host, addr); err != nil {
			return err
		}
	}
	return nil
}

func publicAddr(host string, addr netip.Addr) error {
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		if host == addr.String() {
			return fmt.Errorf("%w: %s", ErrRPCPrivateHost, host)
		}
		return fmt.Errorf("%w: %s resolves to %s", ErrRPCPrivateHost, host, addr)
	}
	return nil
}
