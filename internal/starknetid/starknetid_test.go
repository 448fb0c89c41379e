package starknetid

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/starknet-mcp/internal/felt"
	"github.com/mbd888/starknet-mcp/internal/network"
)

const vitalikAddr = "0x0000000000000000000000000000000000000000000000000000000000000abc"

type fakeDirectory struct {
	names map[string]string
	err   error
	calls atomic.Int32
}

func (f *fakeDirectory) AddressOf(_ context.Context, domain string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.names[domain], nil
}

func (f *fakeDirectory) NameOf(_ context.Context, addr felt.Address) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	for name, a := range f.names {
		if n, err := felt.NormalizeAddress(a); err == nil && n == addr {
			return name, nil
		}
	}
	return "", nil
}

func newTestResolver(dir Directory) (*Resolver, *Cache) {
	cache := NewCache(func(network.Network) (Directory, error) { return dir, nil })
	return NewResolver(network.NewRegistry(nil), cache, nil), cache
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindAddress, Classify("0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"))
	assert.Equal(t, KindName, Classify("vitalik"))
	assert.Equal(t, KindName, Classify("vitalik.stark"))
	assert.Equal(t, KindName, Classify(""))
	assert.Equal(t, "name", KindName.String())
}

func TestIsValidName(t *testing.T) {
	valid := []string{"vitalik", "vitalik.stark", "a", "my-wallet-01", "abcdefghijklmnopqrstuvwxyz01234"}
	for _, n := range valid {
		assert.True(t, IsValidName(n), "expected %q to be valid", n)
	}

	invalid := []string{"", ".stark", "Vitalik", "has space", "under_score", "abcdefghijklmnopqrstuvwxyz012345", "sub.domain.stark", "émile"}
	for _, n := range invalid {
		assert.False(t, IsValidName(n), "expected %q to be invalid", n)
	}
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "vitalik.stark", CanonicalName("vitalik"))
	assert.Equal(t, "vitalik.stark", CanonicalName(" Vitalik.STARK "))
}

func TestResolve_Address(t *testing.T) {
	dir := &fakeDirectory{}
	r, _ := newTestResolver(dir)

	addr, err := r.Resolve(context.Background(), "0xabc", "mainnet")
	require.NoError(t, err)
	assert.Equal(t, felt.Address(vitalikAddr), addr)
	assert.Zero(t, dir.calls.Load(), "addresses must not hit the directory")
}

func TestResolve_Name(t *testing.T) {
	dir := &fakeDirectory{names: map[string]string{"vitalik.stark": "0xabc"}}
	r, _ := newTestResolver(dir)

	for _, id := range []string{"vitalik", "vitalik.stark", "VITALIK"} {
		addr, err := r.Resolve(context.Background(), id, "MAINNET")
		require.NoError(t, err, id)
		assert.Equal(t, felt.Address(vitalikAddr), addr)
	}
}

func TestResolve_ZeroAddressIsUnresolvable(t *testing.T) {
	dir := &fakeDirectory{names: map[string]string{"ghost.stark": "0x0"}}
	r, _ := newTestResolver(dir)

	addr, err := r.Resolve(context.Background(), "ghost", "mainnet")
	require.Error(t, err)
	assert.Empty(t, addr)
	assert.True(t, errors.Is(err, ErrUnresolvable))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, felt.ErrInvalidAddress))
}

func TestResolve_EmptyResult(t *testing.T) {
	r, _ := newTestResolver(&fakeDirectory{names: map[string]string{}})

	_, err := r.Resolve(context.Background(), "nobody", "mainnet")
	assert.True(t, errors.Is(err, ErrUnresolvable))
}

func TestResolve_DirectoryFailure(t *testing.T) {
	boom := errors.New("connection reset")
	r, _ := newTestResolver(&fakeDirectory{err: boom})

	_, err := r.Resolve(context.Background(), "vitalik", "mainnet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvable))
	assert.True(t, errors.Is(err, boom))

	var re *ResolveError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "mainnet", re.Network)
	assert.Equal(t, "vitalik", re.Identifier)
}

func TestResolve_InvalidName(t *testing.T) {
	dir := &fakeDirectory{}
	r, _ := newTestResolver(dir)

	_, err := r.Resolve(context.Background(), "not a name!", "mainnet")
	assert.True(t, errors.Is(err, ErrUnresolvable))
	assert.True(t, errors.Is(err, ErrInvalidName))
	assert.Zero(t, dir.calls.Load())
}

func TestResolve_UnknownNetwork(t *testing.T) {
	r, _ := newTestResolver(&fakeDirectory{})

	_, err := r.Resolve(context.Background(), "vitalik", "goerli")
	assert.True(t, errors.Is(err, network.ErrUnknownNetwork))

	_, err = r.Resolve(context.Background(), "0xabc", "goerli")
	assert.True(t, errors.Is(err, network.ErrUnknownNetwork), "addresses are checked against the network too")
}

func TestReverseLookup(t *testing.T) {
	dir := &fakeDirectory{names: map[string]string{"vitalik.stark": "0xabc"}}
	r, _ := newTestResolver(dir)

	name, err := r.ReverseLookup(context.Background(), "0xabc", "mainnet")
	require.NoError(t, err)
	assert.Equal(t, "vitalik.stark", name)

	_, err = r.ReverseLookup(context.Background(), "0xdef", "mainnet")
	assert.True(t, errors.Is(err, ErrUnresolvable))

	_, err = r.ReverseLookup(context.Background(), "vitalik", "mainnet")
	assert.True(t, errors.Is(err, felt.ErrInvalidAddress))
}

func TestCache_BuildsOncePerNetwork(t *testing.T) {
	var built atomic.Int32
	cache := NewCache(func(network.Network) (Directory, error) {
		built.Add(1)
		return &fakeDirectory{}, nil
	})
	reg := network.NewRegistry(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(reg.Default())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), built.Load())
	assert.Equal(t, 1, cache.Len())

	sep, _ := reg.Lookup(network.Sepolia)
	_, err := cache.Get(sep)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	cache.Reset()
	assert.Equal(t, 0, cache.Len())
	_, err = cache.Get(reg.Default())
	require.NoError(t, err)
	assert.Equal(t, int32(3), built.Load())
}

func TestCache_FactoryErrorNotCached(t *testing.T) {
	fail := true
	cache := NewCache(func(network.Network) (Directory, error) {
		if fail {
			return nil, errors.New("dial failed")
		}
		return &fakeDirectory{}, nil
	})
	n := network.NewRegistry(nil).Default()

	_, err := cache.Get(n)
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	fail = false
	_, err = cache.Get(n)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

// --- HTTPDirectory ---

func newTestDirectory(t *testing.T, h http.HandlerFunc) *HTTPDirectory {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	n := network.NewRegistry(nil).Default()
	n.StarknetIDAPI = ts.URL + "/"
	d, err := NewHTTPDirectory(n)
	require.NoError(t, err)
	return d
}

func TestHTTPDirectory_AddressOf(t *testing.T) {
	d := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/domain_to_addr", r.URL.Path)
		assert.Equal(t, "vitalik.stark", r.URL.Query().Get("domain"))
		_, _ = w.Write([]byte(`{"addr":"0xabc","domain_expiry":1900000000}`))
	})

	addr, err := d.AddressOf(context.Background(), "vitalik.stark")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", addr)
}

func TestHTTPDirectory_NameOf(t *testing.T) {
	d := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/addr_to_domain", r.URL.Path)
		assert.Equal(t, "0xabc", r.URL.Query().Get("addr"))
		_, _ = w.Write([]byte(`{"domain":"vitalik.stark"}`))
	})

	name, err := d.NameOf(context.Background(), felt.Address(vitalikAddr))
	require.NoError(t, err)
	assert.Equal(t, "vitalik.stark", name)
}

func TestHTTPDirectory_Errors(t *testing.T) {
	d := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("domain") {
		case "missing.stark":
			w.WriteHeader(http.StatusNotFound)
		case "bad.stark":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"no address found"}`))
		case "broken.stark":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream timeout"))
		default:
			_, _ = w.Write([]byte(`{"error":"domain expired"}`))
		}
	})
	ctx := context.Background()

	_, err := d.AddressOf(ctx, "missing.stark")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = d.AddressOf(ctx, "bad.stark")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "no address found")

	_, err = d.AddressOf(ctx, "broken.stark")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream timeout")

	_, err = d.AddressOf(ctx, "expired.stark")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewHTTPDirectory_RequiresAPI(t *testing.T) {
	n := network.NewRegistry(nil).Default()
	n.StarknetIDAPI = ""
	_, err := NewHTTPDirectory(n)
	assert.Error(t, err)
}

func TestResolver_WithHTTPDirectory(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"addr":"0x0"}`))
	}))
	defer ts.Close()

	cache := NewCache(func(n network.Network) (Directory, error) {
		n.StarknetIDAPI = ts.URL
		return NewHTTPDirectory(n)
	})
	r := NewResolver(network.NewRegistry(nil), cache, nil)

	_, err := r.Resolve(context.Background(), "vitalik.stark", "sepolia")
	assert.True(t, errors.Is(err, ErrUnresolvable))
	assert.Equal(t, 1, cache.Len())
}
