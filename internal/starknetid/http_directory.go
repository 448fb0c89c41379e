package starknetid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mbd888/starknet-mcp/internal/felt"
	"github.com/mbd888/starknet-mcp/internal/network"
)

// HTTPDirectory talks to the StarknetID public API of one network.
type HTTPDirectory struct {
	baseURL    string
	network    string
	httpClient *http.Client
}

// NewHTTPDirectory creates a directory client for n. It fails when the
// network has no StarknetID deployment.
func NewHTTPDirectory(n network.Network) (*HTTPDirectory, error) {
	if n.StarknetIDAPI == "" {
		return nil, fmt.Errorf("starknetid: no directory configured for %s", n.Name)
	}
	return &HTTPDirectory{
		baseURL: strings.TrimRight(n.StarknetIDAPI, "/"),
		network: n.Name,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// HTTPFactory is the Factory for NewHTTPDirectory.
func HTTPFactory(n network.Network) (Directory, error) {
	return NewHTTPDirectory(n)
}

// apiError is the error body returned by the directory API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (d *HTTPDirectory) get(ctx context.Context, path string, query url.Values, out any) error {
	u := d.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil {
			if msg := firstNonEmpty(apiErr.Message, apiErr.Error); msg != "" {
				return fmt.Errorf("%s directory error (%d): %s", d.network, resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("%s directory error (%d): %s", d.network, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// AddressOf calls /domain_to_addr.
func (d *HTTPDirectory) AddressOf(ctx context.Context, domain string) (string, error) {
	var resp struct {
		Addr  string `json:"addr"`
		Error string `json:"error"`
	}
	if err := d.get(ctx, "/domain_to_addr", url.Values{"domain": {domain}}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, resp.Error)
	}
	return resp.Addr, nil
}

// NameOf calls /addr_to_domain.
func (d *HTTPDirectory) NameOf(ctx context.Context, addr felt.Address) (string, error) {
	var resp struct {
		Domain string `json:"domain"`
		Error  string `json:"error"`
	}
	if err := d.get(ctx, "/addr_to_domain", url.Values{"addr": {addr.Felt()}}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, resp.Error)
	}
	return resp.Domain, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
