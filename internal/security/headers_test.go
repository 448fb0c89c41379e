package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(HeadersMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.String(200, "ok")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
		"Cache-Control":          "no-store",
	}

	for header, expected := range headers {
		if got := w.Header().Get(header); got != expected {
			t.Errorf("%s = %q, want %q", header, got, expected)
		}
	}

	if csp := w.Header().Get("Content-Security-Policy"); csp == "" {
		t.Error("Content-Security-Policy header not set")
	}
}

func TestOriginMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		wantStatus     int
		expectHeader   bool
	}{
		{"allowed origin", []string{"https://example.com"}, "https://example.com", 200, true},
		{"wildcard allows all", []string{"*"}, "https://anything.com", 200, true},
		{"empty list allows all", nil, "https://anything.com", 200, true},
		{"disallowed origin", []string{"https://example.com"}, "https://evil.com", 403, false},
		{"no origin header", []string{"https://example.com"}, "", 200, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(OriginMiddleware(tc.allowedOrigins))
			router.POST("/mcp", func(c *gin.Context) {
				c.String(200, "ok")
			})

			req := httptest.NewRequest("POST", "/mcp", nil)
			if tc.requestOrigin != "" {
				req.Header.Set("Origin", tc.requestOrigin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			hasHeader := w.Header().Get("Access-Control-Allow-Origin") != ""
			if hasHeader != tc.expectHeader {
				t.Errorf("CORS header present = %v, want %v", hasHeader, tc.expectHeader)
			}
		})
	}
}

func TestOriginPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(OriginMiddleware([]string{"*"}))
	router.POST("/mcp", func(c *gin.Context) {
		c.String(200, "ok")
	})

	req := httptest.NewRequest("OPTIONS", "/mcp", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "Mcp-Session-Id" {
		t.Errorf("Access-Control-Expose-Headers = %q", got)
	}
}

func TestValidateRPCURL(t *testing.T) {
	tests := []struct {
		url          string
		allowPrivate bool
		wantErr      error
	}{
		{"https://1.1.1.1/rpc/v0_7", false, nil},
		{"wss://8.8.8.8/ws", false, nil},
		{"http://127.0.0.1:5050", true, nil},
		{"http://localhost:5050", true, nil},

		{"http://127.0.0.1:5050", false, ErrRPCPrivateHost},
		{"http://10.0.0.8:6060", false, ErrRPCPrivateHost},
		{"http://[::ffff:192.168.1.1]:6060", false, ErrRPCPrivateHost},
		{"http://localhost:5050", false, ErrRPCPrivateHost},
		{"http://devnet.local:5050", false, ErrRPCPrivateHost},
		{"http://169.254.169.254/latest", false, ErrRPCPrivateHost},
		{"ftp://1.1.1.1", true, ErrRPCScheme},
		{"https://", true, ErrRPCHost},
	}

	for _, tc := range tests {
		err := ValidateRPCURL(context.Background(), tc.url, tc.allowPrivate)
		if tc.wantErr == nil {
			if err != nil {
				t.Errorf("ValidateRPCURL(%q, %v) err = %v, want nil", tc.url, tc.allowPrivate, err)
			}
			continue
		}
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("ValidateRPCURL(%q, %v) err = %v, want %v", tc.url, tc.allowPrivate, err, tc.wantErr)
		}
	}
}

type stubResolver map[string][]netip.Addr

func (s stubResolver) LookupNetIP(_ context.Context, _, host string) ([]netip.Addr, error) {
	addrs, ok := s[host]
	if !ok {
		return nil, errors.New("no such host")
	}
	return addrs, nil
}

func TestRPCEndpointPolicy_ResolvedHosts(t *testing.T) {
	p := RPCEndpointPolicy{Resolver: stubResolver{
		"rpc.example.com":    {netip.MustParseAddr("34.1.2.3")},
		"rebind.example.com": {netip.MustParseAddr("34.1.2.3"), netip.MustParseAddr("10.1.1.1")},
	}}
	ctx := context.Background()

	if err := p.Check(ctx, "https://rpc.example.com/rpc"); err != nil {
		t.Errorf("public host rejected: %v", err)
	}
	if err := p.Check(ctx, "https://rebind.example.com/rpc"); !errors.Is(err, ErrRPCPrivateHost) {
		t.Errorf("host with a private record: err = %v", err)
	}
	if err := p.Check(ctx, "https://missing.example.com/rpc"); err == nil {
		t.Error("unresolvable host accepted")
	}
}
