package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if !had {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "LOG_FORMAT", "STARKNET_NETWORK", "STARKNET_RPC_URL",
		"STARKNET_SEPOLIA_RPC_URL", "RPC_TIMEOUT", "RPC_MAX_ATTEMPTS",
		"MCP_TRANSPORT", "MCP_HTTP_ADDR", "RATE_LIMIT_RPS", "OTEL_EXPORTER_OTLP_ENDPOINT", "MCP_ALLOWED_ORIGINS",
	} {
		setEnv(t, key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultNetwork, cfg.Network)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, DefaultRPCTimeout, cfg.RPCTimeout)
	assert.Equal(t, DefaultRPCMaxAttempts, cfg.RPCMaxAttempts)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimitRPS)
	assert.Empty(t, cfg.RPCOverrides())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	setEnv(t, "STARKNET_NETWORK", "Sepolia")
	setEnv(t, "STARKNET_SEPOLIA_RPC_URL", "http://localhost:5050")
	setEnv(t, "MCP_TRANSPORT", "HTTP")
	setEnv(t, "MCP_HTTP_ADDR", ":9090")
	setEnv(t, "RPC_TIMEOUT", "5s")
	setEnv(t, "RPC_MAX_ATTEMPTS", "5")
	setEnv(t, "ENV", "production")
	setEnv(t, "MCP_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sepolia", cfg.Network)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.RPCTimeout)
	assert.Equal(t, 5, cfg.RPCMaxAttempts)
	assert.Equal(t, map[string]string{"sepolia": "http://localhost:5050"}, cfg.RPCOverrides())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidTransport(t *testing.T) {
	clearEnv(t)
	setEnv(t, "MCP_TRANSPORT", "grpc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MCP_TRANSPORT")
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	clearEnv(t)
	setEnv(t, "RPC_TIMEOUT", "soon")
	setEnv(t, "RATE_LIMIT_RPS", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultRPCTimeout, cfg.RPCTimeout)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimitRPS)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Network:        "mainnet",
			Transport:      TransportStdio,
			RPCTimeout:     time.Second,
			RPCMaxAttempts: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero timeout", func(c *Config) { c.RPCTimeout = 0 }, "RPC_TIMEOUT"},
		{"zero attempts", func(c *Config) { c.RPCMaxAttempts = 0 }, "RPC_MAX_ATTEMPTS"},
		{"negative rate", func(c *Config) { c.RateLimitRPS = -1 }, "RATE_LIMIT_RPS"},
		{"empty network", func(c *Config) { c.Network = "" }, "STARKNET_NETWORK"},
		{"http without addr", func(c *Config) { c.Transport = TransportHTTP }, "MCP_HTTP_ADDR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
