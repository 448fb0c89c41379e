// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Transports the server can speak.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds all application configuration
type Config struct {
	Env       string // "development", "staging", "production"
	LogLevel  string
	LogFormat string // "text" or "json"

	// Starknet
	Network        string // default network for tools called without one
	MainnetRPCURL  string // empty means the built-in public endpoint
	SepoliaRPCURL  string
	RPCTimeout     time.Duration
	RPCMaxAttempts int

	// Transport
	Transport      string
	HTTPAddr       string
	RateLimitRPS   int      // per client IP, HTTP transport only; 0 disables
	AllowedOrigins []string // browser origins accepted over HTTP; empty allows all

	OTLPEndpoint string
}

const (
	DefaultEnv            = "development"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultNetwork        = "mainnet"
	DefaultTransport      = TransportStdio
	DefaultHTTPAddr       = ":3000"
	DefaultRPCTimeout     = 30 * time.Second
	DefaultRPCMaxAttempts = 3
	DefaultRateLimit      = 20
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("ENV", DefaultEnv),
		LogLevel:       getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:      getEnv("LOG_FORMAT", DefaultLogFormat),
		Network:        strings.ToLower(getEnv("STARKNET_NETWORK", DefaultNetwork)),
		MainnetRPCURL:  os.Getenv("STARKNET_RPC_URL"),
		SepoliaRPCURL:  os.Getenv("STARKNET_SEPOLIA_RPC_URL"),
		RPCTimeout:     getEnvDuration("RPC_TIMEOUT", DefaultRPCTimeout),
		RPCMaxAttempts: int(getEnvInt64("RPC_MAX_ATTEMPTS", DefaultRPCMaxAttempts)),
		Transport:      strings.ToLower(getEnv("MCP_TRANSPORT", DefaultTransport)),
		HTTPAddr:       getEnv("MCP_HTTP_ADDR", DefaultHTTPAddr),
		RateLimitRPS:   int(getEnvInt64("RATE_LIMIT_RPS", DefaultRateLimit)),
		AllowedOrigins: getEnvList("MCP_ALLOWED_ORIGINS"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("MCP_TRANSPORT must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Transport)
	}

	if c.Transport == TransportHTTP && c.HTTPAddr == "" {
		return fmt.Errorf("MCP_HTTP_ADDR is required for the http transport")
	}

	if c.Network == "" {
		return fmt.Errorf("STARKNET_NETWORK is required")
	}

	if c.RPCTimeout <= 0 {
		return fmt.Errorf("RPC_TIMEOUT must be positive")
	}

	if c.RPCMaxAttempts < 1 {
		return fmt.Errorf("RPC_MAX_ATTEMPTS must be at least 1")
	}

	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}

	return nil
}

// RPCOverrides returns the configured RPC URLs keyed by network name.
func (c *Config) RPCOverrides() map[string]string {
	overrides := make(map[string]string, 2)
	if c.MainnetRPCURL != "" {
		overrides["mainnet"] = c.MainnetRPCURL
	}
	if c.SepoliaRPCURL != "" {
		overrides["sepolia"] = c.SepoliaRPCURL
	}
	return overrides
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
