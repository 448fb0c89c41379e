// Starknet MCP - Exposes Starknet reads, StarknetID and transfer preparation
// as MCP tools for LLMs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/server"

	"github.com/mbd888/starknet-mcp/internal/circuitbreaker"
	"github.com/mbd888/starknet-mcp/internal/config"
	"github.com/mbd888/starknet-mcp/internal/health"
	"github.com/mbd888/starknet-mcp/internal/logging"
	"github.com/mbd888/starknet-mcp/internal/mcpserver"
	"github.com/mbd888/starknet-mcp/internal/network"
	"github.com/mbd888/starknet-mcp/internal/security"
	"github.com/mbd888/starknet-mcp/internal/server"
	"github.com/mbd888/starknet-mcp/internal/starknet"
	"github.com/mbd888/starknet-mcp/internal/starknetid"
	"github.com/mbd888/starknet-mcp/internal/traces"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const (
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
	healthTimeout    = 5 * time.Second
	drainDelay       = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout carries the stdio transport.
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting starknet-mcp",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
		"transport", cfg.Transport,
		"network", cfg.Network,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTraces, err := traces.Init(ctx, cfg.OTLPEndpoint, Version, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTraces(sctx); err != nil {
			logger.Warn("trace shutdown", "error", err)
		}
	}()

	overrides := cfg.RPCOverrides()
	for name, u := range overrides {
		if err := security.ValidateRPCURL(ctx, u, !cfg.IsProduction()); err != nil {
			return fmt.Errorf("rpc url for %s: %w", name, err)
		}
	}
	networks := network.NewRegistry(overrides)
	if _, err := networks.Lookup(cfg.Network); err != nil {
		return err
	}

	opts := starknet.DefaultOptions()
	opts.Timeout = cfg.RPCTimeout
	opts.Retry.MaxAttempts = cfg.RPCMaxAttempts
	opts.Logger = logger
	pool := starknet.NewPool(networks, opts, circuitbreaker.New(breakerThreshold, breakerCooldown))
	defer pool.Close()

	names := starknetid.NewCache(starknetid.HTTPFactory)
	defer names.Reset()

	mcp := mcpserver.NewMCPServer(mcpserver.Deps{
		Networks:       networks,
		Pool:           pool,
		Resolver:       starknetid.NewResolver(networks, names, logger),
		DefaultNetwork: cfg.Network,
		Logger:         logger,
		Version:        Version,
	})

	if cfg.Transport == config.TransportHTTP {
		return serveHTTP(ctx, cfg, logger, mcp, networks, pool)
	}

	logger.Info("serving MCP over stdio")
	stdio := mcpgo.NewStdioServer(mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("stdio transport closed")
	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, logger *slog.Logger, mcp *mcpgo.MCPServer, networks *network.Registry, pool *starknet.Pool) error {
	checks := health.NewRegistry(healthTimeout)
	for _, n := range networks.All() {
		checks.Register(n.Name, health.ChainIDChecker(n.Name, n.ChainID, func(ctx context.Context) (string, error) {
			c, err := pool.Client(ctx, n.Name)
			if err != nil {
				return "", err
			}
			return c.ChainID(ctx)
		}))
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithHealth(checks),
		server.WithVersion(Version),
	}
	if cfg.IsProduction() {
		opts = append(opts, server.WithDrainDelay(drainDelay))
	}
	return server.New(cfg, mcp, opts...).Run(ctx)
}
