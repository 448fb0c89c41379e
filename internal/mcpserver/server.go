package mcpserver

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mbd888/starknet-mcp/internal/network"
	"github.com/mbd888/starknet-mcp/internal/starknet"
	"github.com/mbd888/starknet-mcp/internal/starknetid"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "starknet-mcp"

// Deps are the shared services the tools run against.
type Deps struct {
	Networks       *network.Registry
	Pool           *starknet.Pool
	Resolver       *starknetid.Resolver
	DefaultNetwork string
	Logger         *slog.Logger
	Version        string
}

// NewMCPServer creates a configured MCP server with all Starknet tools,
// resources and prompts registered.
func NewMCPServer(d Deps) *server.MCPServer {
	version := d.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)
	h := NewHandlers(d)

	tools := []struct {
		tool    mcp.Tool
		handler server.ToolHandlerFunc
	}{
		{ToolGetSupportedNetworks, h.HandleGetSupportedNetworks},
		{ToolGetChainInfo, h.HandleGetChainInfo},
		{ToolGetNativeBalances, h.HandleGetNativeBalances},
		{ToolGetETHBalance, h.HandleGetETHBalance},
		{ToolGetSTRKBalance, h.HandleGetSTRKBalance},
		{ToolGetTokenBalance, h.HandleGetTokenBalance},
		{ToolGetTokenInfo, h.HandleGetTokenInfo},
		{ToolResolveName, h.HandleResolveName},
		{ToolLookupAddress, h.HandleLookupAddress},
		{ToolValidateName, h.HandleValidateName},
		{ToolGetBlock, h.HandleGetBlock},
		{ToolGetBlockTransactions, h.HandleGetBlockTransactions},
		{ToolGetTransaction, h.HandleGetTransaction},
		{ToolGetTransactionReceipt, h.HandleGetTransactionReceipt},
		{ToolGetTransactionStatus, h.HandleGetTransactionStatus},
		{ToolCallContract, h.HandleCallContract},
		{ToolGetNonce, h.HandleGetNonce},
		{ToolGetClassHash, h.HandleGetClassHash},
		{ToolGetStorageAt, h.HandleGetStorageAt},
		{ToolPrepareTransfer, h.HandlePrepareTransfer},
		{ToolSubmitInvoke, h.HandleSubmitInvoke},
	}
	for _, t := range tools {
		s.AddTool(t.tool, h.instrument(t.tool.Name, t.handler))
	}

	s.AddResource(ResourceNetworks, h.ReadNetworks)
	s.AddResourceTemplate(ResourceChain, h.ReadChain)
	s.AddResourceTemplate(ResourceBlock, h.ReadBlock)
	s.AddResourceTemplate(ResourceTransaction, h.ReadTransaction)
	s.AddResourceTemplate(ResourceBalances, h.ReadBalances)

	s.AddPrompt(PromptExplainTransaction, h.HandleExplainTransaction)
	s.AddPrompt(PromptAnalyzeAddress, h.HandleAnalyzeAddress)
	s.AddPrompt(PromptTransferTokens, h.HandleTransferTokens)

	return s
}
