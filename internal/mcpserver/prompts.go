package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

var PromptExplainTransaction = mcp.NewPrompt("explain_transaction",
	mcp.WithPromptDescription("Explain what a Starknet transaction did in plain language"),
	mcp.WithArgument("txHash",
		mcp.ArgumentDescription("Transaction hash (0x...)"),
		mcp.RequiredArgument()),
	mcp.WithArgument("network",
		mcp.ArgumentDescription("mainnet or sepolia (default mainnet)")),
)

var PromptAnalyzeAddress = mcp.NewPrompt("analyze_address",
	mcp.WithPromptDescription("Summarize an account: balances, name, nonce and contract class"),
	mcp.WithArgument("identifier",
		mcp.ArgumentDescription("Address (0x...) or StarknetID name"),
		mcp.RequiredArgument()),
	mcp.WithArgument("network",
		mcp.ArgumentDescription("mainnet or sepolia (default mainnet)")),
)

var PromptTransferTokens = mcp.NewPrompt("transfer_tokens",
	mcp.WithPromptDescription("Prepare a token transfer for signing in a wallet"),
	mcp.WithArgument("recipient",
		mcp.ArgumentDescription("Recipient address or StarknetID name"),
		mcp.RequiredArgument()),
	mcp.WithArgument("amount",
		mcp.ArgumentDescription("Amount in token units, e.g. '0.25'"),
		mcp.RequiredArgument()),
	mcp.WithArgument("token",
		mcp.ArgumentDescription("Token symbol or address (default ETH)")),
	mcp.WithArgument("network",
		mcp.ArgumentDescription("mainnet or sepolia (default mainnet)")),
)

func promptArg(req mcp.GetPromptRequest, key, def string) string {
	if v := strings.TrimSpace(req.Params.Arguments[key]); v != "" {
		return v
	}
	return def
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}

// HandleExplainTransaction renders the explain_transaction prompt.
func (h *Handlers) HandleExplainTransaction(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	hash := promptArg(req, "txHash", "")
	if hash == "" {
		return nil, fmt.Errorf("txHash is required")
	}
	net := promptArg(req, "network", h.defaultNetwork)
	return userPrompt("Explain a Starknet transaction", fmt.Sprintf(
		"Explain Starknet transaction %s on %s.\n\n"+
			"1. Call get_transaction_status to see whether it was accepted and whether it succeeded.\n"+
			"2. Call get_transaction for the sender, calls and fee settings.\n"+
			"3. Call get_transaction_receipt for the actual fee, events and any revert reason.\n"+
			"Then describe in plain language who did what, which contracts were touched, "+
			"what tokens moved (Transfer events) and what it cost.",
		hash, net)), nil
}

// HandleAnalyzeAddress renders the analyze_address prompt.
func (h *Handlers) HandleAnalyzeAddress(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id := promptArg(req, "identifier", "")
	if id == "" {
		return nil, fmt.Errorf("identifier is required")
	}
	net := promptArg(req, "network", h.defaultNetwork)
	return userPrompt("Analyze a Starknet address", fmt.Sprintf(
		"Analyze the Starknet account %s on %s.\n\n"+
			"1. If it is a name, call resolve_name; if it is an address, call lookup_address for its name.\n"+
			"2. Call get_native_balances for ETH and STRK.\n"+
			"3. Call get_nonce to gauge activity and get_class_hash to identify the account implementation.\n"+
			"Summarize holdings, activity level and anything notable.",
		id, net)), nil
}

// HandleTransferTokens renders the transfer_tokens prompt.
func (h *Handlers) HandleTransferTokens(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	recipient := promptArg(req, "recipient", "")
	amt := promptArg(req, "amount", "")
	if recipient == "" || amt == "" {
		return nil, fmt.Errorf("recipient and amount are required")
	}
	token := promptArg(req, "token", "ETH")
	net := promptArg(req, "network", h.defaultNetwork)
	return userPrompt("Prepare a Starknet token transfer", fmt.Sprintf(
		"I want to send %s %s to %s on %s.\n\n"+
			"1. Call resolve_name on the recipient and show me the address it resolves to.\n"+
			"2. Call prepare_transfer with recipient=%s, amount=%s, token=%s and network=%s.\n"+
			"3. Show me the call (contract, entrypoint, calldata) so I can sign it in my wallet. "+
			"Do not submit anything until I hand back a signed transaction for submit_invoke.",
		amt, token, recipient, net, recipient, amt, token, net)), nil
}
