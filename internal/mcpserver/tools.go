package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the Starknet MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

func networkParam() mcp.ToolOption {
	return mcp.WithString("network",
		mcp.Description("Starknet network: 'mainnet' or 'sepolia'. Defaults to the server's configured network."))
}

func blockParam() mcp.ToolOption {
	return mcp.WithString("block",
		mcp.Description("Block to read at: 'latest' (default), 'pending', a block number, or a 0x block hash"))
}

var ToolGetSupportedNetworks = mcp.NewTool("get_supported_networks",
	mcp.WithDescription(
		"List the Starknet networks this server can talk to, with chain ids, explorers and known tokens."),
)

var ToolGetChainInfo = mcp.NewTool("get_chain_info",
	mcp.WithDescription(
		"Get live chain information from the network's RPC node: chain id, latest block number, "+
			"JSON-RPC spec version and sync status."),
	networkParam(),
)

var ToolGetNativeBalances = mcp.NewTool("get_native_balances",
	mcp.WithDescription(
		"Get both ETH and STRK balances of an account. Accepts an address or a StarknetID name (e.g. 'vitalik.stark')."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Account address (0x...) or StarknetID name")),
	networkParam(),
)

var ToolGetETHBalance = mcp.NewTool("get_eth_balance",
	mcp.WithDescription("Get the ETH balance of an account. Accepts an address or a StarknetID name."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Account address (0x...) or StarknetID name")),
	networkParam(),
)

var ToolGetSTRKBalance = mcp.NewTool("get_strk_balance",
	mcp.WithDescription("Get the STRK balance of an account. Accepts an address or a StarknetID name."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Account address (0x...) or StarknetID name")),
	networkParam(),
)

var ToolGetTokenBalance = mcp.NewTool("get_token_balance",
	mcp.WithDescription(
		"Get an account's balance of any ERC-20 token. Known symbols (ETH, STRK, USDC, USDT) "+
			"are accepted in place of the token address; otherwise decimals and symbol are read from the contract."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Account address (0x...) or StarknetID name")),
	mcp.WithString("token",
		mcp.Required(),
		mcp.Description("Token contract address or known symbol (e.g. 'USDC')")),
	networkParam(),
)

var ToolGetTokenInfo = mcp.NewTool("get_token_info",
	mcp.WithDescription("Read an ERC-20 token's name, symbol, decimals and total supply from its contract."),
	mcp.WithString("token",
		mcp.Required(),
		mcp.Description("Token contract address or known symbol")),
	networkParam(),
)

var ToolResolveName = mcp.NewTool("resolve_name",
	mcp.WithDescription(
		"Resolve a StarknetID name (e.g. 'alice.stark') to its account address. "+
			"Addresses are returned normalized without a lookup."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("StarknetID name, with or without '.stark', or an address")),
	networkParam(),
)

var ToolLookupAddress = mcp.NewTool("lookup_address",
	mcp.WithDescription("Find the primary StarknetID name of an address, if it has one."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Account address (0x...)")),
	networkParam(),
)

var ToolValidateName = mcp.NewTool("validate_name",
	mcp.WithDescription(
		"Check whether a string is a well-formed StarknetID name: one label of 1-31 characters "+
			"from a-z, 0-9 and '-', optionally followed by '.stark'. Does not check registration."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Name to validate")),
)

var ToolGetBlock = mcp.NewTool("get_block",
	mcp.WithDescription(
		"Get a block header: number, hash, timestamp, status, sequencer and transaction count. "+
			"Use get_block_transactions to page through all transaction hashes."),
	blockParam(),
	networkParam(),
)

var ToolGetBlockTransactions = mcp.NewTool("get_block_transactions",
	mcp.WithDescription("List the transaction hashes of a block, a page at a time."),
	blockParam(),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of hashes to return (default 50, max 500)")),
	mcp.WithString("cursor",
		mcp.Description("Cursor from a previous page's nextCursor")),
	networkParam(),
)

var ToolGetTransaction = mcp.NewTool("get_transaction",
	mcp.WithDescription("Get a transaction by hash as reported by the node."),
	mcp.WithString("hash",
		mcp.Required(),
		mcp.Description("Transaction hash (0x...)")),
	networkParam(),
)

var ToolGetTransactionReceipt = mcp.NewTool("get_transaction_receipt",
	mcp.WithDescription("Get a transaction receipt: execution result, fee, events and messages."),
	mcp.WithString("hash",
		mcp.Required(),
		mcp.Description("Transaction hash (0x...)")),
	networkParam(),
)

var ToolGetTransactionStatus = mcp.NewTool("get_transaction_status",
	mcp.WithDescription("Get a transaction's finality status (RECEIVED, ACCEPTED_ON_L2, ACCEPTED_ON_L1) and execution status."),
	mcp.WithString("hash",
		mcp.Required(),
		mcp.Description("Transaction hash (0x...)")),
	networkParam(),
)

var ToolCallContract = mcp.NewTool("call_contract",
	mcp.WithDescription(
		"Call a read-only contract function. Returns the raw result felts and, "+
			"for one- or two-word results, the value decoded as an integer."),
	mcp.WithString("contract",
		mcp.Required(),
		mcp.Description("Contract address (0x...) or StarknetID name")),
	mcp.WithString("entrypoint",
		mcp.Required(),
		mcp.Description("Function name, e.g. 'balanceOf'")),
	mcp.WithArray("calldata",
		mcp.Description("Arguments as felts (hex or decimal strings)"),
		mcp.WithStringItems()),
	blockParam(),
	networkParam(),
)

var ToolGetNonce = mcp.NewTool("get_nonce",
	mcp.WithDescription("Get an account's nonce."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Account address (0x...) or StarknetID name")),
	blockParam(),
	networkParam(),
)

var ToolGetClassHash = mcp.NewTool("get_class_hash",
	mcp.WithDescription("Get the class hash of the contract deployed at an address."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Contract address (0x...) or StarknetID name")),
	blockParam(),
	networkParam(),
)

var ToolGetStorageAt = mcp.NewTool("get_storage_at",
	mcp.WithDescription("Read one raw storage slot of a contract."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Contract address (0x...)")),
	mcp.WithString("key",
		mcp.Required(),
		mcp.Description("Storage key as a felt")),
	blockParam(),
	networkParam(),
)

var ToolPrepareTransfer = mcp.NewTool("prepare_transfer",
	mcp.WithDescription(
		"Build an ERC-20 transfer call ready for a wallet to sign. Resolves the recipient, "+
			"converts the human amount using the token's decimals and encodes it as u256 calldata. "+
			"Nothing is signed or sent."),
	mcp.WithString("recipient",
		mcp.Required(),
		mcp.Description("Recipient address (0x...) or StarknetID name")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Amount in token units, e.g. '1.5'")),
	mcp.WithString("token",
		mcp.Description("Token symbol or contract address (default 'ETH')")),
	mcp.WithString("sender",
		mcp.Description("Optional sender address or name; when set, the balance is checked")),
	networkParam(),
)

var ToolSubmitInvoke = mcp.NewTool("submit_invoke",
	mcp.WithDescription(
		"Submit an INVOKE transaction that was already signed by a wallet. "+
			"Returns the transaction hash; track it with get_transaction_status."),
	mcp.WithObject("transaction",
		mcp.Required(),
		mcp.Description("Signed INVOKE transaction object as defined by the Starknet JSON-RPC spec (type, sender_address, calldata, signature, nonce, ...)")),
	networkParam(),
)
