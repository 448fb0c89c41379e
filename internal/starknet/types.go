package starknet

import "encoding/json"

// Block is a block header with its transaction hashes.
type Block struct {
	Status           string          `json:"status,omitempty"`
	BlockHash        string          `json:"block_hash,omitempty"`
	ParentHash       string          `json:"parent_hash"`
	BlockNumber      uint64          `json:"block_number,omitempty"`
	NewRoot          string          `json:"new_root,omitempty"`
	Timestamp        uint64          `json:"timestamp"`
	SequencerAddress string          `json:"sequencer_address"`
	StarknetVersion  string          `json:"starknet_version"`
	L1GasPrice       json.RawMessage `json:"l1_gas_price,omitempty"`
	Transactions     []string        `json:"transactions"`
}

// SyncStatus is the node's sync progress. Syncing returns nil when the node
// is caught up.
type SyncStatus struct {
	StartingBlockHash string `json:"starting_block_hash"`
	StartingBlockNum  uint64 `json:"starting_block_num"`
	CurrentBlockHash  string `json:"current_block_hash"`
	CurrentBlockNum   uint64 `json:"current_block_num"`
	HighestBlockHash  string `json:"highest_block_hash"`
	HighestBlockNum   uint64 `json:"highest_block_num"`
}

// TxStatus is the result of starknet_getTransactionStatus.
type TxStatus struct {
	FinalityStatus  string `json:"finality_status"`
	ExecutionStatus string `json:"execution_status,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

// FunctionCall is the request object of starknet_call.
type FunctionCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

type invokeResult struct {
	TransactionHash string `json:"transaction_hash"`
}
