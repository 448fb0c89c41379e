package mcpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mbd888/starknet-mcp/internal/felt"
	"github.com/mbd888/starknet-mcp/internal/network"
	"github.com/mbd888/starknet-mcp/internal/starknet"
)

// --- Formatting helpers ---

type tokenView struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
}

type networkView struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	ChainID     string      `json:"chainId"`
	ChainName   string      `json:"chainName"`
	RPCURL      string      `json:"rpcUrl"`
	ExplorerURL string      `json:"explorerUrl"`
	Default     bool        `json:"default"`
	Tokens      []tokenView `json:"tokens"`
}

func newNetworkView(n network.Network, isDefault bool) networkView {
	v := networkView{
		Name:        n.Name,
		DisplayName: n.DisplayName,
		ChainID:     n.ChainID,
		ChainName:   n.ChainName,
		RPCURL:      n.RPCURL,
		ExplorerURL: n.ExplorerURL,
		Default:     isDefault,
		Tokens:      make([]tokenView, len(n.Tokens)),
	}
	for i, t := range n.Tokens {
		v.Tokens[i] = tokenView{Symbol: t.Symbol, Name: t.Name, Address: t.Address, Decimals: t.Decimals}
	}
	return v
}

type blockView struct {
	Network          string   `json:"network"`
	Block            string   `json:"block"`
	Status           string   `json:"status,omitempty"`
	BlockNumber      *uint64  `json:"blockNumber,omitempty"`
	BlockHash        string   `json:"blockHash,omitempty"`
	ParentHash       string   `json:"parentHash"`
	Timestamp        uint64   `json:"timestamp"`
	Time             string   `json:"time"`
	SequencerAddress string   `json:"sequencerAddress"`
	StarknetVersion  string   `json:"starknetVersion"`
	TransactionCount int      `json:"transactionCount"`
	Transactions     []string `json:"transactions"`
	Truncated        bool     `json:"truncated,omitempty"`
	Explorer         string   `json:"explorer,omitempty"`
}

func newBlockView(n network.Network, id starknet.BlockID, b *starknet.Block, preview int) blockView {
	v := blockView{
		Network:          n.Name,
		Block:            id.String(),
		Status:           b.Status,
		BlockHash:        b.BlockHash,
		ParentHash:       b.ParentHash,
		Timestamp:        b.Timestamp,
		Time:             time.Unix(int64(b.Timestamp), 0).UTC().Format(time.RFC3339),
		SequencerAddress: b.SequencerAddress,
		StarknetVersion:  b.StarknetVersion,
		TransactionCount: len(b.Transactions),
		Transactions:     b.Transactions,
	}
	if b.BlockHash != "" {
		num := b.BlockNumber
		v.BlockNumber = &num
		v.Explorer = n.ExplorerURL + "/block/" + b.BlockHash
	}
	if len(v.Transactions) > preview {
		v.Transactions = v.Transactions[:preview]
		v.Truncated = true
	}
	if v.Transactions == nil {
		v.Transactions = []string{}
	}
	return v
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func formatJSON(raw json.RawMessage) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}
	return pretty.String()
}

// canonicalHash returns the minimal hex form of a felt, or s unchanged when
// it does not parse.
func canonicalHash(s string) string {
	v, err := felt.Parse(s)
	if err != nil {
		return s
	}
	return felt.Hex(v)
}
