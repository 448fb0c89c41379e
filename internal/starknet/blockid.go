package starknet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mbd888/starknet-mcp/internal/felt"
)

// BlockID selects a block by tag, number or hash.
type BlockID struct {
	Tag    string // "latest" or "pending"
	Number *uint64
	Hash   string
}

var (
	Latest  = BlockID{Tag: "latest"}
	Pending = BlockID{Tag: "pending"}
)

// BlockNumber selects a block by height.
func BlockNumber(n uint64) BlockID { return BlockID{Number: &n} }

// BlockHash selects a block by hash. The hash must be a valid felt.
func BlockHash(hash string) (BlockID, error) {
	v, err := felt.Parse(hash)
	if err != nil {
		return BlockID{}, fmt.Errorf("%w: %q", ErrInvalidBlockID, hash)
	}
	return BlockID{Hash: felt.Hex(v)}, nil
}

// ParseBlockID accepts "latest", "pending", a decimal height or a 0x hash.
// The empty string means latest.
func ParseBlockID(s string) (BlockID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "latest":
		return Latest, nil
	case "pending":
		return Pending, nil
	}
	if strings.HasPrefix(s, "0x") {
		return BlockHash(s)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return BlockID{}, fmt.Errorf("%w: %q", ErrInvalidBlockID, s)
	}
	return BlockNumber(n), nil
}

func (b BlockID) String() string {
	switch {
	case b.Number != nil:
		return strconv.FormatUint(*b.Number, 10)
	case b.Hash != "":
		return b.Hash
	case b.Tag != "":
		return b.Tag
	}
	return "latest"
}

func (b BlockID) MarshalJSON() ([]byte, error) {
	switch {
	case b.Number != nil:
		return json.Marshal(map[string]uint64{"block_number": *b.Number})
	case b.Hash != "":
		return json.Marshal(map[string]string{"block_hash": b.Hash})
	case b.Tag != "":
		return json.Marshal(b.Tag)
	}
	return json.Marshal("latest")
}
