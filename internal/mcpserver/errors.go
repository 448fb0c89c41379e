package mcpserver

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mbd888/starknet-mcp/internal/amount"
	"github.com/mbd888/starknet-mcp/internal/felt"
	"github.com/mbd888/starknet-mcp/internal/network"
	"github.com/mbd888/starknet-mcp/internal/pagination"
	"github.com/mbd888/starknet-mcp/internal/starknet"
	"github.com/mbd888/starknet-mcp/internal/starknetid"
	"github.com/mbd888/starknet-mcp/internal/validation"
)

// ErrUnknownToken is returned for a token argument that is neither a known
// symbol nor an address.
var ErrUnknownToken = errors.New("unknown token")

// invalidInput reports whether err was caused by a malformed argument rather
// than by the network.
func invalidInput(err error) bool {
	var verrs validation.ValidationErrors
	return errors.As(err, &verrs) ||
		errors.Is(err, felt.ErrInvalidAddress) ||
		errors.Is(err, felt.ErrInvalidFelt) ||
		errors.Is(err, felt.ErrOutOfRange) ||
		errors.Is(err, amount.ErrInvalidAmount) ||
		errors.Is(err, amount.ErrTooManyFractionalDigits) ||
		errors.Is(err, starknetid.ErrInvalidName) ||
		errors.Is(err, starknet.ErrInvalidBlockID) ||
		errors.Is(err, pagination.ErrInvalidCursor) ||
		errors.Is(err, ErrUnknownToken)
}

// toolError renders err as a tool-level error result. Every failure uses the
// same envelope; the prefix tells the model whether retrying with other
// arguments can help.
func toolError(action string, err error) *mcp.CallToolResult {
	var msg string
	switch {
	case errors.Is(err, felt.ErrUnrecognizedShape):
		msg = fmt.Sprintf("Unexpected contract response: %v", err)
	case errors.Is(err, starknetid.ErrUnresolvable) && !errors.Is(err, starknetid.ErrInvalidName):
		msg = fmt.Sprintf("Could not resolve name: %v", err)
	case invalidInput(err):
		msg = fmt.Sprintf("Invalid input: %v", err)
	case errors.Is(err, network.ErrUnknownNetwork):
		msg = err.Error()
	case starknet.IsNotFound(err):
		msg = fmt.Sprintf("Not found: %v", err)
	case errors.Is(err, starknet.ErrCircuitOpen):
		msg = fmt.Sprintf("Network temporarily unavailable, try again shortly: %v", err)
	default:
		msg = fmt.Sprintf("Failed to %s: %v", action, err)
	}
	return mcp.NewToolResultError(msg)
}
